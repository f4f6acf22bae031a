package main

import (
	"log"
	"os"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/kouncil/v1/config"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	fx.New(options(cfg)).Run()
}
