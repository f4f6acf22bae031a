package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
	"github.com/Aleph-Alpha/kouncil/v1/installation"
	"github.com/Aleph-Alpha/kouncil/v1/logger"
	"github.com/Aleph-Alpha/kouncil/v1/metrics"
	"github.com/Aleph-Alpha/kouncil/v1/schema_registry"
	"github.com/Aleph-Alpha/kouncil/v1/tracer"
)

// EnvPrefix prefixes environment overrides, e.g. KOUNCIL_BOOTSTRAPSERVERS
// or KOUNCIL_LOGGER_LEVEL.
const EnvPrefix = "KOUNCIL"

const redacted = "***REDACTED***"

type (
	// Config is the application configuration.
	//
	// BootstrapServers and SchemaRegistryURL form the simple cluster shape;
	// Kouncil.Clusters the advanced one. When kouncil.clusters is present
	// at all, even as an empty list, the simple shape is ignored.
	Config struct {
		BootstrapServers  []string `mapstructure:"bootstrapServers"`
		SchemaRegistryURL string   `mapstructure:"schemaRegistryUrl"`

		Kouncil        Kouncil                       `mapstructure:"kouncil"`
		SchemaRegistry schema_registry.FactoryConfig `mapstructure:"schemaRegistry"`
		Logger         logger.Config                 `mapstructure:"logger"`
		Metrics        metrics.Config                `mapstructure:"metrics"`
		Tracer         tracer.Config                 `mapstructure:"tracer"`

		advanced bool
	}

	Kouncil struct {
		Clusters []cluster.ClusterDescriptor `mapstructure:"clusters"`

		// LastWriteWins lets a cluster replace an earlier one whose name
		// sanitizes to the same id instead of failing startup.
		LastWriteWins bool `mapstructure:"lastWriteWins"`

		installation.Config `mapstructure:",squash"`
	}
)

// Load reads the configuration from command line flags, environment
// variables and an optional YAML file, in that order of precedence.
//
// The file is given with --config; without it ./kouncil.yaml is read when
// present.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("kouncil", pflag.ContinueOnError)
	fs.String("config", "", "Path to config file")
	fs.StringSlice("bootstrapServers", nil, "Comma separated host:port list, one cluster per entry")
	fs.String("schemaRegistryUrl", "", "Schema registry shared by all bootstrap servers")
	fs.String("kouncil.installationIdFile", installation.DefaultPath, "Path of the installation id file")
	fs.String("logger.level", logger.Info, "Log level")
	fs.String("metrics.address", metrics.DefaultMetricsAddress, "Metrics listener address")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	setDefaults(v)

	path, _ := fs.GetString("config")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("kouncil")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if path != "" || !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper decodes an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.advanced = v.IsSet("kouncil.clusters")
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schemaRegistryUrl", "")
	v.SetDefault("kouncil.lastWriteWins", false)
	v.SetDefault("schemaRegistry.timeout", 10*time.Second)
	v.SetDefault("logger.serviceName", "kouncil")
	v.SetDefault("logger.enableTracing", true)
	v.SetDefault("metrics.enableDefaultCollectors", true)
	v.SetDefault("metrics.namespace", metrics.DefaultNamespace)
	v.SetDefault("metrics.serviceName", "kouncil")
	v.SetDefault("tracer.serviceName", "kouncil")
	v.SetDefault("tracer.appEnv", "")
	v.SetDefault("tracer.enableExport", false)
}

// Advanced reports whether the advanced cluster shape is configured.
func (c *Config) Advanced() bool {
	return c.advanced
}

// ClusterInput returns the raw cluster configuration in the shape the
// operator chose.
func (c *Config) ClusterInput() cluster.Input {
	if c.advanced {
		return cluster.Advanced{Clusters: c.Kouncil.Clusters}
	}
	return cluster.Simple{
		BootstrapServers:  c.BootstrapServers,
		SchemaRegistryURL: c.SchemaRegistryURL,
	}
}

// ResolveOptions returns the cluster resolution options implied by the
// configuration.
func (c *Config) ResolveOptions() []cluster.ResolveOption {
	var opts []cluster.ResolveOption
	if c.Kouncil.LastWriteWins {
		opts = append(opts, cluster.WithLastWriteWins())
	}
	return opts
}

// String renders the configuration with credentials redacted.
func (c Config) String() string {
	cp := c
	cp.SchemaRegistryURL = redactURLCredentials(c.SchemaRegistryURL)
	cp.Kouncil.Clusters = make([]cluster.ClusterDescriptor, len(c.Kouncil.Clusters))
	for i, d := range c.Kouncil.Clusters {
		cp.Kouncil.Clusters[i] = redactCluster(d)
	}

	out, err := sonic.ConfigStd.MarshalToString(cp)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return out
}

func redactCluster(d cluster.ClusterDescriptor) cluster.ClusterDescriptor {
	secret := redacted
	if d.JMXPassword != nil {
		d.JMXPassword = &secret
	}

	brokers := make([]cluster.BrokerConfig, len(d.Brokers))
	for i, b := range d.Brokers {
		if b.JMXPassword != nil {
			b.JMXPassword = &secret
		}
		brokers[i] = b
	}
	d.Brokers = brokers

	if d.SchemaRegistry != nil {
		sr := *d.SchemaRegistry
		sr.URL = redactURLCredentials(sr.URL)
		if sr.Auth != nil {
			auth := *sr.Auth
			auth.Password = redacted
			sr.Auth = &auth
		}
		d.SchemaRegistry = &sr
	}

	if d.Management != nil {
		props := make(cluster.ManagementProperties, len(d.Management))
		for k, v := range d.Management {
			if strings.Contains(strings.ToLower(k), "password") {
				v = redacted
			}
			props[k] = v
		}
		d.Management = props
	}
	return d
}

func redactURLCredentials(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "***REDACTED_URL***"
	}
	if parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), redacted)
		}
	}
	return parsed.String()
}
