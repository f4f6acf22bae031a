package kafka

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
)

// FXModule provides *Clients, the metadata clients of all configured
// clusters, and releases their connections on shutdown.
var FXModule = fx.Module("kafka",
	fx.Provide(
		NewClientsWithDI,
	),
	fx.Invoke(RegisterClientsLifecycle),
)

// Clients holds one MetadataClient per configured cluster.
type Clients struct {
	clients map[string]*MetadataClient
}

// NewClients creates a metadata client for every cluster in the registry.
func NewClients(registry *cluster.Registry, opts ...Option) (*Clients, error) {
	cs := &Clients{clients: make(map[string]*MetadataClient, registry.Len())}
	for _, id := range registry.ClusterIDs() {
		c, err := NewMetadataClient(registry, id, opts...)
		if err != nil {
			cs.Close()
			return nil, err
		}
		cs.clients[id] = c
	}
	return cs, nil
}

// Get returns the client of a cluster.
func (cs *Clients) Get(clusterID string) (*MetadataClient, error) {
	c, ok := cs.clients[clusterID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", cluster.ErrUnknownCluster, clusterID)
	}
	return c, nil
}

// ClusterIDs returns the ids of all clients, sorted.
func (cs *Clients) ClusterIDs() []string {
	ids := make([]string, 0, len(cs.clients))
	for id := range cs.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close releases idle connections of every client.
func (cs *Clients) Close() {
	for _, c := range cs.clients {
		c.Close()
	}
}

// ClientsParams groups the dependencies needed to create the clients.
type ClientsParams struct {
	fx.In

	Registry *cluster.Registry
	Logger   Logger `optional:"true"`
}

// NewClientsWithDI creates the clients using dependency injection.
func NewClientsWithDI(params ClientsParams) (*Clients, error) {
	var opts []Option
	if params.Logger != nil {
		opts = append(opts, WithLogger(params.Logger))
	}
	return NewClients(params.Registry, opts...)
}

// RegisterClientsLifecycle closes all clients when the application stops.
func RegisterClientsLifecycle(lc fx.Lifecycle, clients *Clients) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			clients.Close()
			return nil
		},
	})
}
