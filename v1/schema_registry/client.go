package schema_registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
)

// Schema types as reported by the registry. An empty type means Avro.
const (
	TypeAvro       = "AVRO"
	TypeProtobuf   = "PROTOBUF"
	TypeJSONSchema = "JSON"
)

const contentType = "application/vnd.schemaregistry.v1+json"

// Registry provides read access to a Confluent Schema Registry.
type Registry interface {
	// SchemaByID retrieves a schema by its ID
	SchemaByID(ctx context.Context, id int) (*Metadata, error)

	// LatestSchema retrieves the latest version of a schema for a subject
	LatestSchema(ctx context.Context, subject string) (*Metadata, error)
}

// Metadata contains metadata about a registered schema
type Metadata struct {
	ID      int    `json:"id"`
	Version int    `json:"version"`
	Schema  string `json:"schema"`
	Subject string `json:"subject"`
	Type    string `json:"schemaType,omitempty"`
}

// SchemaType returns the schema type, defaulting to Avro.
func (m *Metadata) SchemaType() string {
	if m.Type == "" {
		return TypeAvro
	}
	return m.Type
}

// Client is the default implementation of Registry
// that communicates with Confluent Schema Registry over HTTP.
//
// Schemas are immutable per id, so they are cached for the lifetime of the
// client. Concurrent misses for the same id share one request.
type Client struct {
	url        string
	httpClient *http.Client

	schemaCache      map[int]*Metadata
	schemaCacheMutex sync.RWMutex
	fetches          singleflight.Group

	username string
	password string
}

// Config holds configuration for schema registry client
type Config struct {
	// URL is the schema registry endpoint (e.g., "http://localhost:8081")
	URL string

	// Username for basic auth (optional)
	Username string

	// Password for basic auth (optional)
	Password string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// ConfigFromCluster builds a client configuration from a cluster's schema
// registry settings.
func ConfigFromCluster(sr cluster.SchemaRegistryConfig, timeout time.Duration) Config {
	cfg := Config{URL: sr.URL, Timeout: timeout}
	if sr.Auth != nil {
		cfg.Username = sr.Auth.Username
		cfg.Password = sr.Auth.Password
	}
	return cfg
}

// NewClient creates a new schema registry client
// Returns the concrete *Client type.
func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, ErrURLRequired
	}
	if _, err := url.ParseRequestURI(config.URL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &Client{
		url: strings.TrimRight(config.URL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		schemaCache: make(map[int]*Metadata),
		username:    config.Username,
		password:    config.Password,
	}, nil
}

// URL returns the registry base URL.
func (c *Client) URL() string {
	return c.url
}

// SchemaByID retrieves a schema from the registry by its ID
func (c *Client) SchemaByID(ctx context.Context, id int) (*Metadata, error) {
	c.schemaCacheMutex.RLock()
	if md, ok := c.schemaCache[id]; ok {
		c.schemaCacheMutex.RUnlock()
		return md, nil
	}
	c.schemaCacheMutex.RUnlock()

	// the shared fetch must not fail because the first caller went away;
	// each caller still stops waiting when its own context is done
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.fetches.DoChan(strconv.Itoa(id), func() (interface{}, error) {
		return c.fetchSchema(fetchCtx, id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Metadata), nil
	}
}

func (c *Client) fetchSchema(ctx context.Context, id int) (*Metadata, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "schema_registry.SchemaByID")
	defer span.End()
	span.SetAttributes(attribute.Int("schema.id", id))

	var result struct {
		Schema string `json:"schema"`
		Type   string `json:"schemaType"`
	}
	if err := c.get(ctx, fmt.Sprintf("/schemas/ids/%d", id), &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	md := &Metadata{ID: id, Schema: result.Schema, Type: result.Type}

	c.schemaCacheMutex.Lock()
	c.schemaCache[id] = md
	c.schemaCacheMutex.Unlock()

	return md, nil
}

// LatestSchema retrieves the latest version of a schema for a subject
func (c *Client) LatestSchema(ctx context.Context, subject string) (*Metadata, error) {
	var md Metadata
	if err := c.get(ctx, "/subjects/"+url.PathEscape(subject)+"/versions/latest", &md); err != nil {
		return nil, err
	}
	md.Subject = subject

	c.schemaCacheMutex.Lock()
	c.schemaCache[md.ID] = &md
	c.schemaCacheMutex.Unlock()

	return &md, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch schema: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", ErrSchemaNotFound, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// SubjectName returns the subject a topic's key or value schema is
// registered under with the default topic name strategy.
func SubjectName(topic string, isKey bool) string {
	if isKey {
		return topic + "-key"
	}
	return topic + "-value"
}
