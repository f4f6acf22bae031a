// Package schema_registry provides read access to Confluent Schema Registry.
//
// The client fetches schemas by id and by subject, caches them for its
// lifetime (schemas are immutable per id) and collapses concurrent fetches
// of the same id into a single HTTP request, so a burst of records sharing
// an unseen schema causes one registry call.
//
// Basic Usage:
//
//	registry, err := schema_registry.NewClient(schema_registry.Config{
//	    URL:      "http://localhost:8081",
//	    Username: "user",     // Optional
//	    Password: "password", // Optional
//	    Timeout:  10 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//
//	md, err := registry.SchemaByID(ctx, 42)
//	// md.SchemaType() is AVRO, PROTOBUF or JSON
//
// Per-cluster clients are created from the resolved cluster model:
//
//	factory := schema_registry.NewFactory(schema_registry.FactoryConfig{})
//	client, err := factory.ForCluster(*clusterCfg.SchemaRegistry)
//
// Wire Format:
//
// Records produced with registry-aware serializers use the Confluent
// wire format:
//
//	[magic_byte (1 byte)] [schema_id (4 bytes, big-endian)] [payload]
//
// DecodeSchemaID splits such a record into the schema id and payload.
package schema_registry
