// Package serde decides how a Kafka record is decoded and decodes it.
//
// Every record key and value has a MessageFormat. A SchemaClassifier derives
// it from the record's schema id (no id means FormatString), and the
// FormatterRegistry maps it to the MessageFormatter that turns the bytes
// into text. The registry must cover every format; NewFormatterRegistry
// and Validate fail with ErrFormatterMissing otherwise, so a gap is found
// at startup and never per record.
//
// ClusterSchemas binds one ClusterAwareSchema to each configured cluster:
//
//	formatters, err := serde.DefaultFormatterRegistry()
//	schemas, err := serde.NewClusterSchemas(registry, formatters,
//	    func(sr cluster.SchemaRegistryConfig) (serde.SchemaSource, error) {
//	        return schema_registry.NewClient(schema_registry.ConfigFromCluster(sr, 0))
//	    })
//
//	f, err := schemas.ResolveFormatter(ctx, "prod", "orders", &schemaID, false)
//
// Deserializer runs the whole pipeline for raw record bytes:
//
//	d := serde.NewDeserializer(schemas)
//	v := d.Deserialize(ctx, "prod", "orders", false, record.Value)
//	if v.Err != nil {
//	    // *serde.DecodeError or a registry error; only this record is affected
//	}
//
// Formatters:
//
//   - StringFormatter: UTF-8 text
//   - AvroFormatter: Avro binary to Avro JSON (goavro)
//   - ProtobufFormatter: schema compiled with protocompile, decoded with
//     dynamicpb and rendered as protobuf JSON
//   - JSONSchemaFormatter: compact JSON with sorted keys (sonic)
package serde
