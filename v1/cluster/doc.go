// Package cluster resolves operator cluster configuration into the
// canonical, read-only cluster model used by the rest of kouncil.
//
// Two input shapes are accepted and never merged:
//
//	// simple: one single-broker cluster per bootstrap server
//	cluster.Simple{
//		BootstrapServers:  []string{"broker1:9092", "broker2:9093"},
//		SchemaRegistryURL: "http://schema-registry:8081",
//	}
//
//	// advanced: explicit clusters with brokers, JMX and client properties
//	cluster.Advanced{Clusters: []cluster.ClusterDescriptor{{
//		Name:    "transaction-cluster",
//		JMXPort: &jmxPort,
//		Brokers: []cluster.BrokerConfig{{Host: "10.0.0.1", Port: 9092}},
//	}}}
//
// Resolve turns either shape into a *Registry keyed by SanitizeID(name).
// Cluster-level JMX settings of the advanced shape overwrite the matching
// broker fields during resolution; after that the registry never changes
// and may be read concurrently without locking.
//
// Brokers reported by a live cluster are matched to their configuration
// with Registry.BrokerConfigFromCluster, which compares hosts by resolved
// address through HostIdentity rather than by string.
package cluster
