// Package kafka reads topic and broker metadata from the configured
// clusters using segmentio/kafka-go.
//
// Connection settings come from each cluster's management properties:
//
//	security.protocol          PLAINTEXT (default), SSL, SASL_PLAINTEXT, SASL_SSL
//	sasl.mechanism             PLAIN (default), SCRAM-SHA-256, SCRAM-SHA-512
//	sasl.username              SASL user
//	sasl.password              SASL password
//	ssl.ca.location            CA certificate (PEM)
//	ssl.certificate.location   client certificate (PEM)
//	ssl.key.location           client key (PEM)
//	ssl.insecure.skip.verify   skip server certificate verification
//	request.timeout.ms         request timeout
//
// Basic Usage:
//
//	clients, err := kafka.NewClients(registry)
//	if err != nil {
//		return err
//	}
//	defer clients.Close()
//
//	prod, err := clients.Get("prod")
//	topics, err := prod.Topics(ctx)
//	for _, t := range topics {
//		fmt.Println(t.Name, t.Partitions)
//	}
//
// Brokers joins every broker the cluster reports with the configured broker
// it corresponds to. The cluster may advertise a hostname where the
// configuration uses an IP address or the other way round, so matching uses
// cluster.Registry.BrokerConfigFromCluster, which compares resolved
// addresses:
//
//	brokers, err := prod.Brokers(ctx)
//	for _, b := range brokers {
//		if b.Config != nil && b.Config.JMXPort != nil {
//			// collect JMX metrics from b.Host:*b.Config.JMXPort
//		}
//	}
package kafka
