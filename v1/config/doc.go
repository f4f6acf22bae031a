// Package config loads the kouncil configuration with viper.
//
// Sources, highest precedence first: command line flags, KOUNCIL_*
// environment variables (dots become underscores), the YAML file and
// built-in defaults.
//
// Simple shape, one cluster per bootstrap server:
//
//	bootstrapServers:
//	  - broker1:9092
//	  - broker2:9093
//	schemaRegistryUrl: http://schema-registry:8081
//
// Advanced shape:
//
//	kouncil:
//	  clusters:
//	    - name: transaction-cluster
//	      jmxPort: 5088
//	      schemaRegistry:
//	        url: http://schema-registry:8081
//	      kafka:
//	        security.protocol: SASL_SSL
//	      brokers:
//	        - host: 192.10.0.1
//	          port: 9092
//
// Once kouncil.clusters is present the simple keys are ignored.
package config
