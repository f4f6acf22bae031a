package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
)

func TestNewClients(t *testing.T) {
	reg, err := cluster.Resolve(cluster.Simple{BootstrapServers: []string{"kafka-1:9092", "kafka-2:9093"}})
	require.NoError(t, err)

	clients, err := NewClients(reg)
	require.NoError(t, err)
	defer clients.Close()

	assert.Equal(t, reg.ClusterIDs(), clients.ClusterIDs())

	c, err := clients.Get("kafka_1_9092")
	require.NoError(t, err)
	assert.Equal(t, "kafka_1_9092", c.ClusterID())

	_, err = clients.Get("missing")
	assert.True(t, cluster.IsUnknownClusterError(err))
}

func TestNewMetadataClientErrors(t *testing.T) {
	reg, err := cluster.Resolve(cluster.Advanced{Clusters: []cluster.ClusterDescriptor{
		{
			Name:       "bad-sasl",
			Brokers:    []cluster.BrokerConfig{{Host: "b", Port: 9092}},
			Management: cluster.ManagementProperties{PropSecurityProtocol: ProtocolSASLPlaintext, PropSASLMechanism: "GSSAPI"},
		},
		{
			Name:       "bad-ca",
			Brokers:    []cluster.BrokerConfig{{Host: "b", Port: 9092}},
			Management: cluster.ManagementProperties{PropSecurityProtocol: ProtocolSSL, PropSSLCALocation: "/does/not/exist.pem"},
		},
		{
			Name: "empty",
		},
	}})
	require.NoError(t, err)

	_, err = NewMetadataClient(reg, "bad_sasl")
	assert.ErrorIs(t, err, ErrUnsupportedSASLMechanism)

	_, err = NewMetadataClient(reg, "bad_ca")
	assert.ErrorContains(t, err, "failed to read CA cert")

	_, err = NewMetadataClient(reg, "empty")
	assert.ErrorIs(t, err, ErrNoBrokers)

	_, err = NewMetadataClient(reg, "nope")
	assert.True(t, cluster.IsUnknownClusterError(err))
}

func TestCreateSASLMechanism(t *testing.T) {
	for _, m := range []string{"PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512"} {
		mech, err := createSASLMechanism(SASLConfig{Mechanism: m, Username: "u", Password: "p"})
		require.NoError(t, err, m)
		assert.Equal(t, m, mech.Name())
	}
}
