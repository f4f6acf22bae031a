package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
)

type fakeFetcher struct {
	resp *kafka.MetadataResponse
	err  error
}

func (f fakeFetcher) Metadata(context.Context, *kafka.MetadataRequest) (*kafka.MetadataResponse, error) {
	return f.resp, f.err
}

// aliasComparer treats hosts as equal when they are identical or aliased.
type aliasComparer map[string]string

func (a aliasComparer) Equivalent(_ context.Context, x, y string) bool {
	return x == y || a[x] == y || a[y] == x
}

func newTestClient(t *testing.T, fetcher metadataFetcher, logger Logger) *MetadataClient {
	t.Helper()
	jmx := 9999
	reg, err := cluster.Resolve(cluster.Advanced{Clusters: []cluster.ClusterDescriptor{{
		Name: "prod",
		Brokers: []cluster.BrokerConfig{
			{Host: "10.0.0.1", Port: 9092},
			{Host: "10.0.0.2", Port: 9092},
		},
		JMXPort: &jmx,
	}}}, cluster.WithHostComparer(aliasComparer{"kafka-1.internal": "10.0.0.1"}))
	require.NoError(t, err)

	c, err := NewMetadataClient(reg, "prod", WithLogger(logger))
	require.NoError(t, err)
	c.client = fetcher
	return c
}

func TestTopicsSortedByName(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := NewMockLogger(ctrl)
	logger.EXPECT().Warn("Skipping topic with metadata error", gomock.Any(), gomock.Any())

	c := newTestClient(t, fakeFetcher{resp: &kafka.MetadataResponse{Topics: []kafka.Topic{
		{Name: "orders", Partitions: make([]kafka.Partition, 3)},
		{Name: "__consumer_offsets", Internal: true, Partitions: make([]kafka.Partition, 50)},
		{Name: "broken", Error: errors.New("leader not available")},
		{Name: "audit", Partitions: make([]kafka.Partition, 1)},
	}}}, logger)

	topics, err := c.Topics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []TopicMetadata{
		{Name: "__consumer_offsets", Partitions: 50, Internal: true},
		{Name: "audit", Partitions: 1},
		{Name: "orders", Partitions: 3},
	}, topics)
}

func TestTopicsError(t *testing.T) {
	c := newTestClient(t, fakeFetcher{err: errors.New("connection refused")}, nil)

	_, err := c.Topics(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestBrokersMatchedToConfiguration(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := NewMockLogger(ctrl)
	logger.EXPECT().Info("Observed broker has no configuration", nil, gomock.Any())

	c := newTestClient(t, fakeFetcher{resp: &kafka.MetadataResponse{Brokers: []kafka.Broker{
		{ID: 3, Host: "10.0.0.3", Port: 9092},
		{ID: 2, Host: "10.0.0.2", Port: 9092, Rack: "b"},
		{ID: 1, Host: "kafka-1.internal", Port: 9092, Rack: "a"},
	}}}, logger)

	brokers, err := c.Brokers(context.Background())
	require.NoError(t, err)
	require.Len(t, brokers, 3)

	assert.Equal(t, 1, brokers[0].ID)
	assert.Equal(t, "a", brokers[0].Rack)
	require.NotNil(t, brokers[0].Config)
	assert.Equal(t, "10.0.0.1", brokers[0].Config.Host)
	require.NotNil(t, brokers[0].Config.JMXPort)
	assert.Equal(t, 9999, *brokers[0].Config.JMXPort)

	require.NotNil(t, brokers[1].Config)
	assert.Equal(t, "10.0.0.2", brokers[1].Config.Host)

	assert.Equal(t, 3, brokers[2].ID)
	assert.Nil(t, brokers[2].Config)
}
