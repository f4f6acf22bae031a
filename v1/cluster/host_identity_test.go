package cluster

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Aleph-Alpha/kouncil/v1/logger"
)

type fakeResolver struct {
	mu      sync.Mutex
	addrs   map[string][]string
	calls   map[string]int
	delay   time.Duration
	active  atomic.Int64
	maxSeen atomic.Int64
}

func newFakeResolver(addrs map[string][]string) *fakeResolver {
	return &fakeResolver{addrs: addrs, calls: map[string]int{}}
}

func (f *fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		cur := f.maxSeen.Load()
		if n <= cur || f.maxSeen.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.calls[host]++
	raw, ok := f.addrs[host]
	f.mu.Unlock()
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	out := make([]net.IPAddr, len(raw))
	for i, r := range raw {
		out[i] = net.IPAddr{IP: net.ParseIP(r)}
	}
	return out, nil
}

func (f *fakeResolver) callCount(host string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[host]
}

func TestHostIdentityEquivalent(t *testing.T) {
	res := newFakeResolver(map[string][]string{
		"broker-1":  {"10.0.0.1"},
		"broker-1b": {"10.0.0.1"},
		"broker-2":  {"10.0.0.2"},
		"dual":      {"::1", "127.0.0.1"},
		"v6only":    {"fe80::1"},
	})
	h := NewHostIdentity(WithResolver(res))
	ctx := context.Background()

	assert.True(t, h.Equivalent(ctx, "broker-1", "10.0.0.1"))
	assert.True(t, h.Equivalent(ctx, "10.0.0.1", "broker-1"))
	assert.True(t, h.Equivalent(ctx, "broker-1", "broker-1b"))
	assert.False(t, h.Equivalent(ctx, "broker-1", "broker-2"))
	assert.True(t, h.Equivalent(ctx, "dual", "127.0.0.1"), "IPv4 address is preferred")
	assert.True(t, h.Equivalent(ctx, "v6only", "fe80::1"))
	assert.True(t, h.Equivalent(ctx, "::ffff:10.0.0.2", "10.0.0.2"))
}

func TestHostIdentityResolutionFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := NewMockLogger(ctrl)
	mockLogger.EXPECT().WarnWithContext(gomock.Any(), "Could not compare hosts", gomock.Not(gomock.Nil()), gomock.Any()).Times(2)

	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "failures_total"})
	res := newFakeResolver(map[string][]string{})
	h := NewHostIdentity(WithResolver(res), WithHostLogger(mockLogger), WithResolutionFailures(failures))

	assert.NotPanics(t, func() {
		assert.False(t, h.Equivalent(context.Background(), "unresolvable.invalid", "127.0.0.1"))
		assert.False(t, h.Equivalent(context.Background(), "unresolvable.invalid", "127.0.0.1"))
	})
	assert.Equal(t, float64(2), testutil.ToFloat64(failures))
	assert.Equal(t, 2, res.callCount("unresolvable.invalid"), "failures are not cached")
}

func TestHostIdentityCachesByPair(t *testing.T) {
	res := newFakeResolver(map[string][]string{"broker-1": {"10.0.0.1"}})
	h := NewHostIdentity(WithResolver(res), WithHostCache(16, time.Minute))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.True(t, h.Equivalent(ctx, "broker-1", "10.0.0.1"))
		assert.True(t, h.Equivalent(ctx, "10.0.0.1", "broker-1"))
	}
	assert.Equal(t, 1, res.callCount("broker-1"))
}

func TestHostIdentityCacheDisabled(t *testing.T) {
	res := newFakeResolver(map[string][]string{"broker-1": {"10.0.0.1"}})
	h := NewHostIdentity(WithResolver(res), WithHostCache(0, 0))

	h.Equivalent(context.Background(), "broker-1", "10.0.0.1")
	h.Equivalent(context.Background(), "broker-1", "10.0.0.1")
	assert.Equal(t, 2, res.callCount("broker-1"))
}

func TestHostIdentityBoundsConcurrentLookups(t *testing.T) {
	addrs := map[string][]string{}
	hosts := make([]string, 20)
	for i := range hosts {
		hosts[i] = "host-" + string(rune('a'+i))
		addrs[hosts[i]] = []string{"10.0.0.1"}
	}
	res := newFakeResolver(addrs)
	res.delay = 10 * time.Millisecond
	h := NewHostIdentity(WithResolver(res), WithMaxConcurrentLookups(3))

	var wg sync.WaitGroup
	for _, host := range hosts {
		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			assert.True(t, h.Equivalent(context.Background(), host, "10.0.0.1"))
		}(host)
	}
	wg.Wait()

	assert.LessOrEqual(t, res.maxSeen.Load(), int64(3))
}

func TestHostIdentityCancelledContext(t *testing.T) {
	res := newFakeResolver(map[string][]string{"broker-1": {"10.0.0.1"}})
	h := NewHostIdentity(WithResolver(res), WithMaxConcurrentLookups(1))

	// hold the only slot so Acquire has to wait on the cancelled context
	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, h.Equivalent(ctx, "broker-1", "10.0.0.1"))
}

func TestHostIdentitySystemResolver(t *testing.T) {
	addrs, err := net.DefaultResolver.LookupIPAddr(context.Background(), "localhost")
	if err != nil {
		t.Skipf("localhost does not resolve on this host: %v", err)
	}
	loopback := false
	for _, a := range addrs {
		if a.IP.Equal(net.IPv4(127, 0, 0, 1)) {
			loopback = true
		}
	}
	if !loopback {
		t.Skip("localhost does not resolve to 127.0.0.1 on this host")
	}

	h := NewHostIdentity()
	assert.True(t, h.Equivalent(context.Background(), "localhost", "127.0.0.1"))
	assert.False(t, h.Equivalent(context.Background(), "unresolvable.invalid", "127.0.0.1"))
}

func TestHostPairIsOrderIndependent(t *testing.T) {
	assert.Equal(t, newHostPair("a", "b"), newHostPair("b", "a"))
	assert.NotEqual(t, newHostPair("a", "b"), newHostPair("a", "c"))
}

func TestHostIdentityFailureLogCarriesTraceIDs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	res := newFakeResolver(map[string][]string{})
	h := NewHostIdentity(WithResolver(res), WithHostLogger(logger.NewFromZap(zap.New(core), true)))

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "brokers")
	defer span.End()

	assert.False(t, h.Equivalent(ctx, "unresolvable.invalid", "127.0.0.1"))

	entries := logs.FilterMessage("Could not compare hosts").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	assert.Equal(t, "unresolvable.invalid", fields["host_a"])
}
