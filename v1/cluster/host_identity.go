package cluster

import (
	"context"
	"net"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultMaxConcurrentLookups bounds in-flight name resolutions.
	DefaultMaxConcurrentLookups = 10

	// DefaultHostCacheTTL is how long a comparison result is reused.
	DefaultHostCacheTTL = 30 * time.Second

	// DefaultHostCacheSize is the number of host pairs kept in the cache.
	DefaultHostCacheSize = 1024

	// DefaultLookupTimeout caps a single name resolution.
	DefaultLookupTimeout = 5 * time.Second
)

// HostComparer decides whether two host strings name the same machine.
type HostComparer interface {
	Equivalent(ctx context.Context, hostA, hostB string) bool
}

// IPResolver is the subset of *net.Resolver used by HostIdentity.
type IPResolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// HostIdentity compares hosts by their resolved address, so "broker-1" and
// "10.0.0.7" are equal when the name resolves to that address.
//
// Comparisons are best effort: a resolution failure yields false and is
// logged, never returned. Lookups block on the network, are bounded by a
// semaphore and results are cached per host pair for a short time.
type HostIdentity struct {
	resolver IPResolver
	sem      *semaphore.Weighted
	cache    *expirable.LRU[hostPair, bool]
	timeout  time.Duration
	logger   Logger
	failures prometheus.Counter
}

type hostPair struct {
	a, b string
}

func newHostPair(a, b string) hostPair {
	if b < a {
		a, b = b, a
	}
	return hostPair{a: a, b: b}
}

type hostIdentityOptions struct {
	resolver      IPResolver
	maxConcurrent int64
	cacheSize     int
	cacheTTL      time.Duration
	timeout       time.Duration
	logger        Logger
	failures      prometheus.Counter
}

// HostIdentityOption customizes NewHostIdentity.
type HostIdentityOption func(*hostIdentityOptions)

// WithResolver replaces net.DefaultResolver.
func WithResolver(r IPResolver) HostIdentityOption {
	return func(o *hostIdentityOptions) { o.resolver = r }
}

// WithMaxConcurrentLookups sets the size of the lookup pool.
func WithMaxConcurrentLookups(n int64) HostIdentityOption {
	return func(o *hostIdentityOptions) { o.maxConcurrent = n }
}

// WithHostCache sets the result cache size and time-to-live. A zero TTL
// disables caching.
func WithHostCache(size int, ttl time.Duration) HostIdentityOption {
	return func(o *hostIdentityOptions) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}

// WithLookupTimeout caps a single name resolution.
func WithLookupTimeout(d time.Duration) HostIdentityOption {
	return func(o *hostIdentityOptions) { o.timeout = d }
}

// WithHostLogger sets the logger that receives resolution failures.
func WithHostLogger(l Logger) HostIdentityOption {
	return func(o *hostIdentityOptions) { o.logger = l }
}

// WithResolutionFailures counts resolution failures.
func WithResolutionFailures(c prometheus.Counter) HostIdentityOption {
	return func(o *hostIdentityOptions) { o.failures = c }
}

// NewHostIdentity creates a HostIdentity.
func NewHostIdentity(opts ...HostIdentityOption) *HostIdentity {
	o := hostIdentityOptions{
		resolver:      net.DefaultResolver,
		maxConcurrent: DefaultMaxConcurrentLookups,
		cacheSize:     DefaultHostCacheSize,
		cacheTTL:      DefaultHostCacheTTL,
		timeout:       DefaultLookupTimeout,
		logger:        nopLogger{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxConcurrent <= 0 {
		o.maxConcurrent = DefaultMaxConcurrentLookups
	}
	if o.logger == nil {
		o.logger = nopLogger{}
	}

	h := &HostIdentity{
		resolver: o.resolver,
		sem:      semaphore.NewWeighted(o.maxConcurrent),
		timeout:  o.timeout,
		logger:   o.logger,
		failures: o.failures,
	}
	if o.cacheTTL > 0 && o.cacheSize > 0 {
		h.cache = expirable.NewLRU[hostPair, bool](o.cacheSize, nil, o.cacheTTL)
	}
	return h
}

// Equivalent reports whether both hosts resolve to the same address.
func (h *HostIdentity) Equivalent(ctx context.Context, hostA, hostB string) bool {
	key := newHostPair(hostA, hostB)
	if h.cache != nil {
		if eq, ok := h.cache.Get(key); ok {
			return eq
		}
	}

	addrA, err := h.resolve(ctx, hostA)
	if err == nil {
		var addrB net.IP
		addrB, err = h.resolve(ctx, hostB)
		if err == nil {
			eq := addrA.Equal(addrB)
			if h.cache != nil {
				h.cache.Add(key, eq)
			}
			return eq
		}
	}

	if h.failures != nil {
		h.failures.Inc()
	}
	h.logger.WarnWithContext(ctx, "Could not compare hosts", err, map[string]interface{}{
		"host_a": hostA,
		"host_b": hostB,
	})
	// fail closed; failures are not cached so the next call retries
	return false
}

// resolve returns the canonical address of host. Literal IPs are used as is;
// names take the first IPv4 address, falling back to the first address.
func (h *HostIdentity) resolve(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	addrs, err := h.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, &net.DNSError{Err: "no addresses found", Name: host, IsNotFound: true}
	}
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			return v4, nil
		}
	}
	return addrs[0].IP, nil
}
