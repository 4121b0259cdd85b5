package address

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/domain/shared"
	"github.com/clientes/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// =============================================================================
// Test doubles
// =============================================================================

// MockLookupClient is a mock implementation of address.LookupClient
type MockLookupClient struct {
	mock.Mock
}

func (m *MockLookupClient) Lookup(ctx context.Context, code address.PostalCode) (*address.Address, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

// memoryCache is a map-backed address.Cache with injectable failures
type memoryCache struct {
	mu      sync.Mutex
	entries map[address.PostalCode]address.Address
	puts    int
	getErr  error
	putErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[address.PostalCode]address.Address)}
}

func (c *memoryCache) Get(_ context.Context, code address.PostalCode) (*address.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	addr, ok := c.entries[code]
	if !ok {
		return nil, nil
	}
	return &addr, nil
}

func (c *memoryCache) Put(_ context.Context, code address.PostalCode, addr address.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.puts++
	c.entries[code] = addr
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, code address.PostalCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, code)
	return nil
}

func (c *memoryCache) has(code address.PostalCode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[code]
	return ok
}

var (
	seCode    = address.MustParsePostalCode("01001000")
	seAddress = address.MustNewAddress(seCode, "Praça da Sé", "Sé", "São Paulo", "SP",
		address.WithComplement("lado ímpar"), address.WithIBGECode("3550308"))
)

func lookupReturns(m *MockLookupClient, code address.PostalCode, addr address.Address) *mock.Call {
	return m.On("Lookup", mock.Anything, code).Return(&addr, nil)
}

// =============================================================================
// Resolve
// =============================================================================

func TestFacade_Resolve_CacheHit(t *testing.T) {
	cache := newMemoryCache()
	cache.entries[seCode] = seAddress
	lookup := new(MockLookupClient)

	f := NewFacade(cache, lookup)
	addr, err := f.Resolve(context.Background(), "01001-000")

	require.NoError(t, err)
	assert.True(t, seAddress.Equals(*addr))
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestFacade_Resolve_MissThenCached(t *testing.T) {
	cache := newMemoryCache()
	lookup := new(MockLookupClient)
	lookupReturns(lookup, seCode, seAddress)

	f := NewFacade(cache, lookup)

	addr, err := f.Resolve(context.Background(), "01001000")
	require.NoError(t, err)
	assert.Equal(t, "Praça da Sé", addr.Street())
	assert.True(t, cache.has(seCode))

	addr, err = f.Resolve(context.Background(), "01001000")
	require.NoError(t, err)
	assert.Equal(t, "São Paulo", addr.City())

	lookup.AssertNumberOfCalls(t, "Lookup", 1)
}

func TestFacade_Resolve_FormattingVariantsShareEntry(t *testing.T) {
	cache := newMemoryCache()
	lookup := new(MockLookupClient)
	lookupReturns(lookup, seCode, seAddress)

	f := NewFacade(cache, lookup)
	for _, raw := range []string{"01001-000", "01001000", " 01.001-000 "} {
		addr, err := f.Resolve(context.Background(), raw)
		require.NoError(t, err, raw)
		assert.True(t, seAddress.Equals(*addr), raw)
	}

	lookup.AssertNumberOfCalls(t, "Lookup", 1)
	assert.Equal(t, 1, cache.puts)
}

func TestFacade_Resolve_InvalidPostalCode(t *testing.T) {
	lookup := new(MockLookupClient)
	f := NewFacade(newMemoryCache(), lookup)

	for _, raw := range []string{"", "abc", "0100100", "010010000", "01001-00A"} {
		addr, err := f.Resolve(context.Background(), raw)
		assert.Nil(t, addr)
		assert.True(t, errors.Is(err, shared.ErrInvalidPostalCode), raw)
	}
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestFacade_Resolve_NotFoundIsNotCached(t *testing.T) {
	code := address.MustParsePostalCode("00000000")
	cache := newMemoryCache()
	lookup := new(MockLookupClient)
	lookup.On("Lookup", mock.Anything, code).Return(nil, shared.ErrPostalCodeNotFound)

	f := NewFacade(cache, lookup)
	for range 2 {
		_, err := f.Resolve(context.Background(), "00000-000")
		assert.True(t, errors.Is(err, shared.ErrPostalCodeNotFound))
		assert.False(t, errors.Is(err, shared.ErrLookupUnavailable))
	}

	assert.False(t, cache.has(code))
	lookup.AssertNumberOfCalls(t, "Lookup", 2)
}

func TestFacade_Resolve_TransportFailure(t *testing.T) {
	cause := errors.New("connection refused")
	lookup := new(MockLookupClient)
	lookup.On("Lookup", mock.Anything, seCode).Return(nil, cause)
	cache := newMemoryCache()

	f := NewFacade(cache, lookup)
	_, err := f.Resolve(context.Background(), "01001000")

	assert.True(t, errors.Is(err, shared.ErrLookupUnavailable))
	assert.False(t, errors.Is(err, shared.ErrPostalCodeNotFound))
	assert.ErrorIs(t, err, cause)
	assert.False(t, cache.has(seCode))
}

func TestFacade_Resolve_Timeout(t *testing.T) {
	lookup := new(MockLookupClient)
	lookup.On("Lookup", mock.Anything, seCode).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	f := NewFacade(newMemoryCache(), lookup, WithLookupTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := f.Resolve(context.Background(), "01001000")

	assert.True(t, errors.Is(err, shared.ErrLookupUnavailable))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFacade_Resolve_CacheReadFailure(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("disk I/O error")
	lookup := new(MockLookupClient)

	f := NewFacade(cache, lookup)
	_, err := f.Resolve(context.Background(), "01001000")

	assert.True(t, errors.Is(err, shared.ErrStorageFailure))
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestFacade_Resolve_CacheWriteFailure(t *testing.T) {
	cache := newMemoryCache()
	cache.putErr = errors.New("read-only database")
	lookup := new(MockLookupClient)
	lookupReturns(lookup, seCode, seAddress)

	f := NewFacade(cache, lookup)
	_, err := f.Resolve(context.Background(), "01001000")

	assert.True(t, errors.Is(err, shared.ErrStorageFailure))
}

func TestFacade_Resolve_ConcurrentCallersShareOneLookup(t *testing.T) {
	cache := newMemoryCache()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	lookup := new(MockLookupClient)
	lookupReturns(lookup, seCode, seAddress).Run(func(mock.Arguments) {
		once.Do(func() { close(entered) })
		<-release
	})

	f := NewFacade(cache, lookup)

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*address.Address, callers)
	errs := make([]error, callers)
	raws := []string{"01001-000", "01001000", " 01.001-000 "}
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.Resolve(context.Background(), raws[i%len(raws)])
		}(i)
	}

	<-entered
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.True(t, seAddress.Equals(*results[i]))
	}
	lookup.AssertNumberOfCalls(t, "Lookup", 1)
	assert.Equal(t, 1, cache.puts)
}

func TestFacade_Resolve_CallerCancellationDoesNotFailWaiters(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var lookupCtxErr error

	lookup := new(MockLookupClient)
	lookupReturns(lookup, seCode, seAddress).Run(func(args mock.Arguments) {
		close(entered)
		<-release
		lookupCtxErr = args.Get(0).(context.Context).Err()
	})

	f := NewFacade(newMemoryCache(), lookup)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.Resolve(firstCtx, "01001000")
		firstErr <- err
	}()
	<-entered

	secondDone := make(chan *address.Address, 1)
	go func() {
		addr, err := f.Resolve(context.Background(), "01001000")
		assert.NoError(t, err)
		secondDone <- addr
	}()

	cancel()
	err := <-firstErr
	assert.True(t, errors.Is(err, shared.ErrLookupUnavailable))
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	addr := <-secondDone
	require.NotNil(t, addr)
	assert.True(t, seAddress.Equals(*addr))
	assert.NoError(t, lookupCtxErr)
	lookup.AssertNumberOfCalls(t, "Lookup", 1)
}

// =============================================================================
// Administrative operations
// =============================================================================

func TestFacade_Invalidate(t *testing.T) {
	cache := newMemoryCache()
	cache.entries[seCode] = seAddress
	f := NewFacade(cache, new(MockLookupClient))

	require.NoError(t, f.Invalidate(context.Background(), "01001-000"))
	assert.False(t, cache.has(seCode))

	// absent key
	require.NoError(t, f.Invalidate(context.Background(), "01001-000"))

	assert.True(t, errors.Is(f.Invalidate(context.Background(), "x"), shared.ErrInvalidPostalCode))
}

func TestFacade_Refresh(t *testing.T) {
	stale := address.MustNewAddress(seCode, "Praça da Sé (antigo)", "Sé", "São Paulo", "SP")
	cache := newMemoryCache()
	cache.entries[seCode] = stale
	lookup := new(MockLookupClient)
	lookupReturns(lookup, seCode, seAddress)

	f := NewFacade(cache, lookup)
	addr, err := f.Refresh(context.Background(), "01001000")

	require.NoError(t, err)
	assert.Equal(t, "Praça da Sé", addr.Street())
	lookup.AssertNumberOfCalls(t, "Lookup", 1)

	cached, found, err := f.Peek(context.Background(), "01001000")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, seAddress.Equals(*cached))
}

func TestFacade_Peek(t *testing.T) {
	lookup := new(MockLookupClient)
	f := NewFacade(newMemoryCache(), lookup)

	addr, found, err := f.Peek(context.Background(), "01001000")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, addr)
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)

	_, _, err = f.Peek(context.Background(), "nope")
	assert.True(t, errors.Is(err, shared.ErrInvalidPostalCode))
}

func TestFacade_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	metrics, err := telemetry.NewAddressMetrics(provider.Meter("test"))
	require.NoError(t, err)

	lookup := new(MockLookupClient)
	lookupReturns(lookup, seCode, seAddress)
	f := NewFacade(newMemoryCache(), lookup, WithMetrics(metrics))

	for range 3 {
		_, err := f.Resolve(context.Background(), "01001000")
		require.NoError(t, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	bySource := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "address.resolutions" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				src, _ := dp.Attributes.Value(telemetry.AttrSource)
				bySource[src.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), bySource[telemetry.SourceRemote])
	assert.Equal(t, int64(2), bySource[telemetry.SourceCache])
}
