package address

import (
	"context"
	"errors"
	"time"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/domain/shared"
	"github.com/clientes/backend/internal/infrastructure/logger"
	"github.com/clientes/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultLookupTimeout bounds a single remote lookup
const DefaultLookupTimeout = 5 * time.Second

// Facade resolves postal codes to addresses: cache first, then the remote
// lookup service. Concurrent misses for the same code share one remote call.
type Facade struct {
	cache   address.Cache
	lookup  address.LookupClient
	timeout time.Duration
	metrics *telemetry.AddressMetrics
	flights singleflight.Group
}

// Option configures a Facade
type Option func(*Facade)

// WithLookupTimeout sets the deadline applied to each remote lookup
func WithLookupTimeout(d time.Duration) Option {
	return func(f *Facade) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMetrics records resolutions on m
func WithMetrics(m *telemetry.AddressMetrics) Option {
	return func(f *Facade) {
		f.metrics = m
	}
}

// NewFacade creates a new Facade
func NewFacade(cache address.Cache, lookup address.LookupClient, opts ...Option) *Facade {
	f := &Facade{
		cache:   cache,
		lookup:  lookup,
		timeout: DefaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Resolve returns the address for raw.
//
// Errors: shared.ErrInvalidPostalCode when raw does not normalize,
// shared.ErrPostalCodeNotFound when the service knows no such code,
// shared.ErrLookupUnavailable on timeout or transport failure, and
// shared.ErrStorageFailure when the cache cannot be read or written.
func (f *Facade) Resolve(ctx context.Context, raw string) (*address.Address, error) {
	code, err := address.ParsePostalCode(raw)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "address", "resolve", attribute.String("postal_code", code.String()))
	defer span.End()

	addr, err := f.cached(ctx, code)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if addr != nil {
		f.metrics.RecordResolved(ctx, telemetry.SourceCache)
		return addr, nil
	}

	// The flight runs detached from this caller's cancellation so that one
	// caller going away does not fail the others waiting on it.
	flightCtx := context.WithoutCancel(ctx)
	ch := f.flights.DoChan(code.String(), func() (any, error) {
		return f.fetch(flightCtx, code)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			telemetry.RecordError(span, res.Err)
			return nil, res.Err
		}
		if res.Shared {
			telemetry.AddEvent(ctx, "joined_flight")
		}
		resolved := *res.Val.(*address.Address)
		return &resolved, nil
	case <-ctx.Done():
		err := shared.ErrLookupUnavailable.Wrap(ctx.Err())
		telemetry.RecordError(span, err)
		return nil, err
	}
}

// fetch runs inside the single flight for code
func (f *Facade) fetch(ctx context.Context, code address.PostalCode) (*address.Address, error) {
	log := logger.L(ctx).With(zap.String("postal_code", code.String()))

	// A flight that settled just before this one started may have filled the cache.
	addr, err := f.cached(ctx, code)
	if err != nil {
		return nil, err
	}
	if addr != nil {
		f.metrics.RecordResolved(ctx, telemetry.SourceCache)
		return addr, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	addr, err = f.lookup.Lookup(lookupCtx, code)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, shared.ErrPostalCodeNotFound):
		f.metrics.RecordRemoteLookup(ctx, telemetry.OutcomeNotFound, elapsed)
		log.Info("Postal code not found by lookup service", zap.Duration("latency", elapsed))
		return nil, shared.ErrPostalCodeNotFound
	case err != nil:
		f.metrics.RecordRemoteLookup(ctx, telemetry.OutcomeUnavailable, elapsed)
		log.Warn("Postal code lookup failed", zap.Duration("latency", elapsed), zap.Error(err))
		return nil, shared.ErrLookupUnavailable.Wrap(err)
	case addr == nil:
		f.metrics.RecordRemoteLookup(ctx, telemetry.OutcomeUnavailable, elapsed)
		return nil, shared.ErrLookupUnavailable.Wrap(errors.New("lookup returned no address"))
	}
	f.metrics.RecordRemoteLookup(ctx, telemetry.OutcomeFound, elapsed)

	if err := f.cache.Put(ctx, code, *addr); err != nil {
		f.metrics.RecordCacheError(ctx)
		log.Error("Failed to cache resolved address", zap.Error(err))
		return nil, shared.WrapStorage(err)
	}
	f.metrics.RecordResolved(ctx, telemetry.SourceRemote)
	log.Debug("Postal code resolved remotely", zap.Duration("latency", elapsed))
	return addr, nil
}

func (f *Facade) cached(ctx context.Context, code address.PostalCode) (*address.Address, error) {
	addr, err := f.cache.Get(ctx, code)
	if err != nil {
		f.metrics.RecordCacheError(ctx)
		logger.L(ctx).Error("Address cache read failed", zap.String("postal_code", code.String()), zap.Error(err))
		return nil, shared.WrapStorage(err)
	}
	return addr, nil
}

// Peek returns the cached address for raw without calling the remote
// service. found is false on a cache miss.
func (f *Facade) Peek(ctx context.Context, raw string) (addr *address.Address, found bool, err error) {
	code, err := address.ParsePostalCode(raw)
	if err != nil {
		return nil, false, err
	}
	addr, err = f.cached(ctx, code)
	if err != nil {
		return nil, false, err
	}
	return addr, addr != nil, nil
}

// Invalidate drops the cached entry for raw. The next Resolve goes remote.
func (f *Facade) Invalidate(ctx context.Context, raw string) error {
	code, err := address.ParsePostalCode(raw)
	if err != nil {
		return err
	}
	if err := f.cache.Invalidate(ctx, code); err != nil {
		f.metrics.RecordCacheError(ctx)
		return shared.WrapStorage(err)
	}
	logger.L(ctx).Info("Address cache entry invalidated", zap.String("postal_code", code.String()))
	return nil
}

// Refresh invalidates raw and resolves it again from the remote service.
func (f *Facade) Refresh(ctx context.Context, raw string) (*address.Address, error) {
	if err := f.Invalidate(ctx, raw); err != nil {
		return nil, err
	}
	return f.Resolve(ctx, raw)
}
