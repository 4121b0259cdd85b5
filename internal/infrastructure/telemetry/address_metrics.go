package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Attribute keys used by address metrics
var (
	AttrSource  = attribute.Key("source")
	AttrOutcome = attribute.Key("outcome")
)

// Resolution sources
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
)

// Lookup outcomes
const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

// AddressMetrics records how postal codes get resolved.
type AddressMetrics struct {
	resolutions    *Counter
	remoteLookups  *Counter
	storageErrors  *Counter
	lookupDuration *Histogram
}

// NewAddressMetrics creates the address metric instruments on meter.
func NewAddressMetrics(meter metric.Meter) (*AddressMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	resolutions, err := NewCounter(meter, "address.resolutions", "Successful postal code resolutions by source", "{resolution}")
	if err != nil {
		return nil, err
	}
	remoteLookups, err := NewCounter(meter, "address.remote_lookups", "Calls to the remote postal code service by outcome", "{call}")
	if err != nil {
		return nil, err
	}
	storageErrors, err := NewCounter(meter, "address.cache_errors", "Address cache read or write failures", "{error}")
	if err != nil {
		return nil, err
	}
	lookupDuration, err := NewHistogram(meter, "address.remote_lookup.duration", "Remote postal code lookup latency", "s",
		0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10)
	if err != nil {
		return nil, err
	}

	return &AddressMetrics{
		resolutions:    resolutions,
		remoteLookups:  remoteLookups,
		storageErrors:  storageErrors,
		lookupDuration: lookupDuration,
	}, nil
}

// RecordResolved counts a resolution served from source.
func (m *AddressMetrics) RecordResolved(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.resolutions.Inc(ctx, AttrSource.String(source))
}

// RecordRemoteLookup counts one remote call and its latency.
func (m *AddressMetrics) RecordRemoteLookup(ctx context.Context, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.remoteLookups.Inc(ctx, AttrOutcome.String(outcome))
	m.lookupDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}

// RecordCacheError counts an address cache failure.
func (m *AddressMetrics) RecordCacheError(ctx context.Context) {
	if m == nil {
		return
	}
	m.storageErrors.Inc(ctx)
}
