package address

import "context"

// Cache is the persistent PostalCode -> Address store.
// Entries have no implicit expiry; Invalidate is the only removal path.
type Cache interface {
	// Get returns the cached address, or (nil, nil) when the key is absent
	Get(ctx context.Context, code PostalCode) (*Address, error)

	// Put stores addr under code. Storing an identical address is a no-op;
	// a different address overwrites the entry.
	Put(ctx context.Context, code PostalCode, addr Address) error

	// Invalidate removes the entry. Removing an absent key is not an error.
	Invalidate(ctx context.Context, code PostalCode) error
}

// LookupClient resolves a normalized postal code against the remote address service.
//
// Lookup returns the address on success, shared.ErrPostalCodeNotFound when the
// service answered that the code does not exist, and any other error for
// transport failures (timeouts, connection errors, 5xx, malformed bodies).
type LookupClient interface {
	Lookup(ctx context.Context, code PostalCode) (*Address, error)
}
