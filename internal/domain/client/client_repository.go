package client

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for client persistence.
// Implementations return shared.ErrClientNotFound for missing ids and wrap
// engine errors with shared.WrapStorage.
type Repository interface {
	// FindAll returns every stored client
	FindAll(ctx context.Context) ([]Client, error)

	// FindByID finds a client by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// Create inserts a new client
	Create(ctx context.Context, client *Client) error

	// Update overwrites an existing client. It returns
	// shared.ErrClientNotFound when the client no longer exists.
	Update(ctx context.Context, client *Client) error

	// Delete removes a client. It never touches the referenced address.
	Delete(ctx context.Context, id uuid.UUID) error

	// Exists checks whether a client with the given ID exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
