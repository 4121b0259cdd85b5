package client

import (
	"context"
	"errors"
	"testing"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/domain/client"
	"github.com/clientes/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mocks
// =============================================================================

// MockClientRepository is a mock implementation of client.Repository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindAll(ctx context.Context) ([]client.Client, error) {
	args := m.Called(ctx)
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) Create(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) Update(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockResolver is a mock implementation of AddressResolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, raw string) (*address.Address, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockResolver) Peek(ctx context.Context, raw string) (*address.Address, bool, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*address.Address), args.Bool(1), args.Error(2)
}

var (
	seCode    = address.MustParsePostalCode("01001000")
	seAddress = address.MustNewAddress(seCode, "Praça da Sé", "Sé", "São Paulo", "SP")
	rjCode    = address.MustParsePostalCode("20040020")
	rjAddress = address.MustNewAddress(rjCode, "Praça Pio X", "Centro", "Rio de Janeiro", "RJ")
)

func addrPtr(a address.Address) *address.Address {
	return &a
}

func strPtr(s string) *string {
	return &s
}

func newStoredClient(t *testing.T, name string, code address.PostalCode) *client.Client {
	t.Helper()
	c, err := client.NewClient(name, code, client.Details{})
	require.NoError(t, err)
	return c
}

// =============================================================================
// Create
// =============================================================================

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves and saves", func(t *testing.T) {
		repo := new(MockClientRepository)
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "01001000").Return(addrPtr(seAddress), nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*client.Client")).Return(nil)

		svc := NewService(repo, resolver)
		resp, err := svc.Create(ctx, CreateClientRequest{Name: "Ana", PostalCode: "01001-000", Email: "ana@example.com"})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, resp.ID)
		assert.Equal(t, "Ana", resp.Name)
		assert.Equal(t, "01001-000", resp.PostalCode)
		require.NotNil(t, resp.Address)
		assert.Equal(t, "Praça da Sé", resp.Address.Street)
		repo.AssertExpectations(t)
	})

	tests := []struct {
		name       string
		req        CreateClientRequest
		resolveErr error
		wantErr    error
		resolves   bool
	}{
		{name: "empty name", req: CreateClientRequest{Name: "  ", PostalCode: "01001000"}, wantErr: shared.ErrInvalidClientInput},
		{name: "missing postal code", req: CreateClientRequest{Name: "Ana"}, wantErr: shared.ErrInvalidClientInput},
		{name: "malformed postal code", req: CreateClientRequest{Name: "Ana", PostalCode: "0100-100"}, wantErr: shared.ErrInvalidClientInput},
		{name: "bad email", req: CreateClientRequest{Name: "Ana", PostalCode: "01001000", Email: "nope"}, wantErr: shared.ErrInvalidClientInput},
		{
			name:       "postal code not found",
			req:        CreateClientRequest{Name: "Ana", PostalCode: "00000-000"},
			resolveErr: shared.ErrPostalCodeNotFound,
			wantErr:    shared.ErrInvalidClientInput,
			resolves:   true,
		},
		{
			name:       "lookup unavailable",
			req:        CreateClientRequest{Name: "Ana", PostalCode: "01001000"},
			resolveErr: shared.ErrLookupUnavailable.Wrap(context.DeadlineExceeded),
			wantErr:    shared.ErrDependencyUnavailable,
			resolves:   true,
		},
		{
			name:       "cache storage failure passes through",
			req:        CreateClientRequest{Name: "Ana", PostalCode: "01001000"},
			resolveErr: shared.WrapStorage(errors.New("disk full")),
			wantErr:    shared.ErrStorageFailure,
			resolves:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockClientRepository)
			resolver := new(MockResolver)
			if tt.resolves {
				resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, tt.resolveErr)
			}

			svc := NewService(repo, resolver)
			resp, err := svc.Create(ctx, tt.req)

			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			if !tt.resolves {
				resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
			}
		})
	}

	t.Run("lookup unavailable keeps cause", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "01001000").Return(nil, shared.ErrLookupUnavailable.Wrap(context.DeadlineExceeded))

		_, err := NewService(new(MockClientRepository), resolver).Create(ctx, CreateClientRequest{Name: "Ana", PostalCode: "01001000"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, errors.Is(err, shared.ErrInvalidClientInput))
	})
}

// =============================================================================
// Update
// =============================================================================

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("name only does not re-resolve the postal code", func(t *testing.T) {
		stored := newStoredClient(t, "Ana", seCode)
		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)
		repo.On("Update", mock.Anything, stored).Return(nil)
		resolver := new(MockResolver)
		resolver.On("Peek", mock.Anything, "01001000").Return(addrPtr(seAddress), true, nil)

		svc := NewService(repo, resolver)
		resp, err := svc.Update(ctx, stored.ID, UpdateClientRequest{Name: strPtr("Ana Maria"), PostalCode: strPtr("01001-000")})

		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", resp.Name)
		assert.Equal(t, "01001-000", resp.PostalCode)
		require.NotNil(t, resp.Address)
		assert.Equal(t, "Praça da Sé", resp.Address.Street)
		resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("name only with a cold cache returns no address", func(t *testing.T) {
		stored := newStoredClient(t, "Ana", seCode)
		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)
		repo.On("Update", mock.Anything, stored).Return(nil)
		resolver := new(MockResolver)
		resolver.On("Peek", mock.Anything, "01001000").Return(nil, false, nil)

		resp, err := NewService(repo, resolver).Update(ctx, stored.ID, UpdateClientRequest{Name: strPtr("Ana Clara")})

		require.NoError(t, err)
		assert.Equal(t, "Ana Clara", resp.Name)
		assert.Nil(t, resp.Address)
		resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("client deleted while resolving is not stored again", func(t *testing.T) {
		stored := newStoredClient(t, "Ana", seCode)
		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)
		repo.On("Update", mock.Anything, stored).Return(shared.ErrClientNotFound)
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "20040020").Return(addrPtr(rjAddress), nil)

		resp, err := NewService(repo, resolver).Update(ctx, stored.ID, UpdateClientRequest{PostalCode: strPtr("20040-020")})

		assert.Nil(t, resp)
		assert.True(t, errors.Is(err, shared.ErrClientNotFound))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("changed postal code relocates", func(t *testing.T) {
		stored := newStoredClient(t, "Ana", seCode)
		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)
		repo.On("Update", mock.Anything, stored).Return(nil)
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "20040020").Return(addrPtr(rjAddress), nil)

		resp, err := NewService(repo, resolver).Update(ctx, stored.ID, UpdateClientRequest{PostalCode: strPtr("20040-020")})

		require.NoError(t, err)
		assert.Equal(t, "20040-020", resp.PostalCode)
		require.NotNil(t, resp.Address)
		assert.Equal(t, "Rio de Janeiro", resp.Address.City)
		resolver.AssertNotCalled(t, "Resolve", mock.Anything, "01001000")
	})

	t.Run("unresolvable postal code leaves record unchanged", func(t *testing.T) {
		stored := newStoredClient(t, "Ana", seCode)
		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "00000000").Return(nil, shared.ErrPostalCodeNotFound)

		_, err := NewService(repo, resolver).Update(ctx, stored.ID, UpdateClientRequest{PostalCode: strPtr("00000-000")})

		assert.True(t, errors.Is(err, shared.ErrInvalidClientInput))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("lookup unavailable", func(t *testing.T) {
		stored := newStoredClient(t, "Ana", seCode)
		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "20040020").Return(nil, shared.ErrLookupUnavailable)

		_, err := NewService(repo, resolver).Update(ctx, stored.ID, UpdateClientRequest{PostalCode: strPtr("20040020")})

		assert.True(t, errors.Is(err, shared.ErrDependencyUnavailable))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing client", func(t *testing.T) {
		id := uuid.New()
		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrClientNotFound)

		_, err := NewService(repo, new(MockResolver)).Update(ctx, id, UpdateClientRequest{Name: strPtr("x")})
		assert.True(t, errors.Is(err, shared.ErrClientNotFound))
	})

	t.Run("invalid details", func(t *testing.T) {
		stored := newStoredClient(t, "Ana", seCode)
		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)

		_, err := NewService(repo, new(MockResolver)).Update(ctx, stored.ID, UpdateClientRequest{Phone: strPtr("call me")})
		assert.True(t, errors.Is(err, shared.ErrInvalidClientInput))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

// =============================================================================
// Reads and delete
// =============================================================================

func TestService_List(t *testing.T) {
	a := newStoredClient(t, "Ana", seCode)
	b := newStoredClient(t, "Bruno", seCode)
	c := newStoredClient(t, "Carla", rjCode)

	repo := new(MockClientRepository)
	repo.On("FindAll", mock.Anything).Return([]client.Client{*a, *b, *c}, nil)
	resolver := new(MockResolver)
	resolver.On("Resolve", mock.Anything, "01001000").Return(addrPtr(seAddress), nil)
	resolver.On("Resolve", mock.Anything, "20040020").Return(nil, shared.ErrLookupUnavailable)

	resp, err := NewService(repo, resolver).List(context.Background())

	require.NoError(t, err)
	require.Len(t, resp, 3)
	assert.Equal(t, "Praça da Sé", resp[0].Address.Street)
	assert.Equal(t, "Praça da Sé", resp[1].Address.Street)
	assert.Nil(t, resp[2].Address, "unresolvable address degrades to null")
	// one resolution per distinct postal code
	resolver.AssertNumberOfCalls(t, "Resolve", 2)
}

func TestService_GetByID(t *testing.T) {
	stored := newStoredClient(t, "Ana", seCode)
	repo := new(MockClientRepository)
	repo.On("FindByID", mock.Anything, stored.ID).Return(stored, nil)
	missing := uuid.New()
	repo.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrClientNotFound)
	resolver := new(MockResolver)
	resolver.On("Resolve", mock.Anything, "01001000").Return(addrPtr(seAddress), nil)

	svc := NewService(repo, resolver)

	resp, err := svc.GetByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, resp.ID)
	assert.Equal(t, "Praça da Sé, Sé, São Paulo - SP, 01001-000", resp.FullAddress)

	_, err = svc.GetByID(context.Background(), missing)
	assert.True(t, errors.Is(err, shared.ErrClientNotFound))
}

func TestService_Delete(t *testing.T) {
	id := uuid.New()
	repo := new(MockClientRepository)
	repo.On("Delete", mock.Anything, id).Return(nil).Once()
	repo.On("Delete", mock.Anything, id).Return(shared.ErrClientNotFound).Once()

	svc := NewService(repo, new(MockResolver))

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.True(t, errors.Is(svc.Delete(context.Background(), id), shared.ErrClientNotFound))
}
