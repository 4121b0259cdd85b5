package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAddressService is a mock implementation of AddressService
type MockAddressService struct {
	mock.Mock
}

func (m *MockAddressService) Resolve(ctx context.Context, raw string) (*address.Address, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressService) Peek(ctx context.Context, raw string) (*address.Address, bool, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*address.Address), args.Bool(1), args.Error(2)
}

func (m *MockAddressService) Invalidate(ctx context.Context, raw string) error {
	args := m.Called(ctx, raw)
	return args.Error(0)
}

func (m *MockAddressService) Refresh(ctx context.Context, raw string) (*address.Address, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

var seAddress = address.MustNewAddress(address.MustParsePostalCode("01001000"), "Praça da Sé", "Sé", "São Paulo", "SP")

func setupAddressRouter(svc AddressService) *gin.Engine {
	h := NewAddressHandler(svc)
	r := gin.New()
	r.GET("/addresses/:cep", h.Resolve)
	r.GET("/admin/addresses/:cep", h.Peek)
	r.DELETE("/admin/addresses/:cep", h.Invalidate)
	r.POST("/admin/addresses/:cep/refresh", h.Refresh)
	return r
}

func TestAddressHandler_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"resolved", nil, http.StatusOK},
		{"invalid", shared.ErrInvalidPostalCode, http.StatusBadRequest},
		{"not found", shared.ErrPostalCodeNotFound, http.StatusNotFound},
		{"unavailable", shared.ErrLookupUnavailable.Wrap(errors.New("timeout")), http.StatusServiceUnavailable},
		{"storage", shared.ErrStorageFailure, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAddressService)
			if tt.err != nil {
				svc.On("Resolve", mock.Anything, "01001-000").Return(nil, tt.err)
			} else {
				addr := seAddress
				svc.On("Resolve", mock.Anything, "01001-000").Return(&addr, nil)
			}

			w := serve(setupAddressRouter(svc), http.MethodGet, "/addresses/01001-000", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.err != nil {
				var resp ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.False(t, resp.Success)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.err.(*shared.DomainError).Code, resp.Error.Code)
				return
			}
			resp := decodeAs[address.DTO](t, w)
			assert.True(t, resp.Success)
			assert.Equal(t, "01001000", resp.Data.PostalCode)
			assert.Equal(t, "São Paulo", resp.Data.City)
		})
	}
}

func TestAddressHandler_Admin(t *testing.T) {
	t.Run("peek hit", func(t *testing.T) {
		svc := new(MockAddressService)
		addr := seAddress
		svc.On("Peek", mock.Anything, "01001000").Return(&addr, true, nil)

		w := serve(setupAddressRouter(svc), http.MethodGet, "/admin/addresses/01001000", "")

		assert.Equal(t, http.StatusOK, w.Code)
		entry := decodeAs[CacheEntryResponse](t, w).Data
		assert.Equal(t, "01001-000", entry.PostalCode)
		assert.True(t, entry.Cached)
		require.NotNil(t, entry.Address)
		assert.Equal(t, "Praça da Sé", entry.Address.Street)
	})

	t.Run("peek miss", func(t *testing.T) {
		svc := new(MockAddressService)
		svc.On("Peek", mock.Anything, "01001000").Return(nil, false, nil)

		w := serve(setupAddressRouter(svc), http.MethodGet, "/admin/addresses/01001000", "")

		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, false, data["cached"])
		assert.NotContains(t, data, "address")
	})

	t.Run("invalidate", func(t *testing.T) {
		svc := new(MockAddressService)
		svc.On("Invalidate", mock.Anything, "01001000").Return(nil)

		w := serve(setupAddressRouter(svc), http.MethodDelete, "/admin/addresses/01001000", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("refresh", func(t *testing.T) {
		svc := new(MockAddressService)
		addr := seAddress
		svc.On("Refresh", mock.Anything, "01001000").Return(&addr, nil)

		w := serve(setupAddressRouter(svc), http.MethodPost, "/admin/addresses/01001000/refresh", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("refresh of unknown code", func(t *testing.T) {
		svc := new(MockAddressService)
		svc.On("Refresh", mock.Anything, "99999999").Return(nil, shared.ErrPostalCodeNotFound)

		w := serve(setupAddressRouter(svc), http.MethodPost, "/admin/addresses/99999999/refresh", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
