package handler

import (
	"context"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/interfaces/http/dto"
	"github.com/clientes/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AddressService resolves and manages cached addresses
type AddressService interface {
	Resolve(ctx context.Context, raw string) (*address.Address, error)
	Peek(ctx context.Context, raw string) (*address.Address, bool, error)
	Invalidate(ctx context.Context, raw string) error
	Refresh(ctx context.Context, raw string) (*address.Address, error)
}

// AddressHandler handles address lookup and cache administration endpoints
type AddressHandler struct {
	BaseHandler
	addresses AddressService
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(addresses AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// CacheEntryResponse reports whether a postal code is cached
type CacheEntryResponse struct {
	PostalCode string       `json:"postal_code"`
	Cached     bool         `json:"cached"`
	Address    *address.DTO `json:"address,omitempty"`
}

// Resolve godoc
// @ID           resolveAddress
// @Summary      Resolve a postal code
// @Description  Returns the address for a CEP, from cache or the lookup service
// @Tags         addresses
// @Produce      json
// @Param        cep path string true "Postal code, formatted or digits only"
// @Success      200 {object} APIResponse[address.DTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /addresses/{cep} [get]
func (h *AddressHandler) Resolve(c *gin.Context) {
	cep, ok := h.bindCEP(c)
	if !ok {
		return
	}
	addr, err := h.addresses.Resolve(c.Request.Context(), cep)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addr.ToDTO())
}

// Peek godoc
// @ID           peekAddressCache
// @Summary      Inspect a cache entry
// @Description  Reads the cache only; never calls the lookup service
// @Tags         admin
// @Produce      json
// @Param        cep path string true "Postal code"
// @Success      200 {object} APIResponse[CacheEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/addresses/{cep} [get]
func (h *AddressHandler) Peek(c *gin.Context) {
	cep, ok := h.bindCEP(c)
	if !ok {
		return
	}
	addr, found, err := h.addresses.Peek(c.Request.Context(), cep)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	code, _ := address.ParsePostalCode(cep)
	resp := CacheEntryResponse{PostalCode: code.Formatted(), Cached: found}
	if found {
		d := addr.ToDTO()
		resp.Address = &d
	}
	h.Success(c, resp)
}

// Invalidate godoc
// @ID           invalidateAddress
// @Summary      Drop a cache entry
// @Tags         admin
// @Param        cep path string true "Postal code"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Router       /admin/addresses/{cep} [delete]
func (h *AddressHandler) Invalidate(c *gin.Context) {
	cep, ok := h.bindCEP(c)
	if !ok {
		return
	}
	if err := h.addresses.Invalidate(c.Request.Context(), cep); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Refresh godoc
// @ID           refreshAddress
// @Summary      Refetch a cache entry
// @Description  Drops the cached address and resolves it again from the lookup service
// @Tags         admin
// @Produce      json
// @Param        cep path string true "Postal code"
// @Success      200 {object} APIResponse[address.DTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /admin/addresses/{cep}/refresh [post]
func (h *AddressHandler) Refresh(c *gin.Context) {
	cep, ok := h.bindCEP(c)
	if !ok {
		return
	}
	addr, err := h.addresses.Refresh(c.Request.Context(), cep)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addr.ToDTO())
}

func (h *AddressHandler) bindCEP(c *gin.Context) (string, bool) {
	var req dto.PostalCodeRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return "", false
	}
	return req.CEP, true
}
