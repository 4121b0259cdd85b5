package client

import (
	"time"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/domain/client"
	"github.com/google/uuid"
)

// CreateClientRequest represents a request to create a new client
type CreateClientRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Number     string `json:"number" binding:"max=20"`
	Complement string `json:"complement" binding:"max=100"`
	Email      string `json:"email" binding:"omitempty,email,max=200"`
	Phone      string `json:"phone" binding:"max=50"`
}

// UpdateClientRequest represents a request to update a client.
// Nil fields are left unchanged.
type UpdateClientRequest struct {
	Name       *string `json:"name" binding:"omitempty,max=200"`
	PostalCode *string `json:"postal_code" binding:"omitempty,max=20"`
	Number     *string `json:"number" binding:"omitempty,max=20"`
	Complement *string `json:"complement" binding:"omitempty,max=100"`
	Email      *string `json:"email" binding:"omitempty,max=200"`
	Phone      *string `json:"phone" binding:"omitempty,max=50"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	PostalCode  string       `json:"postal_code"`
	Number      string       `json:"number,omitempty"`
	Complement  string       `json:"complement,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Address     *address.DTO `json:"address"`
	FullAddress string       `json:"full_address,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ToClientResponse converts a domain Client to ClientResponse
func ToClientResponse(c *client.Client) ClientResponse {
	resp := ClientResponse{
		ID:         c.ID,
		Name:       c.Name,
		PostalCode: c.PostalCode.Formatted(),
		Number:     c.Number,
		Complement: c.Complement,
		Email:      c.Email,
		Phone:      c.Phone,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.Address != nil {
		dto := c.Address.ToDTO()
		resp.Address = &dto
		resp.FullAddress = c.Address.String()
	}
	return resp
}

// ToClientResponses converts a slice of clients
func ToClientResponses(clients []client.Client) []ClientResponse {
	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i])
	}
	return responses
}
