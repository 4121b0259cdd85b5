package models

import (
	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/domain/client"
)

// ClientModel is the persistence model for the Client entity.
// The address is not embedded; it is joined by postal code through the address cache.
type ClientModel struct {
	BaseModel
	Name       string `gorm:"type:varchar(200);not null"`
	PostalCode string `gorm:"type:varchar(8);not null;index"`
	Number     string `gorm:"type:varchar(20)"`
	Complement string `gorm:"type:varchar(100)"`
	Email      string `gorm:"type:varchar(200)"`
	Phone      string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client
func (m *ClientModel) ToDomain() *client.Client {
	return &client.Client{
		ID:         m.ID,
		Name:       m.Name,
		PostalCode: address.PostalCode(m.PostalCode),
		Number:     m.Number,
		Complement: m.Complement,
		Email:      m.Email,
		Phone:      m.Phone,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Client
func (m *ClientModel) FromDomain(c *client.Client) {
	m.ID = c.ID
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
	m.Name = c.Name
	m.PostalCode = c.PostalCode.String()
	m.Number = c.Number
	m.Complement = c.Complement
	m.Email = c.Email
	m.Phone = c.Phone
}

// ClientModelFromDomain creates a new persistence model from a domain Client
func ClientModelFromDomain(c *client.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}
