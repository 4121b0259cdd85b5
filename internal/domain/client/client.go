package client

import (
	"regexp"
	"strings"
	"time"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Client is a client record. It references its Address by postal code only;
// the Address itself is shared with every other client on the same code and
// is never owned or deleted through a Client.
type Client struct {
	ID         uuid.UUID
	Name       string
	PostalCode address.PostalCode
	Number     string // street number, client-specific
	Complement string // apartment, suite, etc.
	Email      string
	Phone      string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Address is the resolved address for PostalCode. It is attached by the
	// application layer and is not persisted with the client row.
	Address *address.Address
}

// Details holds the optional, client-specific fields
type Details struct {
	Number     string
	Complement string
	Email      string
	Phone      string
}

// NewClient creates a new client with a freshly generated ID.
// IDs come from uuid.New and are therefore never reused.
func NewClient(name string, postalCode address.PostalCode, details Details) (*Client, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if postalCode.IsZero() {
		return nil, shared.InvalidInput("Postal code is required")
	}
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Client{
		ID:         uuid.New(),
		Name:       name,
		PostalCode: postalCode,
		Number:     strings.TrimSpace(details.Number),
		Complement: strings.TrimSpace(details.Complement),
		Email:      strings.ToLower(strings.TrimSpace(details.Email)),
		Phone:      strings.TrimSpace(details.Phone),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Rename updates the client's name
func (c *Client) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	return nil
}

// Relocate points the client at a different postal code and attaches its address
func (c *Client) Relocate(addr address.Address) {
	c.PostalCode = addr.PostalCode()
	c.Address = &addr
	c.UpdatedAt = time.Now()
}

// SetDetails replaces the optional fields
func (c *Client) SetDetails(details Details) error {
	if err := validateDetails(details); err != nil {
		return err
	}
	c.Number = strings.TrimSpace(details.Number)
	c.Complement = strings.TrimSpace(details.Complement)
	c.Email = strings.ToLower(strings.TrimSpace(details.Email))
	c.Phone = strings.TrimSpace(details.Phone)
	c.UpdatedAt = time.Now()
	return nil
}

// Details returns the current optional fields
func (c *Client) Details() Details {
	return Details{
		Number:     c.Number,
		Complement: c.Complement,
		Email:      c.Email,
		Phone:      c.Phone,
	}
}

// AttachAddress sets the resolved address without touching timestamps.
// Used when hydrating a stored client for reads.
func (c *Client) AttachAddress(addr *address.Address) {
	c.Address = addr
}

// Validation functions

func validateName(name string) error {
	if name == "" {
		return shared.InvalidInput("Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.InvalidInput("Client name cannot exceed 200 characters")
	}
	return nil
}

func validateDetails(d Details) error {
	if len(d.Number) > 20 {
		return shared.InvalidInput("Number cannot exceed 20 characters")
	}
	if len(d.Complement) > 100 {
		return shared.InvalidInput("Complement cannot exceed 100 characters")
	}
	if phone := strings.TrimSpace(d.Phone); phone != "" {
		if len(phone) > 50 || !phonePattern.MatchString(phone) {
			return shared.InvalidInput("Invalid phone number format")
		}
	}
	if email := strings.TrimSpace(d.Email); email != "" {
		if len(email) > 200 || !emailPattern.MatchString(email) {
			return shared.InvalidInput("Invalid email format")
		}
	}
	return nil
}
