package address

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Address is a value object holding the resolved data for one postal code.
// It is immutable and identified solely by its postal code.
// Street and neighborhood may be empty: single-CEP towns resolve to city level only.
type Address struct {
	postalCode   PostalCode
	street       string
	complement   string
	neighborhood string
	city         string
	state        string
	ibgeCode     string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithComplement sets the complement (e.g. "lado ímpar")
func WithComplement(complement string) AddressOption {
	return func(a *Address) {
		a.complement = clean(complement)
	}
}

// WithIBGECode sets the IBGE municipality code
func WithIBGECode(code string) AddressOption {
	return func(a *Address) {
		a.ibgeCode = strings.TrimSpace(code)
	}
}

// NewAddress creates a new Address. City and state are required.
func NewAddress(postalCode PostalCode, street, neighborhood, city, state string, opts ...AddressOption) (Address, error) {
	if postalCode.IsZero() {
		return Address{}, fmt.Errorf("postal code cannot be empty")
	}

	addr := Address{
		postalCode:   postalCode,
		street:       clean(street),
		neighborhood: clean(neighborhood),
		city:         clean(city),
		state:        strings.ToUpper(strings.TrimSpace(state)),
	}
	for _, opt := range opts {
		opt(&addr)
	}

	if addr.city == "" {
		return Address{}, fmt.Errorf("city cannot be empty")
	}
	if err := validateState(addr.state); err != nil {
		return Address{}, err
	}
	if len(addr.street) > 300 {
		return Address{}, fmt.Errorf("street cannot exceed 300 characters")
	}
	return addr, nil
}

// MustNewAddress creates a new Address, panics on error
func MustNewAddress(postalCode PostalCode, street, neighborhood, city, state string, opts ...AddressOption) Address {
	addr, err := NewAddress(postalCode, street, neighborhood, city, state, opts...)
	if err != nil {
		panic(err)
	}
	return addr
}

// PostalCode returns the postal code
func (a Address) PostalCode() PostalCode {
	return a.postalCode
}

// Street returns the street (logradouro)
func (a Address) Street() string {
	return a.street
}

// Complement returns the complement
func (a Address) Complement() string {
	return a.complement
}

// Neighborhood returns the neighborhood (bairro)
func (a Address) Neighborhood() string {
	return a.neighborhood
}

// City returns the city (localidade)
func (a Address) City() string {
	return a.city
}

// State returns the two-letter state code (UF)
func (a Address) State() string {
	return a.state
}

// IBGECode returns the IBGE municipality code
func (a Address) IBGECode() string {
	return a.ibgeCode
}

// IsEmpty returns true for the zero Address
func (a Address) IsEmpty() bool {
	return a.postalCode.IsZero()
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a.postalCode == other.postalCode &&
		a.street == other.street &&
		a.complement == other.complement &&
		a.neighborhood == other.neighborhood &&
		a.city == other.city &&
		a.state == other.state &&
		a.ibgeCode == other.ibgeCode
}

// String returns "street, neighborhood, city - UF, 00000-000" skipping empty parts
func (a Address) String() string {
	if a.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, 4)
	if a.street != "" {
		parts = append(parts, a.street)
	}
	if a.neighborhood != "" {
		parts = append(parts, a.neighborhood)
	}
	parts = append(parts, a.city+" - "+a.state)
	parts = append(parts, a.postalCode.Formatted())
	return strings.Join(parts, ", ")
}

// DTO is the flat, serializable form of an Address
type DTO struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	IBGECode     string `json:"ibge_code,omitempty"`
}

// ToDTO converts Address to DTO
func (a Address) ToDTO() DTO {
	return DTO{
		PostalCode:   a.postalCode.String(),
		Street:       a.street,
		Complement:   a.complement,
		Neighborhood: a.neighborhood,
		City:         a.city,
		State:        a.state,
		IBGECode:     a.ibgeCode,
	}
}

// ToAddress converts DTO back to Address, re-applying validation
func (d DTO) ToAddress() (Address, error) {
	pc, err := ParsePostalCode(d.PostalCode)
	if err != nil {
		return Address{}, err
	}
	return NewAddress(pc, d.Street, d.Neighborhood, d.City, d.State,
		WithComplement(d.Complement), WithIBGECode(d.IBGECode))
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToDTO())
}

// UnmarshalJSON implements json.Unmarshaler.
// It goes through DTO.ToAddress so decoded values obey the same rules as NewAddress.
func (a *Address) UnmarshalJSON(data []byte) error {
	var d DTO
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	addr, err := d.ToAddress()
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func validateState(state string) error {
	if len(state) != 2 {
		return fmt.Errorf("state must be a two-letter code, got %q", state)
	}
	for _, r := range state {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("state must be a two-letter code, got %q", state)
		}
	}
	return nil
}
