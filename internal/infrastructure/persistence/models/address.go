package models

import (
	"time"

	"github.com/clientes/backend/internal/domain/address"
)

// AddressModel is one cached postal code resolution. The postal code is the
// primary key, so there is at most one row per code.
type AddressModel struct {
	PostalCode   string    `gorm:"type:varchar(8);primaryKey"`
	Street       string    `gorm:"type:varchar(300)"`
	Complement   string    `gorm:"type:varchar(200)"`
	Neighborhood string    `gorm:"type:varchar(200)"`
	City         string    `gorm:"type:varchar(200);not null"`
	State        string    `gorm:"type:char(2);not null"`
	IBGECode     string    `gorm:"column:ibge_code;type:varchar(10)"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts the row back to an Address, re-validating it
func (m *AddressModel) ToDomain() (*address.Address, error) {
	pc, err := address.ParsePostalCode(m.PostalCode)
	if err != nil {
		return nil, err
	}
	addr, err := address.NewAddress(pc, m.Street, m.Neighborhood, m.City, m.State,
		address.WithComplement(m.Complement),
		address.WithIBGECode(m.IBGECode),
	)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// AddressModelFromDomain creates a persistence model from an Address
func AddressModelFromDomain(a address.Address) *AddressModel {
	return &AddressModel{
		PostalCode:   a.PostalCode().String(),
		Street:       a.Street(),
		Complement:   a.Complement(),
		Neighborhood: a.Neighborhood(),
		City:         a.City(),
		State:        a.State(),
		IBGECode:     a.IBGECode(),
	}
}
