package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/domain/shared"
	"github.com/clientes/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAddressCache implements address.Cache on the addresses table.
// Rows never expire; Invalidate is the only way an entry goes away.
type GormAddressCache struct {
	db *gorm.DB
}

// NewGormAddressCache creates a new GormAddressCache
func NewGormAddressCache(db *gorm.DB) *GormAddressCache {
	return &GormAddressCache{db: db}
}

// Get returns the cached address or (nil, nil) when the code is unknown
func (c *GormAddressCache) Get(ctx context.Context, code address.PostalCode) (*address.Address, error) {
	var model models.AddressModel
	err := c.db.WithContext(ctx).First(&model, "postal_code = ?", code.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, shared.WrapStorage(err)
	}
	addr, err := model.ToDomain()
	if err != nil {
		return nil, shared.WrapStorage(fmt.Errorf("corrupt address row %s: %w", code, err))
	}
	return addr, nil
}

// addressChanged limits the upsert to rows whose content actually differs
var addressChanged = clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "addresses.street <> excluded.street" +
	" OR addresses.complement <> excluded.complement" +
	" OR addresses.neighborhood <> excluded.neighborhood" +
	" OR addresses.city <> excluded.city" +
	" OR addresses.state <> excluded.state" +
	" OR addresses.ibge_code <> excluded.ibge_code"}}}

// Put upserts the address keyed by code. Storing an identical address is a
// no-op: the conflicting row is only rewritten when a column differs.
func (c *GormAddressCache) Put(ctx context.Context, code address.PostalCode, addr address.Address) error {
	if addr.PostalCode() != code {
		return shared.WrapStorage(fmt.Errorf("address for %s cannot be stored under %s", addr.PostalCode(), code))
	}
	model := models.AddressModelFromDomain(addr)
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "postal_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"street", "complement", "neighborhood", "city", "state", "ibge_code", "updated_at",
		}),
		Where: addressChanged,
	}).Create(model).Error
	return shared.WrapStorage(err)
}

// Invalidate deletes the row for code. Deleting a missing row is not an error.
func (c *GormAddressCache) Invalidate(ctx context.Context, code address.PostalCode) error {
	err := c.db.WithContext(ctx).Delete(&models.AddressModel{}, "postal_code = ?", code.String()).Error
	return shared.WrapStorage(err)
}

// Count returns the number of cached addresses
func (c *GormAddressCache) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.WithContext(ctx).Model(&models.AddressModel{}).Count(&n).Error; err != nil {
		return 0, shared.WrapStorage(err)
	}
	return n, nil
}

var _ address.Cache = (*GormAddressCache)(nil)
