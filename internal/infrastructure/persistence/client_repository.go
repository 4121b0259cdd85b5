package persistence

import (
	"context"
	"errors"

	"github.com/clientes/backend/internal/domain/client"
	"github.com/clientes/backend/internal/domain/shared"
	"github.com/clientes/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements client.Repository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindAll returns every client, oldest first
func (r *GormClientRepository) FindAll(ctx context.Context) ([]client.Client, error) {
	var rows []models.ClientModel
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, shared.WrapStorage(err)
	}
	clients := make([]client.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, nil
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrClientNotFound
		}
		return nil, shared.WrapStorage(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a new client row
func (r *GormClientRepository) Create(ctx context.Context, c *client.Client) error {
	model := models.ClientModelFromDomain(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return shared.WrapStorage(err)
	}
	return nil
}

// Update overwrites an existing client row. It never inserts, so a client
// deleted in the meantime yields ErrClientNotFound.
func (r *GormClientRepository) Update(ctx context.Context, c *client.Client) error {
	model := models.ClientModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Where("id = ?", c.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return shared.WrapStorage(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrClientNotFound
	}
	return nil
}

// Delete removes a client row. Addresses are left untouched.
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ClientModel{}, "id = ?", id)
	if result.Error != nil {
		return shared.WrapStorage(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrClientNotFound
	}
	return nil
}

// Exists checks if a client exists by ID
func (r *GormClientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, shared.WrapStorage(err)
	}
	return count > 0, nil
}

// Ensure GormClientRepository implements client.Repository
var _ client.Repository = (*GormClientRepository)(nil)
