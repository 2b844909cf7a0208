package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mdsq/internal/model"
)

// MinistryRepository defines ministry persistence operations.
type MinistryRepository interface {
	Create(ctx context.Context, ministry *model.Ministry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ministry, error)
	ListTree(ctx context.Context) ([]model.Ministry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ministryRepository struct {
	db *gorm.DB
}

// NewMinistryRepository creates a new ministry repository.
func NewMinistryRepository(db *gorm.DB) MinistryRepository {
	return &ministryRepository{db: db}
}

func (r *ministryRepository) Create(ctx context.Context, ministry *model.Ministry) error {
	return r.db.WithContext(ctx).Omit("Teams").Create(ministry).Error
}

func (r *ministryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Ministry, error) {
	var ministry model.Ministry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ministry).Error; err != nil {
		return nil, err
	}
	return &ministry, nil
}

// ListTree loads ministries -> teams -> team members -> member, sorted by name.
func (r *ministryRepository) ListTree(ctx context.Context) ([]model.Ministry, error) {
	var ministries []model.Ministry
	err := r.db.WithContext(ctx).
		Preload("Teams", func(db *gorm.DB) *gorm.DB {
			return db.Order("name asc")
		}).
		Preload("Teams.Members").
		Preload("Teams.Members.Member").
		Order("name asc").
		Find(&ministries).Error
	if err != nil {
		return nil, err
	}
	return ministries, nil
}

func (r *ministryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Ministry{}).Error
}
