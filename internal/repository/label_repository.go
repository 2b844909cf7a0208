package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mdsq/internal/model"
)

// LabelRepository defines label persistence operations.
type LabelRepository interface {
	Create(ctx context.Context, label *model.Label) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Label, error)
	FindByName(ctx context.Context, name string) (*model.Label, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Label, error)
	List(ctx context.Context) ([]model.Label, error)
	ClearMembers(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type labelRepository struct {
	db *gorm.DB
}

// NewLabelRepository creates a new label repository.
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &labelRepository{db: db}
}

func (r *labelRepository) Create(ctx context.Context, label *model.Label) error {
	return r.db.WithContext(ctx).Create(label).Error
}

func (r *labelRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Label, error) {
	var label model.Label
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

func (r *labelRepository) FindByName(ctx context.Context, name string) (*model.Label, error) {
	var label model.Label
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

func (r *labelRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Label, error) {
	var labels []model.Label
	if len(ids) == 0 {
		return labels, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *labelRepository) List(ctx context.Context) ([]model.Label, error) {
	var labels []model.Label
	if err := r.db.WithContext(ctx).Order("name asc").Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

// ClearMembers detaches the label from every member.
func (r *labelRepository) ClearMembers(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM "+model.MemberLabelsTable+" WHERE label_id = ?", id).Error
}

func (r *labelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Label{}).Error
}
