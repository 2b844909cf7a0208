package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mdsq/internal/model"
)

// MemberRepository defines member persistence operations.
type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	Update(ctx context.Context, member *model.Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Member, error)
	List(ctx context.Context) ([]model.Member, error)
	ListWithBirthDate(ctx context.Context) ([]model.Member, error)
	ReplaceLabels(ctx context.Context, member *model.Member, labels []model.Label) error
	ClearLabels(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository.
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create inserts the member row only; labels and user are linked separately.
func (r *memberRepository) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Omit("User", "Labels").Create(member).Error
}

// Update saves profile columns without touching associations.
func (r *memberRepository) Update(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Omit("User", "Labels").Save(member).Error
}

// FindByID loads a member with labels and login.
func (r *memberRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).
		Preload("Labels").
		Preload("User").
		Where("id = ?", id).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByUserID returns the member that owns the given login.
func (r *memberRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// List returns every member ordered by last name.
func (r *memberRepository) List(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	if err := r.db.WithContext(ctx).
		Preload("Labels").
		Preload("User").
		Order("last_name asc, first_name asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListWithBirthDate returns members that have a birth date on file.
func (r *memberRepository) ListWithBirthDate(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	if err := r.db.WithContext(ctx).
		Where("birth_date IS NOT NULL").
		Order("last_name asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ReplaceLabels swaps the member's label set for labels.
func (r *memberRepository) ReplaceLabels(ctx context.Context, member *model.Member, labels []model.Label) error {
	return r.db.WithContext(ctx).Model(member).Association("Labels").Replace(labels)
}

// ClearLabels removes every label link of a member.
func (r *memberRepository) ClearLabels(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM "+model.MemberLabelsTable+" WHERE member_id = ?", id).Error
}

func (r *memberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Member{}).Error
}
