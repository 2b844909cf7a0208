package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mdsq/internal/model"
)

// AssignmentRepository defines service assignment persistence operations.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.ServiceAssignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceAssignment, error)
	Find(ctx context.Context, serviceID, teamID, memberID uuid.UUID) (*model.ServiceAssignment, error)
	ListByService(ctx context.Context, serviceID uuid.UUID) ([]model.ServiceAssignment, error)
	ServiceIDsByMember(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error)
	ServiceIDsByTeams(ctx context.Context, teamIDs []uuid.UUID) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByService(ctx context.Context, serviceID uuid.UUID) error
	DeleteByMember(ctx context.Context, memberID uuid.UUID) error
	DeleteByTeams(ctx context.Context, teamIDs []uuid.UUID) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *model.ServiceAssignment) error {
	return r.db.WithContext(ctx).Omit("Member", "Team").Create(assignment).Error
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceAssignment, error) {
	var assignment model.ServiceAssignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) Find(ctx context.Context, serviceID, teamID, memberID uuid.UUID) (*model.ServiceAssignment, error) {
	var assignment model.ServiceAssignment
	if err := r.db.WithContext(ctx).
		Where("service_id = ? AND team_id = ? AND member_id = ?", serviceID, teamID, memberID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListByService(ctx context.Context, serviceID uuid.UUID) ([]model.ServiceAssignment, error) {
	var assignments []model.ServiceAssignment
	if err := r.db.WithContext(ctx).
		Preload("Member").
		Where("service_id = ?", serviceID).
		Order("created_at asc").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) ServiceIDsByMember(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.ServiceAssignment{}).
		Where("member_id = ?", memberID).
		Distinct().
		Pluck("service_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *assignmentRepository) ServiceIDsByTeams(ctx context.Context, teamIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(teamIDs) == 0 {
		return ids, nil
	}
	if err := r.db.WithContext(ctx).Model(&model.ServiceAssignment{}).
		Where("team_id IN ?", teamIDs).
		Distinct().
		Pluck("service_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ServiceAssignment{}).Error
}

func (r *assignmentRepository) DeleteByService(ctx context.Context, serviceID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("service_id = ?", serviceID).Delete(&model.ServiceAssignment{}).Error
}

func (r *assignmentRepository) DeleteByMember(ctx context.Context, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("member_id = ?", memberID).Delete(&model.ServiceAssignment{}).Error
}

func (r *assignmentRepository) DeleteByTeams(ctx context.Context, teamIDs []uuid.UUID) error {
	if len(teamIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("team_id IN ?", teamIDs).Delete(&model.ServiceAssignment{}).Error
}
