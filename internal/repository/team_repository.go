package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mdsq/internal/model"
)

// TeamRepository defines persistence for teams and their member links.
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	IDsByMinistry(ctx context.Context, ministryID uuid.UUID) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error

	AddMember(ctx context.Context, link *model.TeamMember) error
	FindMemberLink(ctx context.Context, id uuid.UUID) (*model.TeamMember, error)
	FindMembership(ctx context.Context, teamID, memberID uuid.UUID) (*model.TeamMember, error)
	DeleteMemberLink(ctx context.Context, id uuid.UUID) error
	DeleteMembersByTeams(ctx context.Context, teamIDs []uuid.UUID) error
	DeleteMembersByMember(ctx context.Context, memberID uuid.UUID) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Omit("Members").Create(team).Error
}

func (r *teamRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) IDsByMinistry(ctx context.Context, ministryID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.Team{}).
		Where("ministry_id = ?", ministryID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *teamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Team{}).Error
}

func (r *teamRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Team{}).Error
}

func (r *teamRepository) AddMember(ctx context.Context, link *model.TeamMember) error {
	return r.db.WithContext(ctx).Omit("Member").Create(link).Error
}

func (r *teamRepository) FindMemberLink(ctx context.Context, id uuid.UUID) (*model.TeamMember, error) {
	var link model.TeamMember
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *teamRepository) FindMembership(ctx context.Context, teamID, memberID uuid.UUID) (*model.TeamMember, error) {
	var link model.TeamMember
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND member_id = ?", teamID, memberID).
		First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *teamRepository) DeleteMemberLink(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.TeamMember{}).Error
}

func (r *teamRepository) DeleteMembersByTeams(ctx context.Context, teamIDs []uuid.UUID) error {
	if len(teamIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("team_id IN ?", teamIDs).Delete(&model.TeamMember{}).Error
}

func (r *teamRepository) DeleteMembersByMember(ctx context.Context, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("member_id = ?", memberID).Delete(&model.TeamMember{}).Error
}
