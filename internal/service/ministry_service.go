package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mdsq/internal/cache"
	apperrors "mdsq/internal/errors"
	"mdsq/internal/model"
	"mdsq/internal/repository"
)

// MinistryService manages ministries, teams and team membership.
type MinistryService interface {
	CreateMinistry(ctx context.Context, name string) (*model.Ministry, error)
	ListMinistries(ctx context.Context) ([]model.Ministry, error)
	CreateTeam(ctx context.Context, ministryID uuid.UUID, name string) (*model.Team, error)
	AddTeamMember(ctx context.Context, teamID, memberID uuid.UUID) (*model.TeamMember, error)
	RemoveTeamMember(ctx context.Context, teamMemberID uuid.UUID) error
}

type ministryService struct {
	store  repository.Store
	cache  *cache.Client
	logger *zap.Logger
}

// NewMinistryService builds a MinistryService.
func NewMinistryService(store repository.Store, cache *cache.Client, logger *zap.Logger) MinistryService {
	return &ministryService{store: store, cache: cache, logger: logger}
}

func (s *ministryService) CreateMinistry(ctx context.Context, name string) (*model.Ministry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("MISSING_NAME", "ministry name is required")
	}
	ministry := &model.Ministry{Name: name, Teams: []model.Team{}}
	if err := s.store.Ministries().Create(ctx, ministry); err != nil {
		return nil, storageFailure(s.logger, "create ministry", err)
	}
	invalidateMinistryTree(ctx, s.cache)
	return ministry, nil
}

// ListMinistries returns the ministry tree down to team members.
func (s *ministryService) ListMinistries(ctx context.Context) ([]model.Ministry, error) {
	var cached []model.Ministry
	if s.cache.GetJSON(ctx, ministryTreeKey, &cached) {
		return cached, nil
	}

	ministries, err := s.store.Ministries().ListTree(ctx)
	if err != nil {
		return nil, apperrors.FromStorage("list ministries", err)
	}
	_ = s.cache.SetJSON(ctx, ministryTreeKey, ministries, ministryCacheTTL)
	return ministries, nil
}

func (s *ministryService) CreateTeam(ctx context.Context, ministryID uuid.UUID, name string) (*model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("MISSING_NAME", "team name is required")
	}
	team := &model.Team{MinistryID: ministryID, Name: name, Members: []model.TeamMember{}}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Ministries().FindByID(ctx, ministryID); err != nil {
			return notFoundAs(err, apperrors.ErrMinistryNotFound)
		}
		return tx.Teams().Create(ctx, team)
	})
	if err != nil {
		return nil, storageFailure(s.logger, "create team", err)
	}
	invalidateMinistryTree(ctx, s.cache)
	return team, nil
}

// AddTeamMember links a member to a team once.
func (s *ministryService) AddTeamMember(ctx context.Context, teamID, memberID uuid.UUID) (*model.TeamMember, error) {
	link := &model.TeamMember{TeamID: teamID, MemberID: memberID}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Teams().FindByID(ctx, teamID); err != nil {
			return notFoundAs(err, apperrors.ErrTeamNotFound)
		}
		member, err := tx.Members().FindByID(ctx, memberID)
		if err != nil {
			return notFoundAs(err, apperrors.ErrMemberNotFound)
		}
		if _, err := tx.Teams().FindMembership(ctx, teamID, memberID); err == nil {
			return apperrors.ErrAlreadyInTeam
		} else if !isNotFound(err) {
			return err
		}
		if err := tx.Teams().AddMember(ctx, link); err != nil {
			return duplicateAs(err, apperrors.ErrAlreadyInTeam)
		}
		link.Member = member
		return nil
	})
	if err != nil {
		return nil, storageFailure(s.logger, "add team member", err)
	}

	invalidateMinistryTree(ctx, s.cache)
	s.logger.Info("member added to team",
		zap.String("team_id", teamID.String()),
		zap.String("member_id", memberID.String()))
	return link, nil
}

func (s *ministryService) RemoveTeamMember(ctx context.Context, teamMemberID uuid.UUID) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Teams().FindMemberLink(ctx, teamMemberID); err != nil {
			return notFoundAs(err, apperrors.ErrTeamMemberNotFound)
		}
		return tx.Teams().DeleteMemberLink(ctx, teamMemberID)
	})
	if err != nil {
		return storageFailure(s.logger, "remove team member", err)
	}
	invalidateMinistryTree(ctx, s.cache)
	return nil
}
