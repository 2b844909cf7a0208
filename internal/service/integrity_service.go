package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mdsq/internal/cache"
	apperrors "mdsq/internal/errors"
	"mdsq/internal/metrics"
	"mdsq/internal/repository"
)

// IntegrityService deletes directory entities together with every row that
// references them. The store has no cascade rules, so each delete removes
// referencing rows first, inside one transaction.
type IntegrityService interface {
	DeleteMember(ctx context.Context, id uuid.UUID) error
	DeleteTeam(ctx context.Context, id uuid.UUID) error
	DeleteMinistry(ctx context.Context, id uuid.UUID) error
}

type integrityService struct {
	store   repository.Store
	cache   *cache.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewIntegrityService builds an IntegrityService.
func NewIntegrityService(store repository.Store, cache *cache.Client, m *metrics.Metrics, logger *zap.Logger) IntegrityService {
	return &integrityService{store: store, cache: cache, metrics: m, logger: logger}
}

// DeleteMember removes team links, assignments, attendance and label links,
// then the member, then its login if it had one.
func (s *integrityService) DeleteMember(ctx context.Context, id uuid.UUID) error {
	var affected []uuid.UUID

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		member, err := tx.Members().FindByID(ctx, id)
		if err != nil {
			return notFoundAs(err, apperrors.ErrMemberNotFound)
		}
		if affected, err = tx.Assignments().ServiceIDsByMember(ctx, id); err != nil {
			return err
		}

		if err := tx.Teams().DeleteMembersByMember(ctx, id); err != nil {
			return err
		}
		if err := tx.Assignments().DeleteByMember(ctx, id); err != nil {
			return err
		}
		if err := tx.Attendance().DeleteByMember(ctx, id); err != nil {
			return err
		}
		if err := tx.Members().ClearLabels(ctx, id); err != nil {
			return err
		}
		if err := tx.Members().Delete(ctx, id); err != nil {
			return err
		}
		// the login goes last so members.user_id never points at a missing row
		if member.HasLogin() {
			return tx.Users().Delete(ctx, *member.UserID)
		}
		return nil
	})
	if err != nil {
		return storageFailure(s.logger, "delete member", err)
	}

	s.afterCascade(ctx, "member", id, affected)
	return nil
}

// DeleteTeam removes the team's member links and assignments, then the team.
func (s *integrityService) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	var affected []uuid.UUID

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Teams().FindByID(ctx, id); err != nil {
			return notFoundAs(err, apperrors.ErrTeamNotFound)
		}
		var err error
		teamIDs := []uuid.UUID{id}
		if affected, err = tx.Assignments().ServiceIDsByTeams(ctx, teamIDs); err != nil {
			return err
		}
		if err := tx.Teams().DeleteMembersByTeams(ctx, teamIDs); err != nil {
			return err
		}
		if err := tx.Assignments().DeleteByTeams(ctx, teamIDs); err != nil {
			return err
		}
		return tx.Teams().Delete(ctx, id)
	})
	if err != nil {
		return storageFailure(s.logger, "delete team", err)
	}

	s.afterCascade(ctx, "team", id, affected)
	return nil
}

// DeleteMinistry clears every team of the ministry the way DeleteTeam does,
// removes the teams, then the ministry.
func (s *integrityService) DeleteMinistry(ctx context.Context, id uuid.UUID) error {
	var affected []uuid.UUID

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Ministries().FindByID(ctx, id); err != nil {
			return notFoundAs(err, apperrors.ErrMinistryNotFound)
		}
		teamIDs, err := tx.Teams().IDsByMinistry(ctx, id)
		if err != nil {
			return err
		}
		if affected, err = tx.Assignments().ServiceIDsByTeams(ctx, teamIDs); err != nil {
			return err
		}
		if err := tx.Teams().DeleteMembersByTeams(ctx, teamIDs); err != nil {
			return err
		}
		if err := tx.Assignments().DeleteByTeams(ctx, teamIDs); err != nil {
			return err
		}
		if err := tx.Teams().DeleteByIDs(ctx, teamIDs); err != nil {
			return err
		}
		return tx.Ministries().Delete(ctx, id)
	})
	if err != nil {
		return storageFailure(s.logger, "delete ministry", err)
	}

	s.afterCascade(ctx, "ministry", id, affected)
	return nil
}

func (s *integrityService) afterCascade(ctx context.Context, entity string, id uuid.UUID, services []uuid.UUID) {
	s.metrics.CascadeDeletes.WithLabelValues(entity).Inc()
	invalidateMinistryTree(ctx, s.cache)
	invalidateServices(ctx, s.cache, services...)
	s.logger.Info("cascade delete committed",
		zap.String("entity", entity),
		zap.String("id", id.String()),
		zap.Int("services_touched", len(services)))
}
