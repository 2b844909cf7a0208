package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mdsq/internal/cache"
	apperrors "mdsq/internal/errors"
	"mdsq/internal/metrics"
	"mdsq/internal/model"
	"mdsq/internal/repository"
)

// RosterEntry is one scheduled member of a team.
type RosterEntry struct {
	AssignmentID uuid.UUID    `json:"assignment_id"`
	Member       model.Member `json:"member"`
}

// RosterTeam lists who serves for a team on a service and who else on the
// team could still be scheduled.
type RosterTeam struct {
	TeamID       uuid.UUID      `json:"team_id"`
	TeamName     string         `json:"team_name"`
	MinistryID   uuid.UUID      `json:"ministry_id"`
	MinistryName string         `json:"ministry_name"`
	Assigned     []RosterEntry  `json:"assigned"`
	Available    []model.Member `json:"available"`
}

// AssignmentService schedules members on services on behalf of teams.
type AssignmentService interface {
	Assign(ctx context.Context, role string, serviceID, teamID, memberID uuid.UUID) (*model.ServiceAssignment, error)
	Unassign(ctx context.Context, role string, assignmentID uuid.UUID) error
	Roster(ctx context.Context, serviceID uuid.UUID) ([]RosterTeam, error)
}

type assignmentService struct {
	store   repository.Store
	cache   *cache.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAssignmentService builds an AssignmentService.
func NewAssignmentService(store repository.Store, cache *cache.Client, m *metrics.Metrics, logger *zap.Logger) AssignmentService {
	return &assignmentService{store: store, cache: cache, metrics: m, logger: logger}
}

// Assign records (service, team, member) once. A repeat is ErrAlreadyAssigned.
func (s *assignmentService) Assign(ctx context.Context, role string, serviceID, teamID, memberID uuid.UUID) (*model.ServiceAssignment, error) {
	if err := authorize(s.metrics, s.logger, role, "assign"); err != nil {
		return nil, err
	}

	assignment := &model.ServiceAssignment{ServiceID: serviceID, TeamID: teamID, MemberID: memberID}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Services().FindByID(ctx, serviceID); err != nil {
			return notFoundAs(err, apperrors.ErrServiceNotFound)
		}
		team, err := tx.Teams().FindByID(ctx, teamID)
		if err != nil {
			return notFoundAs(err, apperrors.ErrTeamNotFound)
		}
		member, err := tx.Members().FindByID(ctx, memberID)
		if err != nil {
			return notFoundAs(err, apperrors.ErrMemberNotFound)
		}

		if _, err := tx.Assignments().Find(ctx, serviceID, teamID, memberID); err == nil {
			return apperrors.ErrAlreadyAssigned
		} else if !isNotFound(err) {
			return err
		}
		if err := tx.Assignments().Create(ctx, assignment); err != nil {
			// a concurrent insert loses on idx_service_team_member
			return duplicateAs(err, apperrors.ErrAlreadyAssigned)
		}
		assignment.Team = team
		assignment.Member = member
		return nil
	})
	if err != nil {
		return nil, storageFailure(s.logger, "assign", err)
	}

	invalidateServices(ctx, s.cache, serviceID)
	s.logger.Info("member assigned",
		zap.String("service_id", serviceID.String()),
		zap.String("team_id", teamID.String()),
		zap.String("member_id", memberID.String()))
	return assignment, nil
}

func (s *assignmentService) Unassign(ctx context.Context, role string, assignmentID uuid.UUID) error {
	if err := authorize(s.metrics, s.logger, role, "unassign"); err != nil {
		return err
	}

	var serviceID uuid.UUID
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		assignment, err := tx.Assignments().FindByID(ctx, assignmentID)
		if err != nil {
			return notFoundAs(err, apperrors.ErrAssignmentNotFound)
		}
		serviceID = assignment.ServiceID
		return tx.Assignments().Delete(ctx, assignmentID)
	})
	if err != nil {
		return storageFailure(s.logger, "unassign", err)
	}

	invalidateServices(ctx, s.cache, serviceID)
	return nil
}

// Roster builds, for every team in the directory, the members assigned to
// the service and the team members not yet assigned. There is no capacity
// limit, so Available is simply the rest of the team.
func (s *assignmentService) Roster(ctx context.Context, serviceID uuid.UUID) ([]RosterTeam, error) {
	if _, err := s.store.Services().FindByID(ctx, serviceID); err != nil {
		return nil, apperrors.FromStorage("roster", notFoundAs(err, apperrors.ErrServiceNotFound))
	}
	assignments, err := s.store.Assignments().ListByService(ctx, serviceID)
	if err != nil {
		return nil, apperrors.FromStorage("roster", err)
	}
	ministries, err := s.store.Ministries().ListTree(ctx)
	if err != nil {
		return nil, apperrors.FromStorage("roster", err)
	}

	byTeam := make(map[uuid.UUID][]model.ServiceAssignment)
	for _, a := range assignments {
		byTeam[a.TeamID] = append(byTeam[a.TeamID], a)
	}

	roster := make([]RosterTeam, 0)
	for _, ministry := range ministries {
		for _, team := range ministry.Teams {
			entry := RosterTeam{
				TeamID:       team.ID,
				TeamName:     team.Name,
				MinistryID:   ministry.ID,
				MinistryName: ministry.Name,
				Assigned:     []RosterEntry{},
				Available:    []model.Member{},
			}
			scheduled := make(map[uuid.UUID]bool)
			for _, a := range byTeam[team.ID] {
				scheduled[a.MemberID] = true
				if a.Member != nil {
					entry.Assigned = append(entry.Assigned, RosterEntry{AssignmentID: a.ID, Member: *a.Member})
				}
			}
			for _, link := range team.Members {
				if link.Member != nil && !scheduled[link.MemberID] {
					entry.Available = append(entry.Available, *link.Member)
				}
			}
			roster = append(roster, entry)
		}
	}
	return roster, nil
}
