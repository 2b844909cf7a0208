package service

import (
	"context"

	"go.uber.org/zap"

	"mdsq/internal/model"
	"mdsq/internal/repository"
)

const (
	rescueChurchRole = "Pastor"
	rescueSystemRole = "ADMIN"
)

// SeedService bootstraps the rescue administrator.
type SeedService interface {
	// EnsureAdmin makes email log in with password as an administrator,
	// creating or repairing the user and member as needed. Safe to repeat.
	EnsureAdmin(ctx context.Context, email, password string) (*model.Member, error)
}

type seedService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewSeedService builds a SeedService.
func NewSeedService(store repository.Store, logger *zap.Logger) SeedService {
	return &seedService{store: store, logger: logger}
}

func (s *seedService) EnsureAdmin(ctx context.Context, email, password string) (*model.Member, error) {
	email = normalizeEmail(email)
	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	var member *model.Member
	created := false
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.Users().FindByEmail(ctx, email)
		switch {
		case err == nil:
			if err := tx.Users().UpdatePassword(ctx, user.ID, passwordHash); err != nil {
				return err
			}
		case isNotFound(err):
			user = &model.User{Name: "Super Admin", Email: email, PasswordHash: passwordHash, Role: rescueSystemRole}
			if err := tx.Users().Create(ctx, user); err != nil {
				return err
			}
			created = true
		default:
			return err
		}

		member, err = tx.Members().FindByUserID(ctx, user.ID)
		switch {
		case err == nil:
			member.ChurchRole = rescueChurchRole
			return tx.Members().Update(ctx, member)
		case isNotFound(err):
			member = &model.Member{
				FirstName:  "Super",
				LastName:   "Admin",
				Email:      email,
				ChurchRole: rescueChurchRole,
				UserID:     &user.ID,
			}
			return tx.Members().Create(ctx, member)
		default:
			return err
		}
	})
	if err != nil {
		return nil, storageFailure(s.logger, "ensure admin", err)
	}

	s.logger.Info("rescue admin ready", zap.String("email", email), zap.Bool("created", created))
	return member, nil
}
