package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mdsq/internal/cache"
	apperrors "mdsq/internal/errors"
	"mdsq/internal/model"
	"mdsq/internal/repository"
)

// MemberInput carries the editable member profile.
type MemberInput struct {
	FirstName  string
	LastName   string
	Phone      string
	Email      string
	Address    string
	City       string
	BirthDate  *time.Time
	Photo      string
	ChurchRole string
	// Password creates a login when the member has none, or resets it.
	Password string
	// LabelIDs replaces the label set when SetLabels is true.
	LabelIDs  []uuid.UUID
	SetLabels bool
}

// MemberService exposes the people side of the directory.
type MemberService interface {
	CreateMember(ctx context.Context, input MemberInput) (*model.Member, error)
	UpdateMember(ctx context.Context, id uuid.UUID, input MemberInput) (*model.Member, error)
	GetMember(ctx context.Context, id uuid.UUID) (*model.Member, error)
	ListMembers(ctx context.Context) ([]model.Member, error)
	ListBirthdays(ctx context.Context, month time.Month, day int) ([]model.Member, error)
	// SetAccess changes only the church role and label set.
	SetAccess(ctx context.Context, id uuid.UUID, churchRole string, labelIDs []uuid.UUID) (*model.Member, error)
}

type memberService struct {
	store  repository.Store
	cache  *cache.Client
	logger *zap.Logger
}

// NewMemberService builds a MemberService.
func NewMemberService(store repository.Store, cache *cache.Client, logger *zap.Logger) MemberService {
	return &memberService{store: store, cache: cache, logger: logger}
}

func (in *MemberInput) normalize() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
	in.ChurchRole = strings.TrimSpace(in.ChurchRole)
	if in.FirstName == "" || in.LastName == "" {
		return apperrors.Validation("MISSING_NAME", "first and last name are required")
	}
	if in.Password != "" && in.Email == "" {
		return apperrors.Validation("MISSING_EMAIL", "an email is required to create a login")
	}
	if in.ChurchRole == "" {
		in.ChurchRole = model.DefaultChurchRole
	}
	return nil
}

func (in *MemberInput) apply(m *model.Member) {
	m.FirstName = in.FirstName
	m.LastName = in.LastName
	m.Phone = strings.TrimSpace(in.Phone)
	m.Email = in.Email
	m.Address = strings.TrimSpace(in.Address)
	m.City = strings.TrimSpace(in.City)
	m.BirthDate = in.BirthDate
	m.Photo = in.Photo
	m.ChurchRole = in.ChurchRole
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// ensureEmailFree fails with ErrDuplicateEmail when another user owns email.
func ensureEmailFree(ctx context.Context, tx repository.Store, email string, owner *uuid.UUID) error {
	existing, err := tx.Users().FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if owner != nil && existing.ID == *owner {
		return nil
	}
	return apperrors.ErrDuplicateEmail
}

func resolveLabels(ctx context.Context, tx repository.Store, ids []uuid.UUID) ([]model.Label, error) {
	if len(ids) == 0 {
		return []model.Label{}, nil
	}
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	labels, err := tx.Labels().FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(unique) {
		return nil, apperrors.ErrLabelNotFound
	}
	return labels, nil
}

// CreateMember stores a member and, when a password is given, its login.
// Both rows commit together or not at all.
func (s *memberService) CreateMember(ctx context.Context, input MemberInput) (*model.Member, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	var passwordHash string
	if input.Password != "" {
		hashed, err := hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = hashed
	}

	member := &model.Member{}
	input.apply(member)

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if passwordHash != "" {
			if err := ensureEmailFree(ctx, tx, input.Email, nil); err != nil {
				return err
			}
			user := &model.User{
				Name:         member.FullName(),
				Email:        input.Email,
				PasswordHash: passwordHash,
				Role:         model.DefaultSystemRole,
			}
			if err := tx.Users().Create(ctx, user); err != nil {
				return duplicateAs(err, apperrors.ErrDuplicateEmail)
			}
			member.UserID = &user.ID
		}

		if err := tx.Members().Create(ctx, member); err != nil {
			return err
		}

		if len(input.LabelIDs) > 0 {
			labels, err := resolveLabels(ctx, tx, input.LabelIDs)
			if err != nil {
				return err
			}
			if err := tx.Members().ReplaceLabels(ctx, member, labels); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageFailure(s.logger, "create member", err)
	}

	s.logger.Info("member created",
		zap.String("member_id", member.ID.String()),
		zap.Bool("with_login", member.HasLogin()))
	return s.GetMember(ctx, member.ID)
}

// UpdateMember rewrites the profile. A login email follows the member email.
func (s *memberService) UpdateMember(ctx context.Context, id uuid.UUID, input MemberInput) (*model.Member, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	var passwordHash string
	if input.Password != "" {
		hashed, err := hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = hashed
	}

	var staleKeys []string
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		member, err := tx.Members().FindByID(ctx, id)
		if err != nil {
			return notFoundAs(err, apperrors.ErrMemberNotFound)
		}
		if staleKeys, err = memberCacheKeys(ctx, tx, id); err != nil {
			return err
		}
		input.apply(member)

		switch {
		case member.HasLogin():
			if input.Email == "" {
				return apperrors.Validation("MISSING_EMAIL", "a member with a login needs an email")
			}
			if member.User == nil || member.User.Email != input.Email {
				if err := ensureEmailFree(ctx, tx, input.Email, member.UserID); err != nil {
					return err
				}
				if err := tx.Users().UpdateEmail(ctx, *member.UserID, input.Email); err != nil {
					return duplicateAs(err, apperrors.ErrDuplicateEmail)
				}
			}
			if passwordHash != "" {
				if err := tx.Users().UpdatePassword(ctx, *member.UserID, passwordHash); err != nil {
					return err
				}
			}
		case passwordHash != "":
			if err := ensureEmailFree(ctx, tx, input.Email, nil); err != nil {
				return err
			}
			user := &model.User{
				Name:         member.FullName(),
				Email:        input.Email,
				PasswordHash: passwordHash,
				Role:         model.DefaultSystemRole,
			}
			if err := tx.Users().Create(ctx, user); err != nil {
				return duplicateAs(err, apperrors.ErrDuplicateEmail)
			}
			member.UserID = &user.ID
		}

		if err := tx.Members().Update(ctx, member); err != nil {
			return err
		}

		if input.SetLabels {
			labels, err := resolveLabels(ctx, tx, input.LabelIDs)
			if err != nil {
				return err
			}
			if err := tx.Members().ReplaceLabels(ctx, member, labels); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageFailure(s.logger, "update member", err)
	}

	// names appear in the ministry tree and in assigned service details
	_ = s.cache.Delete(ctx, staleKeys...)
	s.logger.Info("member updated", zap.String("member_id", id.String()))
	return s.GetMember(ctx, id)
}

func (s *memberService) SetAccess(ctx context.Context, id uuid.UUID, churchRole string, labelIDs []uuid.UUID) (*model.Member, error) {
	churchRole = strings.TrimSpace(churchRole)
	if churchRole == "" {
		churchRole = model.DefaultChurchRole
	}

	var staleKeys []string
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		member, err := tx.Members().FindByID(ctx, id)
		if err != nil {
			return notFoundAs(err, apperrors.ErrMemberNotFound)
		}
		if staleKeys, err = memberCacheKeys(ctx, tx, id); err != nil {
			return err
		}
		labels, err := resolveLabels(ctx, tx, labelIDs)
		if err != nil {
			return err
		}
		member.ChurchRole = churchRole
		if err := tx.Members().Update(ctx, member); err != nil {
			return err
		}
		return tx.Members().ReplaceLabels(ctx, member, labels)
	})
	if err != nil {
		return nil, storageFailure(s.logger, "set member access", err)
	}

	_ = s.cache.Delete(ctx, staleKeys...)

	s.logger.Info("member access updated", zap.String("member_id", id.String()), zap.String("church_role", churchRole))
	return s.GetMember(ctx, id)
}

func (s *memberService) GetMember(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	member, err := s.store.Members().FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStorage("get member", notFoundAs(err, apperrors.ErrMemberNotFound))
	}
	return member, nil
}

func (s *memberService) ListMembers(ctx context.Context) ([]model.Member, error) {
	members, err := s.store.Members().List(ctx)
	if err != nil {
		return nil, apperrors.FromStorage("list members", err)
	}
	return members, nil
}

// ListBirthdays returns members born on the given month and day of any year.
func (s *memberService) ListBirthdays(ctx context.Context, month time.Month, day int) ([]model.Member, error) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return nil, apperrors.Validation("INVALID_DATE", "month must be 1-12 and day 1-31")
	}

	candidates, err := s.store.Members().ListWithBirthDate(ctx)
	if err != nil {
		return nil, apperrors.FromStorage("list birthdays", err)
	}

	members := make([]model.Member, 0)
	for i := range candidates {
		if candidates[i].BornOn(month, day) {
			members = append(members, candidates[i])
		}
	}
	return members, nil
}
