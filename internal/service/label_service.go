package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "mdsq/internal/errors"
	"mdsq/internal/model"
	"mdsq/internal/repository"
)

// LabelService manages member tags.
type LabelService interface {
	CreateLabel(ctx context.Context, name, color string) (*model.Label, error)
	ListLabels(ctx context.Context) ([]model.Label, error)
	DeleteLabel(ctx context.Context, id uuid.UUID) error
}

type labelService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewLabelService builds a LabelService.
func NewLabelService(store repository.Store, logger *zap.Logger) LabelService {
	return &labelService{store: store, logger: logger}
}

func (s *labelService) CreateLabel(ctx context.Context, name, color string) (*model.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("MISSING_NAME", "label name is required")
	}
	label := &model.Label{Name: name, Color: strings.TrimSpace(color)}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Labels().FindByName(ctx, name); err == nil {
			return apperrors.ErrDuplicateLabel
		} else if !isNotFound(err) {
			return err
		}
		return duplicateAs(tx.Labels().Create(ctx, label), apperrors.ErrDuplicateLabel)
	})
	if err != nil {
		return nil, storageFailure(s.logger, "create label", err)
	}
	return label, nil
}

func (s *labelService) ListLabels(ctx context.Context) ([]model.Label, error) {
	labels, err := s.store.Labels().List(ctx)
	if err != nil {
		return nil, apperrors.FromStorage("list labels", err)
	}
	return labels, nil
}

// DeleteLabel detaches the label from every member before removing it.
func (s *labelService) DeleteLabel(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Labels().FindByID(ctx, id); err != nil {
			return notFoundAs(err, apperrors.ErrLabelNotFound)
		}
		if err := tx.Labels().ClearMembers(ctx, id); err != nil {
			return err
		}
		return tx.Labels().Delete(ctx, id)
	})
	if err != nil {
		return storageFailure(s.logger, "delete label", err)
	}
	s.logger.Info("label deleted", zap.String("label_id", id.String()))
	return nil
}
