package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mdsq/internal/auth"
	"mdsq/internal/cache"
	apperrors "mdsq/internal/errors"
	"mdsq/internal/metrics"
	"mdsq/internal/model"
	"mdsq/internal/repository"
)

var serviceDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseServiceDate reads a service timestamp. Zone-less values are local time.
func ParseServiceDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperrors.Validation("MISSING_DATE", "service date is required")
	}
	for _, layout := range serviceDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Validation("INVALID_DATE", fmt.Sprintf("unrecognized service date %q", raw))
}

// PlanItemInput is one submitted itinerary row.
type PlanItemInput struct {
	Type        string
	Title       string
	Description string
	Duration    model.RawDuration
}

// PlanInput is a service header plus its complete itinerary.
type PlanInput struct {
	Name   string
	Date   time.Time
	Type   string
	Leader string
	Items  []PlanItemInput
}

// PlanItemView is an itinerary row with its projected start.
type PlanItemView struct {
	model.ServicePlanItem
	StartsAt time.Time `json:"starts_at"`
}

// ServiceDetail is a service with derived timing. Items shadows the embedded
// model items in JSON.
type ServiceDetail struct {
	model.Service
	TotalDuration int            `json:"total_duration"`
	Items         []PlanItemView `json:"items"`
}

// NewServiceDetail derives totals and projected starts from ordered items.
func NewServiceDetail(svc model.Service) ServiceDetail {
	starts := model.ProjectedStarts(svc.Date, svc.Items)
	views := make([]PlanItemView, len(svc.Items))
	for i, item := range svc.Items {
		views[i] = PlanItemView{ServicePlanItem: item, StartsAt: starts[i]}
	}
	detail := ServiceDetail{
		Service:       svc,
		TotalDuration: model.TotalDuration(svc.Items),
		Items:         views,
	}
	detail.Service.Items = nil
	return detail
}

// PlanService owns services and their itineraries.
type PlanService interface {
	CreateService(ctx context.Context, role string, input PlanInput) (*ServiceDetail, error)
	ListServices(ctx context.Context) ([]ServiceDetail, error)
	GetService(ctx context.Context, id uuid.UUID) (*ServiceDetail, error)
	ReplaceServicePlan(ctx context.Context, role string, id uuid.UUID, input PlanInput) (*ServiceDetail, error)
	DeleteService(ctx context.Context, role string, id uuid.UUID) error
}

type planService struct {
	store   repository.Store
	cache   *cache.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPlanService builds a PlanService.
func NewPlanService(store repository.Store, cache *cache.Client, m *metrics.Metrics, logger *zap.Logger) PlanService {
	return &planService{store: store, cache: cache, metrics: m, logger: logger}
}

// authorize runs the role gate before any scheduling write.
func authorize(m *metrics.Metrics, logger *zap.Logger, role, operation string) error {
	if auth.CanManageServices(role) {
		return nil
	}
	m.PermissionDenied.WithLabelValues(operation).Inc()
	logger.Warn("permission denied",
		zap.String("operation", operation),
		zap.String("role_class", string(auth.Classify(role))))
	return apperrors.ErrPermissionDenied
}

// validate normalizes the header and builds items with order set to the
// position in the submitted list.
func (in *PlanInput) validate() ([]model.ServicePlanItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.Leader = strings.TrimSpace(in.Leader)
	if in.Name == "" {
		return nil, apperrors.Validation("MISSING_NAME", "service name is required")
	}
	if in.Date.IsZero() {
		return nil, apperrors.Validation("MISSING_DATE", "service date is required")
	}
	if in.Type == "" {
		in.Type = model.DefaultServiceType
	}

	items := make([]model.ServicePlanItem, len(in.Items))
	for i, raw := range in.Items {
		title := strings.TrimSpace(raw.Title)
		if title == "" {
			return nil, apperrors.Validation("MISSING_TITLE", fmt.Sprintf("item %d has no title", i))
		}
		items[i] = model.ServicePlanItem{
			Type:        model.ParseItemType(raw.Type),
			Title:       title,
			Description: raw.Description,
			Duration:    raw.Duration.Minutes(),
			Order:       i,
		}
	}
	return items, nil
}

func (s *planService) CreateService(ctx context.Context, role string, input PlanInput) (*ServiceDetail, error) {
	if err := authorize(s.metrics, s.logger, role, "create_service"); err != nil {
		return nil, err
	}
	items, err := input.validate()
	if err != nil {
		return nil, err
	}

	svc := &model.Service{Name: input.Name, Type: input.Type, Leader: input.Leader, Date: input.Date}
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Services().Create(ctx, svc); err != nil {
			return err
		}
		for i := range items {
			items[i].ServiceID = svc.ID
		}
		return tx.Services().CreateItems(ctx, items)
	})
	if err != nil {
		return nil, storageFailure(s.logger, "create service", err)
	}

	s.logger.Info("service created", zap.String("service_id", svc.ID.String()), zap.Int("items", len(items)))
	return s.GetService(ctx, svc.ID)
}

// ListServices returns services newest first with their itineraries.
func (s *planService) ListServices(ctx context.Context) ([]ServiceDetail, error) {
	services, err := s.store.Services().List(ctx)
	if err != nil {
		return nil, apperrors.FromStorage("list services", err)
	}
	details := make([]ServiceDetail, len(services))
	for i := range services {
		details[i] = NewServiceDetail(services[i])
	}
	return details, nil
}

func (s *planService) GetService(ctx context.Context, id uuid.UUID) (*ServiceDetail, error) {
	var cached ServiceDetail
	if s.cache.GetJSON(ctx, serviceCacheKey(id), &cached) {
		return &cached, nil
	}

	svc, err := s.store.Services().FindDetail(ctx, id)
	if err != nil {
		return nil, apperrors.FromStorage("get service", notFoundAs(err, apperrors.ErrServiceNotFound))
	}
	detail := NewServiceDetail(*svc)
	_ = s.cache.SetJSON(ctx, serviceCacheKey(id), detail, serviceCacheTTL)
	return &detail, nil
}

// ReplaceServicePlan rewrites the header and swaps the whole itinerary for
// the submitted list. Concurrent replacements are last-writer-wins.
func (s *planService) ReplaceServicePlan(ctx context.Context, role string, id uuid.UUID, input PlanInput) (*ServiceDetail, error) {
	if err := authorize(s.metrics, s.logger, role, "replace_plan"); err != nil {
		return nil, err
	}
	items, err := input.validate()
	if err != nil {
		return nil, err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		svc, err := tx.Services().FindByID(ctx, id)
		if err != nil {
			return notFoundAs(err, apperrors.ErrServiceNotFound)
		}
		svc.Name, svc.Type, svc.Leader, svc.Date = input.Name, input.Type, input.Leader, input.Date
		if err := tx.Services().UpdateHeader(ctx, svc); err != nil {
			return err
		}
		if err := tx.Services().DeleteItems(ctx, id); err != nil {
			return err
		}
		for i := range items {
			items[i].ServiceID = id
		}
		return tx.Services().CreateItems(ctx, items)
	})
	if err != nil {
		return nil, storageFailure(s.logger, "replace service plan", err)
	}

	invalidateServices(ctx, s.cache, id)
	s.metrics.PlanReplacements.Inc()
	s.logger.Info("service plan replaced", zap.String("service_id", id.String()), zap.Int("items", len(items)))
	return s.GetService(ctx, id)
}

// DeleteService removes assignments and items, then the service.
func (s *planService) DeleteService(ctx context.Context, role string, id uuid.UUID) error {
	if err := authorize(s.metrics, s.logger, role, "delete_service"); err != nil {
		return err
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Services().FindByID(ctx, id); err != nil {
			return notFoundAs(err, apperrors.ErrServiceNotFound)
		}
		if err := tx.Assignments().DeleteByService(ctx, id); err != nil {
			return err
		}
		if err := tx.Services().DeleteItems(ctx, id); err != nil {
			return err
		}
		return tx.Services().Delete(ctx, id)
	})
	if err != nil {
		return storageFailure(s.logger, "delete service", err)
	}

	invalidateServices(ctx, s.cache, id)
	s.logger.Info("service deleted", zap.String("service_id", id.String()))
	return nil
}
