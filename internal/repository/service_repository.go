package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mdsq/internal/model"
)

// ServiceRepository defines persistence for services and their itinerary items.
type ServiceRepository interface {
	Create(ctx context.Context, service *model.Service) error
	UpdateHeader(ctx context.Context, service *model.Service) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*model.Service, error)
	List(ctx context.Context) ([]model.Service, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CreateItems(ctx context.Context, items []model.ServicePlanItem) error
	DeleteItems(ctx context.Context, serviceID uuid.UUID) error
}

type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new service repository.
func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order asc")
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	return r.db.WithContext(ctx).Omit("Items", "Assignments").Create(service).Error
}

// UpdateHeader writes name, type, leader and date.
func (r *serviceRepository) UpdateHeader(ctx context.Context, service *model.Service) error {
	return r.db.WithContext(ctx).Model(&model.Service{}).
		Where("id = ?", service.ID).
		Updates(map[string]interface{}{
			"name":   service.Name,
			"type":   service.Type,
			"leader": service.Leader,
			"date":   service.Date,
		}).Error
}

func (r *serviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var service model.Service
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// FindDetail loads the ordered itinerary and the assignments with member and team.
func (r *serviceRepository) FindDetail(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var service model.Service
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Preload("Assignments.Member").
		Preload("Assignments.Team").
		Where("id = ?", id).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// List returns services newest first with their itineraries.
func (r *serviceRepository) List(ctx context.Context) ([]model.Service, error) {
	var services []model.Service
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Order("date desc").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Service{}).Error
}

func (r *serviceRepository) CreateItems(ctx context.Context, items []model.ServicePlanItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *serviceRepository) DeleteItems(ctx context.Context, serviceID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("service_id = ?", serviceID).Delete(&model.ServicePlanItem{}).Error
}
