package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultServiceType tags services created without an explicit type.
const DefaultServiceType = "SUNDAY"

// Service is a scheduled event with an ordered itinerary.
type Service struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Type      string    `json:"type" gorm:"size:50;not null;default:'SUNDAY'"`
	Leader    string    `json:"leader,omitempty" gorm:"size:255"`
	Date      time.Time `json:"date" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Items       []ServicePlanItem   `json:"items" gorm:"foreignKey:ServiceID"`
	Assignments []ServiceAssignment `json:"assignments,omitempty" gorm:"foreignKey:ServiceID"`
}

// BeforeCreate sets UUID before creating the record.
func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ServicePlanItem is one itinerary row. Order is a contiguous 0..N-1 sequence per service.
type ServicePlanItem struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	ServiceID   uuid.UUID `json:"service_id" gorm:"type:char(36);not null;uniqueIndex:idx_service_item_order"`
	Type        ItemType  `json:"type" gorm:"size:30;not null"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Duration    int       `json:"duration"` // minutes
	Order       int       `json:"order" gorm:"column:sort_order;not null;uniqueIndex:idx_service_item_order"`
}

// BeforeCreate sets UUID before creating the record.
func (i *ServicePlanItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ServiceAssignment schedules a member, acting for a team, on a service.
type ServiceAssignment struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	ServiceID uuid.UUID `json:"service_id" gorm:"type:char(36);not null;uniqueIndex:idx_service_team_member"`
	TeamID    uuid.UUID `json:"team_id" gorm:"type:char(36);not null;uniqueIndex:idx_service_team_member;index"`
	MemberID  uuid.UUID `json:"member_id" gorm:"type:char(36);not null;uniqueIndex:idx_service_team_member;index"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Member *Member `json:"member,omitempty" gorm:"foreignKey:MemberID"`
	Team   *Team   `json:"team,omitempty" gorm:"foreignKey:TeamID"`
}

// BeforeCreate sets UUID before creating the record.
func (a *ServiceAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
