package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ministry is a top-level organizational area containing teams.
type Ministry struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"size:150;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Teams []Team `json:"teams" gorm:"foreignKey:MinistryID"`
}

// BeforeCreate sets UUID before creating the record.
func (m *Ministry) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Team is a named sub-group of a ministry.
type Team struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	MinistryID uuid.UUID `json:"ministry_id" gorm:"type:char(36);not null;index"`
	Name       string    `json:"name" gorm:"size:150;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Members []TeamMember `json:"members" gorm:"foreignKey:TeamID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TeamMember links one member to one team. A (team, member) pair appears once.
type TeamMember struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	TeamID    uuid.UUID `json:"team_id" gorm:"type:char(36);not null;uniqueIndex:idx_team_member"`
	MemberID  uuid.UUID `json:"member_id" gorm:"type:char(36);not null;uniqueIndex:idx_team_member;index"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Member *Member `json:"member,omitempty" gorm:"foreignKey:MemberID"`
}

// BeforeCreate sets UUID before creating the record.
func (tm *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if tm.ID == uuid.Nil {
		tm.ID = uuid.New()
	}
	return nil
}
