package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultChurchRole is used when a member is created without a church role.
const DefaultChurchRole = "Colaborador"

// MemberLabelsTable is the join table between members and labels.
const MemberLabelsTable = "member_labels"

// Member is a person's profile, independent of login capability.
type Member struct {
	ID         uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	FirstName  string     `json:"first_name" gorm:"size:100;not null"`
	LastName   string     `json:"last_name" gorm:"size:100;not null;index"`
	Phone      string     `json:"phone,omitempty" gorm:"size:50"`
	Email      string     `json:"email,omitempty" gorm:"size:255;index"`
	Address    string     `json:"address,omitempty" gorm:"size:255"`
	City       string     `json:"city,omitempty" gorm:"size:100"`
	BirthDate  *time.Time `json:"birth_date,omitempty" gorm:"type:date"`
	Photo      string     `json:"photo,omitempty" gorm:"type:text"`
	ChurchRole string     `json:"church_role" gorm:"size:50;default:'Colaborador'"`
	UserID     *uuid.UUID `json:"user_id,omitempty" gorm:"type:char(36);uniqueIndex"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relations
	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Labels []Label `json:"labels,omitempty" gorm:"many2many:member_labels"`
}

// BeforeCreate sets UUID before creating the record.
func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// FullName joins first and last name.
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// HasLogin reports whether the member owns a User.
func (m *Member) HasLogin() bool {
	return m.UserID != nil && *m.UserID != uuid.Nil
}

// BornOn reports whether the member's birthday falls on the given month and day.
func (m *Member) BornOn(month time.Month, day int) bool {
	if m.BirthDate == nil {
		return false
	}
	return m.BirthDate.Month() == month && m.BirthDate.Day() == day
}

// Label is a named, colored tag attached to members.
type Label struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Color     string    `json:"color,omitempty" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (l *Label) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
