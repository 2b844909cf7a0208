package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attendance is an append-only check-in record.
type Attendance struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	MemberID    uuid.UUID `json:"member_id" gorm:"type:char(36);not null;index"`
	CheckedInAt time.Time `json:"date" gorm:"not null;index"`

	// Relations
	Member *Member `json:"member,omitempty" gorm:"foreignKey:MemberID"`
}

// BeforeCreate sets UUID and the check-in time before creating the record.
func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CheckedInAt.IsZero() {
		a.CheckedInAt = time.Now()
	}
	return nil
}
