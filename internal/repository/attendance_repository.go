package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mdsq/internal/model"
)

// AttendanceRepository defines check-in log persistence. Records are never updated.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *model.Attendance) error
	ListSince(ctx context.Context, since time.Time, limit int) ([]model.Attendance, error)
	DeleteByMember(ctx context.Context, memberID uuid.UUID) error
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, attendance *model.Attendance) error {
	return r.db.WithContext(ctx).Omit("Member").Create(attendance).Error
}

// ListSince returns check-ins at or after since, newest first.
func (r *attendanceRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]model.Attendance, error) {
	var records []model.Attendance
	if err := r.db.WithContext(ctx).
		Preload("Member").
		Where("checked_in_at >= ?", since).
		Order("checked_in_at desc").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) DeleteByMember(ctx context.Context, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("member_id = ?", memberID).Delete(&model.Attendance{}).Error
}
