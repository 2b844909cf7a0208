package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "mdsq/internal/errors"
	"mdsq/internal/metrics"
	"mdsq/internal/model"
	"mdsq/internal/repository"
)

// AttendanceService is the reception check-in log.
type AttendanceService interface {
	CheckIn(ctx context.Context, memberID uuid.UUID) (*model.Attendance, error)
	Recent(ctx context.Context) ([]model.Attendance, error)
}

type attendanceService struct {
	store   repository.Store
	limit   int
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewAttendanceService builds an AttendanceService returning at most limit
// records from Recent.
func NewAttendanceService(store repository.Store, limit int, m *metrics.Metrics, logger *zap.Logger) AttendanceService {
	return &attendanceService{store: store, limit: limit, metrics: m, logger: logger, now: time.Now}
}

// CheckIn appends a record for an existing member.
func (s *attendanceService) CheckIn(ctx context.Context, memberID uuid.UUID) (*model.Attendance, error) {
	member, err := s.store.Members().FindByID(ctx, memberID)
	if err != nil {
		return nil, apperrors.FromStorage("check in", notFoundAs(err, apperrors.ErrMemberNotFound))
	}

	record := &model.Attendance{MemberID: memberID, CheckedInAt: s.now()}
	if err := s.store.Attendance().Create(ctx, record); err != nil {
		return nil, storageFailure(s.logger, "check in", err)
	}
	record.Member = member

	s.metrics.CheckIns.Inc()
	s.logger.Info("member checked in", zap.String("member_id", memberID.String()))
	return record, nil
}

// Recent returns today's check-ins, newest first.
func (s *attendanceService) Recent(ctx context.Context) ([]model.Attendance, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	records, err := s.store.Attendance().ListSince(ctx, midnight, s.limit)
	if err != nil {
		return nil, apperrors.FromStorage("recent attendance", err)
	}
	return records, nil
}
