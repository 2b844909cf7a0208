package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Users() UserRepository
	Members() MemberRepository
	Labels() LabelRepository
	Ministries() MinistryRepository
	Teams() TeamRepository
	Services() ServiceRepository
	Assignments() AssignmentRepository
	Attendance() AttendanceRepository
	// WithTransaction runs fn against a Store bound to a single transaction.
	// Returning an error from fn rolls every write back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository             { return NewUserRepository(s.db) }
func (s *store) Members() MemberRepository         { return NewMemberRepository(s.db) }
func (s *store) Labels() LabelRepository           { return NewLabelRepository(s.db) }
func (s *store) Ministries() MinistryRepository    { return NewMinistryRepository(s.db) }
func (s *store) Teams() TeamRepository             { return NewTeamRepository(s.db) }
func (s *store) Services() ServiceRepository       { return NewServiceRepository(s.db) }
func (s *store) Assignments() AssignmentRepository { return NewAssignmentRepository(s.db) }
func (s *store) Attendance() AttendanceRepository  { return NewAttendanceRepository(s.db) }

// WithTransaction executes a function within a database transaction.
func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &store{db: tx})
	})
}
