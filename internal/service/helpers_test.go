package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mdsq/internal/db"
	"mdsq/internal/metrics"
	"mdsq/internal/model"
	"mdsq/internal/repository"
)

const (
	adminRole        = "Pastora"
	producerRole     = "Productor"
	collaboratorRole = "Colaborador"
)

// fixture is an in-memory directory with every service wired to it.
type fixture struct {
	db      *gorm.DB
	store   repository.Store
	metrics *metrics.Metrics

	members     MemberService
	labels      LabelService
	ministries  MinistryService
	integrity   IntegrityService
	plans       PlanService
	assignments AssignmentService
	attendance  *attendanceService
	seed        SeedService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := db.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := repository.NewStore(gormDB)
	m := metrics.Nop()
	logger := zap.NewNop()

	return &fixture{
		db:          gormDB,
		store:       store,
		metrics:     m,
		members:     NewMemberService(store, nil, logger),
		labels:      NewLabelService(store, logger),
		ministries:  NewMinistryService(store, nil, logger),
		integrity:   NewIntegrityService(store, nil, m, logger),
		plans:       NewPlanService(store, nil, m, logger),
		assignments: NewAssignmentService(store, nil, m, logger),
		attendance:  NewAttendanceService(store, 20, m, logger).(*attendanceService),
		seed:        NewSeedService(store, logger),
	}
}

func (f *fixture) count(t *testing.T, table interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(table)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func (f *fixture) member(t *testing.T, first, last string) *model.Member {
	t.Helper()
	m, err := f.members.CreateMember(context.Background(), MemberInput{FirstName: first, LastName: last})
	require.NoError(t, err)
	return m
}

func (f *fixture) team(t *testing.T, ministryName, teamName string) *model.Team {
	t.Helper()
	ctx := context.Background()
	ministry, err := f.ministries.CreateMinistry(ctx, ministryName)
	require.NoError(t, err)
	team, err := f.ministries.CreateTeam(ctx, ministry.ID, teamName)
	require.NoError(t, err)
	return team
}

func (f *fixture) service(t *testing.T, name string, at time.Time) *ServiceDetail {
	t.Helper()
	svc, err := f.plans.CreateService(context.Background(), adminRole, PlanInput{Name: name, Date: at})
	require.NoError(t, err)
	return svc
}
