package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mdsq/internal/errors"
	"mdsq/internal/model"
)

func TestAttendanceService_CheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.member(t, "Ana", "Gómez")

	record, err := f.attendance.CheckIn(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, record.MemberID)
	require.NotNil(t, record.Member)
	assert.Equal(t, "Ana", record.Member.FirstName)
	assert.False(t, record.CheckedInAt.IsZero())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CheckIns))

	_, err = f.attendance.CheckIn(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
	assert.EqualValues(t, 1, f.count(t, &model.Attendance{}, ""))
}

func TestAttendanceService_Recent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.member(t, "Ana", "Gómez")
	beto := f.member(t, "Beto", "Bravo")

	today := time.Date(2026, 10, 18, 11, 0, 0, 0, time.Local)
	yesterday := today.AddDate(0, 0, -1)
	require.NoError(t, f.store.Attendance().Create(ctx, &model.Attendance{MemberID: beto.ID, CheckedInAt: yesterday}))

	f.attendance.now = func() time.Time { return today.Add(-2 * time.Hour) }
	_, err := f.attendance.CheckIn(ctx, ana.ID)
	require.NoError(t, err)
	f.attendance.now = func() time.Time { return today }
	_, err = f.attendance.CheckIn(ctx, beto.ID)
	require.NoError(t, err)

	records, err := f.attendance.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, beto.ID, records[0].MemberID)
	assert.Equal(t, ana.ID, records[1].MemberID)
	require.NotNil(t, records[0].Member)

	f.attendance.limit = 1
	records, err = f.attendance.Recent(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
