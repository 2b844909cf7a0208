package db

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"mdsq/internal/model"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.Error(t, err)
}

func TestMigrateAndReset_SQLite(t *testing.T) {
	gormDB, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)

	require.NoError(t, Migrate(gormDB))
	for _, m := range Models() {
		assert.True(t, gormDB.Migrator().HasTable(m))
	}
	assert.True(t, gormDB.Migrator().HasTable(model.MemberLabelsTable))
	assert.True(t, gormDB.Migrator().HasIndex(&model.TeamMember{}, "idx_team_member"))
	assert.True(t, gormDB.Migrator().HasIndex(&model.ServiceAssignment{}, "idx_service_team_member"))

	require.NoError(t, Reset(gormDB))
	for _, m := range Models() {
		assert.False(t, gormDB.Migrator().HasTable(m))
	}
}

func TestGormLogger_RoutesThroughZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	gormDB, err := Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(gormDB))

	tests := []struct {
		name    string
		run     func() error
		wantLog bool
	}{
		{
			name: "missing row is not logged",
			run: func() error {
				var m model.Member
				err := gormDB.First(&m, "id = ?", uuid.New()).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			},
			wantLog: false,
		},
		{
			name: "query error is logged",
			run: func() error {
				var n int64
				_ = gormDB.Table("no_such_table").Count(&n).Error
				return nil
			},
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.TakeAll()
			require.NoError(t, tt.run())
			entries := logs.FilterLoggerName("gorm").TakeAll()
			if tt.wantLog {
				assert.NotEmpty(t, entries)
			} else {
				assert.Empty(t, entries)
			}
		})
	}
}
