package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/usjp/campus-panel/config"
	"github.com/usjp/campus-panel/database/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Type:   config.DatabaseTypeSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	}
	conn, err := Open(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func TestUsernameUniqueIsTranslated(t *testing.T) {
	conn := openTestDB(t)

	require.NoError(t, conn.Create(&model.User{Username: "jsmith", Password: "x"}).Error)
	err := conn.Create(&model.User{Username: "jsmith", Password: "y"}).Error
	assert.True(t, IsDuplicateKey(err), "got %v", err)
}

func TestDeletingUserCascadesProfileAndNullsDivision(t *testing.T) {
	conn := openTestDB(t)

	user := &model.User{Username: "ma1", Password: "x"}
	require.NoError(t, conn.Create(user).Error)
	require.NoError(t, conn.Create(&model.Profile{UserId: user.Id, Role: model.RoleMA}).Error)

	zone := &model.Zone{Name: "North"}
	require.NoError(t, conn.Create(zone).Error)
	building := &model.Building{ZoneId: zone.Id, Name: "Library"}
	require.NoError(t, conn.Create(building).Error)
	division := &model.Division{BuildingId: building.Id, Name: "Ground floor", AssistantId: &user.Id}
	require.NoError(t, conn.Create(division).Error)

	require.NoError(t, conn.Delete(&model.User{}, user.Id).Error)

	var profiles int64
	conn.Model(&model.Profile{}).Where("user_id = ?", user.Id).Count(&profiles)
	assert.Zero(t, profiles)

	var reloaded model.Division
	require.NoError(t, conn.First(&reloaded, division.Id).Error)
	assert.Nil(t, reloaded.AssistantId)
}

func TestDeletingZoneCascades(t *testing.T) {
	conn := openTestDB(t)

	zone := &model.Zone{Name: "South"}
	require.NoError(t, conn.Create(zone).Error)
	building := &model.Building{ZoneId: zone.Id, Name: "Hall A"}
	require.NoError(t, conn.Create(building).Error)
	division := &model.Division{BuildingId: building.Id, Name: "Wing"}
	require.NoError(t, conn.Create(division).Error)
	task := &model.Task{DivisionId: division.Id, Title: "Mop"}
	require.NoError(t, conn.Create(task).Error)
	require.NoError(t, conn.Create(&model.Subtask{TaskId: task.Id, Title: "Corridor"}).Error)

	require.NoError(t, conn.Delete(&model.Zone{}, zone.Id).Error)

	for _, m := range []any{&model.Building{}, &model.Division{}, &model.Task{}, &model.Subtask{}} {
		var n int64
		conn.Model(m).Count(&n)
		assert.Zero(t, n)
	}
}

func TestBuildingNameUniquePerZone(t *testing.T) {
	conn := openTestDB(t)

	a := &model.Zone{Name: "A"}
	b := &model.Zone{Name: "B"}
	require.NoError(t, conn.Create(a).Error)
	require.NoError(t, conn.Create(b).Error)

	require.NoError(t, conn.Create(&model.Building{ZoneId: a.Id, Name: "Gym"}).Error)
	require.NoError(t, conn.Create(&model.Building{ZoneId: b.Id, Name: "Gym"}).Error)
	assert.True(t, IsDuplicateKey(conn.Create(&model.Building{ZoneId: a.Id, Name: "Gym"}).Error))
}
