package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestGooseStrategy_UpAndDown(t *testing.T) {
	db := openMemoryDB(t)
	strategy := NewGooseStrategy("sqlite")

	require.NoError(t, NewManagerWithStrategy(strategy).Migrate(db))

	version, err := strategy.GetVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"plans", "orders", "subscriptions"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// re-running is a no-op
	require.NoError(t, strategy.Migrate(db))

	require.NoError(t, strategy.MigrateDown(db, 1))
	assert.False(t, db.Migrator().HasTable("orders"))
}

func TestGormAutoMigrateStrategy(t *testing.T) {
	db := openMemoryDB(t)

	m := NewManager("sqlite", true)
	assert.Equal(t, "gorm_auto_migrate", m.Strategy().GetName())
	require.NoError(t, m.Migrate(db))

	assert.True(t, db.Migrator().HasTable("subscriptions"))
}

func TestNewManager_DefaultsToGoose(t *testing.T) {
	assert.Equal(t, "goose", NewManager("mysql", false).Strategy().GetName())
}
