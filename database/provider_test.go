package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"gorm.io/gorm"
)

func createTestConfig(driver, dsn string, autoMigrate bool) config.Config {
	return config.Config{
		Database: config.DatabaseConfig{
			Driver:      driver,
			DSN:         dsn,
			AutoMigrate: autoMigrate,
		},
	}
}

type TestModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255"`
}

func TestWithModels(t *testing.T) {
	option := WithModels(TestModel{}, &TestModel{})

	assert.Len(t, option.models, 2)
	assert.Len(t, WithModels().models, 0)
}

func TestProvideDatabase_SQLite(t *testing.T) {
	t.Run("in-memory database", func(t *testing.T) {
		db, err := ProvideDatabase(createTestConfig("sqlite", ":memory:", false), nil, nil)

		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		defer sqlDB.Close()
		assert.NoError(t, sqlDB.Ping())
		assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	})

	t.Run("file database with migration", func(t *testing.T) {
		dsn := filepath.Join(t.TempDir(), "test.db")

		db, err := ProvideDatabase(createTestConfig("sqlite", dsn, true), WithModels(&TestModel{}), nil)

		require.NoError(t, err)
		sqlDB, _ := db.DB()
		defer sqlDB.Close()
		assert.True(t, db.Migrator().HasTable(&TestModel{}))
	})

	t.Run("auto migrate disabled", func(t *testing.T) {
		db, err := ProvideDatabase(createTestConfig("sqlite", ":memory:", false), WithModels(&TestModel{}), nil)

		require.NoError(t, err)
		sqlDB, _ := db.DB()
		defer sqlDB.Close()
		assert.False(t, db.Migrator().HasTable(&TestModel{}))
	})
}

func TestProvideDatabase_UnsupportedDriver(t *testing.T) {
	logger, err := logging.NewService(logging.Config{Level: logging.Error, Format: "json"})
	require.NoError(t, err)

	db, err := ProvideDatabase(createTestConfig("oracle", "dsn", false), nil, logger)

	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "unsupported database driver: oracle")
}

func TestModule(t *testing.T) {
	var db *gorm.DB
	app := fxtest.New(t,
		Module,
		fx.Provide(func() *config.Config {
			cfg := createTestConfig("sqlite", ":memory:", true)
			return &cfg
		}),
		fx.Provide(func() *logging.Service { return nil }),
		fx.Supply(WithModels(&TestModel{})),
		fx.Populate(&db),
	)

	app.RequireStart()
	require.NotNil(t, db)
	assert.True(t, db.Migrator().HasTable(&TestModel{}))
	app.RequireStop()
}
