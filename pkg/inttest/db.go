package inttest

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/dhis2-sre/im-calendar/pkg/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupDB creates an in-memory SQLite database private to the test. Gorm is connected to the DB
// and runs the migrations.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := gorm.Open(sqlite.Open(dsn), storage.NewGormConfig(logger))
	require.NoError(t, err, "failed to open DB")

	sqlDB, err := db.DB()
	require.NoError(t, err, "failed to get DB")
	// the database lives as long as one connection to it is open and SQLite serializes writes anyway
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { require.NoError(t, sqlDB.Close(), "failed to close DB") })

	require.NoError(t, storage.Migrate(db), "failed to migrate DB")
	return db
}
