// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/config"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/database"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an isolated in-memory database with the full schema
// applied. TranslateError stays on so duplicate-key detection behaves the
// same as against the production driver.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A pooled second connection would see its own empty :memory: database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// NewTestConfig returns a remote-mode config with a throwaway signing key.
func NewTestConfig() *config.Config {
	return &config.Config{
		Mode:            config.ModeRemote,
		JWTSecret:       "test-secret-not-for-production",
		JWTAccessExpiry: time.Hour,
	}
}
