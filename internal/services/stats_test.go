package services_test

import (
	"testing"
	"time"

	"github.com/sheetcharts/sheetcharts/internal/models"
	"github.com/sheetcharts/sheetcharts/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "Root", "root@example.com", models.RoleAdmin)
	alice := createTestUser(t, db, "Alice", "alice@example.com", "")
	createTestUser(t, db, "Bob", "bob@example.com", "")

	now := time.Now().UTC()
	createTestRecord(t, db, admin.ID, "admin.xlsx", now)
	createTestRecord(t, db, alice.ID, "a.xlsx", now)
	createTestRecord(t, db, alice.ID, "b.xlsx", now)

	stats, err := services.DashboardStats(db)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(3), stats.TotalExcelFiles)
	assert.Equal(t, int64(2), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.UsersWithoutFiles)
	assert.Equal(t, int64(2), stats.RoleDistribution[models.RoleUser])
	assert.Equal(t, int64(1), stats.RoleDistribution[models.RoleAdmin])
	assert.Equal(t, int64(3), stats.NewUsers)
	assert.Len(t, stats.RecentUsers, 3)
}

func TestOwnerDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com", "")

	// No uploads yet is a stats object, not an error.
	stats, err := services.OwnerDashboardStats(db, alice.ID)
	require.NoError(t, err)
	assert.False(t, stats.HasExcelFile)
	assert.Nil(t, stats.FileName)
	assert.Nil(t, stats.UploadTime)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	createTestRecord(t, db, alice.ID, "old.xlsx", base)
	createTestRecord(t, db, alice.ID, "new.xlsx", base.Add(time.Hour))

	stats, err = services.OwnerDashboardStats(db, alice.ID)
	require.NoError(t, err)
	assert.True(t, stats.HasExcelFile)
	require.NotNil(t, stats.FileName)
	assert.Equal(t, "new.xlsx", *stats.FileName)
	require.NotNil(t, stats.UploadTime)
}
