package services_test

import (
	"testing"
	"time"

	"github.com/sheetcharts/sheetcharts/internal/services"
	"github.com/sheetcharts/sheetcharts/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertRecordReplacesInPlace(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "Alice", "alice@example.com", "")

	first, err := services.UpsertRecord(db, user.ID, "sales.xlsx", testTable([]string{"A", "B"}))
	require.NoError(t, err)

	second, err := services.UpsertRecord(db, user.ID, "sales.xlsx", testTable([]string{"X", "Y", "Z"}))
	require.NoError(t, err)

	// Same natural key replaces the table and keeps the surrogate id.
	assert.Equal(t, first.ID, second.ID)

	count, err := services.CountRecordsByOwner(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	table, err := services.DecodeTable(second)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z"}, table.Headers)
}

func TestUpsertRecordDistinctKeys(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com", "")
	bob := createTestUser(t, db, "Bob", "bob@example.com", "")

	_, err := services.UpsertRecord(db, alice.ID, "sales.xlsx", testTable([]string{"A"}))
	require.NoError(t, err)
	_, err = services.UpsertRecord(db, alice.ID, "other.xlsx", testTable([]string{"A"}))
	require.NoError(t, err)

	// The same file name under another owner is an independent record.
	_, err = services.UpsertRecord(db, bob.ID, "sales.xlsx", testTable([]string{"A"}))
	require.NoError(t, err)

	total, err := services.CountRecords(db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	aliceCount, err := services.CountRecordsByOwner(db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), aliceCount)
}

func TestListRecordsByOwnerPagination(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com", "")
	bob := createTestUser(t, db, "Bob", "bob@example.com", "")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createTestRecord(t, db, alice.ID, filenameN(i), base.Add(time.Duration(i)*time.Hour))
	}
	createTestRecord(t, db, bob.ID, "bob.xlsx", base)

	items, total, hasMore, err := services.ListRecordsByOwner(db, alice.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.True(t, hasMore)
	require.Len(t, items, 2)

	// Newest first.
	assert.Equal(t, filenameN(4), items[0].FileName)
	assert.Equal(t, filenameN(3), items[1].FileName)

	items, total, hasMore, err = services.ListRecordsByOwner(db, alice.ID, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.False(t, hasMore)
	require.Len(t, items, 1)
	assert.Equal(t, filenameN(0), items[0].FileName)
}

func filenameN(i int) string {
	return string(rune('a'+i)) + ".xlsx"
}

func TestLatestRecordByOwner(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "Alice", "alice@example.com", "")

	_, err := services.LatestRecordByOwner(db, user.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	createTestRecord(t, db, user.ID, "old.xlsx", base)
	createTestRecord(t, db, user.ID, "new.xlsx", base.Add(time.Hour))

	rec, err := services.LatestRecordByOwner(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new.xlsx", rec.FileName)
}

func TestGetRecordByIDScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com", "")
	bob := createTestUser(t, db, "Bob", "bob@example.com", "")

	rec := createTestRecord(t, db, alice.ID, "sales.xlsx", time.Now().UTC())

	got, err := services.GetRecordByID(db, rec.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	// Another owner's record reads as absent.
	_, err = services.GetRecordByID(db, rec.ID, bob.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = services.GetRecordByID(db, "missing-id", alice.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteRecordByID(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com", "")
	bob := createTestUser(t, db, "Bob", "bob@example.com", "")

	rec := createTestRecord(t, db, alice.ID, "sales.xlsx", time.Now().UTC())

	assert.ErrorIs(t, services.DeleteRecordByID(db, rec.ID, bob.ID), types.ErrNotFound)

	require.NoError(t, services.DeleteRecordByID(db, rec.ID, alice.ID))
	assert.ErrorIs(t, services.DeleteRecordByID(db, rec.ID, alice.ID), types.ErrNotFound)
}

func TestCountDistinctOwners(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com", "")
	bob := createTestUser(t, db, "Bob", "bob@example.com", "")
	createTestUser(t, db, "Carol", "carol@example.com", "")

	now := time.Now().UTC()
	createTestRecord(t, db, alice.ID, "a.xlsx", now)
	createTestRecord(t, db, alice.ID, "b.xlsx", now)
	createTestRecord(t, db, bob.ID, "c.xlsx", now)

	owners, err := services.CountDistinctOwners(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), owners)
}

func TestListAllRecords(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com", "")
	bob := createTestUser(t, db, "Bob", "bob@example.com", "")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	createTestRecord(t, db, alice.ID, "a.xlsx", base)
	createTestRecord(t, db, bob.ID, "b.xlsx", base.Add(time.Hour))

	items, total, hasMore, err := services.ListAllRecords(db, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.False(t, hasMore)
	require.Len(t, items, 2)

	assert.Equal(t, "b.xlsx", items[0].FileName)
	assert.Equal(t, "Bob", items[0].Owner.Name)
	assert.Equal(t, "bob@example.com", items[0].Owner.Email)
	assert.Equal(t, "Alice", items[1].Owner.Name)
}
