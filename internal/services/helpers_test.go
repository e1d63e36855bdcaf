package services_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sheetcharts/sheetcharts/internal/models"
	"github.com/sheetcharts/sheetcharts/internal/services"
	"github.com/sheetcharts/sheetcharts/internal/tabular"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ExcelRecord{}))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()

	user, err := services.RegisterUser(db, name, email, "password123", role)
	require.NoError(t, err)
	return user
}

func testTable(headers []string) *tabular.Table {
	rows := [][]tabular.Cell{}
	for i := 0; i < 2; i++ {
		row := make([]tabular.Cell, len(headers))
		for j := range headers {
			row[j] = tabular.Number(float64(i*len(headers) + j))
		}
		rows = append(rows, row)
	}
	return &tabular.Table{SheetName: "Sheet1", Headers: headers, Rows: rows}
}

// createTestRecord inserts a record directly with a fixed upload time, so
// ordering assertions are deterministic.
func createTestRecord(t *testing.T, db *gorm.DB, ownerID, fileName string, uploadTime time.Time) *models.ExcelRecord {
	t.Helper()

	payload, err := json.Marshal(testTable([]string{"A", "B"}))
	require.NoError(t, err)

	rec := &models.ExcelRecord{
		OwnerID:    ownerID,
		FileName:   fileName,
		TableData:  models.NewJSON(payload),
		UploadTime: uploadTime,
	}
	require.NoError(t, db.Create(rec).Error)
	return rec
}
