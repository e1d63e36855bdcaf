package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sheetcharts/sheetcharts/internal/models"
	"github.com/sheetcharts/sheetcharts/internal/tabular"
	"github.com/sheetcharts/sheetcharts/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordSummary is the list/upload view of a stored spreadsheet: never the
// table body.
type RecordSummary struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	UploadTime time.Time `json:"uploadTime"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RecordDetail is the full record view used for chart creation.
type RecordDetail struct {
	ID         string         `json:"id"`
	FileName   string         `json:"fileName"`
	ExcelData  *tabular.Table `json:"excelData"`
	UploadTime time.Time      `json:"uploadTime"`
}

// OwnedRecordSummary is a summary joined with its owner, for admin listings.
type OwnedRecordSummary struct {
	RecordSummary
	Owner struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"owner"`
}

func summarize(rec *models.ExcelRecord) RecordSummary {
	return RecordSummary{
		ID:         rec.ID,
		FileName:   rec.FileName,
		UploadTime: rec.UploadTime,
		CreatedAt:  rec.CreatedAt,
	}
}

// DecodeTable unpacks the stored JSON payload of a record back into a Table.
func DecodeTable(rec *models.ExcelRecord) (*tabular.Table, error) {
	var table tabular.Table
	if err := json.Unmarshal(rec.TableData.JSON, &table); err != nil {
		return nil, fmt.Errorf("corrupt table payload for record %s: %w", rec.ID, err)
	}
	return &table, nil
}

// UpsertRecord stores a parsed table under (ownerID, fileName). The write is a
// single conditional insert against the composite unique index, so concurrent
// uploads of the same key cannot produce duplicate rows; on conflict the
// existing row keeps its id and gets the new table and upload time.
func UpsertRecord(db *gorm.DB, ownerID, fileName string, table *tabular.Table) (*models.ExcelRecord, error) {
	payload, err := json.Marshal(table)
	if err != nil {
		return nil, fmt.Errorf("failed to encode table: %w", err)
	}

	rec := models.ExcelRecord{
		OwnerID:    ownerID,
		FileName:   fileName,
		TableData:  models.NewJSON(payload),
		UploadTime: time.Now().UTC(),
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "file_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"table_data", "upload_time", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return nil, err
	}

	// Re-read by natural key: on the update path the generated id above does
	// not match the surviving row.
	var out models.ExcelRecord
	if err := db.Where("owner_id = ? AND file_name = ?", ownerID, fileName).First(&out).Error; err != nil {
		return nil, err
	}

	return &out, nil
}

// ListRecordsByOwner returns summaries for one owner ordered by upload time
// descending, with limit/skip pagination.
func ListRecordsByOwner(db *gorm.DB, ownerID string, limit, skip int) ([]RecordSummary, int64, bool, error) {
	var total int64
	if err := db.Model(&models.ExcelRecord{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, false, err
	}

	var recs []models.ExcelRecord
	err := db.Select("id", "file_name", "upload_time", "created_at").
		Where("owner_id = ?", ownerID).
		Order("upload_time DESC").
		Limit(limit).
		Offset(skip).
		Find(&recs).Error
	if err != nil {
		return nil, 0, false, err
	}

	summaries := make([]RecordSummary, len(recs))
	for i := range recs {
		summaries[i] = summarize(&recs[i])
	}

	hasMore := total > int64(skip+len(summaries))
	return summaries, total, hasMore, nil
}

// LatestRecordByOwner returns the most recently uploaded record for an owner,
// or types.ErrNotFound when the owner has none.
func LatestRecordByOwner(db *gorm.DB, ownerID string) (*models.ExcelRecord, error) {
	var rec models.ExcelRecord
	err := db.Where("owner_id = ?", ownerID).
		Order("upload_time DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// GetRecordByID returns a record by id, scoped to the owner. A record owned by
// a different user is indistinguishable from an absent one.
func GetRecordByID(db *gorm.DB, id, ownerID string) (*models.ExcelRecord, error) {
	var rec models.ExcelRecord
	err := db.Where("id = ? AND owner_id = ?", id, ownerID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// DeleteRecordByID deletes a record by id, scoped to the owner.
func DeleteRecordByID(db *gorm.DB, id, ownerID string) error {
	result := db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.ExcelRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

// DeleteRecordsByOwner removes every record an owner holds. Used as the
// cascade when a user account is deleted.
func DeleteRecordsByOwner(db *gorm.DB, ownerID string) error {
	return db.Where("owner_id = ?", ownerID).Delete(&models.ExcelRecord{}).Error
}

// CountRecords returns the total number of stored records.
func CountRecords(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&models.ExcelRecord{}).Count(&n).Error
	return n, err
}

// CountRecordsByOwner returns the number of records one owner holds.
func CountRecordsByOwner(db *gorm.DB, ownerID string) (int64, error) {
	var n int64
	err := db.Model(&models.ExcelRecord{}).Where("owner_id = ?", ownerID).Count(&n).Error
	return n, err
}

// CountDistinctOwners returns how many users hold at least one record.
func CountDistinctOwners(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&models.ExcelRecord{}).Distinct("owner_id").Count(&n).Error
	return n, err
}

// ListAllRecords returns summaries across every owner, joined with owner name
// and email, ordered by upload time descending.
func ListAllRecords(db *gorm.DB, limit, skip int) ([]OwnedRecordSummary, int64, bool, error) {
	var total int64
	if err := db.Model(&models.ExcelRecord{}).Count(&total).Error; err != nil {
		return nil, 0, false, err
	}

	var flat []struct {
		ID         string
		FileName   string
		UploadTime time.Time
		CreatedAt  time.Time
		OwnerID    string
		OwnerName  string
		OwnerEmail string
	}
	err := db.Model(&models.ExcelRecord{}).
		Select("excel_records.id, excel_records.file_name, excel_records.upload_time, excel_records.created_at, "+
			"users.id AS owner_id, users.name AS owner_name, users.email AS owner_email").
		Joins("JOIN users ON users.id = excel_records.owner_id").
		Order("excel_records.upload_time DESC").
		Limit(limit).
		Offset(skip).
		Scan(&flat).Error
	if err != nil {
		return nil, 0, false, err
	}

	items := make([]OwnedRecordSummary, len(flat))
	for i, row := range flat {
		items[i].RecordSummary = RecordSummary{
			ID:         row.ID,
			FileName:   row.FileName,
			UploadTime: row.UploadTime,
			CreatedAt:  row.CreatedAt,
		}
		items[i].Owner.ID = row.OwnerID
		items[i].Owner.Name = row.OwnerName
		items[i].Owner.Email = row.OwnerEmail
	}

	hasMore := total > int64(skip+len(items))
	return items, total, hasMore, nil
}
