package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExcelRecord is one persisted spreadsheet table, owned by exactly one user.
// (owner_id, file_name) is the natural key: re-uploading the same file name
// replaces the table in place and keeps the surrogate id stable.
type ExcelRecord struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerID    string    `gorm:"type:char(36);not null;index:idx_owner_file,unique" json:"ownerId"`
	FileName   string    `gorm:"size:255;not null;index:idx_owner_file,unique" json:"fileName"`
	TableData  JSON      `gorm:"not null" json:"tableData"`
	UploadTime time.Time `gorm:"not null;index" json:"uploadTime"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a surrogate id when none was provided.
func (r *ExcelRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for ExcelRecord
func (ExcelRecord) TableName() string {
	return "excel_records"
}
