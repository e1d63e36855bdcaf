package services

import (
	"github.com/sheetcharts/sheetcharts/internal/tabular"
	"github.com/sheetcharts/sheetcharts/internal/types"
	"gorm.io/gorm"
)

// Ingest validates an upload, parses it into a normalized table and stores it
// under (ownerID, fileName). Checks run in order and the first failure wins:
// missing file, unparseable file, empty table. On success only a summary is
// returned, never the table body.
func Ingest(db *gorm.DB, ownerID, fileName string, raw []byte) (*RecordSummary, error) {
	if len(raw) == 0 || fileName == "" {
		return nil, types.NewValidationError("file required", nil)
	}

	table, err := tabular.Parse(raw)
	if err != nil {
		return nil, types.NewValidationError("unparseable file", err)
	}

	if table.Empty() {
		return nil, types.NewValidationError("no data", nil)
	}

	rec, err := UpsertRecord(db, ownerID, fileName, table)
	if err != nil {
		return nil, err
	}

	summary := summarize(rec)
	return &summary, nil
}
