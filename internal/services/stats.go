package services

import (
	"errors"
	"time"

	"github.com/sheetcharts/sheetcharts/internal/models"
	"github.com/sheetcharts/sheetcharts/internal/types"
	"gorm.io/gorm"
)

// AdminStats aggregates usage numbers for the admin dashboard.
type AdminStats struct {
	TotalUsers        int64            `json:"totalUsers"`
	TotalExcelFiles   int64            `json:"totalExcelFiles"`
	ActiveUsers       int64            `json:"activeUsers"`
	UsersWithoutFiles int64            `json:"usersWithoutFiles"`
	RoleDistribution  map[string]int64 `json:"roleDistribution"`
	RecentUsers       []models.User    `json:"recentUsers"`
	NewUsers          int64            `json:"newUsers"`
}

// UserStats is the per-user dashboard view: whether a current file exists and
// which one it is.
type UserStats struct {
	HasExcelFile bool       `json:"hasExcelFile"`
	FileName     *string    `json:"fileName"`
	UploadTime   *time.Time `json:"uploadTime"`
}

// DashboardStats collects the admin aggregates: totals, distinct active
// owners, role distribution, the five newest accounts and signups over the
// last 30 days.
func DashboardStats(db *gorm.DB) (*AdminStats, error) {
	stats := &AdminStats{
		RoleDistribution: make(map[string]int64),
	}

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	var err error
	if stats.TotalExcelFiles, err = CountRecords(db); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = CountDistinctOwners(db); err != nil {
		return nil, err
	}
	stats.UsersWithoutFiles = stats.TotalUsers - stats.ActiveUsers

	var roleCounts []struct {
		Role  string
		Count int64
	}
	err = db.Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&roleCounts).Error
	if err != nil {
		return nil, err
	}
	for _, rc := range roleCounts {
		stats.RoleDistribution[rc.Role] = rc.Count
	}

	err = db.Select("id", "name", "email", "role", "created_at").
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentUsers).Error
	if err != nil {
		return nil, err
	}

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	err = db.Model(&models.User{}).
		Where("created_at >= ?", thirtyDaysAgo).
		Count(&stats.NewUsers).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// OwnerDashboardStats reports whether the owner has a current file and its
// summary fields. Owners with no uploads get a stats object, not an error.
func OwnerDashboardStats(db *gorm.DB, ownerID string) (*UserStats, error) {
	rec, err := LatestRecordByOwner(db, ownerID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return &UserStats{}, nil
		}
		return nil, err
	}

	return &UserStats{
		HasExcelFile: true,
		FileName:     &rec.FileName,
		UploadTime:   &rec.UploadTime,
	}, nil
}
