package services

import (
	"errors"

	"github.com/sheetcharts/sheetcharts/internal/models"
	"github.com/sheetcharts/sheetcharts/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterUser creates a new account with a bcrypt-hashed password. Role
// defaults to "user". A duplicate email is rejected whether it is caught by
// the pre-check or by the unique index.
func RegisterUser(db *gorm.DB, name, email, password, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, types.ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		// Two concurrent registrations can both pass the pre-check; the
		// unique index on email decides.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.ErrEmailExists
		}
		return nil, err
	}

	return &user, nil
}

// AuthenticateUser verifies email and password, returning the user if valid.
// Unknown emails and wrong passwords are reported identically.
func AuthenticateUser(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, types.ErrInvalidCredentials
	}

	return &user, nil
}

// GetUserByID returns a user by id or types.ErrNotFound.
func GetUserByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns users ordered by creation time descending with limit/skip
// pagination.
func ListUsers(db *gorm.DB, limit, skip int) ([]models.User, int64, bool, error) {
	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, false, err
	}

	var users []models.User
	err := db.Order("created_at DESC").
		Limit(limit).
		Offset(skip).
		Find(&users).Error
	if err != nil {
		return nil, 0, false, err
	}

	hasMore := total > int64(skip+len(users))
	return users, total, hasMore, nil
}

// DeleteUser removes an account and cascades to every record it owns, in one
// transaction. requesterID guards against an admin deleting themselves.
func DeleteUser(db *gorm.DB, userID, requesterID string) error {
	if userID == requesterID {
		return types.ErrSelfDelete
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := DeleteRecordsByOwner(tx, userID); err != nil {
			return err
		}

		result := tx.Where("id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}
