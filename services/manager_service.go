package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sipstation/bubble-tea-pos-api/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LastManagerMessage is the message returned when a delete would leave no managers
const LastManagerMessage = "Cannot delete the last manager. At least one manager must remain in the system."

// ManagerService maintains the manager allow-list
type ManagerService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewManagerService creates a manager service
func NewManagerService(db *gorm.DB, logger *zap.Logger) *ManagerService {
	return &ManagerService{db: db, logger: logger.Named("managers")}
}

// NormalizeEmail lower-cases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// List returns managers, newest first
func (s *ManagerService) List(ctx context.Context) ([]models.Manager, error) {
	managers := []models.Manager{}
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&managers).Error; err != nil {
		return nil, Persistence(err, "Failed to fetch managers")
	}
	return managers, nil
}

// Find returns the manager with the given email, or nil
func (s *ManagerService) Find(ctx context.Context, email string) (*models.Manager, error) {
	var manager models.Manager
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).Take(&manager).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, Persistence(err, "Failed to check manager status")
	}
	return &manager, nil
}

// IsManager reports whether email is on the allow-list
func (s *ManagerService) IsManager(ctx context.Context, email string) (bool, error) {
	manager, err := s.Find(ctx, email)
	if err != nil {
		return false, err
	}
	return manager != nil, nil
}

// Add puts an email on the allow-list
func (s *ManagerService) Add(ctx context.Context, email string) (*models.Manager, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, Validation("Email is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, Validation("Invalid email format")
	}

	manager := models.Manager{Email: email}
	if err := s.db.WithContext(ctx).Create(&manager).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("Manager already exists")
		}
		return nil, Persistence(err, "Failed to add manager")
	}

	s.logger.Info("Manager added", zap.String("email", email))
	return &manager, nil
}

// Delete removes a manager unless it is the last one. The count check and
// the delete share a transaction; on postgres the table is locked so two
// concurrent deletes cannot both see a count of two.
func (s *ManagerService) Delete(ctx context.Context, id uint) (string, error) {
	var email string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("LOCK TABLE managers IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return err
			}
		}

		var manager models.Manager
		if err := tx.First(&manager, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Manager not found")
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Manager{}).Count(&count).Error; err != nil {
			return err
		}
		if count <= 1 {
			return Conflict(LastManagerMessage)
		}

		if err := tx.Delete(&manager).Error; err != nil {
			return err
		}
		email = manager.Email
		return nil
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return "", svcErr
		}
		return "", Persistence(err, "Failed to delete manager")
	}

	s.logger.Info("Manager deleted", zap.String("email", email))
	return email, nil
}
