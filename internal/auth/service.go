package auth

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/db/models"
)

// Service provides authorization functionality.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Check evaluates whether a user may perform an action against a content
// type, or globally when contentTypeID is nil. See the package documentation
// for the precedence order.
func (s *Service) Check(user *models.User, action models.PermissionAction, contentTypeID *uint) (bool, error) {
	if user == nil || !user.Active || !user.Staff {
		return false, nil
	}

	if user.Superuser {
		return true, nil
	}

	var count int64

	// Check the user's direct grants
	tx := s.db.Model(&models.UserPermission{}).
		Where("user_id = ? AND action = ?", user.ID, action)
	tx = scopeContentType(tx, contentTypeID)

	if err := tx.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check direct grant: %w", err)
	}

	if count > 0 {
		return true, nil
	}

	// Check grants held by the user's groups
	tx = s.db.Model(&models.GroupPermission{}).
		Joins("JOIN user_groups ON user_groups.group_id = group_permissions.group_id").
		Where("user_groups.user_id = ? AND group_permissions.action = ?", user.ID, action)
	tx = scopeContentType(tx, contentTypeID)

	if err := tx.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check group grant: %w", err)
	}

	return count > 0, nil
}

// scopeContentType narrows a grant query to the per-resource or global
// namespace. A null content_type_id row is a global grant and must never
// match a per-resource check.
func scopeContentType(tx *gorm.DB, contentTypeID *uint) *gorm.DB {
	if contentTypeID == nil {
		return tx.Where("content_type_id IS NULL")
	}

	return tx.Where("content_type_id = ?", *contentTypeID)
}

// CheckAny reports whether the user passes at least one of the given checks.
// Each entry pairs an action with an optional content type.
func (s *Service) CheckAny(user *models.User, checks ...Requirement) (bool, error) {
	for _, req := range checks {
		ok, err := s.Check(user, req.Action, req.ContentTypeID)
		if err != nil {
			return false, err
		}

		if ok {
			return true, nil
		}
	}

	return false, nil
}

// Requirement is one (action, content type) pair for CheckAny.
type Requirement struct {
	Action        models.PermissionAction
	ContentTypeID *uint
}

// GetUserGroups retrieves all groups a user belongs to.
func (s *Service) GetUserGroups(userID uint64) ([]models.Group, error) {
	var groups []models.Group

	err := s.db.Table("groups").
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user groups: %w", err)
	}

	return groups, nil
}
