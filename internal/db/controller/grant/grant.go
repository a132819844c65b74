// Package grant provides CRUD operations for issuing and revoking permission grants.
package grant

import (
	"errors"

	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrInvalidAction is returned when the action is not one of view, add, change, delete.
	ErrInvalidAction = errors.New("invalid grant action")
	// ErrGrantNotFound is returned when revoking a grant that does not exist.
	ErrGrantNotFound = errors.New("grant not found")
)

// GrantToUser issues a grant to a user. Issuing change or delete also issues
// view for the same content type, so a subject that may modify an object can
// always see it. The reverse direction is never inferred at check time.
func GrantToUser(db *gorm.DB, userID uint64, contentTypeID *uint, action models.PermissionAction) error {
	if db == nil {
		return ErrDBNil
	}
	if !models.ValidAction(action) {
		return ErrInvalidAction
	}

	for _, a := range withImpliedView(action) {
		perm := models.UserPermission{UserID: userID, ContentTypeID: contentTypeID, Action: a}

		err := db.Where(userGrantQuery(contentTypeID), userGrantArgs(userID, contentTypeID, a)...).
			FirstOrCreate(&perm).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// RevokeFromUser removes a single grant from a user. Implied view grants are
// not revoked automatically.
func RevokeFromUser(db *gorm.DB, userID uint64, contentTypeID *uint, action models.PermissionAction) error {
	if db == nil {
		return ErrDBNil
	}
	if !models.ValidAction(action) {
		return ErrInvalidAction
	}

	result := db.Where(userGrantQuery(contentTypeID), userGrantArgs(userID, contentTypeID, action)...).
		Delete(&models.UserPermission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGrantNotFound
	}

	return nil
}

// GrantToGroup issues a grant to a group, with the same implied-view policy
// as GrantToUser.
func GrantToGroup(db *gorm.DB, groupID uint, contentTypeID *uint, action models.PermissionAction) error {
	if db == nil {
		return ErrDBNil
	}
	if !models.ValidAction(action) {
		return ErrInvalidAction
	}

	for _, a := range withImpliedView(action) {
		perm := models.GroupPermission{GroupID: groupID, ContentTypeID: contentTypeID, Action: a}

		err := db.Where(groupGrantQuery(contentTypeID), groupGrantArgs(groupID, contentTypeID, a)...).
			FirstOrCreate(&perm).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// RevokeFromGroup removes a single grant from a group.
func RevokeFromGroup(db *gorm.DB, groupID uint, contentTypeID *uint, action models.PermissionAction) error {
	if db == nil {
		return ErrDBNil
	}
	if !models.ValidAction(action) {
		return ErrInvalidAction
	}

	result := db.Where(groupGrantQuery(contentTypeID), groupGrantArgs(groupID, contentTypeID, action)...).
		Delete(&models.GroupPermission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGrantNotFound
	}

	return nil
}

// withImpliedView expands change and delete into the grant itself plus view.
func withImpliedView(action models.PermissionAction) []models.PermissionAction {
	if action == models.ActionChange || action == models.ActionDelete {
		return []models.PermissionAction{action, models.ActionView}
	}

	return []models.PermissionAction{action}
}

func userGrantQuery(contentTypeID *uint) string {
	if contentTypeID == nil {
		return "user_id = ? AND content_type_id IS NULL AND action = ?"
	}

	return "user_id = ? AND content_type_id = ? AND action = ?"
}

func userGrantArgs(userID uint64, contentTypeID *uint, action models.PermissionAction) []any {
	if contentTypeID == nil {
		return []any{userID, action}
	}

	return []any{userID, *contentTypeID, action}
}

func groupGrantQuery(contentTypeID *uint) string {
	if contentTypeID == nil {
		return "group_id = ? AND content_type_id IS NULL AND action = ?"
	}

	return "group_id = ? AND content_type_id = ? AND action = ?"
}

func groupGrantArgs(groupID uint, contentTypeID *uint, action models.PermissionAction) []any {
	if contentTypeID == nil {
		return []any{groupID, action}
	}

	return []any{groupID, *contentTypeID, action}
}
