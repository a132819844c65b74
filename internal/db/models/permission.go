package models

import "time"

// PermissionAction enumerates the actions a grant can allow.
type PermissionAction string

const (
	// ActionView allows listing and reading objects of a content type.
	ActionView PermissionAction = "view"
	// ActionAdd allows creating objects of a content type.
	ActionAdd PermissionAction = "add"
	// ActionChange allows updating objects of a content type.
	ActionChange PermissionAction = "change"
	// ActionDelete allows deleting objects of a content type.
	ActionDelete PermissionAction = "delete"
)

// ValidAction reports whether a is one of the four known actions.
func ValidAction(a PermissionAction) bool {
	switch a {
	case ActionView, ActionAdd, ActionChange, ActionDelete:
		return true
	default:
		return false
	}
}

// UserPermission grants one action to one user, scoped either to a specific
// content type or globally when ContentTypeID is null. Global and
// per-resource grants are distinct namespaces: one never satisfies the other.
type UserPermission struct {
	// ID is the unique identifier for the grant.
	ID uint `gorm:"primaryKey"`
	// UserID is the ID of the user holding the grant.
	UserID uint64 `gorm:"not null;index;uniqueIndex:idx_user_grant"`
	// ContentTypeID is the target content type, or null for a global grant.
	ContentTypeID *uint `gorm:"uniqueIndex:idx_user_grant"`
	// Action is the allowed action (view, add, change, delete).
	Action PermissionAction `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_grant"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// ContentType is the associated content type (loaded via foreign key).
	ContentType *ContentType `gorm:"foreignKey:ContentTypeID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the grant was issued (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the UserPermission model.
func (UserPermission) TableName() string {
	return "user_permissions"
}

// GroupPermission grants one action to every member of a group, scoped
// either to a specific content type or globally when ContentTypeID is null.
type GroupPermission struct {
	// ID is the unique identifier for the grant.
	ID uint `gorm:"primaryKey"`
	// GroupID is the ID of the group holding the grant.
	GroupID uint `gorm:"not null;index;uniqueIndex:idx_group_grant"`
	// ContentTypeID is the target content type, or null for a global grant.
	ContentTypeID *uint `gorm:"uniqueIndex:idx_group_grant"`
	// Action is the allowed action (view, add, change, delete).
	Action PermissionAction `gorm:"type:varchar(20);not null;uniqueIndex:idx_group_grant"`
	// Group is the associated group (loaded via foreign key).
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// ContentType is the associated content type (loaded via foreign key).
	ContentType *ContentType `gorm:"foreignKey:ContentTypeID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the grant was issued (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the GroupPermission model.
func (GroupPermission) TableName() string {
	return "group_permissions"
}
