package models

import "time"

// Group represents a user group. A user's effective permissions are the
// union of their direct grants and the grants held by every group they
// belong to.
type Group struct {
	// ID is the unique identifier for the group.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique display name of the group.
	Name string `gorm:"unique;size:100;not null" json:"name"`
	// Description provides a human-readable explanation of the group's purpose.
	Description string `gorm:"size:255" json:"description"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Group model.
func (Group) TableName() string {
	return "groups"
}
