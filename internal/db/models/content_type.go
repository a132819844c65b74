package models

import "time"

// ContentType is the stable identity of one registrable resource. Real data
// models and virtual resources (dashboard widgets, standalone pages) share
// the same addressable space so grants can target either uniformly.
type ContentType struct {
	// ID is the unique identifier for the content type.
	ID uint `gorm:"primaryKey"`
	// AppLabel is the namespace the resource belongs to (e.g. "blog").
	// Combined with ModelSlug, this forms a unique constraint.
	AppLabel string `gorm:"size:100;not null;uniqueIndex:idx_app_model"`
	// ModelSlug is the lowercase resource name, or a synthetic "kind.slug"
	// for virtual resources.
	ModelSlug string `gorm:"size:100;not null;uniqueIndex:idx_app_model"`
	// DottedName is the canonical "app.model" string used in permission codenames.
	DottedName string `gorm:"size:200;not null"`
	// Virtual marks resources that are not backed by a data model.
	Virtual bool
	// CreatedAt is the timestamp when the content type was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the ContentType model.
func (ContentType) TableName() string {
	return "content_types"
}
