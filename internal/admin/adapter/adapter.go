// Package adapter defines the storage abstraction the admin runtime is built
// on. A Resource exposes field metadata and a base QuerySet; every read and
// write the runtime performs flows through a QuerySet, so the rest of the
// system never talks to the database layer directly.
package adapter

import "errors"

var (
	// ErrNotFound is returned when a single-object lookup matches nothing.
	ErrNotFound = errors.New("object not found")
	// ErrUnknownField is returned when a filter, order or projection names a
	// field the resource does not expose.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnsupportedOp is returned for filter operators outside the supported set.
	ErrUnsupportedOp = errors.New("unsupported filter operator")
)

// Op is a filter operator.
type Op string

// Supported filter operators.
const (
	OpEq        Op = "eq"
	OpIContains Op = "icontains"
	OpGte       Op = "gte"
	OpLte       Op = "lte"
	OpGt        Op = "gt"
	OpLt        Op = "lt"
	OpIn        Op = "in"
)

// ValidOp reports whether op is a supported filter operator.
func ValidOp(op Op) bool {
	switch op {
	case OpEq, OpIContains, OpGte, OpLte, OpGt, OpLt, OpIn:
		return true
	}

	return false
}

// Filter is a single field predicate.
type Filter struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// Kind classifies a field for schema generation and input coercion.
type Kind string

// Field kinds.
const (
	KindString   Kind = "string"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindBool     Kind = "bool"
	KindTime     Kind = "time"
	KindRelation Kind = "relation"
)

// RelationMeta describes how a relation field joins to its target table.
type RelationMeta struct {
	// Table is the related table.
	Table string
	// ForeignKey is the column on the owning table holding the target id.
	ForeignKey string
	// TargetID is the id column on the related table.
	TargetID string
}

// FieldMeta describes one exposed field of a resource. Name is the storage
// column name and doubles as the wire name.
type FieldMeta struct {
	Name     string
	Kind     Kind
	Required bool
	Choices  []string
	Relation *RelationMeta
}

// Resource is one administered storage entity.
type Resource interface {
	// Fields lists the exposed fields in declaration order.
	Fields() []FieldMeta
	// IDField names the primary key field.
	IDField() string
	// Base returns a fresh QuerySet over the full table. Each call returns an
	// independent builder; a QuerySet is single-use.
	Base() QuerySet
}

// QuerySet is a lazily built query. Shape methods return a derived QuerySet
// and never touch storage; only the terminal methods execute. An invalid
// shape call (unknown field, bad operator) poisons the QuerySet and the
// error surfaces from whichever terminal method runs.
type QuerySet interface {
	Filter(f Filter) QuerySet
	Search(fields []string, term string) QuerySet
	Order(field string, desc bool) QuerySet
	Select(fields []string) QuerySet
	Preload(relations []string) QuerySet
	Limit(n int) QuerySet
	Offset(n int) QuerySet

	Count() (int64, error)
	All() ([]map[string]any, error)
	Get(id string) (map[string]any, error)
	IDs() ([]string, error)
	Create(values map[string]any) (map[string]any, error)
	Update(values map[string]any) (int64, error)
	Delete() (int64, error)
}
