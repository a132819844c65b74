package descriptor

import (
	"github.com/adminforge/adminforge/internal/admin/adapter"
	"github.com/adminforge/adminforge/internal/admin/scope"
	"github.com/adminforge/adminforge/internal/db/models"
)

// ActionParam describes one input parameter of a bulk action.
type ActionParam struct {
	Name     string       `json:"name"`
	Kind     adapter.Kind `json:"kind"`
	Required bool         `json:"required"`
	Choices  []string     `json:"choices,omitempty"`
}

// ApplyFunc executes an action against one batch. The queryset is already
// narrowed to the batch's rows; the function returns how many objects it
// affected.
type ApplyFunc func(qs adapter.QuerySet, params map[string]any) (int64, error)

// ActionSpec declares one bulk action of a descriptor.
type ActionSpec struct {
	// Name is the action identifier used on the wire.
	Name string
	// Label is the human-readable name.
	Label string
	// Destructive actions require an explicit confirmation on run.
	Destructive bool
	// RequiredPerm is the per-resource permission the subject must hold.
	RequiredPerm models.PermissionAction
	// ScopeKinds restricts which scope kinds the action accepts. Empty means
	// both ids and query scopes.
	ScopeKinds []scope.Kind
	// Params declares the action's input parameters.
	Params []ActionParam
	// Apply runs the action against one batch.
	Apply ApplyFunc
}

// AllowsKind reports whether the action accepts the given scope kind.
func (a ActionSpec) AllowsKind(k scope.Kind) bool {
	if len(a.ScopeKinds) == 0 {
		return true
	}

	for _, allowed := range a.ScopeKinds {
		if allowed == k {
			return true
		}
	}

	return false
}

// DeleteSelected returns the standard destructive bulk-delete action.
func DeleteSelected() ActionSpec {
	return ActionSpec{
		Name:         "delete_selected",
		Label:        "Delete selected",
		Destructive:  true,
		RequiredPerm: models.ActionDelete,
		Apply: func(qs adapter.QuerySet, _ map[string]any) (int64, error) {
			return qs.Delete()
		},
	}
}
