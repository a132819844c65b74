// Package descriptor holds the per-resource configuration of the admin
// runtime: which fields are listed and editable, how querysets are shaped,
// and which bulk actions are offered. A Descriptor is host configuration,
// so mistakes in it are configuration errors, not request errors.
package descriptor

import (
	"errors"
	"fmt"

	"github.com/adminforge/adminforge/internal/admin/adapter"
	"github.com/adminforge/adminforge/internal/db/models"
)

var (
	// ErrDuplicateAction is returned when two actions share a name.
	ErrDuplicateAction = errors.New("duplicate action name")
	// ErrUnknownField is returned when a descriptor references a field its
	// resource does not expose.
	ErrUnknownField = errors.New("descriptor references unknown field")
	// ErrHookReturnedNil is returned when a queryset hook returns nil instead
	// of a queryset.
	ErrHookReturnedNil = errors.New("queryset hook returned nil")
	// ErrNoResource is returned for a descriptor without a storage resource.
	ErrNoResource = errors.New("descriptor has no resource")
)

// Hook reshapes a queryset for the requesting user. A hook must return a
// queryset; returning nil is a configuration error. Hooks must tolerate a
// nil user: the pipeline shapes are dry-run once at startup without one.
type Hook func(qs adapter.QuerySet, user *models.User) adapter.QuerySet

// Hooks are the queryset customization points. Unset hooks are skipped.
// RowLevel runs last in every read pipeline that uses it, so no later stage
// can widen the visible set again.
type Hooks struct {
	// Base replaces the initial full-table queryset.
	Base Hook
	// Prefetch attaches related data for list and object reads.
	Prefetch Hook
	// Project narrows the projected columns for list rows.
	Project Hook
	// FormPrefetch attaches the related data needed to render and validate
	// forms.
	FormPrefetch Hook
	// RowLevel narrows the visible rows per user.
	RowLevel Hook
}

// Descriptor configures the administration of one content type.
type Descriptor struct {
	// AppLabel and ModelSlug identify the content type in the registry.
	AppLabel  string
	ModelSlug string
	// Label is the human-readable name shown in listings.
	Label string
	// Resource is the storage adapter behind this content type. Virtual
	// content types have none.
	Resource adapter.Resource
	// ListFields are the columns projected into list rows.
	ListFields []string
	// FormFields are the fields exposed on create and edit forms.
	FormFields []string
	// SearchFields are the columns targeted by the free-text search.
	SearchFields []string
	// PerPage is the list page size. Zero means DefaultPerPage.
	PerPage int
	// Hooks customize the query pipelines.
	Hooks Hooks

	actions     map[string]ActionSpec
	actionOrder []string
}

// DefaultPerPage is the list page size when a descriptor does not set one.
const DefaultPerPage = 25

// DottedName returns the content type identifier "{app}.{model}".
func (d *Descriptor) DottedName() string {
	return d.AppLabel + "." + d.ModelSlug
}

// PageSize returns the effective list page size.
func (d *Descriptor) PageSize() int {
	if d.PerPage > 0 {
		return d.PerPage
	}

	return DefaultPerPage
}

// AddAction registers a bulk action. Action names are unique per descriptor.
func (d *Descriptor) AddAction(spec ActionSpec) error {
	if d.actions == nil {
		d.actions = make(map[string]ActionSpec)
	}

	if _, exists := d.actions[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAction, spec.Name)
	}

	d.actions[spec.Name] = spec
	d.actionOrder = append(d.actionOrder, spec.Name)

	return nil
}

// Action looks up a registered action by name.
func (d *Descriptor) Action(name string) (ActionSpec, bool) {
	spec, ok := d.actions[name]

	return spec, ok
}

// Actions lists the registered actions in registration order.
func (d *Descriptor) Actions() []ActionSpec {
	specs := make([]ActionSpec, 0, len(d.actionOrder))
	for _, name := range d.actionOrder {
		specs = append(specs, d.actions[name])
	}

	return specs
}

// Validate checks the descriptor's field references against its resource.
// Virtual descriptors (no resource) only need an identity.
func (d *Descriptor) Validate() error {
	if d.AppLabel == "" || d.ModelSlug == "" {
		return fmt.Errorf("%w: missing app label or model slug", ErrUnknownField)
	}

	if d.Resource == nil {
		if len(d.ListFields) > 0 || len(d.FormFields) > 0 || len(d.SearchFields) > 0 {
			return ErrNoResource
		}

		return nil
	}

	known := make(map[string]struct{})
	for _, f := range d.Resource.Fields() {
		known[f.Name] = struct{}{}
	}

	for _, group := range [][]string{d.ListFields, d.FormFields, d.SearchFields} {
		for _, name := range group {
			if _, ok := known[name]; !ok {
				return fmt.Errorf("%w: %s (%s)", ErrUnknownField, name, d.DottedName())
			}
		}
	}

	return nil
}
