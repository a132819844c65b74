package descriptor

import (
	"fmt"

	"github.com/adminforge/adminforge/internal/admin/adapter"
	"github.com/adminforge/adminforge/internal/db/models"
)

// ListQuery builds the queryset backing list pages: base, prefetch,
// projection, then row-level narrowing.
func (d *Descriptor) ListQuery(user *models.User) (adapter.QuerySet, error) {
	return d.pipeline(user, "list", d.Hooks.Base, d.Hooks.Prefetch, d.Hooks.Project, d.Hooks.RowLevel)
}

// ObjectQuery builds the queryset backing single-object reads: base and
// prefetch, then row-level narrowing. No projection, detail views show every
// exposed field.
func (d *Descriptor) ObjectQuery(user *models.User) (adapter.QuerySet, error) {
	return d.pipeline(user, "object", d.Hooks.Base, d.Hooks.Prefetch, d.Hooks.RowLevel)
}

// FormQuery builds the queryset backing form rendering and validation: base
// and the write-oriented prefetch. Row-level narrowing belongs to the read
// shapes; write gating happens through permissions.
func (d *Descriptor) FormQuery(user *models.User) (adapter.QuerySet, error) {
	return d.pipeline(user, "form", d.Hooks.Base, d.Hooks.FormPrefetch)
}

func (d *Descriptor) pipeline(user *models.User, shape string, hooks ...Hook) (adapter.QuerySet, error) {
	if d.Resource == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoResource, d.DottedName())
	}

	qs := d.Resource.Base()

	for _, hook := range hooks {
		if hook == nil {
			continue
		}

		qs = hook(qs, user)
		if qs == nil {
			return nil, fmt.Errorf("%w: %s %s pipeline", ErrHookReturnedNil, d.DottedName(), shape)
		}
	}

	return qs, nil
}
