// Package registry assigns every registrable resource a stable content-type
// identity. Registration happens during startup; after the one-time
// finalization pass the table is frozen and all lookups are lock-free.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/db/models"
)

var (
	// ErrEmptyAppLabel is returned when an empty app label is provided.
	ErrEmptyAppLabel = errors.New("registry: empty app label provided")
	// ErrEmptyModelSlug is returned when an empty model slug is provided.
	ErrEmptyModelSlug = errors.New("registry: empty model slug provided")
	// ErrConflictingRegistration indicates an attempt to re-register an
	// (app label, model slug) pair with different data.
	ErrConflictingRegistration = errors.New("registry: conflicting content-type registration")
)

// Registry is the process-wide content-type table. Writes happen during the
// single-threaded startup phase; Resolve reads an atomically published
// snapshot and never takes a lock.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*models.ContentType // staged + finalized, keyed app/slug
	order   []string
	nextID  uint

	// snapshot holds the finalized view used by the request path.
	snapshot atomic.Pointer[map[string]models.ContentType]
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*models.ContentType),
	}
}

func key(appLabel, modelSlug string) string {
	return appLabel + "/" + modelSlug
}

// Register stages a content type for the next finalization pass.
// It is idempotent for identical input and fails on a conflicting
// re-registration of the same (app label, model slug) pair.
func (r *Registry) Register(appLabel, modelSlug, dottedName string, virtual bool) (uint, error) {
	if appLabel == "" {
		return 0, ErrEmptyAppLabel
	}

	if modelSlug == "" {
		return 0, ErrEmptyModelSlug
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(appLabel, modelSlug)

	if existing, ok := r.entries[k]; ok {
		if existing.DottedName == dottedName && existing.Virtual == virtual {
			return existing.ID, nil // idempotent re-registration
		}

		return 0, fmt.Errorf("%w: %s already registered as %q (virtual=%v)",
			ErrConflictingRegistration, k, existing.DottedName, existing.Virtual)
	}

	r.nextID++
	r.entries[k] = &models.ContentType{
		ID:         r.nextID,
		AppLabel:   appLabel,
		ModelSlug:  modelSlug,
		DottedName: dottedName,
		Virtual:    virtual,
	}
	r.order = append(r.order, k)

	return r.nextID, nil
}

// Finalize publishes all staged content types. With a database it persists
// each entry (insert-only, existing rows win and supply the ID) so grants can
// reference stable row IDs. Finalize is idempotent and safe to call again:
// re-running only adds content types registered since the last pass, it
// never removes existing ones.
func (r *Registry) Finalize(db *gorm.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if db != nil {
		for _, k := range r.order {
			entry := r.entries[k]

			var row models.ContentType

			err := db.Where("app_label = ? AND model_slug = ?", entry.AppLabel, entry.ModelSlug).
				Attrs(models.ContentType{
					AppLabel:   entry.AppLabel,
					ModelSlug:  entry.ModelSlug,
					DottedName: entry.DottedName,
					Virtual:    entry.Virtual,
				}).
				FirstOrCreate(&row).Error
			if err != nil {
				return fmt.Errorf("registry: failed to persist content type %s: %w", k, err)
			}

			entry.ID = row.ID
		}
	}

	snap := make(map[string]models.ContentType, len(r.entries))
	for k, entry := range r.entries {
		snap[k] = *entry
	}

	r.snapshot.Store(&snap)

	return nil
}

// Resolve returns the content type for an (app label, model slug) pair.
// It returns false for everything until Finalize has run: permission lookups
// performed before finalization must fail closed rather than silently match.
func (r *Registry) Resolve(appLabel, modelSlug string) (models.ContentType, bool) {
	snap := r.snapshot.Load()
	if snap == nil {
		return models.ContentType{}, false
	}

	ct, ok := (*snap)[key(appLabel, modelSlug)]

	return ct, ok
}

// Entries returns a snapshot of all finalized content types in registration order.
func (r *Registry) Entries() []models.ContentType {
	snap := r.snapshot.Load()
	if snap == nil {
		return nil
	}

	r.mu.Lock()
	order := make([]string, len(r.order))
	copy(order, r.order)
	r.mu.Unlock()

	out := make([]models.ContentType, 0, len(*snap))

	for _, k := range order {
		if ct, ok := (*snap)[k]; ok {
			out = append(out, ct)
		}
	}

	return out
}
