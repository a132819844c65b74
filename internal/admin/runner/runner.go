// Package runner executes bulk actions against a selection scope. Small
// selections run synchronously and return a full result inline; selections
// over the batch threshold are deferred to a background task processed in
// bounded-size batches. There is no cross-batch rollback: a failure partway
// leaves completed batches applied, visible through the affected and error
// counts.
package runner

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/adminforge/adminforge/internal/admin/adapter"
	"github.com/adminforge/adminforge/internal/admin/descriptor"
	"github.com/adminforge/adminforge/internal/admin/scope"
	"github.com/adminforge/adminforge/internal/db/models"
)

// Result is the outcome of one Run call. A deferred run reports background
// true and a task handle instead of inline counts.
type Result struct {
	OK         bool        `json:"ok"`
	Background bool        `json:"background,omitempty"`
	TaskHandle string      `json:"task_handle,omitempty"`
	Affected   int64       `json:"affected"`
	Errors     []ItemError `json:"errors"`
}

// Runner resolves selection scopes and executes bulk actions.
type Runner struct {
	codec     *scope.TokenCodec
	threshold int
	batchSize int
	tasks     *TaskStore
}

// New creates a runner. Selections larger than threshold are deferred;
// execution proceeds batchSize objects at a time either way.
func New(codec *scope.TokenCodec, threshold, batchSize int, tasks *TaskStore) *Runner {
	return &Runner{codec: codec, threshold: threshold, batchSize: batchSize, tasks: tasks}
}

// Tasks exposes the task store for status lookups.
func (r *Runner) Tasks() *TaskStore {
	return r.tasks
}

// IssueToken signs the scope for the descriptor's content type.
func (r *Runner) IssueToken(d *descriptor.Descriptor, sc scope.Scope) (string, error) {
	return r.codec.Issue(d.DottedName(), sc)
}

// ResolveToken verifies a scope token against the descriptor's content type.
func (r *Runner) ResolveToken(d *descriptor.Descriptor, raw string) (scope.Scope, error) {
	return r.codec.Resolve(raw, d.DottedName())
}

// ResolveScope turns a scope into a queryset. An ids scope resolves directly
// against the resource; a query scope re-derives the list queryset for the
// subject, so it is narrowed by the same row-level rules as browsing, then
// applies the stored search and filters on top.
func (r *Runner) ResolveScope(d *descriptor.Descriptor, sc scope.Scope, user *models.User) (adapter.QuerySet, error) {
	if err := sc.Validate(); err != nil {
		return nil, newValidationError("scope", err.Error())
	}

	if d.Resource == nil {
		return nil, fmt.Errorf("%w: %s", descriptor.ErrNoResource, d.DottedName())
	}

	if sc.Kind == scope.KindIDs {
		return d.Resource.Base().Filter(adapter.Filter{
			Field: d.Resource.IDField(),
			Op:    adapter.OpIn,
			Value: adapter.IDValues(sc.IDs),
		}), nil
	}

	qs, err := d.ListQuery(user)
	if err != nil {
		return nil, err
	}

	for _, f := range sc.Filters {
		qs = qs.Filter(f)
	}

	return qs.Search(d.SearchFields, sc.Search), nil
}

// Preview returns the current size of a selection.
func (r *Runner) Preview(d *descriptor.Descriptor, sc scope.Scope, user *models.User) (int64, error) {
	qs, err := r.ResolveScope(d, sc, user)
	if err != nil {
		return 0, err
	}

	return qs.Count()
}

// Run executes a named action over a scope. Parameters are validated against
// the action's declared schema first, and destructive actions demand
// confirm: true before any object is touched.
func (r *Runner) Run(d *descriptor.Descriptor, name string, sc scope.Scope, params map[string]any, user *models.User) (*Result, error) {
	spec, ok := d.Action(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}

	if !spec.AllowsKind(sc.Kind) {
		return nil, newValidationError("scope", fmt.Sprintf("action %s does not accept %s scopes", name, sc.Kind))
	}

	if err := validateParams(spec, params); err != nil {
		return nil, err
	}

	if spec.Destructive {
		if confirm, _ := params["confirm"].(bool); !confirm {
			return nil, newValidationError("confirm", "destructive action requires confirm: true")
		}
	}

	qs, err := r.ResolveScope(d, sc, user)
	if err != nil {
		return nil, err
	}

	count, err := qs.Count()
	if err != nil {
		return nil, err
	}

	if count > int64(r.threshold) {
		handle := r.tasks.Create(d.DottedName(), name)

		go r.runDeferred(d, spec, sc, user, params, handle)

		return &Result{OK: true, Background: true, TaskHandle: handle, Errors: []ItemError{}}, nil
	}

	affected, _, errs, _, err := r.processBatches(d, spec, sc, user, params, "")
	if err != nil {
		return nil, err
	}

	if errs == nil {
		errs = []ItemError{}
	}

	return &Result{OK: len(errs) == 0, Affected: affected, Errors: errs}, nil
}

func (r *Runner) runDeferred(d *descriptor.Descriptor, spec descriptor.ActionSpec, sc scope.Scope, user *models.User, params map[string]any, handle string) {
	_, _, _, cancelled, err := r.processBatches(d, spec, sc, user, params, handle)
	if err != nil {
		log.Error().Err(err).Str("resource", d.DottedName()).Str("action", spec.Name).
			Str("task_handle", handle).Msg("deferred action aborted")

		r.tasks.Checkpoint(handle, 0, 0, []ItemError{{Message: err.Error()}})
	}

	status := StatusDone
	if cancelled {
		status = StatusCancelled
	}

	r.tasks.Finish(handle, status)

	log.Info().Str("resource", d.DottedName()).Str("action", spec.Name).
		Str("task_handle", handle).Str("status", string(status)).Msg("deferred action finished")
}

// processBatches walks the selection in id order, batchSize objects at a
// time, re-resolving the scope before each batch so the walk never holds the
// full selection in memory. Per-batch failures are collected per id and the
// walk continues.
func (r *Runner) processBatches(d *descriptor.Descriptor, spec descriptor.ActionSpec, sc scope.Scope, user *models.User, params map[string]any, handle string) (int64, int64, []ItemError, bool, error) {
	idField := d.Resource.IDField()

	var (
		affected  int64
		processed int64
		errs      []ItemError
		last      string
	)

	for {
		if handle != "" && r.tasks.Cancelled(handle) {
			return affected, processed, errs, true, nil
		}

		qs, err := r.ResolveScope(d, sc, user)
		if err != nil {
			return affected, processed, errs, false, err
		}

		if last != "" {
			qs = qs.Filter(adapter.Filter{Field: idField, Op: adapter.OpGt, Value: adapter.IDValue(last)})
		}

		ids, err := qs.Order(idField, false).Limit(r.batchSize).IDs()
		if err != nil {
			return affected, processed, errs, false, err
		}

		if len(ids) == 0 {
			return affected, processed, errs, false, nil
		}

		batch := d.Resource.Base().Filter(adapter.Filter{Field: idField, Op: adapter.OpIn, Value: adapter.IDValues(ids)})

		var batchErrs []ItemError

		n, err := spec.Apply(batch, params)
		if err != nil {
			for _, id := range ids {
				batchErrs = append(batchErrs, ItemError{ID: id, Message: err.Error()})
			}
		} else {
			affected += n
		}

		processed += int64(len(ids))
		errs = append(errs, batchErrs...)

		if handle != "" {
			r.tasks.Checkpoint(handle, n, int64(len(ids)), batchErrs)
		}

		last = ids[len(ids)-1]
	}
}

// validateParams checks the given parameters against the action's declared
// schema: unknown parameters and missing required ones are rejected, as are
// values of the wrong kind. The confirm flag is implicit on every action.
func validateParams(spec descriptor.ActionSpec, params map[string]any) error {
	declared := make(map[string]descriptor.ActionParam, len(spec.Params))
	for _, p := range spec.Params {
		declared[p.Name] = p
	}

	fields := map[string]string{}

	for name := range params {
		if name == "confirm" {
			continue
		}

		if _, ok := declared[name]; !ok {
			fields[name] = "unknown parameter"
		}
	}

	for _, p := range spec.Params {
		value, present := params[p.Name]
		if !present || value == nil {
			if p.Required {
				fields[p.Name] = "required"
			}

			continue
		}

		if msg := checkParamValue(p, value); msg != "" {
			fields[p.Name] = msg
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return nil
}

func checkParamValue(p descriptor.ActionParam, value any) string {
	switch p.Kind {
	case adapter.KindString:
		s, ok := value.(string)
		if !ok {
			return "must be a string"
		}

		if len(p.Choices) > 0 && !contains(p.Choices, s) {
			return "not a valid choice"
		}
	case adapter.KindInt, adapter.KindFloat:
		switch value.(type) {
		case float64, int, int64:
		default:
			return "must be a number"
		}
	case adapter.KindBool:
		if _, ok := value.(bool); !ok {
			return "must be a boolean"
		}
	}

	return ""
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}

	return false
}
