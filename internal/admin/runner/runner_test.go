package runner

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/admin/adapter"
	"github.com/adminforge/adminforge/internal/admin/descriptor"
	"github.com/adminforge/adminforge/internal/admin/scope"
	"github.com/adminforge/adminforge/internal/db/models"
)

type ticket struct {
	ID     uint64 `gorm:"primaryKey" json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

func setupRunner(t *testing.T, rows, threshold, batchSize int) (*Runner, *descriptor.Descriptor, adapter.Resource) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, db.AutoMigrate(&ticket{}))

	for i := 1; i <= rows; i++ {
		require.NoError(t, db.Create(&ticket{Title: fmt.Sprintf("ticket %d", i), Status: "open"}).Error)
	}

	fields := []adapter.FieldMeta{
		{Name: "id", Kind: adapter.KindInt},
		{Name: "title", Kind: adapter.KindString, Required: true},
		{Name: "status", Kind: adapter.KindString, Choices: []string{"open", "closed"}},
	}
	res := adapter.NewGormResource(db, "tickets", "id", fields, func() any { return &ticket{} })

	d := &descriptor.Descriptor{
		AppLabel:     "support",
		ModelSlug:    "ticket",
		Resource:     res,
		SearchFields: []string{"title"},
	}
	require.NoError(t, d.AddAction(descriptor.DeleteSelected()))
	require.NoError(t, d.AddAction(descriptor.ActionSpec{
		Name:         "set_status",
		Label:        "Set status",
		RequiredPerm: models.ActionChange,
		Params: []descriptor.ActionParam{
			{Name: "status", Kind: adapter.KindString, Required: true, Choices: []string{"open", "closed"}},
		},
		Apply: func(qs adapter.QuerySet, params map[string]any) (int64, error) {
			return qs.Update(map[string]any{"status": params["status"]})
		},
	}))

	codec := scope.NewTokenCodec("test-secret", time.Minute)
	r := New(codec, threshold, batchSize, NewTaskStore())

	return r, d, res
}

func allScope() scope.Scope {
	return scope.Scope{Kind: scope.KindQuery}
}

func TestRunSynchronousAtThreshold(t *testing.T) {
	r, d, res := setupRunner(t, 5, 5, 2)

	result, err := r.Run(d, "delete_selected", allScope(), map[string]any{"confirm": true}, nil)
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.False(t, result.Background)
	assert.EqualValues(t, 5, result.Affected)
	assert.Empty(t, result.Errors)

	count, err := res.Base().Count()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestRunDeferredOverThreshold(t *testing.T) {
	r, d, res := setupRunner(t, 6, 5, 2)

	result, err := r.Run(d, "delete_selected", allScope(), map[string]any{"confirm": true}, nil)
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.True(t, result.Background)
	require.NotEmpty(t, result.TaskHandle)
	assert.EqualValues(t, 0, result.Affected, "deferred runs report progress via the task, not inline")

	require.Eventually(t, func() bool {
		task, ok := r.Tasks().Get(result.TaskHandle)
		return ok && task.Status == StatusDone
	}, 5*time.Second, 10*time.Millisecond)

	task, ok := r.Tasks().Get(result.TaskHandle)
	require.True(t, ok)
	assert.EqualValues(t, 6, task.Affected)
	assert.EqualValues(t, 6, task.Processed)
	assert.Empty(t, task.Errors)
	require.NotNil(t, task.FinishedAt)

	count, err := res.Base().Count()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestDestructiveConfirmGate(t *testing.T) {
	r, d, res := setupRunner(t, 3, 100, 50)

	_, err := r.Run(d, "delete_selected", allScope(), map[string]any{}, nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "confirm")

	count, err := res.Base().Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count, "no object may be touched before the confirm gate")

	// confirm must be boolean true, not merely present
	_, err = r.Run(d, "delete_selected", allScope(), map[string]any{"confirm": "yes"}, nil)
	require.ErrorAs(t, err, &verr)
}

func TestParamValidation(t *testing.T) {
	r, d, _ := setupRunner(t, 2, 100, 50)

	testCases := []struct {
		name      string
		params    map[string]any
		wantField string
	}{
		{"missing required", map[string]any{}, "status"},
		{"unknown param", map[string]any{"status": "closed", "priority": 1}, "priority"},
		{"wrong kind", map[string]any{"status": 5}, "status"},
		{"bad choice", map[string]any{"status": "archived"}, "status"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Run(d, "set_status", allScope(), tc.params, nil)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.wantField)
		})
	}

	result, err := r.Run(d, "set_status", allScope(), map[string]any{"status": "closed"}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Affected)
}

func TestUnknownActionAndScopeKind(t *testing.T) {
	r, d, _ := setupRunner(t, 2, 100, 50)

	_, err := r.Run(d, "frobnicate", allScope(), nil, nil)
	assert.ErrorIs(t, err, ErrUnknownAction)

	require.NoError(t, d.AddAction(descriptor.ActionSpec{
		Name:       "ids_only",
		ScopeKinds: []scope.Kind{scope.KindIDs},
		Apply:      func(qs adapter.QuerySet, _ map[string]any) (int64, error) { return 0, nil },
	}))

	var verr *ValidationError
	_, err = r.Run(d, "ids_only", allScope(), nil, nil)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "scope")
}

func TestIDsScopeTargetsOnlyListedObjects(t *testing.T) {
	r, d, res := setupRunner(t, 4, 100, 50)

	sc := scope.Scope{Kind: scope.KindIDs, IDs: []string{"1", "3"}}

	count, err := r.Preview(d, sc, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	result, err := r.Run(d, "delete_selected", sc, map[string]any{"confirm": true}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Affected)

	remaining, err := res.Base().Order("id", false).IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4"}, remaining)
}

func TestQueryScopeRespectsRowLevelSecurity(t *testing.T) {
	r, d, _ := setupRunner(t, 4, 100, 50)

	d.Hooks.RowLevel = func(qs adapter.QuerySet, _ *models.User) adapter.QuerySet {
		return qs.Filter(adapter.Filter{Field: "id", Op: adapter.OpLte, Value: 2})
	}

	count, err := r.Preview(d, allScope(), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count, "query scopes are narrowed like the list page")

	sc := scope.Scope{
		Kind:    scope.KindQuery,
		Filters: []adapter.Filter{{Field: "id", Op: adapter.OpGte, Value: 2}},
	}

	count, err = r.Preview(d, sc, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "stored filters stack on top of row-level narrowing")
}

func TestPerItemErrorsAreCollected(t *testing.T) {
	r, d, _ := setupRunner(t, 3, 100, 2)

	require.NoError(t, d.AddAction(descriptor.ActionSpec{
		Name: "always_fails",
		Apply: func(qs adapter.QuerySet, _ map[string]any) (int64, error) {
			return 0, fmt.Errorf("backend unavailable")
		},
	}))

	result, err := r.Run(d, "always_fails", allScope(), nil, nil)
	require.NoError(t, err, "per-item failures are collected, not raised")

	assert.False(t, result.OK)
	assert.EqualValues(t, 0, result.Affected)
	assert.Len(t, result.Errors, 3, "every target gets an error entry")
	assert.Equal(t, "1", result.Errors[0].ID)
}

func TestTaskStoreLifecycle(t *testing.T) {
	store := NewTaskStore()

	handle := store.Create("support.ticket", "delete_selected")
	task, ok := store.Get(handle)
	require.True(t, ok)
	assert.Equal(t, StatusRunning, task.Status)

	store.Checkpoint(handle, 2, 2, nil)
	task, _ = store.Get(handle)
	assert.EqualValues(t, 2, task.Affected)

	assert.True(t, store.Cancel(handle))
	assert.True(t, store.Cancelled(handle))

	store.Finish(handle, StatusCancelled)
	task, _ = store.Get(handle)
	assert.Equal(t, StatusCancelled, task.Status)

	assert.False(t, store.Cancel(handle), "finished tasks cannot be cancelled")
	_, ok = store.Get("no-such-handle")
	assert.False(t, ok)
}
