package adapter

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type author struct {
	ID   uint64 `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

type post struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Views     int    `json:"views"`
	Published bool   `json:"published"`
	AuthorID  uint64 `json:"author_id"`
}

func postFields() []FieldMeta {
	return []FieldMeta{
		{Name: "id", Kind: KindInt},
		{Name: "title", Kind: KindString, Required: true},
		{Name: "body", Kind: KindString},
		{Name: "views", Kind: KindInt},
		{Name: "published", Kind: KindBool},
		{Name: "author_id", Kind: KindRelation, Relation: &RelationMeta{
			Table: "authors", ForeignKey: "author_id", TargetID: "id",
		}},
	}
}

func setupResource(t *testing.T) (*gorm.DB, *GormResource) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, db.AutoMigrate(&author{}, &post{}))

	alice := author{Name: "alice"}
	bob := author{Name: "bob"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	require.NoError(t, db.Create(&[]post{
		{Title: "Go Concurrency", Body: "channels", Views: 120, Published: true, AuthorID: alice.ID},
		{Title: "Go Generics", Body: "type params", Views: 80, Published: true, AuthorID: alice.ID},
		{Title: "Drafts folder", Body: "unfinished", Views: 3, Published: false, AuthorID: bob.ID},
	}).Error)

	res := NewGormResource(db, "posts", "id", postFields(), func() any { return &post{} })

	return db, res
}

func TestFilterOps(t *testing.T) {
	_, res := setupResource(t)

	testCases := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"eq", Filter{Field: "published", Op: OpEq, Value: true}, 2},
		{"icontains", Filter{Field: "title", Op: OpIContains, Value: "GO"}, 2},
		{"gte", Filter{Field: "views", Op: OpGte, Value: 80}, 2},
		{"lte", Filter{Field: "views", Op: OpLte, Value: 80}, 2},
		{"gt", Filter{Field: "views", Op: OpGt, Value: 80}, 1},
		{"lt", Filter{Field: "views", Op: OpLt, Value: 80}, 1},
		{"in", Filter{Field: "views", Op: OpIn, Value: []int{3, 120}}, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := res.Base().Filter(tc.filter).All()
			require.NoError(t, err)
			assert.Len(t, rows, tc.want)
		})
	}
}

func TestFilterErrorsSurfaceAtTerminal(t *testing.T) {
	_, res := setupResource(t)

	_, err := res.Base().Filter(Filter{Field: "nope", Op: OpEq, Value: 1}).All()
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = res.Base().Filter(Filter{Field: "title", Op: "like", Value: "x"}).Count()
	assert.ErrorIs(t, err, ErrUnsupportedOp)

	// the first failure sticks even if later calls are valid
	_, err = res.Base().
		Filter(Filter{Field: "nope", Op: OpEq, Value: 1}).
		Filter(Filter{Field: "title", Op: OpEq, Value: "x"}).
		IDs()
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSearchAndOrder(t *testing.T) {
	_, res := setupResource(t)

	rows, err := res.Base().Search([]string{"title", "body"}, "CHANNELS").All()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Go Concurrency", rows[0]["title"])

	ids, err := res.Base().Order("views", true).IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids)

	// empty term is a no-op
	count, err := res.Base().Search([]string{"title"}, "").Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestSelectAlwaysIncludesID(t *testing.T) {
	_, res := setupResource(t)

	rows, err := res.Base().Select([]string{"title"}).Order("id", false).All()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Contains(t, rows[0], "id")
	assert.Contains(t, rows[0], "title")
	assert.NotContains(t, rows[0], "body")
}

func TestCountIgnoresPaging(t *testing.T) {
	_, res := setupResource(t)

	count, err := res.Base().Limit(1).Offset(1).Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	rows, err := res.Base().Order("id", false).Limit(1).Offset(1).All()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Go Generics", rows[0]["title"])
}

func TestPreloadAttachesRelatedRows(t *testing.T) {
	_, res := setupResource(t)

	rows, err := res.Base().Preload([]string{"author_id"}).Order("id", false).All()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	related, ok := rows[0]["author_id"].(map[string]any)
	require.True(t, ok, "relation must be attached as a nested row")
	assert.Equal(t, "alice", related["name"])

	// preloading a plain field is an error
	_, err = res.Base().Preload([]string{"title"}).All()
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestGetScopedByQuery(t *testing.T) {
	_, res := setupResource(t)

	row, err := res.Base().Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Go Concurrency", row["title"])

	// a row outside the narrowed scope reads as missing
	_, err = res.Base().Filter(Filter{Field: "published", Op: OpEq, Value: true}).Get("3")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = res.Base().Get("999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUpdateDelete(t *testing.T) {
	_, res := setupResource(t)

	stored, err := res.Base().Create(map[string]any{
		"title": "New Post", "body": "fresh", "views": 0, "author_id": 2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 4, stored["id"], "generated key must be returned")

	affected, err := res.Base().
		Filter(Filter{Field: "id", Op: OpEq, Value: 4}).
		Update(map[string]any{"views": 7})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	row, err := res.Base().Get("4")
	require.NoError(t, err)
	assert.EqualValues(t, 7, row["views"])

	affected, err = res.Base().Filter(Filter{Field: "published", Op: OpEq, Value: false}).Delete()
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	count, err := res.Base().Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
