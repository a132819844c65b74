package adapter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormResource adapts one database table behind a gorm connection to the
// Resource interface. Rows travel as map[string]any keyed by column name;
// writes are decoded into a fresh model value from newRow so gorm sees a
// typed row and backfills generated keys.
type GormResource struct {
	db      *gorm.DB
	table   string
	idField string
	fields  []FieldMeta
	byName  map[string]FieldMeta
	newRow  func() any
}

// NewGormResource creates a Resource over the given table. The model struct
// returned by newRow must carry json tags matching the FieldMeta names.
func NewGormResource(db *gorm.DB, table, idField string, fields []FieldMeta, newRow func() any) *GormResource {
	byName := make(map[string]FieldMeta, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	return &GormResource{
		db:      db,
		table:   table,
		idField: idField,
		fields:  fields,
		byName:  byName,
		newRow:  newRow,
	}
}

// Fields lists the exposed fields in declaration order.
func (r *GormResource) Fields() []FieldMeta {
	return r.fields
}

// IDField names the primary key field.
func (r *GormResource) IDField() string {
	return r.idField
}

// Base returns a fresh QuerySet over the full table.
func (r *GormResource) Base() QuerySet {
	return &gormQuerySet{
		res: r,
		tx:  r.db.Session(&gorm.Session{NewDB: true}).Table(r.table),
	}
}

type gormQuerySet struct {
	res      *GormResource
	tx       *gorm.DB
	preloads []string
	err      error
}

func (q *gormQuerySet) fail(err error) QuerySet {
	return &gormQuerySet{res: q.res, tx: q.tx, preloads: q.preloads, err: err}
}

func (q *gormQuerySet) derive(tx *gorm.DB) QuerySet {
	return &gormQuerySet{res: q.res, tx: tx, preloads: q.preloads, err: q.err}
}

// Filter narrows the query by one field predicate.
func (q *gormQuerySet) Filter(f Filter) QuerySet {
	if q.err != nil {
		return q
	}

	if _, ok := q.res.byName[f.Field]; !ok {
		return q.fail(errors.Wrap(ErrUnknownField, f.Field))
	}

	switch f.Op {
	case OpEq:
		return q.derive(q.tx.Where(f.Field+" = ?", f.Value))
	case OpIContains:
		term := "%" + strings.ToLower(fmt.Sprint(f.Value)) + "%"
		return q.derive(q.tx.Where("LOWER("+f.Field+") LIKE ?", term))
	case OpGte:
		return q.derive(q.tx.Where(f.Field+" >= ?", f.Value))
	case OpLte:
		return q.derive(q.tx.Where(f.Field+" <= ?", f.Value))
	case OpGt:
		return q.derive(q.tx.Where(f.Field+" > ?", f.Value))
	case OpLt:
		return q.derive(q.tx.Where(f.Field+" < ?", f.Value))
	case OpIn:
		return q.derive(q.tx.Where(f.Field+" IN ?", f.Value))
	default:
		return q.fail(errors.Wrap(ErrUnsupportedOp, string(f.Op)))
	}
}

// Search applies a case-insensitive substring match across the given fields,
// OR-combined. An empty term is a no-op.
func (q *gormQuerySet) Search(fields []string, term string) QuerySet {
	if q.err != nil || term == "" || len(fields) == 0 {
		return q
	}

	conds := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	like := "%" + strings.ToLower(term) + "%"

	for _, f := range fields {
		if _, ok := q.res.byName[f]; !ok {
			return q.fail(errors.Wrap(ErrUnknownField, f))
		}

		conds = append(conds, "LOWER("+f+") LIKE ?")
		args = append(args, like)
	}

	return q.derive(q.tx.Where(strings.Join(conds, " OR "), args...))
}

// Order sorts the result by one field.
func (q *gormQuerySet) Order(field string, desc bool) QuerySet {
	if q.err != nil {
		return q
	}

	if _, ok := q.res.byName[field]; !ok {
		return q.fail(errors.Wrap(ErrUnknownField, field))
	}

	dir := " ASC"
	if desc {
		dir = " DESC"
	}

	return q.derive(q.tx.Order(field + dir))
}

// Select restricts the projected columns. The id field is always included so
// rows stay addressable.
func (q *gormQuerySet) Select(fields []string) QuerySet {
	if q.err != nil || len(fields) == 0 {
		return q
	}

	withID := false

	for _, f := range fields {
		if _, ok := q.res.byName[f]; !ok {
			return q.fail(errors.Wrap(ErrUnknownField, f))
		}

		if f == q.res.idField {
			withID = true
		}
	}

	if !withID {
		fields = append([]string{q.res.idField}, fields...)
	}

	return q.derive(q.tx.Select(fields))
}

// Preload marks relation fields to be fetched alongside the rows. Related
// objects are loaded with one extra query per relation and attached under
// the relation's field name.
func (q *gormQuerySet) Preload(relations []string) QuerySet {
	if q.err != nil || len(relations) == 0 {
		return q
	}

	preloads := append([]string{}, q.preloads...)

	for _, name := range relations {
		meta, ok := q.res.byName[name]
		if !ok || meta.Relation == nil {
			return q.fail(errors.Wrap(ErrUnknownField, name))
		}

		preloads = append(preloads, name)
	}

	return &gormQuerySet{res: q.res, tx: q.tx, preloads: preloads, err: q.err}
}

// Limit caps the number of returned rows.
func (q *gormQuerySet) Limit(n int) QuerySet {
	if q.err != nil {
		return q
	}

	return q.derive(q.tx.Limit(n))
}

// Offset skips the first n rows.
func (q *gormQuerySet) Offset(n int) QuerySet {
	if q.err != nil {
		return q
	}

	return q.derive(q.tx.Offset(n))
}

// Count returns the number of matching rows, ignoring limit and offset.
func (q *gormQuerySet) Count() (int64, error) {
	if q.err != nil {
		return 0, q.err
	}

	var count int64
	if err := q.tx.Session(&gorm.Session{}).Limit(-1).Offset(-1).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count rows")
	}

	return count, nil
}

// All executes the query and returns the matching rows.
func (q *gormQuerySet) All() ([]map[string]any, error) {
	if q.err != nil {
		return nil, q.err
	}

	var rows []map[string]any
	if err := q.tx.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch rows")
	}

	if err := q.attachPreloads(rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// Get returns the single row with the given id, scoped by the query built so
// far. A row outside the query's scope is indistinguishable from a missing
// one.
func (q *gormQuerySet) Get(id string) (map[string]any, error) {
	if q.err != nil {
		return nil, q.err
	}

	row := map[string]any{}

	err := q.tx.Where(q.res.idField+" = ?", IDValue(id)).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch row")
	}

	if err := q.attachPreloads([]map[string]any{row}); err != nil {
		return nil, err
	}

	return row, nil
}

// IDs returns the primary keys of the matching rows as strings, in query
// order.
func (q *gormQuerySet) IDs() ([]string, error) {
	if q.err != nil {
		return nil, q.err
	}

	var rows []map[string]any
	if err := q.tx.Select(q.res.idField).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch ids")
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, fmt.Sprint(row[q.res.idField]))
	}

	return ids, nil
}

// Create inserts a new row from the given values and returns the stored row
// including generated fields.
func (q *gormQuerySet) Create(values map[string]any) (map[string]any, error) {
	if q.err != nil {
		return nil, q.err
	}

	row := q.res.newRow()
	if err := remarshal(values, row); err != nil {
		return nil, errors.Wrap(err, "failed to decode values")
	}

	if err := q.tx.Create(row).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create row")
	}

	stored := map[string]any{}
	if err := remarshal(row, &stored); err != nil {
		return nil, errors.Wrap(err, "failed to encode row")
	}

	return stored, nil
}

// Update applies the given column values to all matching rows and returns
// the number of rows changed.
func (q *gormQuerySet) Update(values map[string]any) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}

	result := q.tx.Updates(values)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to update rows")
	}

	return result.RowsAffected, nil
}

// Delete removes all matching rows and returns the number of rows removed.
func (q *gormQuerySet) Delete() (int64, error) {
	if q.err != nil {
		return 0, q.err
	}

	result := q.tx.Delete(q.res.newRow())
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete rows")
	}

	return result.RowsAffected, nil
}

// attachPreloads fetches each requested relation's targets in one query and
// attaches them to the rows under the relation's field name.
func (q *gormQuerySet) attachPreloads(rows []map[string]any) error {
	if len(q.preloads) == 0 || len(rows) == 0 {
		return nil
	}

	for _, name := range q.preloads {
		rel := q.res.byName[name].Relation

		keys := make([]any, 0, len(rows))
		for _, row := range rows {
			if v, ok := row[rel.ForeignKey]; ok && v != nil {
				keys = append(keys, v)
			}
		}

		if len(keys) == 0 {
			continue
		}

		var targets []map[string]any

		err := q.res.db.Table(rel.Table).Where(rel.TargetID+" IN ?", keys).Find(&targets).Error
		if err != nil {
			return errors.Wrapf(err, "failed to preload %s", name)
		}

		byID := make(map[string]map[string]any, len(targets))
		for _, target := range targets {
			byID[fmt.Sprint(target[rel.TargetID])] = target
		}

		for _, row := range rows {
			if v, ok := row[rel.ForeignKey]; ok && v != nil {
				row[name] = byID[fmt.Sprint(v)]
			}
		}
	}

	return nil
}

// IDValue converts a wire id into the value used for key comparisons.
// Numeric ids stay numeric so the comparison types line up on every engine.
func IDValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}

	return id
}

// IDValues converts a list of wire ids for an IN predicate.
func IDValues(ids []string) []any {
	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, IDValue(id))
	}

	return values
}

// remarshal converts between map rows and typed model values through their
// json representation.
func remarshal(src, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, dst)
}
