package descriptor

import (
	"fmt"

	"github.com/adminforge/adminforge/internal/admin/adapter"
)

// SchemaField is the wire form of one form field, derived from the
// resource's field metadata.
type SchemaField struct {
	Name     string       `json:"name"`
	Kind     adapter.Kind `json:"kind"`
	Required bool         `json:"required"`
	Choices  []string     `json:"choices,omitempty"`
	Relation string       `json:"relation,omitempty"`
}

// FormSchema derives the create/edit form schema from the resource metadata,
// restricted to the descriptor's exposed form fields. With no FormFields
// configured every non-id field is exposed.
func (d *Descriptor) FormSchema() ([]SchemaField, error) {
	if d.Resource == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoResource, d.DottedName())
	}

	byName := make(map[string]adapter.FieldMeta)
	for _, f := range d.Resource.Fields() {
		byName[f.Name] = f
	}

	exposed := d.FormFields
	if len(exposed) == 0 {
		for _, f := range d.Resource.Fields() {
			if f.Name == d.Resource.IDField() {
				continue
			}

			exposed = append(exposed, f.Name)
		}
	}

	schema := make([]SchemaField, 0, len(exposed))

	for _, name := range exposed {
		meta, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s (%s)", ErrUnknownField, name, d.DottedName())
		}

		field := SchemaField{
			Name:     meta.Name,
			Kind:     meta.Kind,
			Required: meta.Required,
			Choices:  meta.Choices,
		}
		if meta.Relation != nil {
			field.Relation = meta.Relation.Table
		}

		schema = append(schema, field)
	}

	return schema, nil
}

// ColumnsMeta derives the list-column metadata for the descriptor's list
// fields. With no ListFields configured every field is listed.
func (d *Descriptor) ColumnsMeta() ([]SchemaField, error) {
	if d.Resource == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoResource, d.DottedName())
	}

	byName := make(map[string]adapter.FieldMeta)
	for _, f := range d.Resource.Fields() {
		byName[f.Name] = f
	}

	columns := d.ListFields
	if len(columns) == 0 {
		for _, f := range d.Resource.Fields() {
			columns = append(columns, f.Name)
		}
	}

	meta := make([]SchemaField, 0, len(columns))

	for _, name := range columns {
		fm, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s (%s)", ErrUnknownField, name, d.DottedName())
		}

		field := SchemaField{Name: fm.Name, Kind: fm.Kind, Required: fm.Required, Choices: fm.Choices}
		if fm.Relation != nil {
			field.Relation = fm.Relation.Table
		}

		meta = append(meta, field)
	}

	return meta, nil
}

// Columns returns the list column names.
func (d *Descriptor) Columns() []string {
	if len(d.ListFields) > 0 {
		return d.ListFields
	}

	if d.Resource == nil {
		return nil
	}

	names := make([]string, 0, len(d.Resource.Fields()))
	for _, f := range d.Resource.Fields() {
		names = append(names, f.Name)
	}

	return names
}
