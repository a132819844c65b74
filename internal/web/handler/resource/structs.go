package resource

import (
	"github.com/adminforge/adminforge/internal/admin/adapter"
	"github.com/adminforge/adminforge/internal/admin/descriptor"
	"github.com/adminforge/adminforge/internal/admin/scope"
)

type listResponse struct {
	Columns     []string                 `json:"columns"`
	ColumnsMeta []descriptor.SchemaField `json:"columns_meta"`
	Items       []map[string]any         `json:"items"`
	Page        int                      `json:"page"`
	Pages       int                      `json:"pages"`
	Total       int64                    `json:"total"`
	Order       string                   `json:"order"`
	PerPage     int                      `json:"per_page"`
	IDField     string                   `json:"id_field"`
}

type actionInfo struct {
	Name         string                   `json:"name"`
	Label        string                   `json:"label"`
	Params       []descriptor.ActionParam `json:"params_schema"`
	Destructive  bool                     `json:"is_destructive"`
	RequiredPerm string                   `json:"required_perm"`
}

type filterPayload struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

type scopePayload struct {
	Kind    string          `json:"kind"`
	IDs     []string        `json:"ids,omitempty"`
	Search  string          `json:"search,omitempty"`
	Filters []filterPayload `json:"filters,omitempty"`
}

func (p *scopePayload) toScope() scope.Scope {
	sc := scope.Scope{
		Kind:   scope.Kind(p.Kind),
		IDs:    p.IDs,
		Search: p.Search,
	}
	for _, f := range p.Filters {
		sc.Filters = append(sc.Filters, adapter.Filter{Field: f.Field, Op: adapter.Op(f.Op), Value: f.Value})
	}

	return sc
}

type queryPayload struct {
	Search  string          `json:"search,omitempty"`
	Filters []filterPayload `json:"filters,omitempty"`
}

type tokenRequest struct {
	Scope *scopePayload `json:"scope"`
}

type previewRequest struct {
	Scope      *scopePayload `json:"scope,omitempty"`
	ScopeToken string        `json:"scope_token,omitempty"`
}

type runRequest struct {
	IDs        []string       `json:"ids,omitempty"`
	Query      *queryPayload  `json:"query,omitempty"`
	ScopeToken string         `json:"scope_token,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
}
