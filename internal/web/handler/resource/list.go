package resource

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/adminforge/adminforge/internal/admin/adapter"
	"github.com/adminforge/adminforge/internal/db/models"
)

// MaxPerPage caps the page size a client may request.
const MaxPerPage = 500

// List serves the paginated, filterable list view of a resource.
func (s *Service) List(c *fiber.Ctx) error {
	d, ct, ok := s.lookup(c)
	if !ok {
		return nil
	}

	user, ok := s.authorize(c, models.ActionView, ct.ID)
	if !ok {
		return nil
	}

	page := c.QueryInt("page_num", 1)
	if page < 1 {
		page = 1
	}

	perPage := c.QueryInt("per_page", d.PageSize())
	if perPage < 1 {
		perPage = d.PageSize()
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	filters, fieldErrs := parseFilters(c)
	if len(fieldErrs) > 0 {
		return respondValidation(c, fieldErrs)
	}

	orderField, orderDesc := parseOrder(c.Query("order"), d.Resource.IDField())

	qs, err := d.ListQuery(user)
	if err != nil {
		return respondError(c, err)
	}

	qs = qs.Search(d.SearchFields, c.Query("search"))
	for _, f := range filters {
		qs = qs.Filter(f)
	}

	total, err := qs.Count()
	if err != nil {
		return respondError(c, err)
	}

	items, err := qs.Order(orderField, orderDesc).
		Limit(perPage).
		Offset((page - 1) * perPage).
		All()
	if err != nil {
		return respondError(c, err)
	}

	columnsMeta, err := d.ColumnsMeta()
	if err != nil {
		return respondError(c, err)
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))

	order := orderField
	if orderDesc {
		order = "-" + orderField
	}

	if items == nil {
		items = []map[string]any{}
	}

	return c.JSON(listResponse{
		Columns:     d.Columns(),
		ColumnsMeta: columnsMeta,
		Items:       items,
		Page:        page,
		Pages:       pages,
		Total:       total,
		Order:       order,
		PerPage:     perPage,
		IDField:     d.Resource.IDField(),
	})
}

// Schema serves the create/edit form schema of a resource.
func (s *Service) Schema(c *fiber.Ctx) error {
	d, ct, ok := s.lookup(c)
	if !ok {
		return nil
	}

	if _, ok := s.authorize(c, models.ActionView, ct.ID); !ok {
		return nil
	}

	schema, err := d.FormSchema()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"id_field": d.Resource.IDField(), "fields": schema})
}

// parseFilters reads filter.<field>.<op>=<value> query parameters. Malformed
// keys and unsupported operators collect into a field-keyed error map.
func parseFilters(c *fiber.Ctx) ([]adapter.Filter, map[string]string) {
	var filters []adapter.Filter

	fieldErrs := map[string]string{}

	for key, value := range c.Queries() {
		if !strings.HasPrefix(key, "filter.") {
			continue
		}

		parts := strings.Split(strings.TrimPrefix(key, "filter."), ".")
		if len(parts) != 2 || parts[0] == "" {
			fieldErrs[key] = "expected filter.<field>.<op>"
			continue
		}

		op := adapter.Op(parts[1])
		if !adapter.ValidOp(op) {
			fieldErrs[key] = "unsupported filter operator"
			continue
		}

		var filterValue any = value
		if op == adapter.OpIn {
			items := strings.Split(value, ",")
			anyItems := make([]any, 0, len(items))
			for _, item := range items {
				anyItems = append(anyItems, item)
			}
			filterValue = anyItems
		}

		filters = append(filters, adapter.Filter{Field: parts[0], Op: op, Value: filterValue})
	}

	return filters, fieldErrs
}

// parseOrder reads the order parameter: a field name, optionally prefixed
// with "-" for descending. Empty falls back to the id field.
func parseOrder(raw, idField string) (string, bool) {
	if raw == "" {
		return idField, false
	}

	if strings.HasPrefix(raw, "-") {
		return strings.TrimPrefix(raw, "-"), true
	}

	return raw, false
}
