package resource

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/adminforge/adminforge/internal/admin/adapter"
	"github.com/adminforge/adminforge/internal/admin/descriptor"
	"github.com/adminforge/adminforge/internal/db/models"
)

// Retrieve serves a single object through the object pipeline, so rows the
// row-level rules hide read as missing.
func (s *Service) Retrieve(c *fiber.Ctx) error {
	d, ct, ok := s.lookup(c)
	if !ok {
		return nil
	}

	user, ok := s.authorize(c, models.ActionView, ct.ID)
	if !ok {
		return nil
	}

	qs, err := d.ObjectQuery(user)
	if err != nil {
		return respondError(c, err)
	}

	row, err := qs.Get(c.Params("pk"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(row)
}

// Create inserts a new object from the submitted values.
func (s *Service) Create(c *fiber.Ctx) error {
	d, ct, ok := s.lookup(c)
	if !ok {
		return nil
	}

	user, ok := s.authorize(c, models.ActionAdd, ct.ID)
	if !ok {
		return nil
	}

	values, fieldErrs := s.parseWrite(c, d, true)
	if values == nil {
		if fieldErrs != nil {
			return respondValidation(c, fieldErrs)
		}

		return nil
	}

	qs, err := d.FormQuery(user)
	if err != nil {
		return respondError(c, err)
	}

	stored, err := qs.Create(values)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(stored)
}

// Update applies submitted values to one object. The object is first read
// through the object pipeline, so out-of-scope rows 404 before anything is
// written.
func (s *Service) Update(c *fiber.Ctx) error {
	d, ct, ok := s.lookup(c)
	if !ok {
		return nil
	}

	user, ok := s.authorize(c, models.ActionChange, ct.ID)
	if !ok {
		return nil
	}

	pk := c.Params("pk")

	objectQS, err := d.ObjectQuery(user)
	if err != nil {
		return respondError(c, err)
	}

	if _, err = objectQS.Get(pk); err != nil {
		return respondError(c, err)
	}

	values, fieldErrs := s.parseWrite(c, d, false)
	if values == nil {
		if fieldErrs != nil {
			return respondValidation(c, fieldErrs)
		}

		return nil
	}

	formQS, err := d.FormQuery(user)
	if err != nil {
		return respondError(c, err)
	}

	_, err = formQS.
		Filter(adapter.Filter{Field: d.Resource.IDField(), Op: adapter.OpEq, Value: adapter.IDValue(pk)}).
		Update(values)
	if err != nil {
		return respondError(c, err)
	}

	objectQS, err = d.ObjectQuery(user)
	if err != nil {
		return respondError(c, err)
	}

	row, err := objectQS.Get(pk)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(row)
}

// Delete removes one object.
func (s *Service) Delete(c *fiber.Ctx) error {
	d, ct, ok := s.lookup(c)
	if !ok {
		return nil
	}

	user, ok := s.authorize(c, models.ActionDelete, ct.ID)
	if !ok {
		return nil
	}

	pk := c.Params("pk")

	qs, err := d.ObjectQuery(user)
	if err != nil {
		return respondError(c, err)
	}

	if _, err = qs.Get(pk); err != nil {
		return respondError(c, err)
	}

	_, err = d.Resource.Base().
		Filter(adapter.Filter{Field: d.Resource.IDField(), Op: adapter.OpEq, Value: adapter.IDValue(pk)}).
		Delete()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

// parseWrite decodes the request body and validates it against the form
// schema: only exposed, writable fields are accepted, and creates must carry
// every required field. A nil values return means the response was already
// written or fieldErrs carries the 422 payload.
func (s *Service) parseWrite(c *fiber.Ctx, d *descriptor.Descriptor, requireAll bool) (map[string]any, map[string]string) {
	values := map[string]any{}

	if err := json.Unmarshal(c.Body(), &values); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
		return nil, nil
	}

	schema, err := d.FormSchema()
	if err != nil {
		_ = respondError(c, err)
		return nil, nil
	}

	writable := make(map[string]descriptor.SchemaField, len(schema))
	for _, f := range schema {
		writable[f.Name] = f
	}

	fieldErrs := map[string]string{}

	for name := range values {
		if name == d.Resource.IDField() {
			fieldErrs[name] = "read-only field"
			continue
		}

		if _, ok := writable[name]; !ok {
			fieldErrs[name] = "unknown field"
		}
	}

	if requireAll {
		for _, f := range schema {
			if !f.Required {
				continue
			}

			if v, ok := values[f.Name]; !ok || v == nil || v == "" {
				fieldErrs[f.Name] = "required"
			}
		}
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	return values, nil
}
