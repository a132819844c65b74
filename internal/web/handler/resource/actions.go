package resource

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adminforge/adminforge/internal/admin/adapter"
	"github.com/adminforge/adminforge/internal/admin/scope"
	"github.com/adminforge/adminforge/internal/db/models"
)

// Actions lists the bulk actions a resource offers.
func (s *Service) Actions(c *fiber.Ctx) error {
	d, ct, ok := s.lookup(c)
	if !ok {
		return nil
	}

	if _, ok := s.authorize(c, models.ActionView, ct.ID); !ok {
		return nil
	}

	specs := d.Actions()
	infos := make([]actionInfo, 0, len(specs))

	for _, spec := range specs {
		perm := spec.RequiredPerm
		if perm == "" {
			perm = models.ActionChange
		}

		infos = append(infos, actionInfo{
			Name:         spec.Name,
			Label:        spec.Label,
			Params:       spec.Params,
			Destructive:  spec.Destructive,
			RequiredPerm: string(perm),
		})
	}

	return c.JSON(fiber.Map{"actions": infos})
}

// ActionToken signs a selection scope so it can be previewed and run later
// without resubmitting the selection.
func (s *Service) ActionToken(c *fiber.Ctx) error {
	d, ct, ok := s.lookup(c)
	if !ok {
		return nil
	}

	if _, ok := s.authorize(c, models.ActionView, ct.ID); !ok {
		return nil
	}

	req := new(tokenRequest)
	if err := c.BodyParser(req); err != nil || req.Scope == nil {
		return respondValidation(c, map[string]string{"scope": "required"})
	}

	token, err := s.runner.IssueToken(d, req.Scope.toScope())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"scope_token": token})
}

// ActionPreview returns the current size of a selection.
func (s *Service) ActionPreview(c *fiber.Ctx) error {
	d, ct, ok := s.lookup(c)
	if !ok {
		return nil
	}

	user, ok := s.authorize(c, models.ActionView, ct.ID)
	if !ok {
		return nil
	}

	req := new(previewRequest)
	if err := c.BodyParser(req); err != nil {
		return respondValidation(c, map[string]string{"scope": "required"})
	}

	var sc scope.Scope

	switch {
	case req.ScopeToken != "":
		resolved, err := s.runner.ResolveToken(d, req.ScopeToken)
		if err != nil {
			return respondError(c, err)
		}

		sc = resolved
	case req.Scope != nil:
		sc = req.Scope.toScope()
	default:
		return respondValidation(c, map[string]string{"scope": "required"})
	}

	count, err := s.runner.Preview(d, sc, user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"count": count})
}

// ActionRun executes a named bulk action over a selection. The gate is the
// action's declared permission, defaulting to change.
func (s *Service) ActionRun(c *fiber.Ctx) error {
	d, ct, ok := s.lookup(c)
	if !ok {
		return nil
	}

	spec, ok := d.Action(c.Params("action"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	perm := spec.RequiredPerm
	if perm == "" {
		perm = models.ActionChange
	}

	user, ok := s.authorize(c, perm, ct.ID)
	if !ok {
		return nil
	}

	req := new(runRequest)
	if err := c.BodyParser(req); err != nil {
		return respondValidation(c, map[string]string{"scope": "required"})
	}

	var sc scope.Scope

	switch {
	case req.ScopeToken != "":
		resolved, err := s.runner.ResolveToken(d, req.ScopeToken)
		if err != nil {
			return respondError(c, err)
		}

		sc = resolved
	case len(req.IDs) > 0:
		sc = scope.Scope{Kind: scope.KindIDs, IDs: req.IDs}
	case req.Query != nil:
		sc = scope.Scope{Kind: scope.KindQuery, Search: req.Query.Search}
		for _, f := range req.Query.Filters {
			sc.Filters = append(sc.Filters, adapter.Filter{Field: f.Field, Op: adapter.Op(f.Op), Value: f.Value})
		}
	default:
		return respondValidation(c, map[string]string{"scope": "ids, query or scope_token required"})
	}

	result, err := s.runner.Run(d, spec.Name, sc, req.Params, user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

// TaskStatus reports the progress of a deferred action by handle.
func (s *Service) TaskStatus(c *fiber.Ctx) error {
	_, ct, ok := s.lookup(c)
	if !ok {
		return nil
	}

	if _, ok := s.authorize(c, models.ActionView, ct.ID); !ok {
		return nil
	}

	task, ok := s.runner.Tasks().Get(c.Params("handle"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	return c.JSON(task)
}
