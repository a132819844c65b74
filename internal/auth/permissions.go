package auth

import (
	"fmt"
	"strings"

	"github.com/adminforge/adminforge/internal/db/models"
	"github.com/adminforge/adminforge/internal/registry"
)

// Codename is the string form of a grant target.
// Per-resource: "{app}.{model}.{action}". Global: a bare action name.
type Codename struct {
	AppLabel  string
	ModelSlug string
	Action    models.PermissionAction
	Global    bool
}

// ParseCodename splits a permission codename into its parts.
// A bare action name denotes a global grant. Model slugs may themselves
// contain dots (virtual resources), so the action is taken from the last
// segment and the app label from the first.
func ParseCodename(s string) (Codename, error) {
	parts := strings.Split(s, ".")

	if len(parts) == 1 {
		action := models.PermissionAction(parts[0])
		if !models.ValidAction(action) {
			return Codename{}, fmt.Errorf("%w: %q", ErrInvalidCodename, s)
		}

		return Codename{Action: action, Global: true}, nil
	}

	if len(parts) < 3 {
		return Codename{}, fmt.Errorf("%w: %q", ErrInvalidCodename, s)
	}

	action := models.PermissionAction(parts[len(parts)-1])
	if !models.ValidAction(action) {
		return Codename{}, fmt.Errorf("%w: %q", ErrInvalidCodename, s)
	}

	return Codename{
		AppLabel:  parts[0],
		ModelSlug: strings.Join(parts[1:len(parts)-1], "."),
		Action:    action,
	}, nil
}

// CheckCodename resolves a codename against the registry and evaluates it.
// An unknown content type fails closed; so does any check before the
// registry was finalized.
func (s *Service) CheckCodename(user *models.User, codename string, reg *registry.Registry) (bool, error) {
	cn, err := ParseCodename(codename)
	if err != nil {
		return false, err
	}

	if cn.Global {
		return s.Check(user, cn.Action, nil)
	}

	ct, ok := reg.Resolve(cn.AppLabel, cn.ModelSlug)
	if !ok {
		return false, nil
	}

	return s.Check(user, cn.Action, &ct.ID)
}
