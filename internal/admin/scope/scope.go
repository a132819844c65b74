// Package scope describes the target set of a bulk action and the signed
// tokens that carry a scope between the selection step and the run step.
package scope

import (
	"errors"

	"github.com/adminforge/adminforge/internal/admin/adapter"
)

var (
	// ErrInvalidScope is returned for a scope whose kind and payload disagree.
	ErrInvalidScope = errors.New("invalid scope")
	// ErrInvalidToken is returned for tokens that fail verification for any
	// reason: bad signature, expiry, malformed payload.
	ErrInvalidToken = errors.New("invalid scope token")
	// ErrScopeMismatch is returned when a token is presented against a
	// different resource or action than it was issued for.
	ErrScopeMismatch = errors.New("scope token mismatch")
)

// Kind selects how a scope names its targets.
type Kind string

const (
	// KindIDs enumerates explicit object ids.
	KindIDs Kind = "ids"
	// KindQuery targets everything matching a list query at run time.
	KindQuery Kind = "query"
)

// Scope is the target set of one bulk action. A query scope carries the list
// query verbatim; it is re-evaluated when the action runs, so the affected
// set is whatever matches at that moment.
type Scope struct {
	Kind    Kind             `json:"kind"`
	IDs     []string         `json:"ids,omitempty"`
	Search  string           `json:"search,omitempty"`
	Filters []adapter.Filter `json:"filters,omitempty"`
}

// Validate checks that the scope's payload matches its kind.
func (s Scope) Validate() error {
	switch s.Kind {
	case KindIDs:
		if len(s.IDs) == 0 {
			return ErrInvalidScope
		}
	case KindQuery:
		if len(s.IDs) != 0 {
			return ErrInvalidScope
		}
	default:
		return ErrInvalidScope
	}

	return nil
}
