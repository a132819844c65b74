// Package auth provides authorization functionality for the administration runtime.
//
// # Permission model
//
// A grant allows one action (view, add, change, delete) to one subject.
// Subjects are users or groups; a user's effective permissions are the union
// of their direct grants and all grants held by groups they belong to.
// A grant is scoped either to a specific content type or globally (no content
// type at all). The two scopes are distinct namespaces: a global view grant
// never satisfies a per-resource view check, and vice versa.
//
// # Check algorithm
//
// Service.Check evaluates, in order, short-circuiting on first match:
//
//  1. inactive or non-staff subject: deny
//  2. superuser: allow
//  3. direct user grant for (content type, action): allow
//  4. any group grant for (content type, action): allow
//  5. otherwise: deny
//
// The superuser bypass and the fail-closed default are load-bearing security
// properties; no descriptor configuration can invert them.
//
// # Codenames
//
// Per-resource grants are addressed as "{app}.{model}.{action}", global
// grants as a bare action name. ParseCodename splits either form.
//
// # Middleware
//
// RequireGlobal protects fixed routes with a global permission check. The
// per-resource endpoints perform their checks inline after resolving the
// content type, since their routes are dynamic.
package auth
