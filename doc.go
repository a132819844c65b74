// Package main provides the entry point for the AdminForge administration
// runtime. Application resources are described by declarative descriptors,
// assigned content-type identities in a write-once registry, and exposed as
// a permission-gated JSON surface for listing, CRUD, and bulk actions. The
// runtime uses gorm for data persistence and Fiber for the HTTP layer.
package main
