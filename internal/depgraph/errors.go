package depgraph

import "errors"

// Sentinel errors returned by dependency operations. Handlers map these onto
// the httpx taxonomy; everything else is treated as a database error.
var (
	ErrInvalidDependency   = errors.New("release cannot depend on itself")
	ErrDuplicateDependency = errors.New("dependency already exists for this release pair")
	ErrCyclicDependency    = errors.New("dependency would create a cycle")
	ErrReleaseNotFound     = errors.New("release not found")
	ErrDependencyNotFound  = errors.New("dependency not found")
)
