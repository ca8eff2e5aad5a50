package lowcms

import "github.com/kailas-cloud/lowcms/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrInvalidSchema    = domain.ErrInvalidSchema
	ErrInvalidSample    = domain.ErrInvalidSample
	ErrInvalidFilter    = domain.ErrInvalidFilter
	ErrInvalidRecord    = domain.ErrInvalidRecord
	ErrPermissionDenied = domain.ErrPermissionDenied
)
