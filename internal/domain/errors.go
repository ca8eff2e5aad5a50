package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidSchema signals an invalid schema document or record.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrInvalidSample signals sample JSON that cannot be parsed or narrowed.
	ErrInvalidSample = errors.New("invalid sample")
	// ErrInvalidFilter signals a malformed filter tree or predicate.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidRecord signals a database or content record failing validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrPermissionDenied signals a workspace path that is not accessible.
	ErrPermissionDenied = errors.New("permission denied")
)
