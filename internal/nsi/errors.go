package nsi

import "errors"

// Outcomes reported by tables. Callers test them with errors.Is; sources
// wrap them with context.
var (
	// ErrNotSupported: unknown table, family or key, or no data source on this host.
	ErrNotSupported = errors.New("not supported")
	// ErrNotImplemented: the platform has no collector for the table.
	ErrNotImplemented = errors.New("not implemented")
	// ErrNoMemory: a resolver or scratch buffer could not be allocated.
	ErrNoMemory = errors.New("no memory")
	// ErrBufferOverflow: more records exist than the caller made room for.
	// The count is still valid and every written slot is complete.
	ErrBufferOverflow = errors.New("buffer overflow")
	// ErrInvalidParameter: key or buffer sizes do not match the table layout.
	ErrInvalidParameter = errors.New("invalid parameter")
)
