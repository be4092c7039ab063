package vtex

import "errors"

// Package errors for the virtual texture core.
//
// Every validation error is raised before any native call is made; once a
// native call has been issued its failures pass through unchanged.
var (
	// ErrNilDevice is returned when a nil Device is supplied.
	ErrNilDevice = errors.New("vtex: device is nil")

	// ErrNilBinder is returned when a bind operation is invoked on a stack
	// that was created without a MaterialBinder.
	ErrNilBinder = errors.New("vtex: no material binder configured")

	// ErrNilTarget is returned when a bind operation receives a nil
	// material or property block.
	ErrNilTarget = errors.New("vtex: bind target is nil")

	// ErrNilRequest is returned when a status update references a nil request.
	ErrNilRequest = errors.New("vtex: tile request is nil")

	// ErrInvalidParams is returned when stack creation parameters fail
	// validation. The returned error wraps ErrInvalidParams with detail.
	ErrInvalidParams = errors.New("vtex: invalid stack creation parameters")

	// ErrInvalidStack is returned when operating on a disposed or
	// never-created stack.
	ErrInvalidStack = errors.New("vtex: stack is invalid or disposed")

	// ErrIndexOutOfRange is returned when indexing the active-request
	// snapshot beyond its current length.
	ErrIndexOutOfRange = errors.New("vtex: request index out of range")

	// ErrLayerOutOfRange is returned when indexing a tile request layer
	// outside the fixed layer slots.
	ErrLayerOutOfRange = errors.New("vtex: layer index out of range")

	// ErrTableFull is returned when the slot table has no free slot for a
	// new tile request.
	ErrTableFull = errors.New("vtex: request slot table is full")

	// ErrStaleRequest is returned when a status update references an
	// unknown request id or one that is not in the Processing state.
	ErrStaleRequest = errors.New("vtex: status update references unknown or stale request")

	// ErrNotTerminal is returned when a status update carries a status other
	// than Complete or Dropped.
	ErrNotTerminal = errors.New("vtex: status update must be Complete or Dropped")

	// ErrUnknownStack is returned by devices when a handle does not name a
	// live stack.
	ErrUnknownStack = errors.New("vtex: unknown stack handle")

	// ErrDebugTilesDisabled is returned when debug-tile introspection is
	// requested while the debug-tiles flag is off.
	ErrDebugTilesDisabled = errors.New("vtex: debug tiles are disabled")
)
