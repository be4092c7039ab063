package vtex

// StackHandle is an opaque handle naming a native virtual-texture-stack
// resource. Handles are allocated by the Device on stack creation and are
// never reused while the stack they name is alive.
//
// The zero value is InvalidStack and never names a live resource.
type StackHandle uint64

// InvalidStack is the zero handle, representing an invalid/uncreated stack.
const InvalidStack StackHandle = 0

// Valid reports whether the handle names a created stack.
func (h StackHandle) Valid() bool { return h != InvalidStack }

// SurfaceID is an opaque reference to a destination surface owned by the
// native layer. Tile request layers carry the surface the producer must
// write decoded tile data into.
type SurfaceID uint64
