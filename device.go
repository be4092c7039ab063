package vtex

// Device is the native layer behind the virtual texture core: it owns tile
// caches, request buffers, and the tile manager that turns GPU feedback
// into tile requests.
//
// All calls are synchronous, bounded round-trips. The core performs its own
// validation before calling into a Device and passes native failures
// through unchanged. DestroyStack is safe to call from any thread; every
// other operation must be serialized per stack by the caller.
//
// Implementations are provided by backend packages (e.g., backend/native
// over gogpu/wgpu) and by test doubles.
type Device interface {
	// CreateStack allocates native resources for a stack described by the
	// wire-equivalent descriptor and returns its handle. The descriptor has
	// already passed core validation.
	CreateStack(desc *StackDesc) (StackHandle, error)

	// DestroyStack releases all native resources of the stack. Unknown
	// handles are ignored. Safe to call from any thread.
	DestroyStack(h StackHandle)

	// PullRequests copies up to len(buf) requests currently in the
	// Processing-eligible set into buf, transitioning them to Processing.
	// It returns the number of requests written.
	PullRequests(h StackHandle, buf []TileRequest) (int, error)

	// UpdateRequests applies a batch of terminal status updates in one
	// native call.
	UpdateRequests(h StackHandle, updates []StatusUpdate) error

	// CompleteAllRequests force-completes every request currently handed to
	// the producer, bypassing per-request reporting.
	CompleteAllRequests(h StackHandle) error

	// RequestRegion marks the given rectangle as wanted for residency
	// across numMips mip levels starting at mip. The AllMips sentinel is
	// forwarded literally.
	RequestRegion(h StackHandle, region Rect, mip, numMips uint32) error

	// InvalidateRegion unmarks the given rectangle, dropping residency
	// across the given mip range. The AllMips sentinel is forwarded
	// literally.
	InvalidateRegion(h StackHandle, region Rect, mip, numMips uint32) error
}

// FrameTicker is an optional Device interface. Devices that need per-frame
// housekeeping (scanning feedback, promoting wanted regions to tile
// requests) implement it; System.Update calls Tick once per frame.
type FrameTicker interface {
	Tick() error
}

// MaterialBinder is the external binding sink: it associates a stack's
// resident-tile lookup with shader-visible state under the stack's name.
// Binding is a pure side effect; the core never reads bindings back.
type MaterialBinder interface {
	// BindStack binds the stack to a material or material property block.
	// The target is engine-specific and opaque to the core.
	BindStack(name string, h StackHandle, target any) error

	// BindStackGlobal binds the stack into global shader state.
	BindStackGlobal(name string, h StackHandle) error
}

// DebugInfo describes one live stack for debug introspection tooling.
type DebugInfo struct {
	// Name is the stack name given at creation.
	Name string

	// Group is the optional debug group the stack was created in.
	Group string

	// LayerCount is the number of pixel layers.
	LayerCount int

	// Preview is the most recently bound target, if any. Tooling may use it
	// to render a preview; it is nil when the stack was never bound.
	Preview any
}
