package vtex

import "fmt"

// StackOption configures a Stack during creation.
type StackOption func(*stackOptions)

type stackOptions struct {
	group  string
	binder MaterialBinder
}

// WithGroup places the stack in a named debug group. Groups only affect
// debug introspection output.
func WithGroup(group string) StackOption {
	return func(o *stackOptions) { o.group = group }
}

// WithBinder supplies the material binding sink for the stack. Stacks
// created without a binder reject bind operations with ErrNilBinder.
func WithBinder(b MaterialBinder) StackOption {
	return func(o *stackOptions) { o.binder = b }
}

// Stack owns the lifecycle of one virtual-texture-stack resource: its
// creation parameters, native handle, and request list.
//
// A Stack is valid while its handle is non-zero and it has not been
// disposed. Every accessor on an invalid stack fails with ErrInvalidStack
// before any native call.
//
// Stack is NOT safe for concurrent use; callers serialize all per-stack
// access, Dispose included. The native release behind Dispose
// (Device.DestroyStack) is itself safe from any thread.
type Stack struct {
	name   string
	group  string
	dev    Device
	binder MaterialBinder

	handle   StackHandle
	params   StackCreationParams
	requests *RequestList

	// preview remembers the most recently bound target for debug tooling.
	preview any

	disposed bool
}

// CreateStack validates params, allocates native resources, and returns the
// stack. On validation failure no native allocation occurs.
func CreateStack(dev Device, name string, params StackCreationParams, opts ...StackOption) (*Stack, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var o stackOptions
	for _, opt := range opts {
		opt(&o)
	}

	handle, err := dev.CreateStack(params.desc())
	if err != nil {
		return nil, fmt.Errorf("vtex: creating stack %q: %w", name, err)
	}
	if !handle.Valid() {
		return nil, fmt.Errorf("vtex: creating stack %q: %w", name, ErrInvalidStack)
	}

	Logger().Debug("stack created",
		"name", name, "handle", uint64(handle),
		"size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"tile", params.TileSize, "layers", len(params.Layers))

	return &Stack{
		name:     name,
		group:    o.group,
		dev:      dev,
		binder:   o.binder,
		handle:   handle,
		params:   params,
		requests: newRequestList(dev, handle, params.MaxRequestsPerFrame),
	}, nil
}

// Name returns the stack name.
func (s *Stack) Name() string { return s.name }

// Group returns the debug group, or "" when none was set.
func (s *Stack) Group() string { return s.group }

// Handle returns the native handle, or InvalidStack after disposal.
func (s *Stack) Handle() StackHandle { return s.handle }

// Params returns the validated creation parameters.
func (s *Stack) Params() StackCreationParams { return s.params }

// LayerCount returns the number of pixel layers.
func (s *Stack) LayerCount() int { return len(s.params.Layers) }

// IsValid reports whether the stack names a live native resource.
func (s *Stack) IsValid() bool { return !s.disposed && s.handle.Valid() }

// Dispose releases the request-slot storage, then destroys the native
// resource if the stack is valid. Dispose is idempotent: each owned
// resource is released exactly once.
func (s *Stack) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.requests = nil
	if s.handle.Valid() {
		s.dev.DestroyStack(s.handle)
		s.handle = InvalidStack
	}
}

// ActiveRequests synchronizes the request list against the native slot
// table and returns the fresh snapshot. Every call replaces the previous
// snapshot; holding a *TileRequest from a prior snapshot across calls is
// caller misuse.
func (s *Stack) ActiveRequests() (*RequestList, error) {
	if !s.IsValid() {
		return nil, ErrInvalidStack
	}
	if err := s.requests.Sync(); err != nil {
		return nil, err
	}
	return s.requests, nil
}

// RequestRegion asks the native layer to mark the rectangle as wanted for
// residency across numMips mip levels starting at mipMap. Pass AllMips to
// cover all remaining levels; the sentinel is forwarded literally.
func (s *Stack) RequestRegion(region Rect, mipMap, numMips uint32) error {
	if !s.IsValid() {
		return ErrInvalidStack
	}
	return s.dev.RequestRegion(s.handle, region, mipMap, numMips)
}

// InvalidateRegion asks the native layer to drop residency for the
// rectangle across the given mip range. Pass AllMips to cover all remaining
// levels; the sentinel is forwarded literally.
func (s *Stack) InvalidateRegion(region Rect, mipMap, numMips uint32) error {
	if !s.IsValid() {
		return ErrInvalidStack
	}
	return s.dev.InvalidateRegion(s.handle, region, mipMap, numMips)
}

// BindToMaterial associates the stack's resident-tile lookup with the given
// material under the stack's name.
func (s *Stack) BindToMaterial(material any) error {
	return s.bind(material)
}

// BindToMaterialPropertyBlock associates the stack's resident-tile lookup
// with the given material property block under the stack's name.
func (s *Stack) BindToMaterialPropertyBlock(block any) error {
	return s.bind(block)
}

// BindGlobally associates the stack's resident-tile lookup with global
// shader state under the stack's name.
func (s *Stack) BindGlobally() error {
	if !s.IsValid() {
		return ErrInvalidStack
	}
	if s.binder == nil {
		return ErrNilBinder
	}
	return s.binder.BindStackGlobal(s.name, s.handle)
}

func (s *Stack) bind(target any) error {
	if !s.IsValid() {
		return ErrInvalidStack
	}
	if s.binder == nil {
		return ErrNilBinder
	}
	if target == nil {
		return ErrNilTarget
	}
	if err := s.binder.BindStack(s.name, s.handle, target); err != nil {
		return err
	}
	s.preview = target
	return nil
}

// debugInfo assembles the introspection record for this stack.
func (s *Stack) debugInfo() DebugInfo {
	return DebugInfo{
		Name:       s.name,
		Group:      s.group,
		LayerCount: s.LayerCount(),
		Preview:    s.preview,
	}
}
