// Package feedback turns GPU-produced feedback render targets into
// resolved tile-visibility signals.
//
// Each render surface that produces feedback owns one Resolver. The
// resolver holds native resolve state sized to the surface resolution and
// records resolve instructions into a GPU command recorder. Its resize
// policy is grow-only: when multiple viewers render at different
// resolutions in the same frame, the state is sized to the shared worst
// case instead of reinitializing every frame.
package feedback

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gogpu/vtex"
)

// Package errors.
var (
	// ErrNilAllocator is returned when a Resolver is created without an
	// allocator.
	ErrNilAllocator = errors.New("feedback: allocator is nil")

	// ErrNilRecorder is returned when Process is called with a nil command
	// recorder. Checked before any native call.
	ErrNilRecorder = errors.New("feedback: command recorder is nil")

	// ErrInvalidDimensions is returned when width or height is zero.
	ErrInvalidDimensions = errors.New("feedback: invalid dimensions")

	// ErrDisposed is returned when operating on a disposed resolver.
	ErrDisposed = errors.New("feedback: resolver is disposed")
)

// ResolveCommand is one feedback-resolve instruction: resolve the given
// sub-rectangle of the target surface at the given mip and slice.
type ResolveCommand struct {
	// Target is the feedback render surface, opaque to this package.
	Target any

	// Region is the sub-rectangle to resolve, in target pixels.
	Region vtex.Rect

	// Mip is the mip level to resolve.
	Mip uint32

	// Slice is the array slice to resolve.
	Slice uint32
}

// Recorder accepts feedback-resolve instructions. It is the GPU command
// recorder collaborator: opaque beyond accepting a resolve command with a
// target region.
type Recorder interface {
	RecordResolve(cmd ResolveCommand) error
}

// State is native resolve state held by a resolver. Flush completes any
// outstanding resolve work; Release frees the state. Release is called
// exactly once per state by the resolver.
type State interface {
	Flush() error
	Release()
}

// Allocator creates native resolve state sized to a resolution.
type Allocator interface {
	AllocateResolveState(width, height uint32) (State, error)
}

// Resolver resolves GPU feedback for one render surface.
//
// Resolver is NOT safe for concurrent use. Dispose is idempotent and also
// runs as a last-resort cleanup if the resolver is garbage collected
// without being disposed; the deterministic Dispose path is primary.
type Resolver struct {
	alloc  Allocator
	state  State
	width  uint32
	height uint32

	disposed bool
	cleanup  runtime.Cleanup
}

// New allocates resolve state for the given resolution.
func New(alloc Allocator, width, height uint32) (*Resolver, error) {
	if alloc == nil {
		return nil, ErrNilAllocator
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	state, err := alloc.AllocateResolveState(width, height)
	if err != nil {
		return nil, fmt.Errorf("feedback: allocating resolve state: %w", err)
	}
	r := &Resolver{alloc: alloc, state: state, width: width, height: height}
	r.arm(state)
	return r, nil
}

// arm registers the leak guard for the current state. The guard releases
// the state if the resolver is collected without Dispose.
func (r *Resolver) arm(state State) {
	r.cleanup = runtime.AddCleanup(r, func(s State) {
		s.Release()
	}, state)
}

// Width returns the currently held resolve width.
func (r *Resolver) Width() uint32 { return r.width }

// Height returns the currently held resolve height.
func (r *Resolver) Height() uint32 { return r.height }

// Resize grows the resolve state to cover the requested resolution.
//
// It is a no-op unless the requested size exceeds the held size in either
// dimension. When it does, pending work is flushed and the state is
// reinitialized to the per-dimension maximum of held and requested sizes,
// so the state never shrinks without an explicit Dispose.
func (r *Resolver) Resize(width, height uint32) error {
	if r.disposed {
		return ErrDisposed
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width <= r.width && height <= r.height {
		return nil
	}
	if err := r.state.Flush(); err != nil {
		return fmt.Errorf("feedback: flushing before resize: %w", err)
	}
	r.cleanup.Stop()
	r.state.Release()

	newW := max(width, r.width)
	newH := max(height, r.height)
	state, err := r.alloc.AllocateResolveState(newW, newH)
	if err != nil {
		// The old state is gone; leave the resolver disposed rather than
		// holding a released State.
		r.disposed = true
		return fmt.Errorf("feedback: reallocating resolve state: %w", err)
	}
	r.state = state
	r.width = newW
	r.height = newH
	r.arm(state)
	return nil
}

// Process records one feedback-resolve instruction for the given
// sub-rectangle of the target at the given mip and slice.
func (r *Resolver) Process(rec Recorder, target any, region vtex.Rect, mip, slice uint32) error {
	if rec == nil {
		return ErrNilRecorder
	}
	if r.disposed {
		return ErrDisposed
	}
	return rec.RecordResolve(ResolveCommand{
		Target: target,
		Region: region,
		Mip:    mip,
		Slice:  slice,
	})
}

// ProcessFull resolves the full current resolution at mip 0, slice 0.
func (r *Resolver) ProcessFull(rec Recorder, target any) error {
	return r.Process(rec, target, vtex.Rect{Width: r.width, Height: r.height}, 0, 0)
}

// Dispose flushes outstanding work and releases the native state exactly
// once. Safe to call multiple times.
func (r *Resolver) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.cleanup.Stop()
	if err := r.state.Flush(); err != nil {
		vtex.Logger().Warn("feedback: flush during dispose failed", "error", err)
	}
	r.state.Release()
	r.state = nil
}
