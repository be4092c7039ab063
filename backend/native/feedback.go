package native

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/vtex"
	"github.com/gogpu/vtex/feedback"
)

// feedbackTexelSize is the size of one feedback texel: a packed 64-bit
// (stack id, mip, tile) sample written by the feedback shader pass.
const feedbackTexelSize = 8

// resolveState is the native resolve state behind one feedback.Resolver:
// a readback buffer sized to the resolver resolution.
type resolveState struct {
	backend  *Backend
	buf      hal.Buffer
	width    uint32
	height   uint32
	released bool
}

// AllocateResolveState implements feedback.Allocator.
func (b *Backend) AllocateResolveState(width, height uint32) (feedback.State, error) {
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "vtex-feedback-resolve",
		Size:  uint64(width) * uint64(height) * feedbackTexelSize,
		Usage: types.BufferUsageMapRead | types.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: creating resolve buffer: %w", err)
	}
	return &resolveState{backend: b, buf: buf, width: width, height: height}, nil
}

// Flush waits for all work submitted so far to complete.
func (s *resolveState) Flush() error {
	if s.released {
		return ErrStateReleased
	}
	fence, err := s.backend.device.CreateFence()
	if err != nil {
		return fmt.Errorf("native: creating flush fence: %w", err)
	}
	defer s.backend.device.DestroyFence(fence)

	if err := s.backend.queue.Submit(nil, fence, 1); err != nil {
		return fmt.Errorf("native: submitting flush fence: %w", err)
	}
	if _, err := s.backend.device.Wait(fence, 1, 5_000_000_000); err != nil {
		return fmt.Errorf("native: waiting for flush: %w", err)
	}
	return nil
}

// Release destroys the resolve buffer. Idempotent.
func (s *resolveState) Release() {
	if s.released {
		return
	}
	s.released = true
	s.backend.device.DestroyBuffer(s.buf)
	s.buf = nil
}

// ResolveRecorder records feedback-resolve copies into a HAL command
// encoder. One recorder covers one frame's resolve pass; Finish submits it.
//
// The resolve target of each command must be the hal.Buffer the feedback
// shader pass wrote its stream into, tightly packed at the resolver's
// resolution.
type ResolveRecorder struct {
	backend  *Backend
	state    *resolveState
	encoder  hal.CommandEncoder
	finished bool
	recorded int
}

// NewResolveRecorder creates a recorder copying into the given resolver
// state. The state must have been allocated by this backend.
func (b *Backend) NewResolveRecorder(st feedback.State) (*ResolveRecorder, error) {
	state, ok := st.(*resolveState)
	if !ok || state.backend != b {
		return nil, fmt.Errorf("native: foreign resolve state")
	}
	if state.released {
		return nil, ErrStateReleased
	}

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "vtex-feedback-resolve",
	})
	if err != nil {
		return nil, fmt.Errorf("native: creating resolve encoder: %w", err)
	}
	if err := encoder.BeginEncoding("feedback-resolve"); err != nil {
		return nil, fmt.Errorf("native: beginning resolve encoding: %w", err)
	}
	return &ResolveRecorder{backend: b, state: state, encoder: encoder}, nil
}

// RecordResolve implements feedback.Recorder: it records a row-by-row copy
// of the region from the feedback stream buffer into the resolve state.
func (r *ResolveRecorder) RecordResolve(cmd feedback.ResolveCommand) error {
	if r.finished {
		return ErrRecorderFinished
	}
	src, ok := cmd.Target.(hal.Buffer)
	if !ok {
		return ErrBadResolveTarget
	}

	region := clampRegion(cmd.Region, r.state.width, r.state.height)
	if region.Width == 0 || region.Height == 0 {
		return nil
	}

	stride := uint64(r.state.width) * feedbackTexelSize
	rowBytes := uint64(region.Width) * feedbackTexelSize
	copies := make([]hal.BufferCopy, 0, region.Height)
	for row := uint32(0); row < region.Height; row++ {
		off := uint64(region.Y+row)*stride + uint64(region.X)*feedbackTexelSize
		copies = append(copies, hal.BufferCopy{
			SrcOffset: off,
			DstOffset: off,
			Size:      rowBytes,
		})
	}
	r.encoder.CopyBufferToBuffer(src, r.state.buf, copies)
	r.recorded++
	return nil
}

// Finish ends encoding and submits the recorded resolves. A recorder that
// recorded nothing submits nothing.
func (r *ResolveRecorder) Finish() error {
	if r.finished {
		return ErrRecorderFinished
	}
	r.finished = true

	cmdBuffer, err := r.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: ending resolve encoding: %w", err)
	}
	defer cmdBuffer.Destroy()

	if r.recorded == 0 {
		return nil
	}
	if err := r.backend.queue.Submit([]hal.CommandBuffer{cmdBuffer}, nil, 0); err != nil {
		return fmt.Errorf("native: submitting resolve pass: %w", err)
	}
	return nil
}

// clampRegion restricts a region to the resolve state bounds.
func clampRegion(region vtex.Rect, width, height uint32) vtex.Rect {
	if region.X >= width || region.Y >= height {
		return vtex.Rect{}
	}
	if region.X+region.Width > width {
		region.Width = width - region.X
	}
	if region.Y+region.Height > height {
		region.Height = height - region.Y
	}
	return region
}
