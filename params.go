package vtex

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// System-fixed creation limits.
const (
	// BorderSize is the fixed tile border in texels. Every cached tile is
	// padded by this many texels on each side so bilinear and anisotropic
	// filtering never samples across tile boundaries.
	BorderSize uint32 = 8

	// MaxLayers is the maximum number of pixel layers in a stack.
	MaxLayers = 4

	// MaxRequestsPerFrameLimit bounds the per-frame request budget.
	MaxRequestsPerFrameLimit uint32 = 4095
)

// StackCreationParams describes a virtual texture stack to create.
// The parameters are validated before any native resource is allocated and
// are immutable after validation.
type StackCreationParams struct {
	// Width is the virtual width in texels.
	Width uint32

	// Height is the virtual height in texels.
	Height uint32

	// TileSize is the tile edge length in texels, excluding the border.
	TileSize uint32

	// MaxRequestsPerFrame is the request budget: the maximum number of tile
	// requests handed to the producer in one frame. Must be in
	// [1, MaxRequestsPerFrameLimit].
	MaxRequestsPerFrame uint32

	// Layers holds 1 to MaxLayers pixel-layer formats, each drawn from the
	// supported format set (see SupportedLayerFormat).
	Layers []gputypes.TextureFormat
}

// Validate checks the parameters against the creation invariants.
// It returns an error wrapping ErrInvalidParams describing the first
// violation found, or nil if the parameters are valid.
func (p *StackCreationParams) Validate() error {
	if p.Width == 0 || p.Height == 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidParams, p.Width, p.Height)
	}
	if p.TileSize == 0 {
		return fmt.Errorf("%w: tile size is zero", ErrInvalidParams)
	}
	if p.MaxRequestsPerFrame == 0 || p.MaxRequestsPerFrame > MaxRequestsPerFrameLimit {
		return fmt.Errorf("%w: request budget %d not in [1, %d]",
			ErrInvalidParams, p.MaxRequestsPerFrame, MaxRequestsPerFrameLimit)
	}
	if len(p.Layers) == 0 || len(p.Layers) > MaxLayers {
		return fmt.Errorf("%w: %d layers, want 1..%d", ErrInvalidParams, len(p.Layers), MaxLayers)
	}
	for i, f := range p.Layers {
		if !SupportedLayerFormat(f) {
			return fmt.Errorf("%w: layer %d has unsupported format %v", ErrInvalidParams, i, f)
		}
	}
	return nil
}

// StackDesc is the wire-equivalent creation descriptor passed to the native
// layer. Field order matches the native layout: width, height, request
// budget, tile size, layer formats, border size.
type StackDesc struct {
	Width               uint32
	Height              uint32
	MaxRequestsPerFrame uint32
	TileSize            uint32
	Layers              []gputypes.TextureFormat
	BorderSize          uint32
}

// desc builds the native creation descriptor from validated parameters.
// The layer slice is copied so the descriptor does not alias caller memory.
func (p *StackCreationParams) desc() *StackDesc {
	layers := make([]gputypes.TextureFormat, len(p.Layers))
	copy(layers, p.Layers)
	return &StackDesc{
		Width:               p.Width,
		Height:              p.Height,
		MaxRequestsPerFrame: p.MaxRequestsPerFrame,
		TileSize:            p.TileSize,
		Layers:              layers,
		BorderSize:          BorderSize,
	}
}
