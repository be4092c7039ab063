package vtex

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/gogpu/vtex/internal/debugview"
)

// SystemOption configures a System during creation.
type SystemOption func(*System)

// WithDebugTiles enables tile-debug introspection (occupancy images).
func WithDebugTiles(enabled bool) SystemOption {
	return func(s *System) { s.debugTiles = enabled }
}

// WithResolving controls whether the per-frame tick drives the device.
// Disabling it freezes request promotion, which is useful for stepping
// through streaming behavior in tools.
func WithResolving(enabled bool) SystemOption {
	return func(s *System) { s.resolving = enabled }
}

// System is the process-wide coordinator: it owns the per-frame tick,
// tracks every live stack, and exposes the read-only debug introspection
// surface.
//
// The enable flags live on the System rather than as package globals so a
// test can run multiple isolated systems side by side.
type System struct {
	mu  sync.RWMutex
	dev Device

	debugTiles bool
	resolving  bool

	// stacks is ordered by creation for stable index-based introspection.
	stacks []*Stack
}

// NewSystem creates a coordinator over the given device. Resolving is
// enabled by default; debug tiles are off.
func NewSystem(dev Device, opts ...SystemOption) (*System, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	s := &System{dev: dev, resolving: true}
	for _, opt := range opts {
		opt(s)
	}
	if ls, ok := dev.(loggerSetter); ok {
		ls.SetLogger(Logger())
	}
	return s, nil
}

// Device returns the native device the system coordinates.
func (s *System) Device() Device { return s.dev }

// CreateStack creates a stack through the system and registers it for
// introspection and per-frame ticking.
func (s *System) CreateStack(name string, params StackCreationParams, opts ...StackOption) (*Stack, error) {
	st, err := CreateStack(s.dev, name, params, opts...)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.stacks = append(s.stacks, st)
	s.mu.Unlock()
	return st, nil
}

// ReleaseStack disposes the stack and removes it from the registry.
// Releasing a stack the system does not track only disposes it.
func (s *System) ReleaseStack(st *Stack) {
	if st == nil {
		return
	}
	s.mu.Lock()
	for i, cur := range s.stacks {
		if cur == st {
			s.stacks = append(s.stacks[:i], s.stacks[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	st.Dispose()
}

// Update runs the per-frame tick: devices implementing FrameTicker get one
// Tick call so their tile manager can promote wanted regions into requests.
// When resolving is disabled the tick is skipped.
func (s *System) Update() error {
	s.mu.RLock()
	resolving := s.resolving
	s.mu.RUnlock()
	if !resolving {
		return nil
	}
	if t, ok := s.dev.(FrameTicker); ok {
		if err := t.Tick(); err != nil {
			return fmt.Errorf("vtex: system update: %w", err)
		}
	}
	return nil
}

// SetDebugTiles toggles tile-debug introspection.
func (s *System) SetDebugTiles(enabled bool) {
	s.mu.Lock()
	s.debugTiles = enabled
	s.mu.Unlock()
}

// DebugTiles reports whether tile-debug introspection is enabled.
func (s *System) DebugTiles() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debugTiles
}

// SetResolving toggles the per-frame tick.
func (s *System) SetResolving(enabled bool) {
	s.mu.Lock()
	s.resolving = enabled
	s.mu.Unlock()
}

// Resolving reports whether the per-frame tick is enabled.
func (s *System) Resolving() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolving
}

// StackCount returns the number of live registered stacks.
func (s *System) StackCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stacks)
}

// StackInfoAt returns the introspection record of the i-th registered
// stack, in creation order.
func (s *System) StackInfoAt(i int) (DebugInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.stacks) {
		return DebugInfo{}, fmt.Errorf("%w: index %d, count %d", ErrIndexOutOfRange, i, len(s.stacks))
	}
	return s.stacks[i].debugInfo(), nil
}

// DumpAll returns a text dump of every live stack, one line per stack.
// Read-only; intended for tooling.
func (s *System) DumpAll() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var b strings.Builder
	fmt.Fprintf(&b, "vtex: %d stack(s)\n", len(s.stacks))
	for _, st := range s.stacks {
		fmt.Fprintf(&b, "  %q group=%q handle=%#x size=%dx%d tile=%d layers=%d valid=%t\n",
			st.Name(), st.Group(), uint64(st.Handle()),
			st.params.Width, st.params.Height, st.params.TileSize,
			st.LayerCount(), st.IsValid())
	}
	return b.String()
}

// DebugTileImage renders the stack's current request snapshot as a tile
// occupancy image for the given mip level, scaled up for visibility.
// Requires debug tiles to be enabled and a fresh ActiveRequests snapshot.
func (s *System) DebugTileImage(st *Stack, mip int32, scale int) (*image.RGBA, error) {
	if !s.DebugTiles() {
		return nil, ErrDebugTilesDisabled
	}
	if st == nil || !st.IsValid() {
		return nil, ErrInvalidStack
	}

	// Tile-space grid dimensions at the requested mip.
	tilesX := int((st.params.Width / st.params.TileSize) >> uint(mip))
	tilesY := int((st.params.Height / st.params.TileSize) >> uint(mip))
	if tilesX < 1 {
		tilesX = 1
	}
	if tilesY < 1 {
		tilesY = 1
	}

	grid := debugview.NewGrid(tilesX, tilesY)
	l := st.requests
	for i := 0; i < l.Len(); i++ {
		req := &l.buf[i]
		if req.Level != mip {
			continue
		}
		grid.MarkRect(int(req.X), int(req.Y), int(req.Width), int(req.Height))
	}
	return debugview.Render(grid, scale), nil
}
