package vtex

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// mockDevice is a test double for Device backed by real slot tables, so
// the core's state machine runs end to end without GPU resources.
type mockDevice struct {
	mu sync.Mutex

	// Track calls for verification.
	createCalls   int32
	destroyCalls  int32
	pullCalls     int32
	updateCalls   int32
	completeCalls int32
	ticks         int32

	createFunc func(*StackDesc) (StackHandle, error)

	nextHandle uint64
	tables     map[StackHandle]*SlotTable

	lastBatch   []StatusUpdate
	lastRegion  Rect
	lastMip     uint32
	lastNumMips uint32
}

func newMockDevice() *mockDevice {
	return &mockDevice{tables: make(map[StackHandle]*SlotTable)}
}

func (d *mockDevice) CreateStack(desc *StackDesc) (StackHandle, error) {
	atomic.AddInt32(&d.createCalls, 1)
	if d.createFunc != nil {
		return d.createFunc(desc)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextHandle++
	h := StackHandle(d.nextHandle)
	d.tables[h] = NewSlotTable(int(desc.MaxRequestsPerFrame))
	return h, nil
}

func (d *mockDevice) DestroyStack(h StackHandle) {
	atomic.AddInt32(&d.destroyCalls, 1)
	d.mu.Lock()
	delete(d.tables, h)
	d.mu.Unlock()
}

func (d *mockDevice) PullRequests(h StackHandle, buf []TileRequest) (int, error) {
	atomic.AddInt32(&d.pullCalls, 1)
	d.mu.Lock()
	defer d.mu.Unlock()
	table, ok := d.tables[h]
	if !ok {
		return 0, ErrUnknownStack
	}
	return table.Pull(buf), nil
}

func (d *mockDevice) UpdateRequests(h StackHandle, updates []StatusUpdate) error {
	atomic.AddInt32(&d.updateCalls, 1)
	d.mu.Lock()
	defer d.mu.Unlock()
	table, ok := d.tables[h]
	if !ok {
		return ErrUnknownStack
	}
	d.lastBatch = append(d.lastBatch[:0], updates...)
	return table.Apply(updates)
}

func (d *mockDevice) CompleteAllRequests(h StackHandle) error {
	atomic.AddInt32(&d.completeCalls, 1)
	d.mu.Lock()
	defer d.mu.Unlock()
	table, ok := d.tables[h]
	if !ok {
		return ErrUnknownStack
	}
	table.CompleteAll()
	return nil
}

func (d *mockDevice) RequestRegion(h StackHandle, region Rect, mip, numMips uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.tables[h]; !ok {
		return ErrUnknownStack
	}
	d.lastRegion = region
	d.lastMip = mip
	d.lastNumMips = numMips
	return nil
}

func (d *mockDevice) InvalidateRegion(h StackHandle, region Rect, mip, numMips uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.tables[h]; !ok {
		return ErrUnknownStack
	}
	d.lastRegion = region
	d.lastMip = mip
	d.lastNumMips = numMips
	return nil
}

// Tick implements FrameTicker.
func (d *mockDevice) Tick() error {
	atomic.AddInt32(&d.ticks, 1)
	return nil
}

// seed enqueues n tile requests into the stack's slot table, as the native
// tile manager would after consuming feedback.
func (d *mockDevice) seed(h StackHandle, n int) []int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	table := d.tables[h]
	ids := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		id, err := table.Enqueue(TileRequest{
			Level:     0,
			X:         int32(i),
			Y:         0,
			Width:     1,
			Height:    1,
			NumLayers: 1,
		})
		if err != nil {
			break
		}
		ids = append(ids, id)
	}
	return ids
}

// mockBinder is a test double for MaterialBinder.
type mockBinder struct {
	bindCalls   int32
	globalCalls int32
	lastName    string
	lastHandle  StackHandle
	lastTarget  any
	failWith    error
}

func (b *mockBinder) BindStack(name string, h StackHandle, target any) error {
	atomic.AddInt32(&b.bindCalls, 1)
	if b.failWith != nil {
		return b.failWith
	}
	b.lastName = name
	b.lastHandle = h
	b.lastTarget = target
	return nil
}

func (b *mockBinder) BindStackGlobal(name string, h StackHandle) error {
	atomic.AddInt32(&b.globalCalls, 1)
	if b.failWith != nil {
		return b.failWith
	}
	b.lastName = name
	b.lastHandle = h
	return nil
}

// validParams returns creation parameters that pass validation.
func validParams() StackCreationParams {
	return StackCreationParams{
		Width:               4096,
		Height:              4096,
		TileSize:            128,
		MaxRequestsPerFrame: 8,
		Layers:              []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm},
	}
}
