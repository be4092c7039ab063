// Package native implements the vtex native layer over gogpu/wgpu.
//
// The backend owns the GPU-backed resources behind each stack handle: one
// tile-cache texture per pixel layer and a request readback buffer holding
// the shader-visible tile request records. It also runs the minimal tile
// manager that promotes wanted regions into tile requests each frame.
package native

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/vtex"
)

// cacheTilesPerRow is the tile-cache atlas width in tiles. Each layer's
// cache holds cacheTilesPerRow^2 tiles.
const cacheTilesPerRow = 8

// tileKey identifies one tile of a stack in tile space.
type tileKey struct {
	level int32
	x, y  int32
}

// regionRequest is one wanted-region entry recorded by RequestRegion.
// The numMips sentinel (vtex.AllMips) is stored literally.
type regionRequest struct {
	region  vtex.Rect
	mip     uint32
	numMips uint32
}

// stackResources holds everything the backend owns for one stack.
type stackResources struct {
	desc vtex.StackDesc

	// layers are the per-layer tile-cache textures.
	layers []hal.Texture

	// requestBuf holds the fixed-layout tile request records, one slot per
	// budget entry, written on enqueue and readable by shaders.
	requestBuf hal.Buffer

	// table drives the per-slot request state machine.
	table *vtex.SlotTable

	resident map[tileKey]struct{}
	inflight map[tileKey]int32

	wanted []regionRequest

	// nextCacheSlot rotates destination slots through the cache atlas.
	nextCacheSlot uint32
}

// Backend implements vtex.Device over a HAL device and queue.
//
// Backend serializes access with an internal mutex, so DestroyStack is safe
// from any thread as the Device contract requires. Higher-frequency calls
// still follow the per-stack single-writer discipline of the core.
type Backend struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue

	// provider is the optional shared GPU context of the host application.
	provider gpucontext.DeviceProvider

	logger *slog.Logger

	nextHandle uint64
	stacks     map[vtex.StackHandle]*stackResources
}

// New creates a backend over the given HAL device and queue.
func New(device hal.Device, queue hal.Queue) (*Backend, error) {
	if device == nil {
		return nil, ErrNilHALDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	return &Backend{
		device: device,
		queue:  queue,
		logger: vtex.Logger(),
		stacks: make(map[vtex.StackHandle]*stackResources),
	}, nil
}

// SetLogger sets the backend logger. Called by vtex.NewSystem to share the
// core logger configuration.
func (b *Backend) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	b.mu.Lock()
	b.logger = l
	b.mu.Unlock()
}

// SetDeviceProvider accepts a host gpucontext.DeviceProvider so the backend
// can share GPU resources with the host application instead of owning them.
func (b *Backend) SetDeviceProvider(provider any) error {
	p, ok := provider.(gpucontext.DeviceProvider)
	if !ok {
		return ErrBadProvider
	}
	b.mu.Lock()
	b.provider = p
	b.mu.Unlock()
	return nil
}

// CreateStack allocates the native resources for a stack: one tile-cache
// texture per layer and the request readback buffer.
func (b *Backend) CreateStack(desc *vtex.StackDesc) (vtex.StackHandle, error) {
	if desc == nil {
		return vtex.InvalidStack, ErrNilDesc
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	paddedTile := desc.TileSize + 2*desc.BorderSize
	cacheEdge := paddedTile * cacheTilesPerRow

	res := &stackResources{
		desc:     *desc,
		table:    vtex.NewSlotTable(int(desc.MaxRequestsPerFrame)),
		resident: make(map[tileKey]struct{}),
		inflight: make(map[tileKey]int32),
	}

	for i, format := range desc.Layers {
		tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
			Label: fmt.Sprintf("vtex-tile-cache-%d", i),
			Size: hal.Extent3D{
				Width:              cacheEdge,
				Height:             cacheEdge,
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     types.TextureDimension2D,
			Format:        types.TextureFormat(format),
			Usage:         types.TextureUsageCopyDst | types.TextureUsageTextureBinding,
		})
		if err != nil {
			b.releaseResourcesLocked(res)
			return vtex.InvalidStack, fmt.Errorf("native: creating tile cache layer %d: %w", i, err)
		}
		res.layers = append(res.layers, tex)
	}

	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "vtex-request-records",
		Size:  uint64(desc.MaxRequestsPerFrame) * requestRecordSize,
		Usage: types.BufferUsageMapRead | types.BufferUsageCopyDst,
	})
	if err != nil {
		b.releaseResourcesLocked(res)
		return vtex.InvalidStack, fmt.Errorf("native: creating request buffer: %w", err)
	}
	res.requestBuf = buf

	b.nextHandle++
	h := vtex.StackHandle(b.nextHandle)
	b.stacks[h] = res

	b.logger.Info("stack resources created",
		"handle", uint64(h), "layers", len(res.layers), "cacheEdge", cacheEdge)
	return h, nil
}

// DestroyStack releases all native resources of the stack. Unknown handles
// are ignored. Safe to call from any thread.
func (b *Backend) DestroyStack(h vtex.StackHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.stacks[h]
	if !ok {
		return
	}
	delete(b.stacks, h)
	b.releaseResourcesLocked(res)
	b.logger.Info("stack resources destroyed", "handle", uint64(h))
}

func (b *Backend) releaseResourcesLocked(res *stackResources) {
	for _, tex := range res.layers {
		b.device.DestroyTexture(tex)
	}
	res.layers = nil
	if res.requestBuf != nil {
		b.device.DestroyBuffer(res.requestBuf)
		res.requestBuf = nil
	}
}

// PullRequests hands up to len(buf) Requested slots to the producer.
func (b *Backend) PullRequests(h vtex.StackHandle, buf []vtex.TileRequest) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.stacks[h]
	if !ok {
		return 0, vtex.ErrUnknownStack
	}
	return res.table.Pull(buf), nil
}

// UpdateRequests applies a batch of terminal updates. Completed tiles
// become resident; dropped tiles may be re-requested by a later tick.
func (b *Backend) UpdateRequests(h vtex.StackHandle, updates []vtex.StatusUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.stacks[h]
	if !ok {
		return vtex.ErrUnknownStack
	}

	// Snapshot the affected requests before Apply frees their slots, and
	// reduce the batch to its final per-id status (last write wins).
	final := make(map[int32]vtex.TileRequestStatus, len(updates))
	reqs := make(map[int32]vtex.TileRequest, len(updates))
	for _, u := range updates {
		if req, live := res.table.Request(u.ID); live {
			reqs[u.ID] = req
		}
		final[u.ID] = u.Status
	}

	if err := res.table.Apply(updates); err != nil {
		return err
	}

	for id, status := range final {
		req := reqs[id]
		key := tileKey{level: req.Level, x: req.X, y: req.Y}
		delete(res.inflight, key)
		if status == vtex.StatusComplete {
			res.resident[key] = struct{}{}
		}
	}
	return nil
}

// CompleteAllRequests force-completes every Processing request. The
// affected tiles are treated as resident, matching the Complete path.
// Requested tiles that were never handed to a producer keep their slots and
// inflight entries, so later pulls still deliver them.
func (b *Backend) CompleteAllRequests(h vtex.StackHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.stacks[h]
	if !ok {
		return vtex.ErrUnknownStack
	}
	for key, id := range res.inflight {
		if res.table.Status(id) != vtex.StatusProcessing {
			continue
		}
		if req, live := res.table.Request(id); live {
			res.resident[tileKey{level: req.Level, x: req.X, y: req.Y}] = struct{}{}
			delete(res.inflight, key)
		}
	}
	res.table.CompleteAll()
	return nil
}

// RequestRegion records the rectangle (texel space) as wanted across the
// given mip range. The vtex.AllMips sentinel is stored literally.
func (b *Backend) RequestRegion(h vtex.StackHandle, region vtex.Rect, mip, numMips uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.stacks[h]
	if !ok {
		return vtex.ErrUnknownStack
	}
	res.wanted = append(res.wanted, regionRequest{region: region, mip: mip, numMips: numMips})
	return nil
}

// InvalidateRegion drops residency for the rectangle across the given mip
// range and removes matching wanted entries.
func (b *Backend) InvalidateRegion(h vtex.StackHandle, region vtex.Rect, mip, numMips uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.stacks[h]
	if !ok {
		return vtex.ErrUnknownStack
	}

	kept := res.wanted[:0]
	for _, w := range res.wanted {
		if w.region == region && w.mip == mip && w.numMips == numMips {
			continue
		}
		kept = append(kept, w)
	}
	res.wanted = kept

	forEachTile(&res.desc, region, mip, numMips, func(key tileKey) bool {
		delete(res.resident, key)
		return true
	})
	return nil
}

// ResidentTileCount returns the number of resident tiles of the stack.
// Debug/introspection only.
func (b *Backend) ResidentTileCount(h vtex.StackHandle) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.stacks[h]
	if !ok {
		return 0
	}
	return len(res.resident)
}

// Tick runs the per-frame tile manager pass: every wanted region is walked
// in tile space and non-resident, non-inflight tiles are enqueued until the
// slot table fills or the regions are covered.
func (b *Backend) Tick() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for h, res := range b.stacks {
		for _, w := range res.wanted {
			full := false
			forEachTile(&res.desc, w.region, w.mip, w.numMips, func(key tileKey) bool {
				if _, ok := res.resident[key]; ok {
					return true
				}
				if _, ok := res.inflight[key]; ok {
					return true
				}
				id, err := b.enqueueTileLocked(h, res, key)
				if err != nil {
					full = true
					return false
				}
				res.inflight[key] = id
				return true
			})
			if full {
				break
			}
		}
	}
	return nil
}

// enqueueTileLocked builds the fixed-layout request record for one tile,
// claims a slot, and uploads the record to the request buffer.
func (b *Backend) enqueueTileLocked(h vtex.StackHandle, res *stackResources, key tileKey) (int32, error) {
	paddedTile := res.desc.TileSize + 2*res.desc.BorderSize

	slot := res.nextCacheSlot % (cacheTilesPerRow * cacheTilesPerRow)
	res.nextCacheSlot++
	destX := int32((slot % cacheTilesPerRow) * paddedTile)
	destY := int32((slot / cacheTilesPerRow) * paddedTile)

	req := vtex.TileRequest{
		Level:     key.level,
		X:         key.x,
		Y:         key.y,
		Width:     1,
		Height:    1,
		NumLayers: int32(len(res.desc.Layers)),
	}
	for i := range res.desc.Layers {
		req.Layers[i] = vtex.TileRequestLayer{
			DestX:   destX,
			DestY:   destY,
			Enabled: true,
			Target:  layerSurfaceID(h, i),
		}
	}

	id, err := res.table.Enqueue(req)
	if err != nil {
		return -1, err
	}
	req.ID = id

	record := encodeRequestRecord(&req)
	b.queue.WriteBuffer(res.requestBuf, uint64(id)*requestRecordSize, record[:])
	return id, nil
}

// layerSurfaceID derives the opaque destination surface reference for a
// stack layer. The producer passes it back through the tile request; only
// the native layer interprets it.
func layerSurfaceID(h vtex.StackHandle, layer int) vtex.SurfaceID {
	return vtex.SurfaceID(uint64(h)<<8 | uint64(layer))
}

// forEachTile walks the tiles covered by a texel-space region across the
// mip range, calling fn for each. fn returning false stops the walk.
// numMips may be the vtex.AllMips sentinel, meaning all remaining levels.
func forEachTile(desc *vtex.StackDesc, region vtex.Rect, mip, numMips uint32, fn func(tileKey) bool) {
	maxMip := maxMipCount(desc)
	end := maxMip
	if numMips != vtex.AllMips && mip < maxMip && numMips < maxMip-mip {
		end = mip + numMips
	}
	for level := mip; level < end; level++ {
		tileSpan := desc.TileSize << level
		x0 := region.X / tileSpan
		y0 := region.Y / tileSpan
		x1 := (region.X + region.Width + tileSpan - 1) / tileSpan
		y1 := (region.Y + region.Height + tileSpan - 1) / tileSpan

		tilesX := (desc.Width + tileSpan - 1) / tileSpan
		tilesY := (desc.Height + tileSpan - 1) / tileSpan
		if x1 > tilesX {
			x1 = tilesX
		}
		if y1 > tilesY {
			y1 = tilesY
		}
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				if !fn(tileKey{level: int32(level), x: int32(x), y: int32(y)}) {
					return
				}
			}
		}
	}
}

// maxMipCount returns the number of mip levels until the larger dimension
// fits in a single tile.
func maxMipCount(desc *vtex.StackDesc) uint32 {
	longer := desc.Width
	if desc.Height > longer {
		longer = desc.Height
	}
	count := uint32(1)
	for span := desc.TileSize; span < longer; span <<= 1 {
		count++
	}
	return count
}
