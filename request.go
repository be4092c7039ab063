package vtex

import "fmt"

// TileRequestStatus is the per-slot state of a tile request.
//
// The numeric ordering is load-bearing: the four live states are sequential
// below StatusFree, and a slot is free precisely when its stored status is
// at or above the StatusFree sentinel. This matches the native status
// record layout, where any value >= the sentinel marks a free slot.
type TileRequestStatus int32

const (
	// StatusRequested marks a tile the native tile manager wants but that
	// has not yet been handed to the producer.
	StatusRequested TileRequestStatus = iota

	// StatusProcessing marks a request handed to the producer via a
	// snapshot. The producer owns it until it reports a terminal status.
	StatusProcessing

	// StatusComplete marks a serviced request, terminal until the batched
	// update is applied.
	StatusComplete

	// StatusDropped marks an abandoned request, terminal until the batched
	// update is applied.
	StatusDropped
)

// StatusFree is the free-slot sentinel. Any status value at or above it
// marks an unused slot.
const StatusFree TileRequestStatus = 0xFFFF

// IsFree reports whether the status marks an unused slot.
func (s TileRequestStatus) IsFree() bool { return s >= StatusFree }

// IsTerminal reports whether the status is Complete or Dropped.
func (s TileRequestStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusDropped
}

// String returns a human-readable status name.
func (s TileRequestStatus) String() string {
	switch {
	case s.IsFree():
		return "Free"
	case s == StatusRequested:
		return "Requested"
	case s == StatusProcessing:
		return "Processing"
	case s == StatusComplete:
		return "Complete"
	case s == StatusDropped:
		return "Dropped"
	default:
		return fmt.Sprintf("TileRequestStatus(%d)", int32(s))
	}
}

// TileRequestLayer is the per-layer sub-record of a tile request: where in
// the destination surface the producer must write the decoded tile.
type TileRequestLayer struct {
	// DestX, DestY are the destination write coordinates in texels.
	DestX int32
	DestY int32

	// Enabled reports whether this layer participates in the request.
	Enabled bool

	// Target is the destination surface for this layer.
	Target SurfaceID
}

// TileRequest is one unit of streaming work: a tile rectangle at a mip
// level, plus per-layer destination records.
//
// The layer array always has MaxLayers entries to match the fixed native
// record layout; entries at index >= NumLayers are present but ignored.
type TileRequest struct {
	// ID is the slot-table identity, unique while the request is
	// outstanding. It may be reused after the slot returns to Free.
	ID int32

	// Level is the mip level of the requested tile.
	Level int32

	// X, Y, Width, Height describe the tile rectangle in tile space.
	X      int32
	Y      int32
	Width  int32
	Height int32

	// NumLayers is the number of active layers, 1..MaxLayers.
	NumLayers int32

	// Layers holds the fixed per-layer sub-records.
	Layers [MaxLayers]TileRequestLayer
}

// Layer returns the i-th per-layer sub-record. The index must be in
// [0, MaxLayers); entries at index >= NumLayers exist but carry no meaning.
func (r *TileRequest) Layer(i int) (*TileRequestLayer, error) {
	if i < 0 || i >= MaxLayers {
		return nil, fmt.Errorf("%w: %d", ErrLayerOutOfRange, i)
	}
	return &r.Layers[i], nil
}

// StatusUpdate is one (request id, new status) pair in a batched update.
type StatusUpdate struct {
	ID     int32
	Status TileRequestStatus
}

// Rect is an axis-aligned rectangle used for region residency requests.
type Rect struct {
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
}

// AllMips is the distinguished mip-count sentinel meaning "all remaining
// mips". Region operations forward it to the native layer literally, never
// as a computed finite count.
const AllMips = ^uint32(0)
