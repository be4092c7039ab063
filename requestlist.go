package vtex

import "fmt"

// RequestList bridges the producer and the native slot table: it snapshots
// active requests once per frame, accumulates status updates, and flushes
// them back as one batched native call.
//
// The snapshot buffer has fixed capacity (the per-frame request budget) and
// is reused across frames, so steady-state operation performs no per-frame
// allocation.
//
// RequestList is NOT safe for concurrent use.
type RequestList struct {
	dev    Device
	handle StackHandle

	// buf is the snapshot storage, exclusively owned by this list and
	// reused across frames. length is the current snapshot size.
	buf    []TileRequest
	length int

	// pending is the status batch accumulated between two Apply calls.
	// Insertion order is preserved for determinism.
	pending []StatusUpdate
}

func newRequestList(dev Device, handle StackHandle, capacity uint32) *RequestList {
	return &RequestList{
		dev:     dev,
		handle:  handle,
		buf:     make([]TileRequest, capacity),
		pending: make([]StatusUpdate, 0, capacity),
	}
}

// Capacity returns the fixed snapshot capacity.
func (l *RequestList) Capacity() int { return len(l.buf) }

// Len returns the length of the current snapshot.
func (l *RequestList) Len() int { return l.length }

// Sync takes a fresh snapshot of the requests currently handed to the
// producer, overwriting the previous snapshot. Call it once per frame.
//
// Any *TileRequest obtained from a prior snapshot is invalid after Sync
// returns; holding one across Sync calls is caller misuse.
func (l *RequestList) Sync() error {
	n, err := l.dev.PullRequests(l.handle, l.buf)
	if err != nil {
		return err
	}
	l.length = n
	return nil
}

// At returns the i-th request of the current snapshot. The pointer is valid
// only until the next Sync call.
func (l *RequestList) At(i int) (*TileRequest, error) {
	if i < 0 || i >= l.length {
		return nil, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, l.length)
	}
	return &l.buf[i], nil
}

// UpdateStatus appends a terminal status for req to the pending batch.
// Native state is not touched until Apply.
func (l *RequestList) UpdateStatus(req *TileRequest, status TileRequestStatus) error {
	if req == nil {
		return ErrNilRequest
	}
	if !status.IsTerminal() {
		return fmt.Errorf("%w: %v", ErrNotTerminal, status)
	}
	l.pending = append(l.pending, StatusUpdate{ID: req.ID, Status: status})
	return nil
}

// Apply flushes the pending batch to the native layer in one call and
// clears it. An empty batch is a no-op: no native call is made.
func (l *RequestList) Apply() error {
	if len(l.pending) == 0 {
		return nil
	}
	if err := l.dev.UpdateRequests(l.handle, l.pending); err != nil {
		return err
	}
	l.pending = l.pending[:0]
	return nil
}

// MarkAllFinished force-completes every currently snapshotted request and
// resets the snapshot length to zero. Used on shutdown and flush paths.
//
// MarkAllFinished bypasses per-request reporting and must not be combined
// with a pending UpdateStatus batch for the same ids in the same frame; the
// two paths are mutually exclusive per frame.
func (l *RequestList) MarkAllFinished() error {
	if err := l.dev.CompleteAllRequests(l.handle); err != nil {
		return err
	}
	l.length = 0
	return nil
}
