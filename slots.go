package vtex

import "fmt"

// SlotTable is a fixed-capacity table of in-flight tile requests.
//
// Each slot runs a small state machine:
//
//	Free -> Requested -> Processing -> {Complete | Dropped} -> Free
//
// The slot index doubles as the request id, so an id is unique while its
// request is outstanding and may be reused only after the slot has returned
// to Free. A terminal status holds the slot until Apply releases it, which
// guarantees an id is never reused while an un-applied batch still
// references it.
//
// SlotTable is NOT safe for concurrent use. Per-stack access is serialized
// by the caller (single-writer discipline); devices that share a table
// across goroutines must provide their own locking.
type SlotTable struct {
	slots []tableSlot
}

type tableSlot struct {
	status TileRequestStatus
	req    TileRequest
}

// NewSlotTable creates a table with the given capacity (the per-frame
// request budget). Capacity must be positive.
func NewSlotTable(capacity int) *SlotTable {
	if capacity <= 0 {
		panic("vtex: slot table capacity must be positive")
	}
	t := &SlotTable{slots: make([]tableSlot, capacity)}
	for i := range t.slots {
		t.slots[i].status = StatusFree
	}
	return t
}

// Capacity returns the fixed slot count.
func (t *SlotTable) Capacity() int { return len(t.slots) }

// Outstanding returns the number of slots not in the Free state.
func (t *SlotTable) Outstanding() int {
	n := 0
	for i := range t.slots {
		if !t.slots[i].status.IsFree() {
			n++
		}
	}
	return n
}

// Enqueue claims a free slot for req, stamps the request id with the slot
// index, and moves the slot to Requested. It returns the assigned id, or
// ErrTableFull when every slot is occupied.
func (t *SlotTable) Enqueue(req TileRequest) (int32, error) {
	for i := range t.slots {
		if t.slots[i].status.IsFree() {
			req.ID = int32(i)
			t.slots[i].req = req
			t.slots[i].status = StatusRequested
			return req.ID, nil
		}
	}
	return -1, ErrTableFull
}

// Pull moves up to len(buf) Requested slots to Processing and copies their
// requests into buf. It returns the number of requests written.
func (t *SlotTable) Pull(buf []TileRequest) int {
	n := 0
	for i := range t.slots {
		if n == len(buf) {
			break
		}
		if t.slots[i].status == StatusRequested {
			t.slots[i].status = StatusProcessing
			buf[n] = t.slots[i].req
			n++
		}
	}
	return n
}

// Request returns a copy of the outstanding request with the given id.
// The second result is false when the id does not name an occupied slot.
func (t *SlotTable) Request(id int32) (TileRequest, bool) {
	if id < 0 || int(id) >= len(t.slots) || t.slots[id].status.IsFree() {
		return TileRequest{}, false
	}
	return t.slots[id].req, true
}

// Status returns the state of the slot with the given id, or StatusFree
// when the id does not name a slot.
func (t *SlotTable) Status(id int32) TileRequestStatus {
	if id < 0 || int(id) >= len(t.slots) {
		return StatusFree
	}
	return t.slots[id].status
}

// Apply records a batch of terminal status updates and releases the
// affected slots back to Free.
//
// The whole batch is validated before any slot is mutated, so a failed
// Apply leaves the table untouched. Within one batch the last write wins
// for a duplicated id. An update is rejected with ErrStaleRequest when its
// id does not name a slot in the Processing state (and is not a duplicate
// of an earlier entry in the same batch), and with ErrNotTerminal when its
// status is not Complete or Dropped.
func (t *SlotTable) Apply(updates []StatusUpdate) error {
	seen := make(map[int32]struct{}, len(updates))
	for _, u := range updates {
		if !u.Status.IsTerminal() {
			return fmt.Errorf("%w: id %d has status %v", ErrNotTerminal, u.ID, u.Status)
		}
		if u.ID < 0 || int(u.ID) >= len(t.slots) {
			return fmt.Errorf("%w: id %d", ErrStaleRequest, u.ID)
		}
		if _, dup := seen[u.ID]; dup {
			continue
		}
		if t.slots[u.ID].status != StatusProcessing {
			return fmt.Errorf("%w: id %d is %v", ErrStaleRequest, u.ID, t.slots[u.ID].status)
		}
		seen[u.ID] = struct{}{}
	}

	// Stamp terminal statuses in order; later duplicates overwrite earlier
	// ones, giving last-write-wins within the batch.
	for _, u := range updates {
		t.slots[u.ID].status = u.Status
	}

	// Release every slot the batch finished.
	for id := range seen {
		t.slots[id].status = StatusFree
	}
	return nil
}

// CompleteAll force-frees every Processing slot, bypassing per-request
// terminal reporting. Used on shutdown and flush paths. It returns the
// number of slots released.
//
// Requested slots are left untouched: they were never handed to a producer,
// and the tile manager may re-issue or retire them on its own.
func (t *SlotTable) CompleteAll() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].status == StatusProcessing {
			t.slots[i].status = StatusFree
			n++
		}
	}
	return n
}
