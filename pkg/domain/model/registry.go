package model

import (
	"fmt"
	"sort"
	"sync"

	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

// BookOutcome is the result of resolving a numbered reply against the
// registry. Taken is an expected race outcome, not an error.
type BookOutcome string

const (
	BookOutcomeBooked  BookOutcome = "BOOKED"
	BookOutcomeTaken   BookOutcome = "TAKEN"
	BookOutcomeInvalid BookOutcome = "INVALID"
)

// SlotRegistry holds the authoritative slot state of one workspace. All
// mutation goes through its mutex so that check-and-set of a slot's booked
// flag is atomic with respect to concurrent booking attempts, even though the
// surrounding event stream is nominally serial.
type SlotRegistry struct {
	mu             sync.RWMutex
	slots          map[types.SlotID]*TimeSlot
	order          []types.SlotID // display order, start time ascending
	broadcastOrder []types.SlotID // frozen at broadcast time; nil until then
	seq            int            // display ID sequence, never reused
}

// NewSlotRegistry creates an empty registry.
func NewSlotRegistry() *SlotRegistry {
	return &SlotRegistry{
		slots: make(map[types.SlotID]*TimeSlot),
	}
}

// Replace installs a new open-slot set built from the given specs, sorted by
// start time ascending. Previously open (unbooked) slots are discarded,
// booked slots are retained for record-keeping, and any committed broadcast
// order is invalidated. Display IDs continue the workspace-wide sequence so
// retained booked slots never collide with new ones.
func (r *SlotRegistry) Replace(specs []SlotSpec) []*TimeSlot {
	sorted := make([]SlotSpec, len(specs))
	copy(sorted, specs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]types.SlotID, 0, len(r.order))
	for _, id := range r.order {
		if r.slots[id].Booked {
			kept = append(kept, id)
		} else {
			delete(r.slots, id)
		}
	}

	created := make([]*TimeSlot, 0, len(sorted))
	newOrder := make([]types.SlotID, 0, len(sorted))
	for _, spec := range sorted {
		r.seq++
		slot := &TimeSlot{
			ID:    types.SlotID(fmt.Sprintf("S%d", r.seq)),
			Start: spec.Start,
			End:   spec.End,
			Label: spec.Label(),
		}
		r.slots[slot.ID] = slot
		newOrder = append(newOrder, slot.ID)
		created = append(created, slot.clone())
	}

	r.order = append(kept, newOrder...)
	r.broadcastOrder = nil

	return created
}

// OpenSlots returns copies of the currently unbooked slots in display order.
func (r *SlotRegistry) OpenSlots() []*TimeSlot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.openLocked()
}

func (r *SlotRegistry) openLocked() []*TimeSlot {
	open := make([]*TimeSlot, 0, len(r.order))
	for _, id := range r.order {
		if slot := r.slots[id]; !slot.Booked {
			open = append(open, slot.clone())
		}
	}
	return open
}

// AllSlots returns copies of every slot, booked or not, in display order.
func (r *SlotRegistry) AllSlots() []*TimeSlot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*TimeSlot, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.slots[id].clone())
	}
	return all
}

// Get returns a copy of the slot with the given ID.
func (r *SlotRegistry) Get(id types.SlotID) (*TimeSlot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, false
	}
	return slot.clone(), true
}

// OpenCount returns the number of unbooked slots.
func (r *SlotRegistry) OpenCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, id := range r.order {
		if !r.slots[id].Booked {
			count++
		}
	}
	return count
}

// CommitBroadcastOrder freezes the current open-slot sequence as the meaning
// of numbered replies. It is called when a broadcast is actually sent and
// stays valid until the next Replace.
func (r *SlotRegistry) CommitBroadcastOrder() []types.SlotID {
	r.mu.Lock()
	defer r.mu.Unlock()

	order := make([]types.SlotID, 0, len(r.order))
	for _, id := range r.order {
		if !r.slots[id].Booked {
			order = append(order, id)
		}
	}
	r.broadcastOrder = order

	snapshot := make([]types.SlotID, len(order))
	copy(snapshot, order)
	return snapshot
}

// HasBroadcastOrder reports whether a broadcast order is committed.
func (r *SlotRegistry) HasBroadcastOrder() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.broadcastOrder != nil
}

// LiveListing numbers the currently open slots 1..n.
func (r *SlotRegistry) LiveListing() []NumberedSlot {
	open := r.OpenSlots()
	listing := make([]NumberedSlot, 0, len(open))
	for i, slot := range open {
		listing = append(listing, NumberedSlot{Number: i + 1, Slot: slot})
	}
	return listing
}

// StabilizedListing returns the still-open slots of the committed broadcast
// order, keeping their original numbers so a follow-up menu matches what was
// first sent. Falls back to the live listing when no broadcast order exists.
func (r *SlotRegistry) StabilizedListing() []NumberedSlot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.broadcastOrder == nil {
		listing := make([]NumberedSlot, 0)
		for i, slot := range r.openLocked() {
			listing = append(listing, NumberedSlot{Number: i + 1, Slot: slot})
		}
		return listing
	}

	listing := make([]NumberedSlot, 0, len(r.broadcastOrder))
	for i, id := range r.broadcastOrder {
		if slot, ok := r.slots[id]; ok && !slot.Booked {
			listing = append(listing, NumberedSlot{Number: i + 1, Slot: slot.clone()})
		}
	}
	return listing
}

// Book atomically resolves a 1-based numbered choice and attempts to claim
// the slot for the given contact. Resolution first uses the committed
// broadcast order; if none exists or the number is outside its range, it
// falls back to the current open-slot list, since slots open at reply time
// may differ from slots open at broadcast time.
//
// Exactly one of two racing attempts for the same slot succeeds; the loser
// observes Booked and gets BookOutcomeTaken with a copy of the taken slot.
func (r *SlotRegistry) Book(choice int, by types.ContactID) (*TimeSlot, BookOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if choice < 1 {
		return nil, BookOutcomeInvalid
	}

	var slot *TimeSlot
	if r.broadcastOrder != nil && choice <= len(r.broadcastOrder) {
		slot = r.slots[r.broadcastOrder[choice-1]]
	} else {
		open := make([]*TimeSlot, 0, len(r.order))
		for _, id := range r.order {
			if s := r.slots[id]; !s.Booked {
				open = append(open, s)
			}
		}
		if choice > len(open) {
			return nil, BookOutcomeInvalid
		}
		slot = open[choice-1]
	}

	if slot == nil {
		return nil, BookOutcomeInvalid
	}
	if slot.Booked {
		return slot.clone(), BookOutcomeTaken
	}

	slot.Booked = true
	slot.BookedBy = by
	return slot.clone(), BookOutcomeBooked
}
