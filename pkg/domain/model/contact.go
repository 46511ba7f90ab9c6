package model

import (
	"strings"
	"sync"
	"time"

	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

// RowRef points at one row of the record store backing a workspace.
type RowRef int

// ContactRecord is one logical contact. A single record may span multiple
// store rows (duplicate entries for the same number); RowRefs lists them all.
type ContactRecord struct {
	ID             types.ContactID
	DisplayName    string
	RawAddress     string
	Address        types.Address
	RowRefs        []RowRef
	Status         types.ContactStatus
	LastNotifiedAt time.Time
}

func (c *ContactRecord) clone() *ContactRecord {
	copied := *c
	copied.RowRefs = make([]RowRef, len(c.RowRefs))
	copy(copied.RowRefs, c.RowRefs)
	return &copied
}

// NormalizeDigits strips everything but digits from a raw phone field.
func NormalizeDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EnsureCountryCode prefixes the default country code when the digits do not
// already start with it.
func EnsureCountryCode(digits, countryCode string) string {
	if countryCode == "" || strings.HasPrefix(digits, countryCode) {
		return digits
	}
	return countryCode + digits
}

// SuffixMatch reports whether two digit strings refer to the same number,
// matching by trailing-digit suffix so rows stored with and without a country
// code reconcile. Two distinct shorter numbers where one is a suffix of the
// other will conflate; that is accepted, documented behavior.
func SuffixMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.HasSuffix(a, b) || strings.HasSuffix(b, a)
}

// ContactDirectory maps addresses and identifiers to contact records for one
// workspace. Built fresh on every directory (re)load; status fields are the
// only mutable parts afterward.
type ContactDirectory struct {
	mu        sync.RWMutex
	byAddress map[types.Address]*ContactRecord
	byID      map[types.ContactID]*ContactRecord
	order     []types.ContactID
}

// NewContactDirectory creates an empty directory.
func NewContactDirectory() *ContactDirectory {
	return &ContactDirectory{
		byAddress: make(map[types.Address]*ContactRecord),
		byID:      make(map[types.ContactID]*ContactRecord),
	}
}

// Add inserts a record, or merges row refs and OR-combines status when the
// identifier is already present.
func (d *ContactDirectory) Add(record *ContactRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.byID[record.ID]; ok {
		existing.RowRefs = append(existing.RowRefs, record.RowRefs...)
		existing.Status = existing.Status.Combine(record.Status)
		if record.LastNotifiedAt.After(existing.LastNotifiedAt) {
			existing.LastNotifiedAt = record.LastNotifiedAt
		}
		return
	}

	stored := record.clone()
	d.byID[stored.ID] = stored
	d.byAddress[stored.Address] = stored
	d.order = append(d.order, stored.ID)
}

// Lookup resolves an inbound sender address to its contact record.
func (d *ContactDirectory) Lookup(address types.Address) (*ContactRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if record, ok := d.byAddress[address]; ok {
		return record.clone(), true
	}
	// The gateway may deliver the address in a different raw form; fall back
	// to suffix matching on digits.
	digits := address.Digits()
	for _, record := range d.byID {
		if SuffixMatch(digits, string(record.ID)) {
			return record.clone(), true
		}
	}
	return nil, false
}

// Get returns the record for an identifier.
func (d *ContactDirectory) Get(id types.ContactID) (*ContactRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	record, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return record.clone(), true
}

// Contacts returns all records in insertion order.
func (d *ContactDirectory) Contacts() []*ContactRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	records := make([]*ContactRecord, 0, len(d.order))
	for _, id := range d.order {
		records = append(records, d.byID[id].clone())
	}
	return records
}

// Aggregate returns the OR-combined status for an identifier. Unknown
// identifiers report None.
func (d *ContactDirectory) Aggregate(id types.ContactID) types.ContactStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if record, ok := d.byID[id]; ok {
		return record.Status
	}
	return types.ContactStatusNone
}

// MarkNotified raises the aggregate to Notified (never downgrades Confirmed)
// and records the notification time.
func (d *ContactDirectory) MarkNotified(id types.ContactID, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if record, ok := d.byID[id]; ok {
		record.Status = record.Status.Combine(types.ContactStatusNotified)
		record.LastNotifiedAt = at
	}
}

// MarkConfirmed raises the aggregate to Confirmed.
func (d *ContactDirectory) MarkConfirmed(id types.ContactID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if record, ok := d.byID[id]; ok {
		record.Status = types.ContactStatusConfirmed
	}
}
