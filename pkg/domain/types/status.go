package types

import "github.com/m-mizutani/goerr/v2"

// ContactStatus is the aggregate booking status of one contact identifier,
// OR-combined across all store rows sharing that identifier.
type ContactStatus string

const (
	ContactStatusNone      ContactStatus = "NONE"
	ContactStatusNotified  ContactStatus = "NOTIFIED"
	ContactStatusConfirmed ContactStatus = "CONFIRMED"
)

// AllContactStatuses returns all valid contact statuses
func AllContactStatuses() []ContactStatus {
	return []ContactStatus{
		ContactStatusNone,
		ContactStatusNotified,
		ContactStatusConfirmed,
	}
}

// IsValid checks if the contact status is valid
func (s ContactStatus) IsValid() bool {
	switch s {
	case ContactStatusNone, ContactStatusNotified, ContactStatusConfirmed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the contact status
func (s ContactStatus) String() string {
	return string(s)
}

// Combine merges another status into this one. Confirmed dominates Notified,
// Notified dominates None.
func (s ContactStatus) Combine(other ContactStatus) ContactStatus {
	if s == ContactStatusConfirmed || other == ContactStatusConfirmed {
		return ContactStatusConfirmed
	}
	if s == ContactStatusNotified || other == ContactStatusNotified {
		return ContactStatusNotified
	}
	return ContactStatusNone
}

// ParseContactStatus parses a string into a ContactStatus
func ParseContactStatus(s string) (ContactStatus, error) {
	status := ContactStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid contact status", goerr.V("status", s))
	}
	return status, nil
}

// Store cell markers for the Status column. The pending marker is written on
// a successful notification send; Confirmed is written by the booking flow.
const (
	CellStatusConfirmed = "Confirmed"
	CellStatusPending   = "Pending"
)

// StatusFromCell maps a raw Status cell value to an aggregate contribution.
// Unknown or blank cells contribute None.
func StatusFromCell(cell string) ContactStatus {
	switch cell {
	case CellStatusConfirmed:
		return ContactStatusConfirmed
	case CellStatusPending:
		return ContactStatusNotified
	default:
		return ContactStatusNone
	}
}
