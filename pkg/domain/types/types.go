package types

import "strings"

// WorkspaceID identifies one tenant partition.
type WorkspaceID string

// String returns the string representation of the workspace ID
func (id WorkspaceID) String() string {
	return string(id)
}

// SlotID identifies a bookable slot within a workspace. Display IDs are
// sequential ("S1", "S2", ...) and unique for the lifetime of the workspace.
type SlotID string

// String returns the string representation of the slot ID
func (id SlotID) String() string {
	return string(id)
}

// ContactID is the bare-digit identifier of one logical contact, used for
// duplicate matching and status aggregation across store rows.
type ContactID string

// String returns the string representation of the contact ID
func (id ContactID) String() string {
	return string(id)
}

// Address is a canonical messaging address for outbound delivery, e.g.
// "whatsapp:+6591234567".
type Address string

// String returns the string representation of the address
func (a Address) String() string {
	return string(a)
}

// Digits strips the channel prefix and non-digit characters from the address.
func (a Address) Digits() string {
	s := string(a)
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		s = s[idx+1:]
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SuffixHint returns the trailing digits of the address for log lines and
// operator messages without exposing the full number.
func (a Address) SuffixHint() string {
	digits := a.Digits()
	if len(digits) <= 4 {
		return digits
	}
	return "…" + digits[len(digits)-4:]
}
