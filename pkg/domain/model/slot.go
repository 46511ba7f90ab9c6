package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

// TimeSlot is one bookable fixed-duration interval. It is owned exclusively
// by the SlotRegistry of its workspace; Booked/BookedBy transition false→true
// exactly once and are never reversed.
type TimeSlot struct {
	ID       types.SlotID
	Start    time.Time
	End      time.Time
	Label    string
	Booked   bool
	BookedBy types.ContactID
}

func (s *TimeSlot) clone() *TimeSlot {
	copied := *s
	return &copied
}

// SlotSpec describes a slot to be registered, before an ID is assigned.
type SlotSpec struct {
	Start time.Time
	End   time.Time
}

// Label renders the human-facing slot description, e.g. "25 Aug 1-2pm".
// The am/pm marker is omitted on the start side when both ends share it.
func (s SlotSpec) Label() string {
	startClock := clockText(s.Start)
	endClock := clockText(s.End)
	startMeridian := meridianText(s.Start)
	endMeridian := meridianText(s.End)

	if startMeridian == endMeridian {
		startMeridian = ""
	}

	return fmt.Sprintf("%d %s %s%s-%s%s",
		s.Start.Day(), s.Start.Format("Jan"),
		startClock, startMeridian, endClock, endMeridian)
}

func clockText(t time.Time) string {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	if t.Minute() == 0 {
		return fmt.Sprintf("%d", hour)
	}
	return fmt.Sprintf("%d:%02d", hour, t.Minute())
}

func meridianText(t time.Time) string {
	if t.Hour() < 12 {
		return "am"
	}
	return "pm"
}

// DateText renders the slot's date part, e.g. "25 Aug".
func (s *TimeSlot) DateText() string {
	return fmt.Sprintf("%d %s", s.Start.Day(), s.Start.Format("Jan"))
}

// TimeText renders the slot's clock range, e.g. "1-2pm".
func (s *TimeSlot) TimeText() string {
	startMeridian := meridianText(s.Start)
	endMeridian := meridianText(s.End)
	if startMeridian == endMeridian {
		startMeridian = ""
	}
	return fmt.Sprintf("%s%s-%s%s", clockText(s.Start), startMeridian, clockText(s.End), endMeridian)
}

// NumberedSlot pairs a slot with its 1-based menu position.
type NumberedSlot struct {
	Number int
	Slot   *TimeSlot
}

// FormatListing renders the numbered menu text sent to contacts.
func FormatListing(slots []NumberedSlot) string {
	lines := make([]string, 0, len(slots))
	for _, ns := range slots {
		lines = append(lines, fmt.Sprintf("%d. %s", ns.Number, ns.Slot.Label))
	}
	return strings.Join(lines, "\n")
}
