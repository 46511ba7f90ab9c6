package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

func TestAddressDigits(t *testing.T) {
	cases := []struct {
		name string
		addr types.Address
		want string
	}{
		{"channel prefix", "whatsapp:+6591234567", "6591234567"},
		{"bare number", "+65 9123 4567", "6591234567"},
		{"no prefix no plus", "91234567", "91234567"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, tc.addr.Digits()).Equal(tc.want)
		})
	}
}

func TestAddressSuffixHint(t *testing.T) {
	cases := []struct {
		name string
		addr types.Address
		want string
	}{
		{"channel prefix", "whatsapp:+6591234567", "…4567"},
		{"bare number", "+65 9123 4567", "…4567"},
		{"short number kept whole", "4567", "4567"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, tc.addr.SuffixHint()).Equal(tc.want)
		})
	}
}

func TestContactStatusCombine(t *testing.T) {
	cases := []struct {
		a, b, want types.ContactStatus
	}{
		{types.ContactStatusNone, types.ContactStatusNone, types.ContactStatusNone},
		{types.ContactStatusNone, types.ContactStatusNotified, types.ContactStatusNotified},
		{types.ContactStatusNotified, types.ContactStatusNone, types.ContactStatusNotified},
		{types.ContactStatusNotified, types.ContactStatusConfirmed, types.ContactStatusConfirmed},
		{types.ContactStatusConfirmed, types.ContactStatusNone, types.ContactStatusConfirmed},
		{types.ContactStatusConfirmed, types.ContactStatusNotified, types.ContactStatusConfirmed},
	}
	for _, tc := range cases {
		gt.Value(t, tc.a.Combine(tc.b)).Equal(tc.want)
	}
}

func TestStatusFromCell(t *testing.T) {
	gt.Value(t, types.StatusFromCell("Confirmed")).Equal(types.ContactStatusConfirmed)
	gt.Value(t, types.StatusFromCell("Pending")).Equal(types.ContactStatusNotified)
	gt.Value(t, types.StatusFromCell("")).Equal(types.ContactStatusNone)
	gt.Value(t, types.StatusFromCell("whatever")).Equal(types.ContactStatusNone)
}

func TestParseContactStatus(t *testing.T) {
	for _, s := range types.AllContactStatuses() {
		parsed, err := types.ParseContactStatus(s.String())
		gt.NoError(t, err).Required()
		gt.Value(t, parsed).Equal(s)
	}

	_, err := types.ParseContactStatus("pending")
	gt.Error(t, err)
}

func TestNormalizeGap(t *testing.T) {
	gt.Value(t, types.NormalizeGap(0)).Equal(types.GapNone)
	gt.Value(t, types.NormalizeGap(30)).Equal(types.GapHalfHour)
	gt.Value(t, types.NormalizeGap(60)).Equal(types.GapFullHour)
	gt.Value(t, types.NormalizeGap(15)).Equal(types.GapNone)
	gt.Value(t, types.NormalizeGap(-30)).Equal(types.GapNone)
}
