package model_test

import (
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

func specAt(day, hour int) model.SlotSpec {
	return model.SlotSpec{
		Start: time.Date(2025, time.August, day, hour, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.August, day, hour+1, 0, 0, 0, time.UTC),
	}
}

func TestSlotRegistry_Replace(t *testing.T) {
	t.Run("assigns sequential IDs in start order", func(t *testing.T) {
		r := model.NewSlotRegistry()
		created := r.Replace([]model.SlotSpec{specAt(25, 15), specAt(25, 13), specAt(25, 14)})

		gt.Array(t, created).Length(3)
		gt.Value(t, created[0].ID).Equal(types.SlotID("S1"))
		gt.Value(t, created[0].Start.Hour()).Equal(13)
		gt.Value(t, created[2].ID).Equal(types.SlotID("S3"))
		gt.Value(t, created[2].Start.Hour()).Equal(15)
	})

	t.Run("keeps booked slots and continues the ID sequence", func(t *testing.T) {
		r := model.NewSlotRegistry()
		r.Replace([]model.SlotSpec{specAt(25, 13), specAt(25, 14)})

		_, outcome := r.Book(1, "6591234567")
		gt.Value(t, outcome).Equal(model.BookOutcomeBooked)

		created := r.Replace([]model.SlotSpec{specAt(26, 9)})
		gt.Array(t, created).Length(1)
		gt.Value(t, created[0].ID).Equal(types.SlotID("S3"))

		all := r.AllSlots()
		gt.Array(t, all).Length(2)
		gt.Bool(t, all[0].Booked).True()
		gt.Value(t, all[0].ID).Equal(types.SlotID("S1"))
		gt.Value(t, r.OpenCount()).Equal(1)
	})

	t.Run("invalidates the committed broadcast order", func(t *testing.T) {
		r := model.NewSlotRegistry()
		r.Replace([]model.SlotSpec{specAt(25, 13)})
		r.CommitBroadcastOrder()
		gt.Bool(t, r.HasBroadcastOrder()).True()

		r.Replace([]model.SlotSpec{specAt(26, 9)})
		gt.Bool(t, r.HasBroadcastOrder()).False()
	})
}

func TestSlotRegistry_StabilizedListing(t *testing.T) {
	r := model.NewSlotRegistry()
	r.Replace([]model.SlotSpec{specAt(25, 13), specAt(25, 14), specAt(25, 15)})
	r.CommitBroadcastOrder()

	_, outcome := r.Book(2, "6591234567")
	gt.Value(t, outcome).Equal(model.BookOutcomeBooked)

	// Slot 2 is gone but 1 and 3 keep the numbers the broadcast used.
	listing := r.StabilizedListing()
	gt.Array(t, listing).Length(2)
	gt.Value(t, listing[0].Number).Equal(1)
	gt.Value(t, listing[1].Number).Equal(3)
	gt.Value(t, listing[1].Slot.ID).Equal(types.SlotID("S3"))

	// The live listing renumbers from 1.
	live := r.LiveListing()
	gt.Array(t, live).Length(2)
	gt.Value(t, live[1].Number).Equal(2)
	gt.Value(t, live[1].Slot.ID).Equal(types.SlotID("S3"))
}

func TestSlotRegistry_Book(t *testing.T) {
	t.Run("rejects out-of-range choices", func(t *testing.T) {
		r := model.NewSlotRegistry()
		r.Replace([]model.SlotSpec{specAt(25, 13)})

		_, outcome := r.Book(0, "a")
		gt.Value(t, outcome).Equal(model.BookOutcomeInvalid)
		_, outcome = r.Book(2, "a")
		gt.Value(t, outcome).Equal(model.BookOutcomeInvalid)
	})

	t.Run("second attempt on the same slot observes taken", func(t *testing.T) {
		r := model.NewSlotRegistry()
		r.Replace([]model.SlotSpec{specAt(25, 13)})
		r.CommitBroadcastOrder()

		slot, outcome := r.Book(1, "6591111111")
		gt.Value(t, outcome).Equal(model.BookOutcomeBooked)
		gt.Value(t, slot.BookedBy).Equal(types.ContactID("6591111111"))

		slot, outcome = r.Book(1, "6592222222")
		gt.Value(t, outcome).Equal(model.BookOutcomeTaken)
		gt.Value(t, slot.BookedBy).Equal(types.ContactID("6591111111"))
	})

	t.Run("resolves via broadcast order after live list shrinks", func(t *testing.T) {
		r := model.NewSlotRegistry()
		r.Replace([]model.SlotSpec{specAt(25, 13), specAt(25, 14), specAt(25, 15)})
		r.CommitBroadcastOrder()

		_, outcome := r.Book(1, "a")
		gt.Value(t, outcome).Equal(model.BookOutcomeBooked)

		// "3" still means the 15:00 slot even though only two slots remain open.
		slot, outcome := r.Book(3, "b")
		gt.Value(t, outcome).Equal(model.BookOutcomeBooked)
		gt.Value(t, slot.Start.Hour()).Equal(15)
	})

	t.Run("exactly one of concurrent attempts wins", func(t *testing.T) {
		r := model.NewSlotRegistry()
		r.Replace([]model.SlotSpec{specAt(25, 13)})
		r.CommitBroadcastOrder()

		const attempts = 32
		outcomes := make([]model.BookOutcome, attempts)
		var wg sync.WaitGroup
		var start sync.WaitGroup
		start.Add(1)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				start.Wait()
				_, outcomes[i] = r.Book(1, types.ContactID(string(rune('a'+i))))
			}(i)
		}
		start.Done()
		wg.Wait()

		booked := 0
		for _, outcome := range outcomes {
			switch outcome {
			case model.BookOutcomeBooked:
				booked++
			case model.BookOutcomeTaken:
			default:
				t.Errorf("unexpected outcome: %s", outcome)
			}
		}
		gt.Value(t, booked).Equal(1)
	})
}

func TestSlotSpecLabel(t *testing.T) {
	cases := []struct {
		name string
		spec model.SlotSpec
		want string
	}{
		{
			"same meridian omits start marker",
			model.SlotSpec{
				Start: time.Date(2025, time.August, 25, 13, 0, 0, 0, time.UTC),
				End:   time.Date(2025, time.August, 25, 14, 0, 0, 0, time.UTC),
			},
			"25 Aug 1-2pm",
		},
		{
			"crossing noon keeps both markers",
			model.SlotSpec{
				Start: time.Date(2025, time.August, 25, 11, 0, 0, 0, time.UTC),
				End:   time.Date(2025, time.August, 25, 13, 0, 0, 0, time.UTC),
			},
			"25 Aug 11am-1pm",
		},
		{
			"minutes are rendered when present",
			model.SlotSpec{
				Start: time.Date(2025, time.September, 3, 10, 30, 0, 0, time.UTC),
				End:   time.Date(2025, time.September, 3, 11, 30, 0, 0, time.UTC),
			},
			"3 Sep 10:30-11:30am",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, tc.spec.Label()).Equal(tc.want)
		})
	}
}

func TestFormatListing(t *testing.T) {
	r := model.NewSlotRegistry()
	r.Replace([]model.SlotSpec{specAt(25, 13), specAt(25, 14)})

	text := model.FormatListing(r.LiveListing())
	gt.Value(t, text).Equal("1. 25 Aug 1-2pm\n2. 25 Aug 2-3pm")
}
