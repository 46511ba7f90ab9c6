package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/slotcast-dev/slotcast/pkg/usecase"
)

func TestSetAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("expands every parseable line", func(t *testing.T) {
		f := setup(t, seedRows())

		summary, err := f.uc.SetAvailability(ctx, testWorkspaceID, "25 Aug 1-3pm\n26 Aug 9-11am", 0)
		gt.NoError(t, err).Required()
		gt.Array(t, summary.Slots).Length(4)
		gt.Array(t, summary.SkippedLines).Length(0)
		gt.Value(t, summary.Slots[0].Label).Equal("25 Aug 1-2pm")
	})

	t.Run("skips bad lines but keeps the rest", func(t *testing.T) {
		f := setup(t, seedRows())

		summary, err := f.uc.SetAvailability(ctx, testWorkspaceID, "25 Aug 1-2pm\nask me later", 0)
		gt.NoError(t, err).Required()
		gt.Array(t, summary.Slots).Length(1)
		gt.Array(t, summary.SkippedLines).Length(1)
	})

	t.Run("rejects text with no parseable line at all", func(t *testing.T) {
		f := setup(t, seedRows())
		f.setAvailability(t, "25 Aug 1-2pm")

		_, err := f.uc.SetAvailability(ctx, testWorkspaceID, "no slots here", 0)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrNoParseableLines)).True()

		// The previous open-slot set survives.
		snapshot, err := f.uc.GetWorkspaceSnapshot(ctx, testWorkspaceID)
		gt.NoError(t, err).Required()
		gt.Value(t, snapshot.OpenSlots).Equal(1)
	})

	t.Run("unsupported gap falls back to none", func(t *testing.T) {
		f := setup(t, seedRows())

		summary, err := f.uc.SetAvailability(ctx, testWorkspaceID, "25 Aug 1-3pm", 45)
		gt.NoError(t, err).Required()
		gt.Array(t, summary.Slots).Length(2)
	})

	t.Run("replacement discards open slots and keeps booked ones", func(t *testing.T) {
		f := broadcastFixture(t)
		f.inbound(t, aliceAddr, "1", "SMavail1")

		summary, err := f.uc.SetAvailability(ctx, testWorkspaceID, "26 Aug 9-10am", 0)
		gt.NoError(t, err).Required()
		gt.Array(t, summary.Slots).Length(1)

		snapshot, err := f.uc.GetWorkspaceSnapshot(ctx, testWorkspaceID)
		gt.NoError(t, err).Required()
		gt.Array(t, snapshot.Slots).Length(2)
		gt.Value(t, snapshot.OpenSlots).Equal(1)
	})
}
