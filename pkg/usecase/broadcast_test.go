package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/repository/memory"
	"github.com/slotcast-dev/slotcast/pkg/service/directory"
	"github.com/slotcast-dev/slotcast/pkg/service/gateway"
	"github.com/slotcast-dev/slotcast/pkg/service/replay"
	"github.com/slotcast-dev/slotcast/pkg/service/schedule"
	"github.com/slotcast-dev/slotcast/pkg/usecase"
)

const testWorkspaceID = types.WorkspaceID("test-ws")

var testNow = time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC)

const (
	aliceAddr = types.Address("whatsapp:+6591234567")
	bobAddr   = types.Address("whatsapp:+6581112222")
)

func seedRows() []map[types.Column]string {
	return []map[types.Column]string{
		{
			types.ColumnClientName:    "Alice",
			types.ColumnContactNumber: "+65 9123 4567",
		},
		{
			types.ColumnClientName:    "Bob",
			types.ColumnContactNumber: "81112222",
		},
	}
}

type fixture struct {
	uc       *usecase.UseCases
	recorder *gateway.Recorder
	store    *memory.Store
}

func setup(t *testing.T, rows []map[types.Column]string) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	for _, row := range rows {
		store.AppendRow(row)
	}

	recorder := gateway.NewRecorder()
	parser := schedule.NewParser(time.UTC, schedule.WithNow(func() time.Time { return testNow }))
	planner := schedule.NewPlanner(parser, time.Hour)
	builder := directory.NewBuilder("65", "whatsapp:")
	registry := model.NewWorkspaceRegistry()

	cache := replay.NewMemory()
	t.Cleanup(func() { _ = cache.Close() })

	uc := usecase.New(registry,
		func(ctx context.Context, source string) (interfaces.RecordStore, error) { return store, nil },
		builder, planner,
		usecase.WithGateway(recorder),
		usecase.WithReplayCache(cache),
		usecase.WithClock(func() time.Time { return testNow }),
	)

	_, err := uc.CreateWorkspace(ctx, testWorkspaceID, "Test Clinic", "seed", model.MessageTemplates{})
	gt.NoError(t, err).Required()
	return &fixture{uc: uc, recorder: recorder, store: store}
}

func (f *fixture) setAvailability(t *testing.T, text string) {
	t.Helper()
	summary, err := f.uc.SetAvailability(context.Background(), testWorkspaceID, text, 0)
	gt.NoError(t, err).Required()
	gt.Array(t, summary.SkippedLines).Length(0)
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the numbered listing to every fresh contact", func(t *testing.T) {
		f := setup(t, seedRows())
		f.setAvailability(t, "25 Aug 1-3pm")

		result, err := f.uc.Broadcast(ctx, testWorkspaceID, false)
		gt.NoError(t, err).Required()
		gt.Value(t, result.SentTo).Equal(2)
		gt.Value(t, result.Skipped).Equal(0)
		gt.Value(t, result.Failed).Equal(0)

		msgs := f.recorder.SentTo(aliceAddr)
		gt.Array(t, msgs).Length(1)
		gt.Bool(t, strings.Contains(msgs[0].Body, "Hi Alice")).True()
		gt.Bool(t, strings.Contains(msgs[0].Body, "1. 25 Aug 1-2pm")).True()
		gt.Bool(t, strings.Contains(msgs[0].Body, "2. 25 Aug 2-3pm")).True()

		// Store rows are raised to the pending marker and stamped.
		status, err := f.store.ReadCell(ctx, 0, types.ColumnStatus)
		gt.NoError(t, err).Required()
		gt.Value(t, status).Equal(types.CellStatusPending)
		stamp, err := f.store.ReadCell(ctx, 1, types.ColumnLastNotified)
		gt.NoError(t, err).Required()
		gt.Value(t, stamp).Equal(directory.FormatLastNotified(testNow))
	})

	t.Run("skips already notified contacts unless forced", func(t *testing.T) {
		f := setup(t, seedRows())
		f.setAvailability(t, "25 Aug 1-3pm")

		_, err := f.uc.Broadcast(ctx, testWorkspaceID, false)
		gt.NoError(t, err).Required()

		result, err := f.uc.Broadcast(ctx, testWorkspaceID, false)
		gt.NoError(t, err).Required()
		gt.Value(t, result.SentTo).Equal(0)
		gt.Value(t, result.Skipped).Equal(2)

		result, err = f.uc.Broadcast(ctx, testWorkspaceID, true)
		gt.NoError(t, err).Required()
		gt.Value(t, result.SentTo).Equal(2)
	})

	t.Run("duplicate rows get one message", func(t *testing.T) {
		rows := append(seedRows(), map[types.Column]string{
			types.ColumnClientName:    "Alice (old entry)",
			types.ColumnContactNumber: "9123 4567",
		})
		f := setup(t, rows)
		f.setAvailability(t, "25 Aug 1-3pm")

		result, err := f.uc.Broadcast(ctx, testWorkspaceID, false)
		gt.NoError(t, err).Required()
		gt.Value(t, result.SentTo).Equal(2)
		gt.Array(t, f.recorder.SentTo(aliceAddr)).Length(1)

		// Both of Alice's rows are stamped.
		for _, ref := range []model.RowRef{0, 2} {
			status, err := f.store.ReadCell(ctx, ref, types.ColumnStatus)
			gt.NoError(t, err).Required()
			gt.Value(t, status).Equal(types.CellStatusPending)
		}
	})

	t.Run("counts per-recipient failures without aborting", func(t *testing.T) {
		f := setup(t, seedRows())
		f.setAvailability(t, "25 Aug 1-3pm")
		f.recorder.RejectAddress(aliceAddr)

		result, err := f.uc.Broadcast(ctx, testWorkspaceID, false)
		gt.NoError(t, err).Required()
		gt.Value(t, result.SentTo).Equal(1)
		gt.Value(t, result.Failed).Equal(1)

		// The failed contact keeps its fresh status for the next run.
		status, err := f.store.ReadCell(ctx, 0, types.ColumnStatus)
		gt.NoError(t, err).Required()
		gt.Value(t, status).Equal("")
	})

	t.Run("fails preconditions cleanly", func(t *testing.T) {
		f := setup(t, seedRows())
		_, err := f.uc.Broadcast(ctx, testWorkspaceID, false)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrNoSlots)).True()

		_, err = f.uc.Broadcast(ctx, "missing-ws", false)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrWorkspaceNotFound)).True()
	})

	t.Run("requires a gateway", func(t *testing.T) {
		store := memory.New()
		for _, row := range seedRows() {
			store.AppendRow(row)
		}
		parser := schedule.NewParser(time.UTC, schedule.WithNow(func() time.Time { return testNow }))
		uc := usecase.New(model.NewWorkspaceRegistry(),
			func(ctx context.Context, source string) (interfaces.RecordStore, error) { return store, nil },
			directory.NewBuilder("65", "whatsapp:"),
			schedule.NewPlanner(parser, time.Hour),
		)
		_, err := uc.CreateWorkspace(ctx, testWorkspaceID, "Test", "seed", model.MessageTemplates{})
		gt.NoError(t, err).Required()

		_, err = uc.Broadcast(ctx, testWorkspaceID, false)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrNoGateway)).True()
	})
}

func TestFollowupBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("re-sends only to store-pending contacts", func(t *testing.T) {
		f := setup(t, seedRows())
		f.setAvailability(t, "25 Aug 1-3pm")

		_, err := f.uc.Broadcast(ctx, testWorkspaceID, false)
		gt.NoError(t, err).Required()

		// An operator marked Bob's row Confirmed out of band.
		gt.NoError(t, f.store.WriteCell(ctx, 1, types.ColumnStatus, types.CellStatusConfirmed)).Required()

		result, err := f.uc.FollowupBroadcast(ctx, testWorkspaceID, "")
		gt.NoError(t, err).Required()
		gt.Value(t, result.SentTo).Equal(1)
		gt.Value(t, result.Skipped).Equal(1)
		gt.Array(t, f.recorder.SentTo(aliceAddr)).Length(2)
		gt.Array(t, f.recorder.SentTo(bobAddr)).Length(1)
	})

	t.Run("keeps the original numbering after a booking", func(t *testing.T) {
		f := setup(t, seedRows())
		f.setAvailability(t, "25 Aug 1-3pm")

		_, err := f.uc.Broadcast(ctx, testWorkspaceID, false)
		gt.NoError(t, err).Required()

		gt.NoError(t, f.uc.HandleInboundReply(ctx, interfaces.InboundMessage{
			From: bobAddr, Body: "1", MessageID: "SMfollowup1",
		})).Required()

		result, err := f.uc.FollowupBroadcast(ctx, testWorkspaceID, "Reminder {{.Name}}:\n{{.Slots}}")
		gt.NoError(t, err).Required()
		gt.Value(t, result.SentTo).Equal(1)

		msgs := f.recorder.SentTo(aliceAddr)
		last := msgs[len(msgs)-1]
		gt.Bool(t, strings.Contains(last.Body, "Reminder Alice")).True()
		gt.Bool(t, strings.Contains(last.Body, "2. 25 Aug 2-3pm")).True()
		gt.Bool(t, strings.Contains(last.Body, "1. 25 Aug 1-2pm")).False()
	})

	t.Run("skips contacts never notified", func(t *testing.T) {
		f := setup(t, seedRows())
		f.setAvailability(t, "25 Aug 1-3pm")

		result, err := f.uc.FollowupBroadcast(ctx, testWorkspaceID, "")
		gt.NoError(t, err).Required()
		gt.Value(t, result.SentTo).Equal(0)
		gt.Value(t, result.Skipped).Equal(2)
	})
}
