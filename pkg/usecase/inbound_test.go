package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

func (f *fixture) inbound(t *testing.T, from types.Address, body, messageID string) {
	t.Helper()
	gt.NoError(t, f.uc.HandleInboundReply(context.Background(), interfaces.InboundMessage{
		From:      from,
		Body:      body,
		MessageID: messageID,
	})).Required()
}

func (f *fixture) lastSentTo(t *testing.T, addr types.Address) string {
	t.Helper()
	msgs := f.recorder.SentTo(addr)
	gt.Number(t, len(msgs)).GreaterOrEqual(1)
	return msgs[len(msgs)-1].Body
}

func broadcastFixture(t *testing.T) *fixture {
	t.Helper()
	f := setup(t, seedRows())
	f.setAvailability(t, "25 Aug 1-3pm")
	_, err := f.uc.Broadcast(context.Background(), testWorkspaceID, false)
	gt.NoError(t, err).Required()
	return f
}

func TestHandleInboundReply(t *testing.T) {
	ctx := context.Background()

	t.Run("numbered reply books and confirms", func(t *testing.T) {
		f := broadcastFixture(t)
		f.inbound(t, aliceAddr, "1", "SM01")

		body := f.lastSentTo(t, aliceAddr)
		gt.Bool(t, strings.Contains(body, "confirmed for 25 Aug 1-2pm")).True()

		snapshot, err := f.uc.GetWorkspaceSnapshot(ctx, testWorkspaceID)
		gt.NoError(t, err).Required()
		gt.Value(t, snapshot.OpenSlots).Equal(1)

		status, err := f.store.ReadCell(ctx, 0, types.ColumnStatus)
		gt.NoError(t, err).Required()
		gt.Value(t, status).Equal(types.CellStatusConfirmed)
		date, err := f.store.ReadCell(ctx, 0, types.ColumnBookedDate)
		gt.NoError(t, err).Required()
		gt.Value(t, date).Equal("25 Aug")
		clock, err := f.store.ReadCell(ctx, 0, types.ColumnBookedTime)
		gt.NoError(t, err).Required()
		gt.Value(t, clock).Equal("1-2pm")
	})

	t.Run("loser of the race is offered the remaining slots", func(t *testing.T) {
		f := broadcastFixture(t)
		f.inbound(t, aliceAddr, "1", "SM01")
		f.inbound(t, bobAddr, "1", "SM02")

		body := f.lastSentTo(t, bobAddr)
		gt.Bool(t, strings.Contains(body, "just taken")).True()
		gt.Bool(t, strings.Contains(body, "1. 25 Aug 2-3pm")).True()
	})

	t.Run("last slot taken tells the loser nothing is left", func(t *testing.T) {
		f := setup(t, seedRows())
		f.setAvailability(t, "25 Aug 1-2pm")
		_, err := f.uc.Broadcast(ctx, testWorkspaceID, false)
		gt.NoError(t, err).Required()

		f.inbound(t, aliceAddr, "1", "SM01")
		f.inbound(t, bobAddr, "1", "SM02")

		body := f.lastSentTo(t, bobAddr)
		gt.Bool(t, strings.Contains(body, "all slots have been taken")).True()
	})

	t.Run("confirmed contacts cannot book twice", func(t *testing.T) {
		f := broadcastFixture(t)
		f.inbound(t, aliceAddr, "1", "SM01")
		before := len(f.recorder.SentTo(aliceAddr))

		f.inbound(t, aliceAddr, "2", "SM02")
		msgs := f.recorder.SentTo(aliceAddr)
		gt.Array(t, msgs).Length(before + 1)
		gt.Bool(t, strings.Contains(msgs[len(msgs)-1].Body, "already have a booking for 25 Aug 1-2pm")).True()

		snapshot, err := f.uc.GetWorkspaceSnapshot(ctx, testWorkspaceID)
		gt.NoError(t, err).Required()
		gt.Value(t, snapshot.OpenSlots).Equal(1)
	})

	t.Run("non-numeric replies get a retry prompt", func(t *testing.T) {
		f := broadcastFixture(t)
		f.inbound(t, aliceAddr, "tomorrow please", "SM01")

		body := f.lastSentTo(t, aliceAddr)
		gt.Bool(t, strings.Contains(body, "reply with just the number")).True()
	})

	t.Run("out-of-range numbers get a retry prompt", func(t *testing.T) {
		f := broadcastFixture(t)
		f.inbound(t, aliceAddr, "9", "SM01")

		body := f.lastSentTo(t, aliceAddr)
		gt.Bool(t, strings.Contains(body, "reply with just the number")).True()
	})

	t.Run("redelivered messages are dropped", func(t *testing.T) {
		f := broadcastFixture(t)
		f.inbound(t, aliceAddr, "not a number", "SM01")
		before := len(f.recorder.Sent())

		f.inbound(t, aliceAddr, "not a number", "SM01")
		gt.Array(t, f.recorder.Sent()).Length(before)
	})

	t.Run("unknown senders are ignored", func(t *testing.T) {
		f := broadcastFixture(t)
		before := len(f.recorder.Sent())

		f.inbound(t, "whatsapp:+19995550000", "1", "SM01")
		gt.Array(t, f.recorder.Sent()).Length(before)
	})

	t.Run("routes on digits when the raw address differs", func(t *testing.T) {
		f := broadcastFixture(t)
		// Same number as Alice, but without the channel prefix.
		f.inbound(t, "+65 9123 4567", "1", "SM01")

		body := f.lastSentTo(t, aliceAddr)
		gt.Bool(t, strings.Contains(body, "confirmed for 25 Aug 1-2pm")).True()
	})
}
