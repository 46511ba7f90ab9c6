package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/utils/errutil"
	"github.com/slotcast-dev/slotcast/pkg/utils/logging"
)

const (
	replyRetryPrompt         = "Sorry, I didn't understand that. Please reply with just the number of your preferred slot."
	replyTakenFormat         = "Sorry, that slot was just taken. These slots are still available:\n%s\nPlease reply with another number."
	replyBookedAlreadyFormat = "You already have a booking for %s. Reply to this number if you need to change it."
	replyNoSlotsLeft         = "Sorry, all slots have been taken. We will be in touch when new slots open up."
)

// HandleInboundReply processes one message delivered by the gateway webhook.
// It only produces side effects; the webhook has already been acknowledged,
// so every failure is handled here.
//
// Booking is strictly single-shot per contact identifier: a contact whose
// aggregate status is already Confirmed is rejected before any slot
// resolution, which also makes replayed or duplicate replies idempotent.
func (uc *UseCases) HandleInboundReply(ctx context.Context, msg interfaces.InboundMessage) error {
	logger := logging.From(ctx)

	if uc.replay != nil {
		seen, err := uc.replay.SeenBefore(ctx, msg.MessageID)
		if err != nil {
			errutil.Handle(ctx, err, "replay cache lookup failed, processing anyway")
		} else if seen {
			logger.Debug("dropping redelivered message", "message_id", msg.MessageID)
			return nil
		}
	}

	ws, ok := uc.registry.RouteAddress(msg.From)
	if !ok {
		// Fall back to digit matching: gateways are not consistent about
		// address formatting.
		ws, ok = uc.routeByDigits(msg.From)
	}
	if !ok {
		logger.Info("inbound message from unknown address", "digits_suffix", msg.From.SuffixHint())
		return nil
	}

	dir := ws.Directory()
	contact, ok := dir.Lookup(msg.From)
	if !ok {
		logger.Info("inbound message from address outside directory",
			"workspace_id", ws.ID, "digits_suffix", msg.From.SuffixHint())
		return nil
	}

	if dir.Aggregate(contact.ID) == types.ContactStatusConfirmed {
		uc.replyExistingBooking(ctx, ws, contact)
		return nil
	}

	choice, err := strconv.Atoi(strings.TrimSpace(msg.Body))
	if err != nil {
		uc.send(ctx, contact.Address, replyRetryPrompt)
		return nil
	}

	slot, outcome := ws.Slots.Book(choice, contact.ID)
	switch outcome {
	case model.BookOutcomeInvalid:
		uc.send(ctx, contact.Address, replyRetryPrompt)

	case model.BookOutcomeTaken:
		// Expected race outcome, not an error.
		logger.Info("slot already taken",
			"workspace_id", ws.ID, "contact_id", contact.ID, "slot_id", slot.ID)
		uc.replySlotTaken(ctx, ws, contact)

	case model.BookOutcomeBooked:
		logger.Info("slot booked",
			"workspace_id", ws.ID, "contact_id", contact.ID,
			"slot_id", slot.ID, "slot", slot.Label)
		uc.confirmBooking(ctx, ws, contact, slot)
	}
	return nil
}

func (uc *UseCases) routeByDigits(addr types.Address) (*model.Workspace, bool) {
	digits := addr.Digits()
	for _, ws := range uc.registry.List() {
		if _, ok := ws.Directory().Lookup(types.Address(digits)); ok {
			return ws, true
		}
	}
	return nil, false
}

// confirmBooking sends the confirmation first, then reconciles the record
// store. The in-memory booking is never rolled back: a send or store failure
// leaves a detectable inconsistency that is logged and surfaced, not masked.
func (uc *UseCases) confirmBooking(ctx context.Context, ws *model.Workspace, contact *model.ContactRecord, slot *model.TimeSlot) {
	ws.Directory().MarkConfirmed(contact.ID)

	body, err := ws.Templates.RenderConfirm(model.ConfirmParams{
		Name: contact.DisplayName,
		Slot: slot.Label,
	})
	if err != nil {
		errutil.Handle(ctx, err, "failed to render confirmation message")
	} else {
		uc.send(ctx, contact.Address, body)
	}

	store, ok := uc.store(ws.ID)
	if !ok {
		return
	}
	if err := uc.writeBookingRows(ctx, store, contact, slot); err != nil {
		errutil.Handle(ctx, err, "booking persisted in memory but store write failed")
		if uc.notifier != nil {
			if nerr := uc.notifier.ReconciliationWarning(ctx, ws.ID, contact.Address.SuffixHint(), err.Error()); nerr != nil {
				logging.From(ctx).Warn("failed to post reconciliation warning", "error", nerr.Error())
			}
		}
	}
}

func (uc *UseCases) writeBookingRows(ctx context.Context, store interfaces.RecordStore, contact *model.ContactRecord, slot *model.TimeSlot) error {
	for _, ref := range contact.RowRefs {
		if err := store.WriteCell(ctx, ref, types.ColumnBookedDate, slot.DateText()); err != nil {
			return goerr.Wrap(err, "failed to write booked date", goerr.V("ref", ref))
		}
		if err := store.WriteCell(ctx, ref, types.ColumnBookedTime, slot.TimeText()); err != nil {
			return goerr.Wrap(err, "failed to write booked time", goerr.V("ref", ref))
		}
		if err := store.WriteCell(ctx, ref, types.ColumnStatus, types.CellStatusConfirmed); err != nil {
			return goerr.Wrap(err, "failed to write status", goerr.V("ref", ref))
		}
		if err := store.Commit(ctx, ref); err != nil {
			return goerr.Wrap(err, "failed to commit row", goerr.V("ref", ref))
		}
	}
	if err := store.Persist(ctx); err != nil {
		return goerr.Wrap(err, "failed to persist store")
	}
	return nil
}

func (uc *UseCases) replyExistingBooking(ctx context.Context, ws *model.Workspace, contact *model.ContactRecord) {
	label := "your appointment"
	for _, slot := range ws.Slots.AllSlots() {
		if slot.Booked && slot.BookedBy == contact.ID {
			label = slot.Label
			break
		}
	}
	uc.send(ctx, contact.Address, fmt.Sprintf(replyBookedAlreadyFormat, label))
}

func (uc *UseCases) replySlotTaken(ctx context.Context, ws *model.Workspace, contact *model.ContactRecord) {
	listing := ws.Slots.LiveListing()
	if len(listing) == 0 {
		uc.send(ctx, contact.Address, replyNoSlotsLeft)
		return
	}
	uc.send(ctx, contact.Address, fmt.Sprintf(replyTakenFormat, model.FormatListing(listing)))
}

func (uc *UseCases) send(ctx context.Context, to types.Address, body string) {
	if uc.gateway == nil {
		logging.From(ctx).Warn("no gateway configured, dropping outbound message")
		return
	}
	if _, err := uc.gateway.Send(ctx, to, body, nil); err != nil {
		errutil.Handle(ctx, err, "outbound send failed")
	}
}
