package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/service/directory"
	"github.com/slotcast-dev/slotcast/pkg/utils/errutil"
	"github.com/slotcast-dev/slotcast/pkg/utils/logging"
)

// BroadcastResult reports one broadcast run to the operator.
type BroadcastResult struct {
	SentTo  int
	Skipped int
	Failed  int
}

// Broadcast sends the numbered open-slot listing to every eligible contact.
// Contacts whose aggregate status is Notified or Confirmed are skipped unless
// force is set. Delivery runs concurrently; per-recipient failures are
// counted, never abort the batch. The broadcast order is committed at this
// moment and gives numbered replies their stable meaning until the next
// availability reset.
func (uc *UseCases) Broadcast(ctx context.Context, id types.WorkspaceID, force bool) (*BroadcastResult, error) {
	ws, err := uc.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if uc.gateway == nil {
		return nil, goerr.Wrap(ErrNoGateway, "cannot broadcast", goerr.V(WorkspaceIDKey, id))
	}

	dir := ws.Directory()
	contacts := dir.Contacts()
	if len(contacts) == 0 {
		return nil, goerr.Wrap(ErrNoDirectory, "cannot broadcast", goerr.V(WorkspaceIDKey, id))
	}
	if ws.Slots.OpenCount() == 0 {
		return nil, goerr.Wrap(ErrNoSlots, "cannot broadcast", goerr.V(WorkspaceIDKey, id))
	}

	ws.Slots.CommitBroadcastOrder()
	listingText := model.FormatListing(ws.Slots.StabilizedListing())

	var eligible []*model.ContactRecord
	result := &BroadcastResult{}
	for _, contact := range contacts {
		if !force && contact.Status != types.ContactStatusNone {
			result.Skipped++
			continue
		}
		eligible = append(eligible, contact)
	}

	store, _ := uc.store(id)
	uc.dispatch(ctx, ws, store, eligible, ws.Templates.Broadcast, listingText, result)

	if store != nil {
		if err := store.Persist(ctx); err != nil {
			errutil.Handle(ctx, err, "failed to persist record store after broadcast")
		}
	}
	uc.reportSummary(ctx, id, result)

	logging.From(ctx).Info("broadcast finished",
		"workspace_id", id,
		"sent_to", result.SentTo,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"force", force,
	)
	return result, nil
}

// FollowupBroadcast re-sends a (typically reworded) menu to contacts whose
// store-backed status is exactly the pending marker. Eligibility is re-read
// from the store rather than the in-memory aggregate so externally edited
// rows are respected, and the listing keeps the numbering of the original
// broadcast.
func (uc *UseCases) FollowupBroadcast(ctx context.Context, id types.WorkspaceID, templateText string) (*BroadcastResult, error) {
	ws, err := uc.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if uc.gateway == nil {
		return nil, goerr.Wrap(ErrNoGateway, "cannot send follow-up", goerr.V(WorkspaceIDKey, id))
	}
	store, ok := uc.store(id)
	if !ok {
		return nil, goerr.Wrap(ErrNoDirectory, "workspace has no record store", goerr.V(WorkspaceIDKey, id))
	}

	dir := ws.Directory()
	contacts := dir.Contacts()
	if len(contacts) == 0 {
		return nil, goerr.Wrap(ErrNoDirectory, "cannot send follow-up", goerr.V(WorkspaceIDKey, id))
	}

	listing := ws.Slots.StabilizedListing()
	if len(listing) == 0 {
		return nil, goerr.Wrap(ErrNoSlots, "cannot send follow-up", goerr.V(WorkspaceIDKey, id))
	}
	listingText := model.FormatListing(listing)

	if templateText == "" {
		templateText = ws.Templates.Broadcast
	}

	result := &BroadcastResult{}
	var eligible []*model.ContactRecord
	for _, contact := range contacts {
		pending, err := uc.storePending(ctx, store, contact)
		if err != nil {
			errutil.Handle(ctx, err, "failed to re-read contact status for follow-up")
			result.Failed++
			continue
		}
		if !pending {
			result.Skipped++
			continue
		}
		eligible = append(eligible, contact)
	}

	uc.dispatch(ctx, ws, store, eligible, templateText, listingText, result)

	if err := store.Persist(ctx); err != nil {
		errutil.Handle(ctx, err, "failed to persist record store after follow-up")
	}
	uc.reportSummary(ctx, id, result)

	logging.From(ctx).Info("follow-up finished",
		"workspace_id", id,
		"sent_to", result.SentTo,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

// storePending reports whether the contact's rows carry the pending marker
// and no Confirmed row.
func (uc *UseCases) storePending(ctx context.Context, store interfaces.RecordStore, contact *model.ContactRecord) (bool, error) {
	refs, err := store.FindRowsByIdentifier(ctx, contact.ID)
	if err != nil {
		return false, err
	}

	pending := false
	for _, ref := range refs {
		cell, err := store.ReadCell(ctx, ref, types.ColumnStatus)
		if err != nil {
			return false, err
		}
		switch cell {
		case types.CellStatusConfirmed:
			return false, nil
		case types.CellStatusPending:
			pending = true
		}
	}
	return pending, nil
}

// dispatch renders and sends the message to each recipient concurrently,
// then marks directory and store state for the successful ones. Each store
// row is written at most once per run.
func (uc *UseCases) dispatch(ctx context.Context, ws *model.Workspace, store interfaces.RecordStore, recipients []*model.ContactRecord, templateText, listingText string, result *BroadcastResult) {
	dir := ws.Directory()
	templates := model.MessageTemplates{Broadcast: templateText}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, contact := range recipients {
		g.Go(func() error {
			body, err := templates.RenderBroadcast(model.BroadcastParams{
				Name:  contact.DisplayName,
				Slots: listingText,
			})
			if err != nil {
				errutil.Handle(gctx, err, "failed to render broadcast message")
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return nil
			}

			if _, err := uc.gateway.Send(gctx, contact.Address, body, nil); err != nil {
				errutil.Handle(gctx, goerr.Wrap(err, "broadcast send failed",
					goerr.V(ContactIDKey, contact.ID)), "broadcast send failed")
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return nil
			}

			now := uc.now()
			dir.MarkNotified(contact.ID, now)
			if store != nil {
				uc.markRowsNotified(gctx, store, contact, now)
			}

			mu.Lock()
			result.SentTo++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are counted
}

// markRowsNotified stamps every store row of the contact with the
// notification time and raises non-Confirmed rows to the pending marker.
// Store failures are logged, not propagated: the send already happened.
func (uc *UseCases) markRowsNotified(ctx context.Context, store interfaces.RecordStore, contact *model.ContactRecord, now time.Time) {
	for _, ref := range contact.RowRefs {
		status, err := store.ReadCell(ctx, ref, types.ColumnStatus)
		if err != nil {
			errutil.Handle(ctx, err, "failed to read status cell after send")
			continue
		}
		if status != types.CellStatusConfirmed {
			if err := store.WriteCell(ctx, ref, types.ColumnStatus, types.CellStatusPending); err != nil {
				errutil.Handle(ctx, err, "failed to write status cell after send")
				continue
			}
		}
		if err := store.WriteCell(ctx, ref, types.ColumnLastNotified, directory.FormatLastNotified(now)); err != nil {
			errutil.Handle(ctx, err, "failed to write last-notified cell after send")
			continue
		}
		if err := store.Commit(ctx, ref); err != nil {
			errutil.Handle(ctx, err, "failed to commit row after send")
		}
	}
}

func (uc *UseCases) reportSummary(ctx context.Context, id types.WorkspaceID, result *BroadcastResult) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.BroadcastSummary(ctx, id, result.SentTo, result.Skipped, result.Failed); err != nil {
		logging.From(ctx).Warn("failed to post broadcast summary", "error", err.Error())
	}
}
