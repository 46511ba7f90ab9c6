package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/utils/logging"
)

// SlotSummary reports the result of a set-availability operation.
type SlotSummary struct {
	Slots        []*model.TimeSlot
	SkippedLines []string
}

// SetAvailability parses the availability text, expands it into slots and
// installs them as the workspace's open-slot set, replacing any previous
// open slots and invalidating a stale broadcast order. Unparseable lines are
// skipped, not fatal.
func (uc *UseCases) SetAvailability(ctx context.Context, id types.WorkspaceID, text string, gapMinutes int) (*SlotSummary, error) {
	ws, err := uc.registry.Get(id)
	if err != nil {
		return nil, err
	}

	gap := types.NormalizeGap(gapMinutes)
	if int(gap) != gapMinutes {
		logging.From(ctx).Debug("unsupported gap value, falling back to 0",
			"workspace_id", id, "gap_minutes", gapMinutes)
	}

	specs, skipped := uc.planner.Plan(text, gap)
	for _, line := range skipped {
		logging.From(ctx).Warn("skipping unparseable availability line",
			"workspace_id", id, "line", line)
	}
	if len(specs) == 0 && len(skipped) > 0 {
		// Every line failed: keep the previous open-slot set untouched.
		return nil, goerr.Wrap(ErrNoParseableLines, "availability text rejected",
			goerr.V(WorkspaceIDKey, id), goerr.V("skipped_lines", len(skipped)))
	}

	created := ws.Slots.Replace(specs)

	logging.From(ctx).Info("availability set",
		"workspace_id", id,
		"slots", len(created),
		"skipped_lines", len(skipped),
	)
	return &SlotSummary{Slots: created, SkippedLines: skipped}, nil
}
