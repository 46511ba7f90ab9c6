package schedule

import (
	"strings"
	"time"

	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

// DefaultSlotDuration is the slot length used when none is configured.
const DefaultSlotDuration = 60 * time.Minute

// Expand splits an interval into fixed-duration slots. No partial slots are
// emitted: expansion stops once a candidate slot's end would pass the
// interval end. Consecutive slot starts differ by exactly duration+gap.
func Expand(start, end time.Time, duration time.Duration, gap types.GapMinutes) []model.SlotSpec {
	if duration <= 0 {
		duration = DefaultSlotDuration
	}

	var specs []model.SlotSpec
	step := duration + time.Duration(gap)*time.Minute
	for cursor := start; !cursor.Add(duration).After(end); cursor = cursor.Add(step) {
		specs = append(specs, model.SlotSpec{
			Start: cursor,
			End:   cursor.Add(duration),
		})
	}
	return specs
}

// Planner turns a multi-line availability text into the pooled slot set for
// one "set availability" operation.
type Planner struct {
	parser   *Parser
	duration time.Duration
}

// NewPlanner creates a planner with the given parser and slot duration.
func NewPlanner(parser *Parser, duration time.Duration) *Planner {
	if duration <= 0 {
		duration = DefaultSlotDuration
	}
	return &Planner{parser: parser, duration: duration}
}

// Plan parses every non-blank line and expands the resulting intervals.
// Unparseable lines are returned in skipped rather than aborting the batch.
// The pooled specs are unsorted; the slot registry orders them on Replace.
func (p *Planner) Plan(text string, gap types.GapMinutes) (specs []model.SlotSpec, skipped []string) {
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		start, end, err := p.parser.ParseLine(line)
		if err != nil {
			skipped = append(skipped, line)
			continue
		}
		specs = append(specs, Expand(start, end, p.duration, gap)...)
	}
	return specs, skipped
}
