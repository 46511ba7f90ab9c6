// Package directory builds a workspace's contact directory from record store
// rows.
package directory

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/utils/logging"
)

// lastNotifiedLayout is how the Last Notified cell is written and read back.
const lastNotifiedLayout = "2006-01-02 15:04:05"

// Builder scans a record store and produces the address and identifier maps
// of one workspace. Rows whose phone digits suffix-match an already-seen
// identifier are linked to that contact rather than creating a new one, so
// rows stored with and without a country code reconcile.
type Builder struct {
	countryCode   string
	channelPrefix string
}

// NewBuilder creates a builder. countryCode is prefixed onto bare local
// numbers; channelPrefix (e.g. "whatsapp:") selects the messaging channel of
// generated addresses.
func NewBuilder(countryCode, channelPrefix string) *Builder {
	return &Builder{
		countryCode:   countryCode,
		channelPrefix: channelPrefix,
	}
}

// Address renders the canonical outbound address for a full digit string.
func (b *Builder) Address(digits string) types.Address {
	return types.Address(b.channelPrefix + "+" + digits)
}

// Build ensures the required columns exist, scans every row, and returns the
// fresh directory plus the address set for inbound routing. The result fully
// replaces any prior directory; there is no merge.
func (b *Builder) Build(ctx context.Context, store interfaces.RecordStore) (*model.ContactDirectory, []types.Address, error) {
	if err := store.EnsureColumns(ctx, types.RequiredColumns()); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to ensure store columns")
	}

	rows, err := store.ListRows(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to list store rows")
	}

	var records []*model.ContactRecord
	for _, row := range rows {
		raw := row.Cell(types.ColumnContactNumber)
		digits := model.NormalizeDigits(raw)
		if digits == "" {
			logging.From(ctx).Debug("skipping row without contact number", "row", row.Ref)
			continue
		}

		status := types.StatusFromCell(row.Cell(types.ColumnStatus))
		lastNotified := parseLastNotified(row.Cell(types.ColumnLastNotified))

		if existing := findBySuffix(records, digits); existing != nil {
			existing.RowRefs = append(existing.RowRefs, row.Ref)
			existing.Status = existing.Status.Combine(status)
			if lastNotified.After(existing.LastNotifiedAt) {
				existing.LastNotifiedAt = lastNotified
			}
			continue
		}

		full := model.EnsureCountryCode(digits, b.countryCode)
		records = append(records, &model.ContactRecord{
			ID:             types.ContactID(full),
			DisplayName:    row.Cell(types.ColumnClientName),
			RawAddress:     raw,
			Address:        b.Address(full),
			RowRefs:        []model.RowRef{row.Ref},
			Status:         status,
			LastNotifiedAt: lastNotified,
		})
	}

	dir := model.NewContactDirectory()
	addrs := make([]types.Address, 0, len(records))
	for _, record := range records {
		dir.Add(record)
		addrs = append(addrs, record.Address)
	}
	return dir, addrs, nil
}

func findBySuffix(records []*model.ContactRecord, digits string) *model.ContactRecord {
	for _, record := range records {
		if model.SuffixMatch(string(record.ID), digits) {
			return record
		}
	}
	return nil
}

func parseLastNotified(cell string) time.Time {
	if cell == "" {
		return time.Time{}
	}
	t, err := time.Parse(lastNotifiedLayout, cell)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatLastNotified renders a notification time for the Last Notified cell.
func FormatLastNotified(t time.Time) string {
	return t.Format(lastNotifiedLayout)
}
