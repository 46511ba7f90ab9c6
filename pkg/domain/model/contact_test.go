package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

func TestNormalizeDigits(t *testing.T) {
	gt.Value(t, model.NormalizeDigits("+65 9123 4567")).Equal("6591234567")
	gt.Value(t, model.NormalizeDigits("9123-4567")).Equal("91234567")
	gt.Value(t, model.NormalizeDigits("n/a")).Equal("")
}

func TestEnsureCountryCode(t *testing.T) {
	gt.Value(t, model.EnsureCountryCode("91234567", "65")).Equal("6591234567")
	gt.Value(t, model.EnsureCountryCode("6591234567", "65")).Equal("6591234567")
	gt.Value(t, model.EnsureCountryCode("91234567", "")).Equal("91234567")
}

func TestSuffixMatch(t *testing.T) {
	gt.Bool(t, model.SuffixMatch("6591234567", "91234567")).True()
	gt.Bool(t, model.SuffixMatch("91234567", "6591234567")).True()
	gt.Bool(t, model.SuffixMatch("6591234567", "6591234567")).True()
	gt.Bool(t, model.SuffixMatch("6591234567", "91234568")).False()
	gt.Bool(t, model.SuffixMatch("", "91234567")).False()
}

func newRecord(id, name string, refs ...model.RowRef) *model.ContactRecord {
	return &model.ContactRecord{
		ID:          types.ContactID(id),
		DisplayName: name,
		Address:     types.Address("whatsapp:+" + id),
		RowRefs:     refs,
		Status:      types.ContactStatusNone,
	}
}

func TestContactDirectory(t *testing.T) {
	t.Run("merges rows of duplicate identifiers", func(t *testing.T) {
		dir := model.NewContactDirectory()
		dir.Add(newRecord("6591234567", "Alice", 0))

		dup := newRecord("6591234567", "Alice", 3)
		dup.Status = types.ContactStatusNotified
		dir.Add(dup)

		record, ok := dir.Get("6591234567")
		gt.Bool(t, ok).True()
		gt.Array(t, record.RowRefs).Length(2)
		gt.Value(t, record.Status).Equal(types.ContactStatusNotified)
		gt.Array(t, dir.Contacts()).Length(1)
	})

	t.Run("lookup falls back to digit suffix", func(t *testing.T) {
		dir := model.NewContactDirectory()
		dir.Add(newRecord("6591234567", "Alice", 0))

		record, ok := dir.Lookup("whatsapp:+6591234567")
		gt.Bool(t, ok).True()
		gt.Value(t, record.DisplayName).Equal("Alice")

		// Same number, different raw form.
		record, ok = dir.Lookup(" +65-9123-4567")
		gt.Bool(t, ok).True()
		gt.Value(t, record.ID).Equal(types.ContactID("6591234567"))

		_, ok = dir.Lookup("whatsapp:+6599999999")
		gt.Bool(t, ok).False()
	})

	t.Run("mark notified never downgrades confirmed", func(t *testing.T) {
		dir := model.NewContactDirectory()
		dir.Add(newRecord("6591234567", "Alice", 0))

		dir.MarkConfirmed("6591234567")
		gt.Value(t, dir.Aggregate("6591234567")).Equal(types.ContactStatusConfirmed)

		dir.MarkNotified("6591234567", time.Now())
		gt.Value(t, dir.Aggregate("6591234567")).Equal(types.ContactStatusConfirmed)
	})

	t.Run("unknown identifiers aggregate to none", func(t *testing.T) {
		dir := model.NewContactDirectory()
		gt.Value(t, dir.Aggregate("000")).Equal(types.ContactStatusNone)
	})
}
