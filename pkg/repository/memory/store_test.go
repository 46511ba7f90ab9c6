package memory_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/repository/memory"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("read and write cells", func(t *testing.T) {
		store := memory.New()
		ref := store.AppendRow(map[types.Column]string{
			types.ColumnClientName:    "Alice",
			types.ColumnContactNumber: "91234567",
		})

		cell, err := store.ReadCell(ctx, ref, types.ColumnClientName)
		gt.NoError(t, err).Required()
		gt.Value(t, cell).Equal("Alice")

		gt.NoError(t, store.WriteCell(ctx, ref, types.ColumnStatus, types.CellStatusPending)).Required()
		cell, err = store.ReadCell(ctx, ref, types.ColumnStatus)
		gt.NoError(t, err).Required()
		gt.Value(t, cell).Equal("Pending")

		gt.NoError(t, store.Commit(ctx, ref))
		gt.NoError(t, store.Persist(ctx))
	})

	t.Run("rejects out-of-range refs", func(t *testing.T) {
		store := memory.New()
		_, err := store.ReadCell(ctx, 0, types.ColumnStatus)
		gt.Error(t, err)
		gt.Error(t, store.WriteCell(ctx, -1, types.ColumnStatus, "x"))
	})

	t.Run("finds rows by identifier suffix", func(t *testing.T) {
		store := memory.New()
		store.AppendRow(map[types.Column]string{types.ColumnContactNumber: "+65 9123 4567"})
		store.AppendRow(map[types.Column]string{types.ColumnContactNumber: "91234567"})
		store.AppendRow(map[types.Column]string{types.ColumnContactNumber: "81112222"})

		refs, err := store.FindRowsByIdentifier(ctx, "6591234567")
		gt.NoError(t, err).Required()
		gt.Array(t, refs).Length(2)
	})

	t.Run("ensure columns extends existing rows", func(t *testing.T) {
		store := memory.New()
		ref := store.AppendRow(map[types.Column]string{types.ColumnContactNumber: "91234567"})

		gt.NoError(t, store.EnsureColumns(ctx, types.RequiredColumns())).Required()
		cell, err := store.ReadCell(ctx, ref, types.ColumnStatus)
		gt.NoError(t, err).Required()
		gt.Value(t, cell).Equal("")
	})
}

func TestNewFromCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("loads header and rows from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "contacts.csv")
		content := "Client Name,Contact Number,Status\nAlice,+65 9123 4567,\nBob,81112222,Pending\n"
		gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()

		store, err := memory.NewFromCSV(ctx, path)
		gt.NoError(t, err).Required()

		rows, err := store.ListRows(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, rows).Length(2)
		gt.Value(t, rows[0].Cell(types.ColumnClientName)).Equal("Alice")
		gt.Value(t, rows[1].Cell(types.ColumnStatus)).Equal("Pending")
	})

	t.Run("rejects an empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		gt.NoError(t, os.WriteFile(path, nil, 0600)).Required()

		_, err := memory.NewFromCSV(ctx, path)
		gt.Error(t, err)
	})

	t.Run("rejects a missing file", func(t *testing.T) {
		_, err := memory.NewFromCSV(ctx, filepath.Join(t.TempDir(), "nope.csv"))
		gt.Error(t, err)
	})
}
