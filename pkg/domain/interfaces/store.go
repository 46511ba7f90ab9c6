package interfaces

import (
	"context"

	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

// Row is one record store row with its named cells.
type Row struct {
	Ref   model.RowRef
	Cells map[types.Column]string
}

// Cell returns the value of a column, blank when absent.
func (r Row) Cell(col types.Column) string {
	return r.Cells[col]
}

// RecordStore is the abstract tabular store holding contact rows. On load,
// missing required columns are appended, never removed. Writes are staged per
// row and flushed by Commit; Persist flushes the whole store to durable form.
type RecordStore interface {
	EnsureColumns(ctx context.Context, columns []types.Column) error
	ListRows(ctx context.Context) ([]Row, error)
	FindRowsByIdentifier(ctx context.Context, id types.ContactID) ([]model.RowRef, error)
	ReadCell(ctx context.Context, ref model.RowRef, col types.Column) (string, error)
	WriteCell(ctx context.Context, ref model.RowRef, col types.Column, value string) error
	Commit(ctx context.Context, ref model.RowRef) error
	Persist(ctx context.Context) error
	Close() error
}

// StoreFactory opens the record store backing one workspace. The source
// string is backend-specific: a sheet ID, a collection name, or a CSV
// location for the in-memory backend.
type StoreFactory func(ctx context.Context, source string) (RecordStore, error)
