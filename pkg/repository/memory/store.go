// Package memory provides an in-memory record store for development and
// tests, optionally bootstrapped from a CSV source.
package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

// Store is a tabular record store held entirely in memory.
type Store struct {
	mu      sync.RWMutex
	columns []types.Column
	rows    []map[types.Column]string
}

var _ interfaces.RecordStore = &Store{}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// AppendRow adds a row with the given cells, registering any new columns.
func (s *Store) AppendRow(cells map[types.Column]string) model.RowRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	for col := range cells {
		s.ensureColumnLocked(col)
	}
	row := make(map[types.Column]string, len(cells))
	for col, v := range cells {
		row[col] = v
	}
	s.rows = append(s.rows, row)
	return model.RowRef(len(s.rows) - 1)
}

func (s *Store) ensureColumnLocked(col types.Column) {
	for _, c := range s.columns {
		if c == col {
			return
		}
	}
	s.columns = append(s.columns, col)
	for _, row := range s.rows {
		if _, ok := row[col]; !ok {
			row[col] = ""
		}
	}
}

// EnsureColumns appends any missing columns, initializing their cells blank.
func (s *Store) EnsureColumns(ctx context.Context, columns []types.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, col := range columns {
		s.ensureColumnLocked(col)
	}
	return nil
}

// ListRows returns a copy of every row.
func (s *Store) ListRows(ctx context.Context) ([]interfaces.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]interfaces.Row, 0, len(s.rows))
	for i, row := range s.rows {
		cells := make(map[types.Column]string, len(row))
		for col, v := range row {
			cells[col] = v
		}
		out = append(out, interfaces.Row{Ref: model.RowRef(i), Cells: cells})
	}
	return out, nil
}

// FindRowsByIdentifier returns the refs of rows whose contact number
// suffix-matches the identifier.
func (s *Store) FindRowsByIdentifier(ctx context.Context, id types.ContactID) ([]model.RowRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var refs []model.RowRef
	for i, row := range s.rows {
		digits := model.NormalizeDigits(row[types.ColumnContactNumber])
		if model.SuffixMatch(digits, string(id)) {
			refs = append(refs, model.RowRef(i))
		}
	}
	return refs, nil
}

// ReadCell returns the value of one cell.
func (s *Store) ReadCell(ctx context.Context, ref model.RowRef, col types.Column) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if int(ref) < 0 || int(ref) >= len(s.rows) {
		return "", goerr.New("row out of range", goerr.V("ref", ref))
	}
	return s.rows[ref][col], nil
}

// WriteCell sets the value of one cell.
func (s *Store) WriteCell(ctx context.Context, ref model.RowRef, col types.Column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(ref) < 0 || int(ref) >= len(s.rows) {
		return goerr.New("row out of range", goerr.V("ref", ref))
	}
	s.ensureColumnLocked(col)
	s.rows[ref][col] = value
	return nil
}

// Commit is a no-op; writes take effect immediately.
func (s *Store) Commit(ctx context.Context, ref model.RowRef) error {
	return nil
}

// Persist is a no-op for the in-memory backend.
func (s *Store) Persist(ctx context.Context) error {
	return nil
}

// Close releases nothing.
func (s *Store) Close() error {
	return nil
}
