// Package sheets backs the record store with a Google Sheets worksheet. The
// header row defines the columns; each data row is one contact row.
package sheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/sheets/v4"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

const defaultSheetName = "Sheet1"

// Store mirrors one worksheet in memory and flushes row writes back through
// the Sheets values API. Commit flushes a single row; Persist rewrites the
// whole sheet.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string

	mu      sync.RWMutex
	columns []types.Column
	rows    []map[types.Column]string
}

var _ interfaces.RecordStore = &Store{}

// Option is a functional option for Store configuration
type Option func(*Store)

// WithSheetName selects a worksheet other than the default first sheet.
func WithSheetName(name string) Option {
	return func(s *Store) {
		s.sheetName = name
	}
}

// New opens the spreadsheet and loads its current contents. Credentials come
// from the application default credentials chain.
func New(ctx context.Context, spreadsheetID string, opts ...Option) (*Store, error) {
	if spreadsheetID == "" {
		return nil, goerr.New("spreadsheet ID is required")
	}

	svc, err := sheets.NewService(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create sheets service")
	}

	s := &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     defaultSheetName,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName).Context(ctx).Do()
	if err != nil {
		return goerr.Wrap(err, "failed to read sheet values",
			goerr.V("spreadsheet_id", s.spreadsheetID), goerr.V("sheet", s.sheetName))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.columns = nil
	s.rows = nil
	if len(resp.Values) == 0 {
		return nil
	}

	for _, v := range resp.Values[0] {
		s.columns = append(s.columns, types.Column(fmt.Sprint(v)))
	}
	for _, raw := range resp.Values[1:] {
		row := make(map[types.Column]string, len(s.columns))
		for i, col := range s.columns {
			if i < len(raw) {
				row[col] = fmt.Sprint(raw[i])
			} else {
				row[col] = ""
			}
		}
		s.rows = append(s.rows, row)
	}
	return nil
}

// EnsureColumns appends missing columns to the header row, initializing the
// new cells blank, and pushes the updated header to the sheet.
func (s *Store) EnsureColumns(ctx context.Context, columns []types.Column) error {
	s.mu.Lock()
	changed := false
	for _, col := range columns {
		if !s.hasColumnLocked(col) {
			s.columns = append(s.columns, col)
			for _, row := range s.rows {
				row[col] = ""
			}
			changed = true
		}
	}
	header := s.headerLocked()
	s.mu.Unlock()

	if !changed {
		return nil
	}

	rng := fmt.Sprintf("%s!A1", s.sheetName)
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]any{header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return goerr.Wrap(err, "failed to update header row",
			goerr.V("spreadsheet_id", s.spreadsheetID))
	}
	return nil
}

func (s *Store) hasColumnLocked(col types.Column) bool {
	for _, c := range s.columns {
		if c == col {
			return true
		}
	}
	return false
}

func (s *Store) headerLocked() []any {
	header := make([]any, len(s.columns))
	for i, col := range s.columns {
		header[i] = col.String()
	}
	return header
}

// ListRows returns a copy of every data row.
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

// ReadCell returns the value of one cell from the mirrored sheet.
func (s *Store) ReadCell(ctx context.Context, ref model.RowRef, col types.Column) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if int(ref) < 0 || int(ref) >= len(s.rows) {
		return "", goerr.New("row out of range", goerr.V("ref", ref))
	}
	return s.rows[ref][col], nil
}

// WriteCell stages a cell value; Commit flushes the row to the sheet.
func (s *Store) WriteCell(ctx context.Context, ref model.RowRef, col types.Column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(ref) < 0 || int(ref) >= len(s.rows) {
		return goerr.New("row out of range", goerr.V("ref", ref))
	}
	if !s.hasColumnLocked(col) {
		s.columns = append(s.columns, col)
		for _, row := range s.rows {
			if _, ok := row[col]; !ok {
				row[col] = ""
			}
		}
	}
	s.rows[ref][col] = value
	return nil
}

// Commit flushes one row back to the worksheet. Data rows start at sheet row
// 2, below the header.
func (s *Store) Commit(ctx context.Context, ref model.RowRef) error {
	s.mu.RLock()
	if int(ref) < 0 || int(ref) >= len(s.rows) {
		s.mu.RUnlock()
		return goerr.New("row out of range", goerr.V("ref", ref))
	}
	values := s.rowValuesLocked(int(ref))
	s.mu.RUnlock()

	rng := fmt.Sprintf("%s!A%d", s.sheetName, int(ref)+2)
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]any{values},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return goerr.Wrap(err, "failed to write row",
			goerr.V("spreadsheet_id", s.spreadsheetID), goerr.V("ref", ref))
	}
	return nil
}

// Persist rewrites the header and every row in one batch update.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.RLock()
	values := make([][]any, 0, len(s.rows)+1)
	values = append(values, s.headerLocked())
	for i := range s.rows {
		values = append(values, s.rowValuesLocked(i))
	}
	s.mu.RUnlock()

	rng := fmt.Sprintf("%s!A1", s.sheetName)
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return goerr.Wrap(err, "failed to persist sheet",
			goerr.V("spreadsheet_id", s.spreadsheetID))
	}
	return nil
}

func (s *Store) rowValuesLocked(i int) []any {
	values := make([]any, len(s.columns))
	for j, col := range s.columns {
		values[j] = s.rows[i][col]
	}
	return values
}

// Close releases nothing; the sheets client has no teardown.
func (s *Store) Close() error {
	return nil
}
