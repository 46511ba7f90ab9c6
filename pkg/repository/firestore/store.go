// Package firestore backs the record store with a Firestore collection: one
// document per contact row, cells as a string map, plus a meta document
// carrying the column list so the tabular shape survives round trips.
package firestore

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

const metaDocID = "_meta"

type rowDoc struct {
	Index int               `firestore:"index"`
	Cells map[string]string `firestore:"cells"`
}

type metaDoc struct {
	Columns []string `firestore:"columns"`
}

// Store mirrors a row collection in memory and flushes writes per document.
type Store struct {
	client     *firestore.Client
	collection string

	mu      sync.RWMutex
	columns []types.Column
	rows    []map[types.Column]string
}

var _ interfaces.RecordStore = &Store{}

// New connects to Firestore and loads the row collection.
func New(ctx context.Context, projectID, databaseID, collection string) (*Store, error) {
	if projectID == "" {
		return nil, goerr.New("firestore project ID is required")
	}
	if collection == "" {
		return nil, goerr.New("firestore collection is required")
	}

	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID))
	}

	s := &Store{client: client, collection: collection}
	if err := s.load(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.client.Collection(s.collection).Doc(metaDocID).Get(ctx)
	if err != nil {
		if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to read store meta",
				goerr.V("collection", s.collection))
		}
	} else {
		var meta metaDoc
		if err := snap.DataTo(&meta); err != nil {
			return goerr.Wrap(err, "failed to decode store meta")
		}
		for _, name := range meta.Columns {
			s.columns = append(s.columns, types.Column(name))
		}
	}

	iter := s.client.Collection(s.collection).
		Where("index", ">=", 0).
		OrderBy("index", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate rows",
				goerr.V("collection", s.collection))
		}
		var rd rowDoc
		if err := doc.DataTo(&rd); err != nil {
			return goerr.Wrap(err, "failed to decode row", goerr.V("doc", doc.Ref.ID))
		}
		row := make(map[types.Column]string, len(s.columns))
		for _, col := range s.columns {
			row[col] = rd.Cells[col.String()]
		}
		for name, v := range rd.Cells {
			row[types.Column(name)] = v
		}
		s.rows = append(s.rows, row)
	}
	return nil
}

func (s *Store) rowDocRef(ref model.RowRef) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(fmt.Sprintf("row-%06d", int(ref)))
}

// EnsureColumns appends missing columns and saves the column list to the
// meta document.
func (s *Store) EnsureColumns(ctx context.Context, columns []types.Column) error {
	s.mu.Lock()
	changed := false
	for _, col := range columns {
		if !s.hasColumnLocked(col) {
			s.columns = append(s.columns, col)
			for _, row := range s.rows {
				if _, ok := row[col]; !ok {
					row[col] = ""
				}
			}
			changed = true
		}
	}
	names := make([]string, len(s.columns))
	for i, col := range s.columns {
		names[i] = col.String()
	}
	s.mu.Unlock()

	if !changed {
		return nil
	}

	if _, err := s.client.Collection(s.collection).Doc(metaDocID).Set(ctx, metaDoc{Columns: names}); err != nil {
		return goerr.Wrap(err, "failed to save store meta", goerr.V("collection", s.collection))
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

// ReadCell returns the value of one cell from the mirrored collection.
func (s *Store) ReadCell(ctx context.Context, ref model.RowRef, col types.Column) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if int(ref) < 0 || int(ref) >= len(s.rows) {
		return "", goerr.New("row out of range", goerr.V("ref", ref))
	}
	return s.rows[ref][col], nil
}

// WriteCell stages a cell value; Commit flushes the row document.
func (s *Store) WriteCell(ctx context.Context, ref model.RowRef, col types.Column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(ref) < 0 || int(ref) >= len(s.rows) {
		return goerr.New("row out of range", goerr.V("ref", ref))
	}
	if !s.hasColumnLocked(col) {
		s.columns = append(s.columns, col)
	}
	s.rows[ref][col] = value
	return nil
}

// Commit flushes one row document.
func (s *Store) Commit(ctx context.Context, ref model.RowRef) error {
	s.mu.RLock()
	if int(ref) < 0 || int(ref) >= len(s.rows) {
		s.mu.RUnlock()
		return goerr.New("row out of range", goerr.V("ref", ref))
	}
	doc := s.rowDocLocked(int(ref))
	s.mu.RUnlock()

	if _, err := s.rowDocRef(ref).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to write row",
			goerr.V("collection", s.collection), goerr.V("ref", ref))
	}
	return nil
}

// Persist flushes every row document in one batched write.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.RLock()
	docs := make([]rowDoc, len(s.rows))
	for i := range s.rows {
		docs[i] = s.rowDocLocked(i)
	}
	s.mu.RUnlock()

	bw := s.client.BulkWriter(ctx)
	for i := range docs {
		if _, err := bw.Set(s.rowDocRef(model.RowRef(i)), docs[i]); err != nil {
			return goerr.Wrap(err, "failed to enqueue row write", goerr.V("ref", i))
		}
	}
	bw.End()
	return nil
}

func (s *Store) rowDocLocked(i int) rowDoc {
	cells := make(map[string]string, len(s.columns))
	for _, col := range s.columns {
		cells[col.String()] = s.rows[i][col]
	}
	return rowDoc{Index: i, Cells: cells}
}

// Close tears down the Firestore client.
func (s *Store) Close() error {
	return s.client.Close()
}
