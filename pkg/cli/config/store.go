package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/repository/firestore"
	"github.com/slotcast-dev/slotcast/pkg/repository/memory"
	"github.com/slotcast-dev/slotcast/pkg/repository/sheets"
)

// Store selects the record store backend behind workspace directory sources.
type Store struct {
	backend             string
	sheetName           string
	firestoreProjectID  string
	firestoreDatabaseID string
}

// Flags returns CLI flags for record store configuration
func (s *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store-backend",
			Usage:       "Record store backend (memory, sheets or firestore)",
			Value:       "memory",
			Sources:     cli.EnvVars("SLOTCAST_STORE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "sheets-worksheet",
			Usage:       "Worksheet name within the spreadsheet (sheets backend)",
			Sources:     cli.EnvVars("SLOTCAST_SHEETS_WORKSHEET"),
			Destination: &s.sheetName,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project ID (firestore backend)",
			Sources:     cli.EnvVars("SLOTCAST_FIRESTORE_PROJECT_ID"),
			Destination: &s.firestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID, empty for the default database",
			Sources:     cli.EnvVars("SLOTCAST_FIRESTORE_DATABASE_ID"),
			Destination: &s.firestoreDatabaseID,
		},
	}
}

// Configure returns the store factory for the selected backend. The factory's
// source argument means: a CSV path or gs:// URL (memory), a spreadsheet ID
// (sheets), or a collection name (firestore).
func (s *Store) Configure() (interfaces.StoreFactory, error) {
	switch s.backend {
	case "memory":
		return func(ctx context.Context, source string) (interfaces.RecordStore, error) {
			if source == "" {
				return memory.New(), nil
			}
			return memory.NewFromCSV(ctx, source)
		}, nil

	case "sheets":
		var opts []sheets.Option
		if s.sheetName != "" {
			opts = append(opts, sheets.WithSheetName(s.sheetName))
		}
		return func(ctx context.Context, source string) (interfaces.RecordStore, error) {
			return sheets.New(ctx, source, opts...)
		}, nil

	case "firestore":
		if s.firestoreProjectID == "" {
			return nil, goerr.New("firestore-project-id is required for the firestore backend")
		}
		return func(ctx context.Context, source string) (interfaces.RecordStore, error) {
			return firestore.New(ctx, s.firestoreProjectID, s.firestoreDatabaseID, source)
		}, nil

	default:
		return nil, goerr.New("invalid store backend", goerr.V("backend", s.backend))
	}
}

func (s *Store) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", s.backend),
		slog.String("firestore_project_id", s.firestoreProjectID),
	)
}
