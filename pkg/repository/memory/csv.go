package memory

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/utils/safe"
)

const gcsPrefix = "gs://"

// NewFromCSV creates a store seeded from a CSV source. The source is a local
// file path or a gs:// object URL; the first record is the header row.
func NewFromCSV(ctx context.Context, source string) (*Store, error) {
	reader, err := openSource(ctx, source)
	if err != nil {
		return nil, err
	}
	defer safe.Close(ctx, reader)

	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read CSV", goerr.V("source", source))
	}
	if len(records) == 0 {
		return nil, goerr.New("CSV source is empty", goerr.V("source", source))
	}

	store := New()
	header := make([]types.Column, 0, len(records[0]))
	for _, name := range records[0] {
		header = append(header, types.Column(strings.TrimSpace(name)))
	}

	for _, record := range records[1:] {
		cells := make(map[types.Column]string, len(header))
		for i, col := range header {
			if i < len(record) {
				cells[col] = strings.TrimSpace(record[i])
			} else {
				cells[col] = ""
			}
		}
		store.AppendRow(cells)
	}
	return store, nil
}

func openSource(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, gcsPrefix) {
		f, err := os.Open(source) // #nosec G304 - operator-provided path
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open CSV file", goerr.V("path", source))
		}
		return f, nil
	}

	rest := strings.TrimPrefix(source, gcsPrefix)
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return nil, goerr.New("invalid gs:// URL", goerr.V("source", source))
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GCS client")
	}
	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to open GCS object",
			goerr.V("bucket", bucket), goerr.V("object", object))
	}
	return &gcsReader{ReadCloser: rc, client: client}, nil
}

// gcsReader closes the storage client together with the object reader.
type gcsReader struct {
	io.ReadCloser
	client *storage.Client
}

func (r *gcsReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}
