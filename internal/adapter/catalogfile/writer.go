package catalogfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/cityinfo-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Writer stores a catalog as a JSON array file.
// It implements pipeline.CatalogLoader.
type Writer struct {
	path   string
	clock  clockwork.Clock
	logger *slog.Logger

	lastBackup string
}

// NewWriter creates a catalog file writer for path.
func NewWriter(path string, clock clockwork.Clock, logger *slog.Logger) *Writer {
	return &Writer{path: path, clock: clock, logger: logger}
}

// Path returns the output file path.
func (w *Writer) Path() string { return w.path }

// LastBackup returns the backup created by the most recent LoadCatalog call,
// or "" if no prior file existed.
func (w *Writer) LastBackup() string { return w.lastBackup }

// LoadCatalog backs up any existing output file and then replaces it with
// the encoded catalog.
func (w *Writer) LoadCatalog(_ context.Context, catalog domain.Catalog) error {
	data, err := Encode(catalog)
	if err != nil {
		return err
	}

	backup, err := Backup(w.path, w.clock)
	if err != nil {
		return err
	}
	w.lastBackup = backup
	if backup != "" {
		w.logger.Info("backed up existing catalog", "path", w.path, "backup", backup)
	}

	if err := writeFileAtomic(w.path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog %s: %w", w.path, err)
	}
	w.logger.Info("catalog written", "path", w.path, "districts", len(catalog), "bytes", len(data))
	return nil
}

// Encode renders the catalog one object per line:
//
//	[
//	  {"id":"101010100","name":"北京"},
//	  {"id":"101010200","name":"海淀"}
//	]
//
// There is no trailing newline and an empty catalog encodes as "[\n]".
func Encode(catalog domain.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[\n")

	var line bytes.Buffer
	enc := json.NewEncoder(&line)
	enc.SetEscapeHTML(false)

	for i, d := range catalog {
		line.Reset()
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("encode district %s: %w", d.ID, err)
		}
		buf.WriteString("  ")
		buf.Write(bytes.TrimRight(line.Bytes(), "\n"))
		if i < len(catalog)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}
