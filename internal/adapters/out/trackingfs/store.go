// Package trackingfs stores tracking documents as JSON files, one per webhook key.
package trackingfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"orderflow/internal/core/domain/model/tracking"
	"orderflow/internal/pkg/errs"
)

// FileStore implements ports.TrackingStore under <base>/tracking/order-<key>.json.
type FileStore struct {
	dir string
}

func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, errs.NewValueIsRequiredError("tracking base dir")
	}
	dir := filepath.Join(baseDir, "tracking")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create tracking dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if err := tracking.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, "order-"+key+".json"), nil
}

func (s *FileStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.NewObjectNotFoundError("tracking document", key)
	}
	if err != nil {
		return nil, fmt.Errorf("read tracking document: %w", err)
	}
	return raw, nil
}

func (s *FileStore) Load(ctx context.Context, key string) (tracking.Document, error) {
	raw, err := s.Read(ctx, key)
	if err != nil {
		return tracking.Document{}, err
	}

	var doc tracking.Document
	if err = json.Unmarshal(raw, &doc); err != nil {
		return tracking.Document{}, fmt.Errorf("decode tracking document %s: %w", key, err)
	}
	return doc, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the target, so readers never observe a partial document.
func (s *FileStore) Save(ctx context.Context, doc tracking.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(doc.OrderID)
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tracking document: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".order-"+doc.OrderID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp tracking file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err = tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write tracking document: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync tracking document: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close tracking document: %w", err)
	}
	if err = os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("replace tracking document: %w", err)
	}
	return nil
}
