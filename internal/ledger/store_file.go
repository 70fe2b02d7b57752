package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"eudrgate/internal/domain"
	"eudrgate/pkg/platform/sentinel"
)

// FileStore persists the ledger as a single JSON document. Writers are
// serialized by a mutex and every write goes through a temp-file rename, so
// readers never observe a half-written ledger even across a crash.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type fileDocument struct {
	Records []domain.IngestionRecord `json:"records"`
}

// NewFileStore opens (or lazily creates) a ledger file at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Append(_ context.Context, record domain.IngestionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	for _, existing := range doc.Records {
		if existing.InternalReferenceNumber == record.InternalReferenceNumber {
			return sentinel.ErrConflict
		}
	}
	doc.Records = append(doc.Records, record)
	return s.write(doc)
}

func (s *FileStore) ListAll(_ context.Context) ([]domain.IngestionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Records, nil
}

func (s *FileStore) GetByKey(_ context.Context, internalReferenceNumber string) (domain.IngestionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return domain.IngestionRecord{}, err
	}
	for _, record := range doc.Records {
		if record.InternalReferenceNumber == internalReferenceNumber {
			return record, nil
		}
	}
	return domain.IngestionRecord{}, sentinel.ErrNotFound
}

func (s *FileStore) UpdateTraderStatement(_ context.Context, internalReferenceNumber string, patch domain.TraderStatementPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i := range doc.Records {
		if doc.Records[i].InternalReferenceNumber == internalReferenceNumber {
			applyPatch(&doc.Records[i], patch)
			return s.write(doc)
		}
	}
	return sentinel.ErrNotFound
}

func (s *FileStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(fileDocument{})
}

func (s *FileStore) load() (fileDocument, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileDocument{}, nil
		}
		return fileDocument{}, fmt.Errorf("read ledger file: %w", err)
	}
	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fileDocument{}, fmt.Errorf("parse ledger file: %w", err)
	}
	return doc, nil
}

func (s *FileStore) write(doc fileDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write ledger temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
