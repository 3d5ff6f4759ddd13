package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the meta record and each blob in its own file under a
// single directory. Every write goes to a temp file first and is renamed into
// place, and blobs are always written before the meta record, so a partially
// applied Save can leave an older blob behind but never a flag without its
// payload.
type FileStore struct {
	root string
}

const metaFile = "meta.json"

// NewFileStore creates the directory if needed and returns the store.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		root = ".cache/weatherstation"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) Load() (Snapshot, error) {
	metaBytes, err := os.ReadFile(filepath.Join(s.root, metaFile))
	if os.IsNotExist(err) {
		return Snapshot{}, ErrNoData
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read meta: %w", err)
	}

	var meta Meta
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		// A corrupt meta record is indistinguishable from an empty store:
		// nothing can be trusted, so the caller refetches everything.
		return Snapshot{}, ErrNoData
	}

	snap := Snapshot{Meta: meta, Blobs: make(map[string][]byte)}
	for _, key := range []string{BlobCurrent, BlobDaily, BlobHourly} {
		data, err := os.ReadFile(s.blobPath(key))
		if err != nil {
			continue // absent blob; category reads as stale
		}
		snap.Blobs[key] = data
	}
	return snap, nil
}

func (s *FileStore) Save(meta Meta, blobs map[string][]byte) error {
	// Payloads first. If any blob write fails the meta record is untouched
	// and the previous generation stays fully consistent.
	for key, data := range blobs {
		if err := s.writeAtomic(s.blobPath(key), data); err != nil {
			return fmt.Errorf("write blob %s: %w", key, err)
		}
	}

	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := s.writeAtomic(filepath.Join(s.root, metaFile), metaBytes); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) blobPath(key string) string {
	return filepath.Join(s.root, key+".json")
}

// writeAtomic writes via a temp file and rename.
func (s *FileStore) writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
