// Package store persists the station's cache record: a (day, hour) stamp, a
// freshness set, and one opaque payload blob per category group. Flags and
// payloads are versioned together; a backend must never make a freshness flag
// durable before the blob it describes.
package store

import (
	"errors"
	"fmt"

	"weatherstation/internal/weather"
)

// Blob keys. Hourly forecast, history and the indoor sensor share one blob,
// since they all live in the same 24-slot timeline.
const (
	BlobCurrent = "current"
	BlobDaily   = "daily"
	BlobHourly  = "hourly"
)

// Meta is the persisted freshness record.
type Meta struct {
	Day    int                 `json:"day"`
	Hour   int                 `json:"hour"`
	Status weather.CategorySet `json:"status"`
}

// Snapshot is everything the store holds: the meta record plus whichever
// payload blobs exist.
type Snapshot struct {
	Meta  Meta
	Blobs map[string][]byte
}

// ErrNoData is returned by Load when nothing has ever been persisted.
var ErrNoData = errors.New("no persisted station state")

// Store is the persistence contract. Save writes the given blobs and then the
// meta record; blobs not named in the call keep their previous contents.
// Implementations must order or batch writes so that a crash can lose a blob
// update but never leave a flag set without its payload.
type Store interface {
	Load() (Snapshot, error)
	Save(meta Meta, blobs map[string][]byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open creates a store backend by name.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile:
		return NewFileStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
