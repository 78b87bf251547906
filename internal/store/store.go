// Package store persists named JSON arrays as flat files.
//
// Reads never fail: a missing, unreadable or malformed file reads as an empty
// array. Writes replace the whole file through a rename, so readers see either
// the old or the new content, and they report I/O errors to the caller.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"anonbox/internal/logger"
)

// Resource names one JSON array file.
type Resource string

const (
	Users    Resource = "Users"
	Messages Resource = "Messages"
	// Sequences holds id high-water marks that outlive deleted records.
	Sequences Resource = "Sequences"
)

// Resources lists every resource created at start-up.
func Resources() []Resource {
	return []Resource{Users, Messages, Sequences}
}

const (
	fileExt  = ".json"
	dirPerm  = 0o750
	filePerm = 0o640
)

var emptyArray = []byte("[]")

// ErrSkipSave may be returned by an Update callback to finish without writing.
var ErrSkipSave = errors.New("store: skip save")

// FileStore keeps each resource in <dir>/<Resource>.json.
type FileStore struct {
	dir string
	log *logger.Logger

	mu    sync.Mutex
	locks map[Resource]*sync.Mutex
}

// NewFileStore returns a store rooted at dir. Call Init before use.
func NewFileStore(dir string, log *logger.Logger) *FileStore {
	return &FileStore{
		dir:   dir,
		log:   log,
		locks: make(map[Resource]*sync.Mutex),
	}
}

// Dir returns the storage directory.
func (s *FileStore) Dir() string { return s.dir }

// Init creates the storage directory and seeds every known resource.
func (s *FileStore) Init() error {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", s.dir, err)
	}
	for _, res := range Resources() {
		if err := s.EnsureExists(res); err != nil {
			return err
		}
	}
	return nil
}

// EnsureExists writes an empty array for res if its file is absent.
func (s *FileStore) EnsureExists(res Resource) error {
	unlock := s.Lock(res)
	defer unlock()

	_, err := os.Stat(s.path(res))
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", res, err)
	}
	return s.write(res, emptyArray)
}

// Lock takes the exclusive lock for res and returns its release func.
func (s *FileStore) Lock(res Resource) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[res]
	if !ok {
		l = &sync.Mutex{}
		s.locks[res] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// LoadRaw returns the file content of res when it holds a JSON array, and
// "[]" otherwise.
func (s *FileStore) LoadRaw(res Resource) []byte {
	data, err := os.ReadFile(s.path(res))
	if err != nil {
		s.warn("store_load_failed", res, err)
		return append([]byte(nil), emptyArray...)
	}
	if !IsJSONArray(data) {
		s.warn("store_load_malformed", res, errors.New("content is not a JSON array"))
		return append([]byte(nil), emptyArray...)
	}
	return data
}

// IsJSONArray reports whether data is a single well-formed JSON array.
func IsJSONArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return false
	}
	return json.Valid(trimmed)
}

func (s *FileStore) path(res Resource) string {
	return filepath.Join(s.dir, string(res)+fileExt)
}

// write replaces the file of res. Callers hold the resource lock.
func (s *FileStore) write(res Resource, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+string(res)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", res, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", res, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file for %s: %w", res, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", res, err)
	}
	if err := os.Rename(tmpName, s.path(res)); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", res, err)
	}
	return nil
}

func (s *FileStore) warn(event string, res Resource, err error) {
	if s.log != nil {
		s.log.Warnw(event, "resource", res, "err", err)
	}
}
