package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Load decodes res into a slice of T. Any failure yields an empty slice.
func Load[T any](s *FileStore, res Resource) []T {
	records := make([]T, 0)
	if err := json.Unmarshal(s.LoadRaw(res), &records); err != nil {
		s.warn("store_decode_failed", res, err)
		return make([]T, 0)
	}
	if records == nil {
		records = make([]T, 0)
	}
	return records
}

// Save replaces res with records.
func Save[T any](s *FileStore, res Resource, records []T) error {
	unlock := s.Lock(res)
	defer unlock()
	return save(s, res, records)
}

// Update runs a locked read-modify-write cycle on res. The lock is held from
// the load until the save completes. If fn returns ErrSkipSave nothing is
// written and Update returns nil; any other error is returned unchanged.
func Update[T any](s *FileStore, res Resource, fn func(records []T) ([]T, error)) error {
	unlock := s.Lock(res)
	defer unlock()

	out, err := fn(Load[T](s, res))
	if errors.Is(err, ErrSkipSave) {
		return nil
	}
	if err != nil {
		return err
	}
	return save(s, res, out)
}

func save[T any](s *FileStore, res Resource, records []T) error {
	if records == nil {
		records = make([]T, 0)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", res, err)
	}
	return s.write(res, data)
}
