package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"bangumi/pkg/models"
)

// ErrUnknownCategory is returned for a category without an artifact.
var ErrUnknownCategory = errors.New("unknown collection category")

// Store is the read-only dataset built by the last pipeline run. It never
// changes after Load returns, so handlers share it without locking.
type Store struct {
	collections map[string]models.CollectionArtifact
	calendar    []models.CalendarDay
}

// PageResult is one window of a category.
type PageResult struct {
	Data  []models.CollectionEntry `json:"data"`
	Total int                      `json:"total"`
}

// Load reads every artifact from dir. A missing file loads as empty; a file
// that is not valid JSON is an error.
func Load(dir string) (*Store, error) {
	s := &Store{
		collections: make(map[string]models.CollectionArtifact, len(models.Categories)),
		calendar:    []models.CalendarDay{},
	}

	for _, key := range models.Categories {
		artifact := models.NewCollectionArtifact(nil)
		if err := readJSON(filepath.Join(dir, key+".json"), &artifact); err != nil {
			return nil, err
		}
		if artifact.Data == nil {
			artifact.Data = []models.CollectionEntry{}
		}
		s.collections[key] = artifact
	}

	if err := readJSON(filepath.Join(dir, "calendar.json"), &s.calendar); err != nil {
		return nil, err
	}
	if s.calendar == nil {
		s.calendar = []models.CalendarDay{}
	}
	return s, nil
}

func readJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

var (
	openOnce  sync.Once
	openStore *Store
	openErr   error
)

// Open loads dir on first use and returns the same Store afterwards. Later
// calls ignore dir.
func Open(dir string) (*Store, error) {
	openOnce.Do(func() {
		openStore, openErr = Load(dir)
	})
	return openStore, openErr
}

// Categories lists the category keys the store serves.
func (s *Store) Categories() []string {
	out := make([]string, len(models.Categories))
	copy(out, models.Categories)
	return out
}

// Page returns entries [offset, offset+limit) of category, clamped to the
// artifact. A negative offset counts as 0 and limit <= 0 yields no entries.
// Total is always the size of the whole category.
func (s *Store) Page(category string, offset, limit int) (PageResult, error) {
	artifact, ok := s.collections[category]
	if !ok {
		return PageResult{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	n := len(artifact.Data)
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := offset
	if limit > 0 {
		end = offset + min(limit, n-offset)
	}

	return PageResult{Data: artifact.Data[offset:end:end], Total: artifact.Total}, nil
}

// Totals reports the size of every category.
func (s *Store) Totals() map[string]int {
	out := make(map[string]int, len(s.collections))
	for key, artifact := range s.collections {
		out[key] = artifact.Total
	}
	return out
}

// Calendar returns the stored broadcast calendar.
func (s *Store) Calendar() []models.CalendarDay {
	return s.calendar
}
