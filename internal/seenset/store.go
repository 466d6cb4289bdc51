// Package seenset tracks which film topics have already been published,
// persisted as a single JSON file so restarts never re-announce a film.
package seenset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const fileVersion = 1

// Record is one published film in the seen set.
type Record struct {
	TopicID string    `json:"id"`
	Title   string    `json:"title"`
	SeenAt  time.Time `json:"seenAt"`
}

type storeFile struct {
	Version    int       `json:"version"`
	LastUpdate time.Time `json:"lastUpdate"`
	Films      []Record  `json:"films"`
}

// Store is the persistent seen set. All methods are safe for concurrent
// use; the file on disk is rewritten whole on every commit.
type Store struct {
	mu      sync.Mutex
	path    string
	maxSize int
	films   []Record
	index   map[string]struct{}
	logger  zerolog.Logger
}

// NewStore loads the seen set from path. A missing file yields an empty
// set; a corrupt file is an error so a bad deploy never mass re-publishes.
func NewStore(path string, maxSize int, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		maxSize: maxSize,
		index:   make(map[string]struct{}),
		logger:  logger.With().Str("component", "seenset").Logger(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info().Str("path", path).Msg("no seen set file, starting empty")
			return s, nil
		}
		return nil, fmt.Errorf("failed to read seen set: %w", err)
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seen set: %w", err)
	}

	s.films = file.Films
	for _, r := range file.Films {
		s.index[r.TopicID] = struct{}{}
	}

	s.logger.Info().Int("films", len(s.films)).Msg("loaded seen set")
	return s, nil
}

// Contains reports whether the topic has already been published.
func (s *Store) Contains(topicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[topicID]
	return ok
}

// Size returns the number of tracked films.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.films)
}

// CommitBatch records the given films as published and persists the set
// in one write. Topics already present are skipped. If persisting fails
// the in-memory set keeps the new entries; the next successful commit
// writes them out.
func (s *Store) CommitBatch(records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, r := range records {
		if _, ok := s.index[r.TopicID]; ok {
			continue
		}
		if r.SeenAt.IsZero() {
			r.SeenAt = time.Now().UTC()
		}
		s.films = append(s.films, r)
		s.index[r.TopicID] = struct{}{}
		added++
	}

	// Evict oldest entries beyond the cap. Entries are appended in
	// publish order, so the front of the slice is the oldest.
	if s.maxSize > 0 && len(s.films) > s.maxSize {
		evicted := s.films[:len(s.films)-s.maxSize]
		for _, r := range evicted {
			delete(s.index, r.TopicID)
		}
		s.films = append([]Record(nil), s.films[len(s.films)-s.maxSize:]...)
		s.logger.Debug().Int("evicted", len(evicted)).Msg("pruned seen set")
	}

	if err := s.persist(); err != nil {
		return err
	}

	if added > 0 {
		s.logger.Info().Int("added", added).Int("total", len(s.films)).Msg("committed seen set")
	}
	return nil
}

// persist writes the full set to a temp file and renames it into place.
// Callers must hold the mutex.
func (s *Store) persist() error {
	file := storeFile{
		Version:    fileVersion,
		LastUpdate: time.Now().UTC(),
		Films:      s.films,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode seen set: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create seen set directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".seenset-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write seen set: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close seen set: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace seen set: %w", err)
	}
	return nil
}
