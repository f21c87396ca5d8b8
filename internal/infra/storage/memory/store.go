// Package memory is an in-process TokenStorage used when Redis cannot be
// reached within the startup retry budget (degraded mode) and by tests.
// State is lost on restart; the engines otherwise behave identically.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/herowatch/herowatch/internal/deathwatch"
	"github.com/herowatch/herowatch/internal/hero"
	"github.com/herowatch/herowatch/internal/revealwatch"
)

// Store keeps token records in a map guarded by a mutex. The mutex gives
// MarkRevealed the same first-writer-wins semantics as the Redis script.
type Store struct {
	mu      sync.Mutex
	records map[uint64]hero.Record
}

var (
	_ revealwatch.TokenStorage = (*Store)(nil)
	_ deathwatch.DeathRecorder = (*Store)(nil)
)

// New returns an empty Store.
func New() *Store {
	return &Store{
		records: make(map[uint64]hero.Record),
	}
}

func (s *Store) Get(ctx context.Context, tokenID uint64) (hero.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[tokenID]
	if !ok {
		return hero.Record{}, revealwatch.ErrTokenNotFound
	}
	return record, nil
}

func (s *Store) EnsureTracked(ctx context.Context, tokenID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[tokenID]; !ok {
		s.records[tokenID] = hero.Record{TokenID: tokenID}
	}
	return nil
}

func (s *Store) MarkRevealed(ctx context.Context, tokenID uint64, image string, attrs []hero.TraitAttribute) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.records[tokenID]
	if record.Revealed {
		return false, nil
	}

	record.TokenID = tokenID
	record.Revealed = true
	record.Image = image
	record.Attributes = slices.Clone(attrs)
	s.records[tokenID] = record
	return true, nil
}

func (s *Store) ListUnrevealed(ctx context.Context) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint64, 0)
	for id, record := range s.records {
		if !record.Revealed {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) MarkDeath(ctx context.Context, tokenID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.records[tokenID]
	record.TokenID = tokenID
	record.DeathRecorded = true
	s.records[tokenID] = record
	return nil
}
