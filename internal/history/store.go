// Package history keeps the most recent successful translations in memory.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ufolux/TransPop/internal/globaltime"
	"github.com/ufolux/TransPop/internal/logging"
)

const DefaultMaxItems = 100

type Item struct {
	ID         uuid.UUID `json:"id"`
	SourceText string    `json:"source_text"`
	TargetText string    `json:"target_text"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is a bounded, newest-first list of translations. Recording the same
// source and target text twice in a row keeps a single entry.
type Store struct {
	mu       sync.Mutex
	items    []Item
	maxItems int
	logger   zerolog.Logger
}

func NewStore(maxItems int, logger zerolog.Logger) *Store {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Store{
		maxItems: maxItems,
		logger:   logging.Component(logger, "history"),
	}
}

func (s *Store) Record(sourceText, targetText, sourceLang, targetLang string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) > 0 {
		newest := s.items[0]
		if newest.SourceText == sourceText && newest.TargetText == targetText {
			return
		}
	}

	item := Item{
		ID:         uuid.New(),
		SourceText: sourceText,
		TargetText: targetText,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		CreatedAt:  globaltime.UTC(),
	}
	s.items = append([]Item{item}, s.items...)
	if len(s.items) > s.maxItems {
		s.items = s.items[:s.maxItems]
	}

	s.logger.Debug().
		Str("id", item.ID.String()).
		Int("size", len(s.items)).
		Msg("history item recorded")
}

// Items returns a copy of the stored items, newest first.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// Delete removes the item with the given id and reports whether it existed.
func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every item and returns how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := len(s.items)
	s.items = nil
	return removed
}
