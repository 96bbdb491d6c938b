package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ufolux/TransPop/internal/globaltime"
)

func TestStore_NewestFirst(t *testing.T) {
	t.Parallel()

	store := NewStore(10, zerolog.Nop())
	store.Record("one", "un", "en", "fr")
	store.Record("two", "deux", "en", "fr")

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].SourceText != "two" || items[1].SourceText != "one" {
		t.Fatalf("expected newest first, got %q then %q", items[0].SourceText, items[1].SourceText)
	}
	if items[0].ID == uuid.Nil || items[0].ID == items[1].ID {
		t.Fatalf("expected distinct non-nil ids")
	}
}

func TestStore_SkipsConsecutiveDuplicate(t *testing.T) {
	t.Parallel()

	store := NewStore(10, zerolog.Nop())
	store.Record("hello", "bonjour", "en", "fr")
	store.Record("hello", "bonjour", "en", "fr")
	if got := len(store.Items()); got != 1 {
		t.Fatalf("expected duplicate to be skipped, got %d items", got)
	}

	store.Record("bye", "au revoir", "en", "fr")
	store.Record("hello", "bonjour", "en", "fr")
	if got := len(store.Items()); got != 3 {
		t.Fatalf("expected non-consecutive repeat to be kept, got %d items", got)
	}
}

func TestStore_TrimsToMaxItems(t *testing.T) {
	t.Parallel()

	store := NewStore(3, zerolog.Nop())
	for i := 0; i < 5; i++ {
		store.Record(fmt.Sprintf("text-%d", i), fmt.Sprintf("texte-%d", i), "en", "fr")
	}

	items := store.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].SourceText != "text-4" || items[2].SourceText != "text-2" {
		t.Fatalf("unexpected retained items: %+v", items)
	}
}

func TestStore_DefaultMaxItems(t *testing.T) {
	t.Parallel()

	store := NewStore(0, zerolog.Nop())
	for i := 0; i < DefaultMaxItems+5; i++ {
		store.Record(fmt.Sprintf("%d", i), "x", "en", "fr")
	}
	if got := len(store.Items()); got != DefaultMaxItems {
		t.Fatalf("expected %d items, got %d", DefaultMaxItems, got)
	}
}

func TestStore_DeleteAndClear(t *testing.T) {
	t.Parallel()

	store := NewStore(10, zerolog.Nop())
	store.Record("one", "un", "en", "fr")
	store.Record("two", "deux", "en", "fr")

	target := store.Items()[1].ID
	if !store.Delete(target) {
		t.Fatalf("expected delete to find item")
	}
	if store.Delete(target) {
		t.Fatalf("expected second delete to miss")
	}
	if got := len(store.Items()); got != 1 {
		t.Fatalf("expected 1 item after delete, got %d", got)
	}

	if removed := store.Clear(); removed != 1 {
		t.Fatalf("expected clear to remove 1 item, got %d", removed)
	}
	if got := len(store.Items()); got != 0 {
		t.Fatalf("expected empty store after clear, got %d", got)
	}
}

func TestStore_UsesGlobalTime(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(fixed)
	defer globaltime.ResetTime()

	store := NewStore(10, zerolog.Nop())
	store.Record("one", "un", "en", "fr")
	if got := store.Items()[0].CreatedAt; !got.Equal(fixed) {
		t.Fatalf("expected created_at %s, got %s", fixed, got)
	}
}
