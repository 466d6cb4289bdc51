package seenset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T, maxSize int) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seen.json")
	store, err := NewStore(path, maxSize, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, path
}

func TestCommitBatchAndContains(t *testing.T) {
	store, _ := newTestStore(t, 100)

	if store.Contains("26925") {
		t.Error("empty store should not contain 26925")
	}

	err := store.CommitBatch([]Record{
		{TopicID: "26925", Title: "Movie One (2024)"},
		{TopicID: "26930", Title: "Movie Two (2024)"},
	})
	if err != nil {
		t.Fatalf("CommitBatch: %v", err)
	}

	if !store.Contains("26925") || !store.Contains("26930") {
		t.Error("committed topics should be contained")
	}
	if store.Size() != 2 {
		t.Errorf("expected size 2, got %d", store.Size())
	}
}

func TestCommitBatch_SkipsDuplicates(t *testing.T) {
	store, _ := newTestStore(t, 100)

	if err := store.CommitBatch([]Record{{TopicID: "1", Title: "A"}}); err != nil {
		t.Fatalf("CommitBatch: %v", err)
	}
	if err := store.CommitBatch([]Record{{TopicID: "1", Title: "A"}, {TopicID: "2", Title: "B"}}); err != nil {
		t.Fatalf("CommitBatch: %v", err)
	}

	if store.Size() != 2 {
		t.Errorf("expected size 2 after duplicate commit, got %d", store.Size())
	}
}

func TestStoreSurvivesReload(t *testing.T) {
	store, path := newTestStore(t, 100)
	if err := store.CommitBatch([]Record{{TopicID: "26925", Title: "Movie One (2024)"}}); err != nil {
		t.Fatalf("CommitBatch: %v", err)
	}

	reloaded, err := NewStore(path, 100, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore reload: %v", err)
	}
	if !reloaded.Contains("26925") {
		t.Error("reloaded store should contain committed topic")
	}
}

func TestCommitBatch_EvictsOldestBeyondCap(t *testing.T) {
	store, _ := newTestStore(t, 3)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := store.CommitBatch([]Record{{
			TopicID: fmt.Sprintf("%d", i),
			Title:   fmt.Sprintf("Film %d", i),
			SeenAt:  base.Add(time.Duration(i) * time.Hour),
		}})
		if err != nil {
			t.Fatalf("CommitBatch %d: %v", i, err)
		}
	}

	if store.Size() != 3 {
		t.Fatalf("expected size capped at 3, got %d", store.Size())
	}
	if store.Contains("0") || store.Contains("1") {
		t.Error("oldest entries should have been evicted")
	}
	if !store.Contains("2") || !store.Contains("3") || !store.Contains("4") {
		t.Error("newest entries should survive eviction")
	}
}

func TestStoreFileShape(t *testing.T) {
	store, path := newTestStore(t, 100)
	if err := store.CommitBatch([]Record{{TopicID: "7", Title: "Some Film"}}); err != nil {
		t.Fatalf("CommitBatch: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store file: %v", err)
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("parse store file: %v", err)
	}
	if file.Version != fileVersion {
		t.Errorf("expected version %d, got %d", fileVersion, file.Version)
	}
	if file.LastUpdate.IsZero() {
		t.Error("expected lastUpdate to be stamped")
	}
	if len(file.Films) != 1 || file.Films[0].TopicID != "7" {
		t.Errorf("unexpected films payload: %+v", file.Films)
	}
	if file.Films[0].SeenAt.IsZero() {
		t.Error("expected seenAt to be stamped on commit")
	}
}

func TestNewStore_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if _, err := NewStore(path, 100, zerolog.Nop()); err == nil {
		t.Fatal("expected error loading corrupt seen set")
	}
}
