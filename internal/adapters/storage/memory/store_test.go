package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lugia-ai/lugia/internal/adapters/storage/memory"
	"github.com/lugia-ai/lugia/internal/domain"
)

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	if err := store.Put(ctx, "conversation_history/a.json", []byte(`[]`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, err := store.Get(ctx, "conversation_history/a.json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != `[]` {
		t.Fatalf("unexpected payload: %s", data)
	}
}

func TestGetMissing(t *testing.T) {
	store := memory.NewStore()

	_, err := store.Get(context.Background(), "conversation_history/missing.json")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	store.Put(ctx, "conversation_history/conversation_20240102_000000.json", nil)
	store.Put(ctx, "conversation_history/conversation_20240101_000000.json", nil)
	store.Put(ctx, "other/blob", nil)

	keys, err := store.List(ctx, "conversation_history/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0] != "conversation_history/conversation_20240101_000000.json" {
		t.Fatalf("expected lexicographic order, got %v", keys)
	}
}

func TestDeleteMissingIsAnError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	if err := store.Delete(ctx, "conversation_history/missing.json"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	store.Put(ctx, "conversation_history/a.json", nil)
	if err := store.Delete(ctx, "conversation_history/a.json"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, err := store.Exists(ctx, "conversation_history/a.json")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Fatalf("key should be gone after delete")
	}
}
