package repository

import (
	"context"
	"testing"
	"time"

	"github.com/AndreCurotec/funeral-home-agent/internal/model"
)

func TestMemoryStore_GetOrCreate(t *testing.T) {
	store := NewMemorySessionStore("+15550001111")
	ctx := context.Background()

	session, err := store.GetOrCreate(ctx, "abc")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if session.SessionID != "abc" {
		t.Errorf("Expected session id abc, got %s", session.SessionID)
	}
	if session.UserPhone != "+15550001111" {
		t.Errorf("Expected the store's user phone, got %s", session.UserPhone)
	}
	if session.State != model.StateCollectingInfo {
		t.Errorf("Expected collecting state, got %s", session.State)
	}
	if session.CurrentPage != 1 {
		t.Errorf("Expected page 1, got %d", session.CurrentPage)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 stored session, got %d", count)
	}

	again, err := store.GetOrCreate(ctx, "abc")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !again.CreatedAt.Equal(session.CreatedAt) {
		t.Error("Expected the same session on the second read")
	}
}

func TestMemoryStore_ReadsAreIsolated(t *testing.T) {
	store := NewMemorySessionStore("+15550001111")
	ctx := context.Background()

	session, err := store.GetOrCreate(ctx, "abc")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Mutations on the returned copy must not leak into the store without Save
	session.MarkShown("101")
	loc := "Austin, TX"
	session.Requirements.Location = &loc
	session.AddMessage(model.RoleUser, "hello")

	fresh, err := store.GetOrCreate(ctx, "abc")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(fresh.ShownFuneralHomes) != 0 {
		t.Errorf("Expected no shown homes in the store, got %v", fresh.ShownFuneralHomes)
	}
	if fresh.Requirements.Location != nil {
		t.Errorf("Expected no location in the store, got %q", *fresh.Requirements.Location)
	}
	if len(fresh.History) != 0 {
		t.Errorf("Expected empty history in the store, got %d entries", len(fresh.History))
	}
}

func TestMemoryStore_SavePersists(t *testing.T) {
	store := NewMemorySessionStore("+15550001111")
	ctx := context.Background()

	session, err := store.GetOrCreate(ctx, "abc")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	session.State = model.StateShowingResults
	session.MarkShown("101", "102")
	session.CurrentPage = 3
	session.AddMessage(model.RoleUser, "direct cremation in Austin")

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Later caller mutations must not reach the stored copy
	session.MarkShown("999")

	loaded, err := store.GetOrCreate(ctx, "abc")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loaded.State != model.StateShowingResults {
		t.Errorf("Expected showing results state, got %s", loaded.State)
	}
	if len(loaded.ShownFuneralHomes) != 2 {
		t.Errorf("Expected 2 shown homes, got %v", loaded.ShownFuneralHomes)
	}
	if loaded.CurrentPage != 3 {
		t.Errorf("Expected page 3, got %d", loaded.CurrentPage)
	}
	if len(loaded.History) != 1 {
		t.Errorf("Expected 1 history entry, got %d", len(loaded.History))
	}
}

func TestMemoryStore_EvictOlderThan(t *testing.T) {
	store := NewMemorySessionStore("+15550001111")
	ctx := context.Background()

	if _, err := store.GetOrCreate(ctx, "old"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := store.GetOrCreate(ctx, "fresh"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	evicted, err := store.EvictOlderThan(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if evicted != 0 {
		t.Errorf("Expected nothing evicted within the TTL, got %d", evicted)
	}

	evicted, err = store.EvictOlderThan(ctx, 15*time.Millisecond)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if evicted != 1 {
		t.Errorf("Expected 1 session evicted, got %d", evicted)
	}

	summaries, err := store.ListSummaries(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(summaries) != 1 || summaries[0].SessionID != "fresh" {
		t.Errorf("Expected only the fresh session to remain, got %+v", summaries)
	}
}

func TestMemoryStore_ListSummaries(t *testing.T) {
	store := NewMemorySessionStore("+15550001111")
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		if _, err := store.GetOrCreate(ctx, id); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	session, err := store.GetOrCreate(ctx, "second")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	session.State = model.StateShowingResults
	session.MarkShown("101", "102", "103")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	summaries, err := store.ListSummaries(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("Expected 3 summaries, got %d", len(summaries))
	}
	for i, id := range []string{"first", "second", "third"} {
		if summaries[i].SessionID != id {
			t.Errorf("Expected %s at position %d, got %s", id, i, summaries[i].SessionID)
		}
	}
	if summaries[1].State != model.StateShowingResults {
		t.Errorf("Expected showing results state, got %s", summaries[1].State)
	}
	if summaries[1].ShownHomesCount != 3 {
		t.Errorf("Expected 3 shown homes, got %d", summaries[1].ShownHomesCount)
	}
	if summaries[1].HasCompleteInfo {
		t.Error("Expected incomplete info for a session without requirements")
	}
}

func TestSessionLocks(t *testing.T) {
	store := NewMemorySessionStore("+15550001111")

	release := store.Lock("s1")

	// A different session id must not be blocked
	otherRelease := store.Lock("s2")
	otherRelease()

	entered := make(chan struct{})
	go func() {
		r := store.Lock("s1")
		close(entered)
		r()
	}()

	select {
	case <-entered:
		t.Fatal("Second locker entered while the lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("Second locker never acquired the released lock")
	}
}
