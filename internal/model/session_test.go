package model

import (
	"fmt"
	"testing"
)

func TestConversationSession_AddMessage(t *testing.T) {
	session := NewConversationSession("session_test", "+15550000000")

	session.AddMessage(RoleUser, "hello")
	session.AddMessage(RoleBot, "welcome")

	if len(session.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(session.History))
	}
	if session.History[0].Role != RoleUser || session.History[0].Content != "hello" {
		t.Errorf("unexpected first entry: %+v", session.History[0])
	}
	if session.History[1].Timestamp.IsZero() {
		t.Error("expected message timestamp to be set")
	}
}

func TestConversationSession_HistoryCap(t *testing.T) {
	session := NewConversationSession("session_test", "")

	for i := 0; i < maxHistoryEntries+20; i++ {
		session.AddMessage(RoleUser, fmt.Sprintf("message %d", i))
	}

	if len(session.History) != maxHistoryEntries {
		t.Fatalf("expected history capped at %d, got %d", maxHistoryEntries, len(session.History))
	}
	// Newest entries survive
	last := session.History[len(session.History)-1]
	if last.Content != fmt.Sprintf("message %d", maxHistoryEntries+19) {
		t.Errorf("expected newest message kept, got %q", last.Content)
	}
}

func TestConversationSession_RecentUserMessages(t *testing.T) {
	session := NewConversationSession("session_test", "")

	session.AddMessage(RoleUser, "one")
	session.AddMessage(RoleBot, "reply one")
	session.AddMessage(RoleUser, "two")
	session.AddMessage(RoleBot, "reply two")
	session.AddMessage(RoleUser, "three")
	session.AddMessage(RoleBot, "reply three")
	session.AddMessage(RoleUser, "four")

	recent := session.RecentUserMessages()

	// Only the trailing window is scanned, and only user turns survive
	if len(recent) > 3 {
		t.Fatalf("expected at most 3 context messages, got %d", len(recent))
	}
	if recent[len(recent)-1] != "four" {
		t.Errorf("expected most recent utterance last, got %q", recent[len(recent)-1])
	}
	for _, msg := range recent {
		if msg == "reply one" || msg == "reply two" || msg == "reply three" {
			t.Errorf("bot message leaked into user context: %q", msg)
		}
	}
}

func TestConversationSession_MarkShown(t *testing.T) {
	session := NewConversationSession("session_test", "")

	session.MarkShown("101", "102")
	session.MarkShown("102", "103")

	if len(session.ShownFuneralHomes) != 3 {
		t.Fatalf("expected 3 unique shown ids, got %v", session.ShownFuneralHomes)
	}
	if !session.HasShown("101") || !session.HasShown("103") {
		t.Error("expected marked ids to be reported as shown")
	}
	if session.HasShown("999") {
		t.Error("unexpected id reported as shown")
	}
}

func TestConversationSession_ResetSearch(t *testing.T) {
	session := NewConversationSession("session_test", "")
	session.MarkShown("101", "102")
	session.CurrentPage = 4
	session.State = StateShowingResults

	session.ResetSearch()

	if len(session.ShownFuneralHomes) != 0 {
		t.Errorf("expected shown list cleared, got %v", session.ShownFuneralHomes)
	}
	if session.CurrentPage != 1 {
		t.Errorf("expected page cursor reset to 1, got %d", session.CurrentPage)
	}
	// Transitions belong to the conversation manager
	if session.State != StateShowingResults {
		t.Errorf("ResetSearch must not change state, got %q", session.State)
	}
}

func TestConversationSession_Clone(t *testing.T) {
	session := NewConversationSession("session_test", "")
	session.Requirements.Location = strPtr("Austin, TX")
	session.MarkShown("101")
	session.AddMessage(RoleUser, "hello")

	clone := session.Clone()
	clone.Requirements.Location = strPtr("Miami, FL")
	clone.MarkShown("202")
	clone.AddMessage(RoleUser, "more")

	if *session.Requirements.Location != "Austin, TX" {
		t.Error("clone requirements mutation leaked into original")
	}
	if len(session.ShownFuneralHomes) != 1 {
		t.Errorf("clone shown-list mutation leaked into original: %v", session.ShownFuneralHomes)
	}
	if len(session.History) != 1 {
		t.Errorf("clone history mutation leaked into original: %d entries", len(session.History))
	}
}
