package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/errors"
	"github.com/windfall/vocal_service/internal/repository"
)

func newConversation(ai TextGenerator, history repository.HistoryRepository) *ConversationService {
	log := zerolog.Nop()
	return NewConversationService(
		NewResponseGenerator(ai, log).WithPicker(sequence(0)),
		NewPatternAnalyzer(ai, log),
		history,
		time.Second,
		log,
	)
}

func waitForTurns(t *testing.T, repo repository.HistoryRepository, id string, n int) []repository.ConversationTurn {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		turns, _ := repo.Recent(context.Background(), id, 50)
		if len(turns) >= n {
			return turns
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d turns, got %d", n, len(turns))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConversationStart(t *testing.T) {
	s := newConversation(nil, nil)
	start := s.Start(context.Background())

	if start.ConversationID == "" {
		t.Error("expected a conversation id")
	}
	if start.CoachName != CoachName {
		t.Errorf("expected coach %s, got %s", CoachName, start.CoachName)
	}
	if len(start.Topics) != 6 {
		t.Errorf("expected 6 topics, got %d", len(start.Topics))
	}
}

func TestConversationRespond_EmptyMessage(t *testing.T) {
	_, err := newConversation(nil, nil).Respond(context.Background(), RespondRequest{Message: "  "})
	if !errors.HasCode(err, errors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestConversationRespond_RecordsTurn(t *testing.T) {
	history := repository.NewMemoryHistoryRepository()
	s := newConversation(nil, history)

	reply, err := s.Respond(context.Background(), RespondRequest{Message: "Hello coach", ConversationID: "c1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.ConversationID != "c1" {
		t.Errorf("expected conversation c1, got %s", reply.ConversationID)
	}
	if reply.Reply.Category != CategoryGreeting {
		t.Errorf("expected greeting, got %s", reply.Reply.Category)
	}
	if reply.QuickAnalysis.QuickTip == "" {
		t.Error("expected quick analysis")
	}

	turns := waitForTurns(t, history, "c1", 1)
	if turns[0].UserMessage != "Hello coach" || turns[0].AIResponse != reply.Reply.Text {
		t.Errorf("unexpected recorded turn %+v", turns[0])
	}
	if turns[0].Category != string(CategoryGreeting) {
		t.Errorf("expected greeting category recorded, got %s", turns[0].Category)
	}
}

func TestConversationRespond_AssignsID(t *testing.T) {
	reply, err := newConversation(nil, nil).Respond(context.Background(), RespondRequest{Message: "Hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.ConversationID == "" {
		t.Error("expected generated conversation id")
	}
}

func TestConversationRespond_LoadsStoredHistory(t *testing.T) {
	history := repository.NewMemoryHistoryRepository()
	_ = history.Append(context.Background(), "c2", repository.ConversationTurn{UserMessage: "earlier question", AIResponse: "earlier answer"})

	ai := &fakeAI{text: "Sure, keep going."}
	s := newConversation(ai, history)

	if _, err := s.Respond(context.Background(), RespondRequest{Message: "tell me more", ConversationID: "c2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := ai.lastTextPrompt()
	if !strings.Contains(prompt, "Student: earlier question") || !strings.Contains(prompt, "Coach Alex: earlier answer") {
		t.Errorf("expected stored history in prompt, got:\n%s", prompt)
	}
}

func TestConversationRespond_ExplicitHistoryWins(t *testing.T) {
	history := repository.NewMemoryHistoryRepository()
	_ = history.Append(context.Background(), "c3", repository.ConversationTurn{UserMessage: "stored", AIResponse: "stored reply"})

	ai := &fakeAI{text: "Okay."}
	s := newConversation(ai, history)

	_, err := s.Respond(context.Background(), RespondRequest{
		Message:        "tell me more",
		ConversationID: "c3",
		History:        []HistoryMessage{{Speaker: "user", Text: "given"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := ai.lastTextPrompt()
	if strings.Contains(prompt, "stored reply") || !strings.Contains(prompt, "Student: given") {
		t.Errorf("expected request history only, got:\n%s", prompt)
	}
}

func TestConversationHistory(t *testing.T) {
	history := repository.NewMemoryHistoryRepository()
	for _, msg := range []string{"a", "b", "c"} {
		_ = history.Append(context.Background(), "c4", repository.ConversationTurn{UserMessage: msg})
	}
	s := newConversation(nil, history)

	turns, err := s.History(context.Background(), "c4", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 2 || turns[0].UserMessage != "b" || turns[1].UserMessage != "c" {
		t.Errorf("expected last two turns oldest first, got %+v", turns)
	}

	empty, err := newConversation(nil, nil).History(context.Background(), "c4", 10)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty history without a store, got %v %v", empty, err)
	}
}
