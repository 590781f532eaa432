package chat

import (
	"context"
	"errors"
	"testing"

	"transparency-backend/internal/llm"
)

func TestSendAppendsUserAndReply(t *testing.T) {
	c := NewConversation()
	var seen []llm.Turn

	msg, err := c.Send(context.Background(), "  What is V1?  ", func(_ context.Context, history []llm.Turn, m string) (string, error) {
		seen = history
		if m != "What is V1?" {
			t.Fatalf("message = %q", m)
		}
		return "V1 measures placement.", nil
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Role != llm.RoleAssistant || msg.Text != "V1 measures placement." {
		t.Fatalf("reply = %+v", msg)
	}
	if len(seen) != 0 {
		t.Fatalf("first send should have empty history, got %v", seen)
	}

	_, _ = c.Send(context.Background(), "And V2?", func(_ context.Context, history []llm.Turn, _ string) (string, error) {
		seen = history
		return "V2 is tool specificity.", nil
	})
	if len(seen) != 2 || seen[0].Role != llm.RoleUser || seen[1].Role != llm.RoleAssistant {
		t.Fatalf("history = %+v", seen)
	}
	if n := len(c.Messages()); n != 4 {
		t.Fatalf("messages = %d", n)
	}
}

func TestSendFailureAppendsFallback(t *testing.T) {
	c := NewConversation()
	boom := errors.New("503")
	msg, err := c.Send(context.Background(), "hi", func(context.Context, []llm.Turn, string) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if msg.Text != FallbackReply || !msg.Failed {
		t.Fatalf("reply = %+v", msg)
	}
	msgs := c.Messages()
	if len(msgs) != 2 || msgs[0].Text != "hi" {
		t.Fatalf("messages = %+v", msgs)
	}

	var seen []llm.Turn
	_, _ = c.Send(context.Background(), "again", func(_ context.Context, h []llm.Turn, _ string) (string, error) {
		seen = h
		return "ok", nil
	})
	if len(seen) != 1 || seen[0].Text != "hi" {
		t.Fatalf("fallback replies must not be sent as history: %+v", seen)
	}
}

func TestSendRejectsConcurrentAndEmpty(t *testing.T) {
	c := NewConversation()
	if _, err := c.Send(context.Background(), "   ", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Send(context.Background(), "first", func(context.Context, []llm.Turn, string) (string, error) {
			close(started)
			<-release
			return "ok", nil
		})
	}()
	<-started

	if !c.Pending() {
		t.Fatalf("expected pending reply")
	}
	if _, err := c.Send(context.Background(), "second", nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(release)
	<-done

	if c.Pending() || len(c.Messages()) != 2 {
		t.Fatalf("unexpected state after reply: pending=%v messages=%d", c.Pending(), len(c.Messages()))
	}
}
