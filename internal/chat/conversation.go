package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"transparency-backend/internal/llm"
)

// FallbackReply is appended when the provider call fails.
const FallbackReply = "Sorry, I encountered an error. Please try again."

var (
	ErrBusy         = errors.New("a reply is already pending")
	ErrEmptyMessage = errors.New("message is empty")
)

// Message is one entry of the transcript.
type Message struct {
	Role   llm.Role  `json:"role"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
	Failed bool      `json:"failed,omitempty"`
}

// ReplyFunc produces the assistant reply for message given prior history.
type ReplyFunc func(ctx context.Context, history []llm.Turn, message string) (string, error)

// Conversation is an append-only transcript that allows one pending reply
// at a time.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
	pending  bool
	now      func() time.Time
}

func NewConversation() *Conversation {
	return &Conversation{now: time.Now}
}

// Send appends text as a user message, asks reply for an answer, and appends
// either the answer or FallbackReply. The returned error is the provider
// failure, if any; the transcript is updated either way.
func (c *Conversation) Send(ctx context.Context, text string, reply ReplyFunc) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return Message{}, ErrBusy
	}
	history := c.turnsLocked()
	c.messages = append(c.messages, Message{Role: llm.RoleUser, Text: text, At: c.now().UTC()})
	c.pending = true
	c.mu.Unlock()

	answer, err := reply(ctx, history, text)

	msg := Message{Role: llm.RoleAssistant, Text: answer}
	if err != nil {
		msg = Message{Role: llm.RoleAssistant, Text: FallbackReply, Failed: true}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	msg.At = c.now().UTC()
	c.messages = append(c.messages, msg)
	c.pending = false
	return msg, err
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Pending reports whether a reply is outstanding.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// turnsLocked excludes fallback replies so providers never see them.
func (c *Conversation) turnsLocked() []llm.Turn {
	out := make([]llm.Turn, 0, len(c.messages))
	for _, m := range c.messages {
		if m.Failed {
			continue
		}
		out = append(out, llm.Turn{Role: m.Role, Text: m.Text})
	}
	return out
}
