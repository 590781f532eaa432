package toasts

import (
	"sync"
	"time"
)

// TTL is how long a toast stays visible.
const TTL = 4 * time.Second

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// Toast is a short-lived advisory message.
type Toast struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Set holds live toasts. Expired entries are dropped whenever the set is
// read or written.
type Set struct {
	mu     sync.Mutex
	nextID int64
	items  []Toast
	now    func() time.Time
}

func NewSet() *Set {
	return &Set{now: time.Now}
}

// NewSetWithClock is used by tests to control expiry.
func NewSetWithClock(now func() time.Time) *Set {
	return &Set{now: now}
}

// Push adds a toast and returns it.
func (s *Set) Push(severity Severity, text string) Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	s.nextID++
	t := Toast{
		ID:        s.nextID,
		Text:      text,
		Severity:  severity,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(TTL).UTC(),
	}
	s.items = append(s.items, t)
	return t
}

// Active returns the unexpired toasts, oldest first.
func (s *Set) Active() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	return append([]Toast{}, s.items...)
}

func (s *Set) pruneLocked(now time.Time) {
	kept := s.items[:0]
	for _, t := range s.items {
		if now.Before(t.ExpiresAt) {
			kept = append(kept, t)
		}
	}
	s.items = kept
}
