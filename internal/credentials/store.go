package credentials

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"transparency-backend/internal/llm"
	"transparency-backend/internal/shared/telemetry"
	"transparency-backend/internal/shared/util"
)

// Store holds provider keys in memory, backed by a Repo. Writes reach the
// repo before the in-memory copy changes, so a failed write leaves the
// previous key in effect.
type Store struct {
	repo Repo

	mu     sync.RWMutex
	loaded bool
	keys   map[llm.Tag]string
}

func NewStore(repo Repo) *Store {
	if repo == nil {
		repo = NewMemoryRepo()
	}
	return &Store{repo: repo, keys: make(map[llm.Tag]string)}
}

// Load reads persisted keys. Later calls are no-ops.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	creds, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	for _, c := range creds {
		tag, err := llm.ParseTag(string(c.Provider))
		if err != nil {
			telemetry.Warn("credentials.unknown_provider", map[string]any{"provider": string(c.Provider)})
			continue
		}
		if c.Secret != "" {
			s.keys[tag] = c.Secret
		}
	}
	s.loaded = true
	return nil
}

// Get returns the key for tag, or "" when none is saved.
func (s *Store) Get(tag llm.Tag) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[tag]
}

// Save stores secret for tag. An empty secret clears the key.
func (s *Store) Save(ctx context.Context, tag llm.Tag, secret string) error {
	if _, err := llm.ParseTag(string(tag)); err != nil {
		return err
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return s.Clear(ctx, tag)
	}
	if strings.ContainsAny(secret, " \t\r\n") {
		return ErrInvalidSecret
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Upsert(ctx, Credential{Provider: tag, KeyName: tag.KeyName(), Secret: secret}); err != nil {
		return fmt.Errorf("save %s: %w", tag.KeyName(), err)
	}
	s.keys[tag] = secret
	telemetry.Info("credentials.saved", map[string]any{"provider": string(tag)})
	return nil
}

// Clear removes the key for tag.
func (s *Store) Clear(ctx context.Context, tag llm.Tag) error {
	if _, err := llm.ParseTag(string(tag)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Delete(ctx, string(tag)); err != nil {
		return fmt.Errorf("clear %s: %w", tag.KeyName(), err)
	}
	delete(s.keys, tag)
	telemetry.Info("credentials.cleared", map[string]any{"provider": string(tag)})
	return nil
}

// Empty reports whether no provider has a key.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys) == 0
}

// Status lists every provider with a masked hint of its saved key.
func (s *Store) Status() []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Status, 0, len(llm.Tags()))
	for _, tag := range llm.Tags() {
		secret := s.keys[tag]
		out = append(out, Status{
			Provider: tag,
			KeyName:  tag.KeyName(),
			Label:    tag.Label(),
			Saved:    secret != "",
			Hint:     util.MaskSecret(secret),
		})
	}
	return out
}
