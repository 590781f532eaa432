package credentials

import (
	"context"
	"errors"
	"testing"

	"transparency-backend/internal/llm"
)

type failingRepo struct {
	*MemoryRepo
	err error
}

func (r *failingRepo) Upsert(ctx context.Context, cred Credential) error { return r.err }
func (r *failingRepo) Delete(ctx context.Context, provider string) error { return r.err }

func TestStoreSaveGetClear(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	store := NewStore(repo)
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !store.Empty() {
		t.Fatalf("new store should be empty")
	}

	if err := store.Save(ctx, llm.TagClaude, "  sk-ant-abcdef123456  "); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := store.Get(llm.TagClaude); got != "sk-ant-abcdef123456" {
		t.Fatalf("Get = %q", got)
	}
	persisted, _ := repo.List(ctx)
	if len(persisted) != 1 || persisted[0].KeyName != "CLAUDE_API_KEY" {
		t.Fatalf("persisted = %+v", persisted)
	}

	if err := store.Save(ctx, llm.TagClaude, ""); err != nil {
		t.Fatalf("Save empty: %v", err)
	}
	if store.Get(llm.TagClaude) != "" || !store.Empty() {
		t.Fatalf("empty save should clear the key")
	}
	if persisted, _ := repo.List(ctx); len(persisted) != 0 {
		t.Fatalf("key should be removed from repo, got %+v", persisted)
	}
}

func TestStoreLoadRestoresPersistedKeys(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	_ = repo.Upsert(ctx, Credential{Provider: llm.TagGemini, KeyName: "GEMINI_API_KEY", Secret: "AIza-1"})
	_ = repo.Upsert(ctx, Credential{Provider: "mistral", KeyName: "MISTRAL_API_KEY", Secret: "x"})

	store := NewStore(repo)
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.Get(llm.TagGemini) != "AIza-1" {
		t.Fatalf("gemini key not restored")
	}
	if store.Get("mistral") != "" {
		t.Fatalf("unknown providers must be ignored")
	}
}

func TestStoreFailedWriteKeepsPreviousKey(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{MemoryRepo: NewMemoryRepo()}
	store := NewStore(repo)
	_ = store.Load(ctx)

	store.keys[llm.TagOpenAI] = "sk-old"
	repo.err = errors.New("disk full")

	if err := store.Save(ctx, llm.TagOpenAI, "sk-new"); err == nil {
		t.Fatalf("expected error")
	}
	if store.Get(llm.TagOpenAI) != "sk-old" {
		t.Fatalf("failed save must not replace the key")
	}
	if err := store.Clear(ctx, llm.TagOpenAI); err == nil {
		t.Fatalf("expected error")
	}
	if store.Get(llm.TagOpenAI) != "sk-old" {
		t.Fatalf("failed clear must not remove the key")
	}
}

func TestStoreRejectsBadInput(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if err := store.Save(ctx, "mistral", "k"); !errors.Is(err, llm.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
	if err := store.Save(ctx, llm.TagGemini, "two words"); !errors.Is(err, ErrInvalidSecret) {
		t.Fatalf("expected ErrInvalidSecret, got %v", err)
	}
}

func TestStatusMasksSecrets(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	_ = store.Save(ctx, llm.TagGemini, "AIzaSyTESTKEY987654")

	status := store.Status()
	if len(status) != 3 {
		t.Fatalf("status entries = %d", len(status))
	}
	gem := status[0]
	if gem.Provider != llm.TagGemini || !gem.Saved || gem.Hint != "···987654" || gem.Label != "Gemini" {
		t.Fatalf("gemini status = %+v", gem)
	}
	if status[1].Saved || status[1].Hint != "" {
		t.Fatalf("claude should be unsaved: %+v", status[1])
	}
}
