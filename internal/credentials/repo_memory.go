package credentials

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{creds: make(map[string]Credential)}
}

func (r *MemoryRepo) List(ctx context.Context) ([]Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Credential, 0, len(r.creds))
	for _, c := range r.creds {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, cred Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cred.UpdatedAt = time.Now().UTC()
	r.creds[string(cred.Provider)] = cred
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, provider string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.creds, provider)
	return nil
}
