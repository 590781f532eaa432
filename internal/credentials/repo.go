package credentials

import "context"

// Repo persists provider keys. Upsert replaces any existing key for the
// provider; Delete of a missing provider is not an error.
type Repo interface {
	List(ctx context.Context) ([]Credential, error)
	Upsert(ctx context.Context, cred Credential) error
	Delete(ctx context.Context, provider string) error
}
