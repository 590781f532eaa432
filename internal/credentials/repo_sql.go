package credentials

import (
	"context"
	"database/sql"
	"time"

	"transparency-backend/internal/llm"
)

// PGRepo stores keys in Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) List(ctx context.Context) ([]Credential, error) {
	return listCredentials(ctx, r.DB)
}

func (r *PGRepo) Upsert(ctx context.Context, cred Credential) error {
	const query = `
INSERT INTO credentials (provider, key_name, secret, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (provider) DO UPDATE SET
  key_name = EXCLUDED.key_name,
  secret = EXCLUDED.secret,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query, string(cred.Provider), cred.KeyName, cred.Secret)
	return err
}

func (r *PGRepo) Delete(ctx context.Context, provider string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM credentials WHERE provider = $1`, provider)
	return err
}

// SQLiteRepo stores keys in the local SQLite database.
type SQLiteRepo struct {
	DB *sql.DB
}

func (r *SQLiteRepo) List(ctx context.Context) ([]Credential, error) {
	return listCredentials(ctx, r.DB)
}

func (r *SQLiteRepo) Upsert(ctx context.Context, cred Credential) error {
	const query = `
INSERT INTO credentials (provider, key_name, secret, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(provider) DO UPDATE SET
  key_name = excluded.key_name,
  secret = excluded.secret,
  updated_at = excluded.updated_at`
	now := time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, query, string(cred.Provider), cred.KeyName, cred.Secret, now, now)
	return err
}

func (r *SQLiteRepo) Delete(ctx context.Context, provider string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM credentials WHERE provider = ?`, provider)
	return err
}

func listCredentials(ctx context.Context, db *sql.DB) ([]Credential, error) {
	const query = `
SELECT provider, key_name, secret, updated_at
FROM credentials
ORDER BY provider`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Credential
	for rows.Next() {
		var c Credential
		var provider string
		var updatedAt sql.NullTime
		if err := rows.Scan(&provider, &c.KeyName, &c.Secret, &updatedAt); err != nil {
			return nil, err
		}
		c.Provider = llm.Tag(provider)
		if updatedAt.Valid {
			c.UpdatedAt = updatedAt.Time
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
