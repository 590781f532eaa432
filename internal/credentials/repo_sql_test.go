package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"transparency-backend/internal/llm"
)

func TestPGRepoUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO credentials").
		WithArgs("gemini", "GEMINI_API_KEY", "AIza-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Upsert(context.Background(), Credential{Provider: llm.TagGemini, KeyName: "GEMINI_API_KEY", Secret: "AIza-1"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLiteRepoListAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	updated := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"provider", "key_name", "secret", "updated_at"}).
		AddRow("claude", "CLAUDE_API_KEY", "sk-ant", updated).
		AddRow("openai", "OPENAI_API_KEY", "sk-oa", nil)
	mock.ExpectQuery("SELECT provider, key_name, secret, updated_at").WillReturnRows(rows)
	mock.ExpectExec("DELETE FROM credentials WHERE provider = \\?").
		WithArgs("claude").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &SQLiteRepo{DB: db}
	creds, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(creds) != 2 || creds[0].Provider != llm.TagClaude || !creds[0].UpdatedAt.Equal(updated) {
		t.Fatalf("creds = %+v", creds)
	}
	if !creds[1].UpdatedAt.IsZero() {
		t.Fatalf("null updated_at should stay zero")
	}
	if err := repo.Delete(context.Background(), "claude"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
