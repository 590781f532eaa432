package main

// Run credential store migrations:
//   go run ./cmd/migrate

import (
	"context"
	"database/sql"
	"log"
	"os"

	"transparency-backend/internal/shared/config"
	"transparency-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var (
		sqlDB   *sql.DB
		dialect db.Dialect
		err     error
	)
	switch cfg.CredentialStore {
	case "postgres":
		dialect = db.DialectPostgres
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	case "sqlite":
		dialect = db.DialectSQLite
		sqlDB, err = db.OpenSQLite(ctx, cfg.SQLitePath, db.DefaultSQLiteOptions())
	default:
		log.Printf("CREDENTIAL_STORE=%s has no schema; nothing to migrate", cfg.CredentialStore)
		return
	}
	if err != nil {
		log.Printf("failed to open database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	log.Printf("migrations applied (%s)", dialect)
}
