package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"transparency-backend/internal/credentials"
	"transparency-backend/internal/documents"
	"transparency-backend/internal/llm"
	"transparency-backend/internal/llm/anthropic"
	"transparency-backend/internal/llm/gemini"
	"transparency-backend/internal/llm/openai"
	"transparency-backend/internal/ocr"
	"transparency-backend/internal/pdfdoc"
	"transparency-backend/internal/services/health"
	"transparency-backend/internal/shared/config"
	"transparency-backend/internal/shared/server"
	"transparency-backend/internal/shared/storage/db"
	"transparency-backend/internal/shared/storage/object"
	localstore "transparency-backend/internal/shared/storage/object/local"
	miniostore "transparency-backend/internal/shared/storage/object/minio"
	s3store "transparency-backend/internal/shared/storage/object/s3"
	"transparency-backend/internal/workspace"
)

// App holds shared dependencies.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	DB          *sql.DB
	Store       object.ObjectStore
	Credentials *credentials.Store
	Documents   *documents.Service
	OCR         *ocr.Fallback
	Providers   llm.Registry
	Workspace   *workspace.Service
	Handler     *workspace.Handler
	Health      *health.Service
}

// Overrides replaces collaborators that need external programs or network
// access. Zero fields keep the configured defaults.
type Overrides struct {
	Rasterizer pdfdoc.Rasterizer
	OCREngine  ocr.Engine
	Providers  llm.Registry
}

// Build wires the application from cfg.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(cfg, Overrides{})
}

// BuildWith wires the application, applying overrides.
func BuildWith(cfg config.Config, ov Overrides) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	app := &App{Config: cfg, Health: health.NewService()}

	repo, err := buildCredentialRepo(ctx, app)
	if err != nil {
		return nil, err
	}
	app.Credentials = credentials.NewStore(repo)
	if err := app.Credentials.Load(ctx); err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = store

	raster := ov.Rasterizer
	if raster == nil {
		pdftoppm := pdfdoc.NewPdftoppm(cfg.PdftoppmPath)
		app.Health.Register("pdftoppm", pdftoppm.Check)
		raster = pdftoppm
	}
	engine := ov.OCREngine
	if engine == nil {
		engine = ocr.NewTesseractEngine()
	}
	app.OCR = ocr.NewFallback(engine, cfg.TesseractLang)

	app.Documents = &documents.Service{
		Store:    store,
		Raster:   raster,
		MaxBytes: cfg.MaxUploadBytes,
	}

	app.Providers = ov.Providers
	if app.Providers == nil {
		app.Providers = buildProviders(cfg)
	}

	app.Workspace = workspace.NewService(workspace.Deps{
		Credentials:  app.Credentials,
		Documents:    app.Documents,
		OCR:          app.OCR,
		Providers:    app.Providers,
		DefaultModel: cfg.DefaultModel,
	})
	app.Handler = workspace.NewHandler(app.Workspace, cfg.MaxUploadBytes)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Health:   app.Health,
		Handlers: []server.RouteRegistrar{app.Handler},
	})

	return app, nil
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildCredentialRepo(ctx context.Context, app *App) (credentials.Repo, error) {
	cfg := app.Config
	switch cfg.CredentialStore {
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: DATABASE_URL empty; keeping credentials in memory")
				return credentials.NewMemoryRepo(), nil
			}
			return nil, fmt.Errorf("DATABASE_URL is required when CREDENTIAL_STORE=postgres")
		}
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err == nil {
			err = db.RunMigrations(ctx, sqlDB, db.DialectPostgres)
		}
		if err != nil {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: database unavailable; keeping credentials in memory: %v", err)
				return credentials.NewMemoryRepo(), nil
			}
			return nil, err
		}
		app.DB = sqlDB
		app.Health.Register("database", sqlDB.PingContext)
		return &credentials.PGRepo{DB: sqlDB}, nil
	case "sqlite":
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath, db.DefaultSQLiteOptions())
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, sqlDB, db.DialectSQLite); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		app.DB = sqlDB
		app.Health.Register("database", sqlDB.PingContext)
		return &credentials.SQLiteRepo{DB: sqlDB}, nil
	default:
		return credentials.NewMemoryRepo(), nil
	}
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "minio":
		if strings.TrimSpace(cfg.MinioEndpoint) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=minio requires MINIO_ENDPOINT")
		}
		return miniostore.New(ctx, cfg.MinioEndpoint, cfg.MinioBucket, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildProviders(cfg config.Config) llm.Registry {
	return llm.Registry{
		llm.TagGemini: gemini.Factory(gemini.Options{BaseURL: cfg.GeminiBaseURL, Timeout: cfg.LLMTimeout}),
		llm.TagClaude: anthropic.Factory(anthropic.Options{BaseURL: cfg.AnthropicBaseURL, Timeout: cfg.LLMTimeout}),
		llm.TagOpenAI: openai.Factory(openai.Options{BaseURL: cfg.OpenAIBaseURL, Timeout: cfg.LLMTimeout}),
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
