package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DataDir         string
	MaxUploadBytes  int64
	RateLimitRPM    int

	CredentialStore string
	SQLitePath      string
	DatabaseURL     string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool

	DefaultModel     string
	LLMTimeout       time.Duration
	GeminiBaseURL    string
	AnthropicBaseURL string
	OpenAIBaseURL    string

	PdftoppmPath  string
	TesseractLang string
}

// Load reads configuration from environment variables with sensible defaults.
// Values from the YAML file named by CONFIG_FILE fill in anything the
// environment leaves unset.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	src := source{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		values, err := loadYAMLFile(path)
		if err != nil {
			log.Printf("config file %s ignored: %v", path, err)
		} else {
			src.file = values
		}
	}
	return src.build()
}

type source struct {
	file map[string]string
}

func (s source) build() Config {
	env := normalizeEnv(s.get("ENV", "dev"))
	dataDir := s.get("DATA_DIR", "./data")
	credStore := normalizeCredentialStore(s.get("CREDENTIAL_STORE", "sqlite"))
	dbURL := s.get("DATABASE_URL", "")

	if credStore == "postgres" && dbURL == "" {
		log.Printf("DATABASE_URL is required when CREDENTIAL_STORE=postgres")
	}

	return Config{
		Port:            s.get("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(s.get("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DataDir:         dataDir,
		MaxUploadBytes:  int64(s.getInt("MAX_UPLOAD_MB", 50)) << 20,
		RateLimitRPM:    s.getInt("RATE_LIMIT_RPM", 30),

		CredentialStore: credStore,
		SQLitePath:      s.get("SQLITE_PATH", filepath.Join(dataDir, "credentials.db")),
		DatabaseURL:     dbURL,

		ObjectStoreType: normalizeStoreType(s.get("OBJECT_STORE", "local")),
		LocalStoreDir:   s.get("LOCAL_STORE_DIR", filepath.Join(dataDir, "uploads")),
		AWSRegion:       s.get("AWS_REGION", ""),
		S3Bucket:        s.get("S3_BUCKET", ""),
		S3Prefix:        s.get("S3_PREFIX", ""),
		SSEKMSKeyID:     s.get("S3_SSE_KMS_KEY_ID", ""),
		MinioEndpoint:   s.get("MINIO_ENDPOINT", ""),
		MinioAccessKey:  s.get("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  s.get("MINIO_SECRET_KEY", ""),
		MinioBucket:     s.get("MINIO_BUCKET", "transparency-uploads"),
		MinioUseSSL:     s.getBool("MINIO_USE_SSL", false),

		DefaultModel:     s.get("DEFAULT_MODEL", "gemini-3.1-pro-preview"),
		LLMTimeout:       time.Duration(s.getInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		GeminiBaseURL:    s.get("GEMINI_BASE_URL", ""),
		AnthropicBaseURL: s.get("ANTHROPIC_BASE_URL", ""),
		OpenAIBaseURL:    s.get("OPENAI_BASE_URL", ""),

		PdftoppmPath:  s.get("PDFTOPPM_PATH", "pdftoppm"),
		TesseractLang: s.get("TESSERACT_LANG", "eng"),
	}
}

func (s source) get(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if val := s.file[key]; val != "" {
		return val
	}
	return def
}

func (s source) getInt(key string, def int) int {
	raw := strings.TrimSpace(s.get(key, ""))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return n
}

func (s source) getBool(key string, def bool) bool {
	raw := strings.TrimSpace(s.get(key, ""))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return b
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}

func normalizeCredentialStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg", "postgresql":
		return "postgres"
	case "memory", "mem":
		return "memory"
	default:
		return "sqlite"
	}
}
