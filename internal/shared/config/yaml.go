package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML overlay. Every field maps onto the
// environment variable of the same meaning.
type fileConfig struct {
	Server struct {
		Port         string   `yaml:"port"`
		Env          string   `yaml:"env"`
		CORSOrigins  []string `yaml:"corsAllowOrigins"`
		DataDir      string   `yaml:"dataDir"`
		MaxUploadMB  int      `yaml:"maxUploadMB"`
		RateLimitRPM int      `yaml:"rateLimitRPM"`
	} `yaml:"server"`
	Credentials struct {
		Store       string `yaml:"store"`
		SQLitePath  string `yaml:"sqlitePath"`
		DatabaseURL string `yaml:"databaseURL"`
	} `yaml:"credentials"`
	ObjectStore struct {
		Type     string `yaml:"type"`
		LocalDir string `yaml:"localDir"`
		S3       struct {
			Region   string `yaml:"region"`
			Bucket   string `yaml:"bucket"`
			Prefix   string `yaml:"prefix"`
			KMSKeyID string `yaml:"kmsKeyID"`
		} `yaml:"s3"`
		Minio struct {
			Endpoint  string `yaml:"endpoint"`
			AccessKey string `yaml:"accessKey"`
			SecretKey string `yaml:"secretKey"`
			Bucket    string `yaml:"bucket"`
			UseSSL    *bool  `yaml:"useSSL"`
		} `yaml:"minio"`
	} `yaml:"objectStore"`
	LLM struct {
		DefaultModel     string `yaml:"defaultModel"`
		TimeoutSeconds   int    `yaml:"timeoutSeconds"`
		GeminiBaseURL    string `yaml:"geminiBaseURL"`
		AnthropicBaseURL string `yaml:"anthropicBaseURL"`
		OpenAIBaseURL    string `yaml:"openaiBaseURL"`
	} `yaml:"llm"`
	OCR struct {
		PdftoppmPath string `yaml:"pdftoppmPath"`
		Language     string `yaml:"language"`
	} `yaml:"ocr"`
}

func loadYAMLFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseYAML(data)
}

func parseYAML(data []byte) (map[string]string, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return fc.values(), nil
}

func (fc fileConfig) values() map[string]string {
	out := map[string]string{}
	set := func(key, val string) {
		if v := strings.TrimSpace(val); v != "" {
			out[key] = v
		}
	}
	setInt := func(key string, val int) {
		if val > 0 {
			out[key] = strconv.Itoa(val)
		}
	}

	set("PORT", fc.Server.Port)
	set("ENV", fc.Server.Env)
	set("CORS_ALLOW_ORIGINS", strings.Join(fc.Server.CORSOrigins, ","))
	set("DATA_DIR", fc.Server.DataDir)
	setInt("MAX_UPLOAD_MB", fc.Server.MaxUploadMB)
	setInt("RATE_LIMIT_RPM", fc.Server.RateLimitRPM)

	set("CREDENTIAL_STORE", fc.Credentials.Store)
	set("SQLITE_PATH", fc.Credentials.SQLitePath)
	set("DATABASE_URL", fc.Credentials.DatabaseURL)

	set("OBJECT_STORE", fc.ObjectStore.Type)
	set("LOCAL_STORE_DIR", fc.ObjectStore.LocalDir)
	set("AWS_REGION", fc.ObjectStore.S3.Region)
	set("S3_BUCKET", fc.ObjectStore.S3.Bucket)
	set("S3_PREFIX", fc.ObjectStore.S3.Prefix)
	set("S3_SSE_KMS_KEY_ID", fc.ObjectStore.S3.KMSKeyID)
	set("MINIO_ENDPOINT", fc.ObjectStore.Minio.Endpoint)
	set("MINIO_ACCESS_KEY", fc.ObjectStore.Minio.AccessKey)
	set("MINIO_SECRET_KEY", fc.ObjectStore.Minio.SecretKey)
	set("MINIO_BUCKET", fc.ObjectStore.Minio.Bucket)
	if fc.ObjectStore.Minio.UseSSL != nil {
		out["MINIO_USE_SSL"] = strconv.FormatBool(*fc.ObjectStore.Minio.UseSSL)
	}

	set("DEFAULT_MODEL", fc.LLM.DefaultModel)
	setInt("LLM_TIMEOUT_SECONDS", fc.LLM.TimeoutSeconds)
	set("GEMINI_BASE_URL", fc.LLM.GeminiBaseURL)
	set("ANTHROPIC_BASE_URL", fc.LLM.AnthropicBaseURL)
	set("OPENAI_BASE_URL", fc.LLM.OpenAIBaseURL)

	set("PDFTOPPM_PATH", fc.OCR.PdftoppmPath)
	set("TESSERACT_LANG", fc.OCR.Language)
	return out
}
