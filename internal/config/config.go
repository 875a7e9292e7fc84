package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// StorageBackend selects the blob store: "memory", "sqlite", "s3"
	// or "firestore".
	StorageBackend string

	CacheSize        int
	TokenLimit       int
	SystemPromptFile string
	StaticDir        string

	ModelName  string
	UseMockLLM bool

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool

	GCPProjectID string

	SQLitePath string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid integer for %s: %q, using %d", key, v, def)
		return def
	}
	return n
}

// Load reads the environment (a .env file is honored when present) and
// builds the config.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("LUGIA_PORT", "8000"),

		StorageBackend: getEnv("LUGIA_STORAGE_BACKEND", "memory"),

		CacheSize:        getIntEnv("LUGIA_CACHE_SIZE", 1000),
		TokenLimit:       getIntEnv("LUGIA_TOKEN_LIMIT", 8182),
		SystemPromptFile: getEnv("LUGIA_SYSTEM_PROMPT_FILE", "system_prompt.txt"),
		StaticDir:        getEnv("LUGIA_STATIC_DIR", ""),

		ModelName:  getEnv("LUGIA_MODEL_NAME", "gpt-4"),
		UseMockLLM: getBoolEnv("LUGIA_USE_MOCK_LLM", false),

		S3Endpoint:  getEnv("LUGIA_S3_ENDPOINT", "s3.fr-par.scw.cloud"),
		S3Region:    getEnv("LUGIA_S3_REGION", "fr-par"),
		S3Bucket:    getEnv("LUGIA_S3_BUCKET", "lugia"),
		S3AccessKey: getEnv("LUGIA_ACCESS_KEY_ID", ""),
		S3SecretKey: getEnv("LUGIA_SECRET_KEY", ""),
		S3UseSSL:    getBoolEnv("LUGIA_S3_USE_SSL", true),

		GCPProjectID: getEnv("LUGIA_GCP_PROJECT", ""),

		SQLitePath: getEnv("LUGIA_SQLITE_PATH", "lugia.db"),
	}

	switch cfg.StorageBackend {
	case "s3":
		if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
			log.Fatal("LUGIA_ACCESS_KEY_ID and LUGIA_SECRET_KEY must be set for the s3 backend")
		}
	case "firestore":
		if cfg.GCPProjectID == "" {
			log.Fatal("LUGIA_GCP_PROJECT must be set for the firestore backend")
		}
	}

	return cfg
}
