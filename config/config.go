package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port          string
	Timezone      string
	DBPath        string
	SessionSecret string
	LLMEndpoint   string
	LLMAPIKey     string
	LLMModel      string
	PromptDir     string
	UploadFolder  string
	MaxUploadMB   int
	LogMode       string
	StrictAuth    bool
}

func Load() AppConfig {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("[cfg] No .env file found or error loading: %v", err)
	}

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	maxUpload, err := strconv.Atoi(get("MAX_UPLOAD_MB", "16"))
	if err != nil {
		maxUpload = 16
	}
	cfg := AppConfig{
		Port:          get("PORT", "8080"),
		Timezone:      get("TZ", "Asia/Shanghai"),
		DBPath:        get("DB_PATH", "nolabor.db"),
		SessionSecret: get("SESSION_SECRET", "dev-session-secret-change-me"),
		LLMEndpoint:   get("LLM_ENDPOINT", "https://api.openai.com/v1"),
		LLMAPIKey:     get("LLM_API_KEY", ""),
		LLMModel:      get("LLM_MODEL", "gpt-4o-mini"),
		PromptDir:     get("PROMPT_DIR", "prompts"),
		UploadFolder:  get("UPLOAD_FOLDER", "uploads"),
		MaxUploadMB:   maxUpload,
		LogMode:       get("LOG_MODE", "dev"),
		StrictAuth:    get("STRICT_AUTH", "false") == "true",
	}
	log.Printf("[cfg] port=%s db=%s llm_endpoint=%s llm_model=%s", cfg.Port, cfg.DBPath, cfg.LLMEndpoint, cfg.LLMModel)
	return cfg
}
