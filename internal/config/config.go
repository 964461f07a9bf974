package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Pipeline PipelineConfig
	Ai       AIConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	UploadDir          string
}

type DatabaseConfig struct {
	Connection string
}

// PipelineConfig carries the knobs of the context and streaming pipeline.
type PipelineConfig struct {
	SectionLines         int
	SplitThreshold       int
	GroupWords           int
	PaceDelayMs          int
	IncludeSpeaker       bool
	IncludeTimestamp     bool
	MandatoryAttribution bool
	PromptTemplate       string // deployment-wide instruction template override
	DocumentTopic        string
}

type AIConfig struct {
	LLMProvider   string // "ollama" or "gemini"
	LLMModel      string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL string
}

type APIKeys struct {
	GoogleGemini string
	Slack        string
	Asana        string
	Monday       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Pipeline: PipelineConfig{
			SectionLines:         getEnvAsInt("CONTEXT_SECTION_LINES", 50),
			SplitThreshold:       getEnvAsInt("STREAM_SPLIT_THRESHOLD", 60),
			GroupWords:           getEnvAsInt("STREAM_GROUP_WORDS", 4),
			PaceDelayMs:          getEnvAsInt("STREAM_PACE_DELAY_MS", 30),
			IncludeSpeaker:       getEnvAsBool("CONTEXT_INCLUDE_SPEAKER", true),
			IncludeTimestamp:     getEnvAsBool("CONTEXT_INCLUDE_TIMESTAMP", true),
			MandatoryAttribution: getEnvAsBool("CITATION_MANDATORY", false),
			PromptTemplate:       getEnv("PROMPT_TEMPLATE", ""),
			DocumentTopic:        getEnv("DOCUMENT_CHANGED_TOPIC_NAME", "DOCUMENT_CHANGED"),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Slack:        getEnv("SLACK_BOT_TOKEN", ""),
			Asana:        getEnv("ASANA_ACCESS_TOKEN", ""),
			Monday:       getEnv("MONDAY_API_TOKEN", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
