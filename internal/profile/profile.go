package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Unified LLM configuration (OpenAI-compatible protocol).
	// All providers (groq, openai, deepseek, openrouter, ollama) use the same config.
	LLMProvider    string  // Provider identifier: groq, openai, deepseek, openrouter, ollama
	LLMAPIKey      string  // LLM API key
	LLMBaseURL     string  // LLM base URL (optional, has default per provider)
	LLMModel       string  // Model name: llama-3.3-70b-versatile, gpt-4o, deepseek-chat, etc.
	LLMTimeout     int     // LLM request timeout in seconds (default: 180)
	LLMMaxTokens   int     // Upper bound on completion tokens per call (default: 8192)
	LLMTemperature float64 // Sampling temperature (default: 0.6)
	LLMRateLimit   float64 // LLM requests per second across the whole process (default: 1)

	// Research search configuration
	SearchProvider string // duckduckgo (no key) or brave
	BraveAPIKey    string // required when SearchProvider is brave

	// Server configuration
	Mode    string // dev, demo, prod
	Addr    string
	Port    int
	Data    string
	Driver  string // sqlite, postgres
	DSN     string
	Version string
}

// Provider default configurations for the LLM client.
// Used when INKWELL_LLM_BASE_URL or INKWELL_LLM_MODEL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"groq": {
		BaseURL: "https://api.groq.com/openai/v1",
		Model:   "llama-3.3-70b-versatile",
	},
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "meta-llama/llama-3.3-70b-instruct",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsLLMConfigured returns true if an LLM API key is present. Ollama needs no key.
func (p *Profile) IsLLMConfigured() bool {
	return p.LLMAPIKey != "" || p.LLMProvider == "ollama"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float64 or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("INKWELL_LLM_PROVIDER", "groq")
	p.LLMAPIKey = getEnvOrDefault("INKWELL_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("INKWELL_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("INKWELL_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("INKWELL_LLM_TIMEOUT_SECONDS", 180)
	p.LLMMaxTokens = getEnvOrDefaultInt("INKWELL_LLM_MAX_TOKENS", 8192)
	p.LLMTemperature = getEnvOrDefaultFloat("INKWELL_LLM_TEMPERATURE", 0.6)
	p.LLMRateLimit = getEnvOrDefaultFloat("INKWELL_LLM_RATE_LIMIT", 1)

	if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
		slog.Warn("unknown LLM provider, using default: groq", "provider", p.LLMProvider)
		p.LLMProvider = "groq"
	}
	if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
		if p.LLMBaseURL == "" {
			p.LLMBaseURL = defaults.BaseURL
		}
		if p.LLMModel == "" {
			p.LLMModel = defaults.Model
		}
	}

	p.SearchProvider = getEnvOrDefault("INKWELL_SEARCH_PROVIDER", "duckduckgo")
	p.BraveAPIKey = getEnvOrDefault("INKWELL_SEARCH_BRAVE_API_KEY", "")
	if p.SearchProvider == "brave" && p.BraveAPIKey == "" {
		slog.Warn("brave search selected but no API key set, falling back to duckduckgo")
		p.SearchProvider = "duckduckgo"
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies.
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/inkwell"
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("inkwell_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
