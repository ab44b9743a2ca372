package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where memwallet stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Persona is the default persona used when a request names none
	Persona string
	// SecretKey is the hex-encoded key for card text encryption at rest.
	// When empty it is loaded from (or generated into) <Data>/secret.key.
	SecretKey string
	// JWTSecret signs API access tokens. When empty the API runs unauthenticated,
	// which is only acceptable on a loopback bind.
	JWTSecret string

	// AI configuration
	AIEnabled        bool   // MEMWALLET_AI_ENABLED (legacy: AI_ENABLED)
	AIOpenAIAPIKey   string // MEMWALLET_OPENAI_API_KEY (legacy: OPENAI_API_KEY)
	AIOpenAIBaseURL  string // MEMWALLET_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AIChatModel      string // MEMWALLET_AI_CHAT_MODEL (default: gpt-4o-mini)
	AIEmbeddingModel string // MEMWALLET_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIOpenAIAPIKey != ""
}

// FromEnv loads configuration from environment variables.
// Supports both MEMWALLET_* (new) and bare legacy names used by early deployments.
func (p *Profile) FromEnv() {
	// Helper to get env value with legacy fallback.
	// Skips empty values to allow defaults to take effect.
	getEnvWithFallback := func(newKey, legacyKey string) string {
		if val := os.Getenv(newKey); val != "" {
			return val
		}
		return os.Getenv(legacyKey)
	}

	getEnvWithDefault := func(newKey, legacyKey, defaultValue string) string {
		if val := getEnvWithFallback(newKey, legacyKey); val != "" {
			return val
		}
		return defaultValue
	}

	getBoolEnvWithFallback := func(newKey, legacyKey string) bool {
		return getEnvWithFallback(newKey, legacyKey) == "true"
	}

	if p.Addr == "" {
		p.Addr = getEnvWithDefault("MEMWALLET_ADDR", "ROUTER_HOST", "127.0.0.1")
	}
	if p.Port == 0 {
		if port, err := strconv.Atoi(getEnvWithDefault("MEMWALLET_PORT", "ROUTER_PORT", "8787")); err == nil {
			p.Port = port
		}
	}
	if p.Data == "" {
		p.Data = getEnvWithFallback("MEMWALLET_DATA", "WALLET_PATH")
	}
	if p.Driver == "" {
		p.Driver = getEnvWithDefault("MEMWALLET_DRIVER", "WALLET_DRIVER", "sqlite")
	}
	if p.DSN == "" {
		p.DSN = getEnvWithFallback("MEMWALLET_DSN", "WALLET_DSN")
	}
	if p.Persona == "" {
		p.Persona = getEnvWithDefault("MEMWALLET_PERSONA", "DEFAULT_PERSONA", "Personal")
	}
	if p.SecretKey == "" {
		p.SecretKey = getEnvWithFallback("MEMWALLET_SECRET_KEY", "WALLET_KEY")
	}
	if p.JWTSecret == "" {
		p.JWTSecret = getEnvWithFallback("MEMWALLET_JWT_SECRET", "ROUTER_JWT_SECRET")
	}

	p.AIEnabled = getBoolEnvWithFallback("MEMWALLET_AI_ENABLED", "AI_ENABLED")
	p.AIOpenAIAPIKey = getEnvWithFallback("MEMWALLET_OPENAI_API_KEY", "OPENAI_API_KEY")
	p.AIOpenAIBaseURL = getEnvWithDefault("MEMWALLET_OPENAI_BASE_URL", "OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.AIChatModel = getEnvWithDefault("MEMWALLET_AI_CHAT_MODEL", "AI_CHAT_MODEL", "gpt-4o-mini")
	p.AIEmbeddingModel = getEnvWithDefault("MEMWALLET_AI_EMBEDDING_MODEL", "AI_EMBEDDING_MODEL", "text-embedding-3-small")
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

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "memwallet")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/memwallet"
		}
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("memwallet_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	if p.JWTSecret == "" && p.Addr != "127.0.0.1" && p.Addr != "localhost" && p.Addr != "" {
		slog.Warn("api runs unauthenticated on a non-loopback address", slog.String("addr", p.Addr))
	}

	return nil
}
