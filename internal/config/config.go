package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const defaultPreamble = "#extension GL_GOOGLE_include_directive : require\n"

// Config holds process-wide settings for the language server core. It has no
// DatabaseURL or embedding-model knobs: this system keeps no persistent
// cache and does no semantic analysis.
type Config struct {
	WorkspaceRoot string
	Vendor        string
	Preamble      string
	LogLevel      string
	ServerPort    string
}

func Load() (*Config, error) {
	// .env is optional; environment variables take precedence
	_ = godotenv.Load()

	cfg := &Config{
		WorkspaceRoot: getEnvDefault("MCGLSL_WORKSPACE_ROOT", "."),
		Vendor:        getEnvDefault("MCGLSL_VENDOR", "NVIDIA Corporation"),
		Preamble:      getEnvDefault("MCGLSL_PREAMBLE", defaultPreamble),
		LogLevel:      getEnvDefault("MCGLSL_LOG_LEVEL", "info"),
		ServerPort:    getEnvDefault("MCGLSL_MCP_PORT", "8080"),
	}

	if cfg.WorkspaceRoot == "" {
		return nil, fmt.Errorf("MCGLSL_WORKSPACE_ROOT is required")
	}

	return cfg, nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
