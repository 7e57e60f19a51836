// Package config loads runtime settings from the environment. Every setting
// has a default; Validate reports all problems at once so a misconfigured
// deployment fails with one readable message.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Backend selection: memory or sqlite
	DataBackend string

	// SQLite
	SQLiteDBPath string

	// AMQP mirror events. Empty URL disables publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// AI collaborator. Empty API key disables the AI endpoints.
	AIAPIKey         string
	AIBaseURL        string
	AIModel          string
	AIReasoningModel string
	AITimeout        time.Duration

	// Mirror worker
	MirrorBatchSize int
	MirrorInterval  time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8081"),
		DataBackend: getEnv("DATA_BACKEND", "memory"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/sothuchi.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "sothuchi"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_transactions"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "SoThuChi"),

		AIAPIKey:         getEnv("AI_API_KEY", ""),
		AIBaseURL:        getEnv("AI_BASE_URL", ""),
		AIModel:          getEnv("AI_MODEL", "gemini-2.5-flash"),
		AIReasoningModel: getEnv("AI_REASONING_MODEL", "gemini-2.5-pro"),
		AITimeout:        getEnvDuration("AI_TIMEOUT", 60*time.Second),

		MirrorBatchSize: getEnvInt("MIRROR_BATCH_SIZE", 10),
		MirrorInterval:  getEnvDuration("MIRROR_INTERVAL", 30*time.Second),
	}
}

// Validate checks the configuration, collecting every problem before failing.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be 'memory' or 'sqlite'", c.DataBackend))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.AIAPIKey != "" {
		if c.AIModel == "" {
			problems = append(problems, "AI model cannot be empty when an API key is provided")
		}
		if c.AITimeout < time.Second || c.AITimeout > 10*time.Minute {
			problems = append(problems, fmt.Sprintf("invalid AI timeout %v: must be between 1s and 10m", c.AITimeout))
		}
	}

	if c.MirrorBatchSize < 1 || c.MirrorBatchSize > 1000 {
		problems = append(problems, fmt.Sprintf("invalid mirror batch size %d: must be between 1 and 1000", c.MirrorBatchSize))
	}
	if c.MirrorInterval < time.Second || c.MirrorInterval > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid mirror interval %v: must be between 1s and 24h", c.MirrorInterval))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
