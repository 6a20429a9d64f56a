// Package config reads settings from the environment, optionally seeded
// from a .env file. Command-line flags override what is loaded here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server configures the inventaire server.
type Server struct {
	DBPath    string
	Addr      string
	AdminUser string
	LogPath   string
	LogLevel  string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	TokenPurgePeriod  time.Duration
}

// Import configures the import command.
type Import struct {
	APIURL      string
	Token       string
	User        string
	Password    string
	LogPath     string
	LogLevel    string
	HTTPTimeout time.Duration

	MaxAttempts int
	BackoffBase time.Duration
	PassDelay   time.Duration
	HoldDelay   time.Duration
}

// LoadEnv loads variables from the given files, or from .env when none are
// given. Missing files are skipped and variables already set win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// LoadServer reads the INVENTAIRE_* server settings.
func LoadServer() Server {
	return Server{
		DBPath:            getEnv("INVENTAIRE_DB", "inventaire.sqlite3"),
		Addr:              getEnv("INVENTAIRE_ADDR", ":8080"),
		AdminUser:         getEnv("INVENTAIRE_ADMIN", "admin"),
		LogPath:           os.Getenv("INVENTAIRE_LOG"),
		LogLevel:          getEnv("INVENTAIRE_LOG_LEVEL", "info"),
		ReadHeaderTimeout: getEnvSeconds("INVENTAIRE_READ_HEADER_TIMEOUT_SEC", 10),
		ReadTimeout:       getEnvSeconds("INVENTAIRE_READ_TIMEOUT_SEC", 30),
		WriteTimeout:      getEnvSeconds("INVENTAIRE_WRITE_TIMEOUT_SEC", 60),
		IdleTimeout:       getEnvSeconds("INVENTAIRE_IDLE_TIMEOUT_SEC", 120),
		ShutdownTimeout:   getEnvSeconds("INVENTAIRE_SHUTDOWN_TIMEOUT_SEC", 5),
		TokenPurgePeriod:  time.Duration(getEnvInt("INVENTAIRE_TOKEN_PURGE_MIN", 60)) * time.Minute,
	}
}

// LoadImport reads the INVENTAIRE_* import settings. Retry and delay defaults
// match the importer's.
func LoadImport() Import {
	return Import{
		APIURL:      getEnv("INVENTAIRE_API_URL", "http://localhost:8080"),
		Token:       os.Getenv("INVENTAIRE_TOKEN"),
		User:        os.Getenv("INVENTAIRE_USER"),
		Password:    os.Getenv("INVENTAIRE_PASSWORD"),
		LogPath:     os.Getenv("INVENTAIRE_LOG"),
		LogLevel:    getEnv("INVENTAIRE_LOG_LEVEL", "warn"),
		HTTPTimeout: getEnvSeconds("INVENTAIRE_HTTP_TIMEOUT_SEC", 30),
		MaxAttempts: getEnvInt("INVENTAIRE_IMPORT_MAX_ATTEMPTS", 3),
		BackoffBase: getEnvMillis("INVENTAIRE_IMPORT_BACKOFF_MS", 400),
		PassDelay:   getEnvMillis("INVENTAIRE_IMPORT_PASS_DELAY_MS", 1000),
		HoldDelay:   getEnvMillis("INVENTAIRE_IMPORT_HOLD_MS", 5000),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

func getEnvMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Millisecond
}
