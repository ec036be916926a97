package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultUser        = "geekaven"
	defaultAPIURL      = "https://api.bgm.tv"
	defaultMirrorURL   = "https://bgm-subject.tawawa.moe"
	defaultDataDir     = "src/data"
	defaultPublicDir   = "public"
	defaultAddr        = ":8080"
	defaultPageSize    = 100
	defaultHTTPTimeout = 30 * time.Second
)

// Config carries every setting the scraper and the api server read.
type Config struct {
	User      string
	APIURL    string
	MirrorURL string
	DataDir   string
	PublicDir string
	Addr      string
	DBPath    string // empty disables the subject catalog and run ledger

	PageSize     int
	HTTPTimeout  time.Duration
	FetchRetries int
	LogLevel     string
}

// LoadConfig reads .env (when present) and then the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		User:         getEnv("BANGUMI_USER", defaultUser),
		APIURL:       strings.TrimRight(getEnv("BANGUMI_API_URL", defaultAPIURL), "/"),
		MirrorURL:    strings.TrimRight(getEnv("BANGUMI_MIRROR_URL", defaultMirrorURL), "/"),
		DataDir:      getEnv("BANGUMI_DATA_DIR", defaultDataDir),
		PublicDir:    getEnv("BANGUMI_PUBLIC_DIR", defaultPublicDir),
		Addr:         getEnv("BANGUMI_ADDR", defaultAddr),
		DBPath:       defaultDBPath(),
		PageSize:     getEnvInt("BANGUMI_PAGE_SIZE", defaultPageSize),
		HTTPTimeout:  getEnvDuration("BANGUMI_HTTP_TIMEOUT", defaultHTTPTimeout),
		FetchRetries: getEnvInt("BANGUMI_FETCH_RETRIES", 0),
		LogLevel:     getEnv("BANGUMI_LOG_LEVEL", "info"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.User) == "" {
		return errors.New("bangumi user is required")
	}
	if c.APIURL == "" {
		return errors.New("api url is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("invalid page size: %d", c.PageSize)
	}
	if c.FetchRetries < 0 {
		return fmt.Errorf("invalid fetch retries: %d", c.FetchRetries)
	}
	return nil
}

// defaultDBPath honours BANGUMI_DB_PATH, including an explicit empty value.
func defaultDBPath() string {
	if p, ok := os.LookupEnv("BANGUMI_DB_PATH"); ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".bangumi", "data.db")
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getEnvDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
