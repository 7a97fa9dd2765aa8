package config

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Events backends.
const (
	EventsNone   = "none"
	EventsMySQL  = "mysql"
	EventsSQLite = "sqlite"
)

// Config holds runtime configuration for the dashboard service.
type Config struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	UpstreamURL     string
	UpstreamTimeout time.Duration

	EventsBackend  string
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBConnTimeout  time.Duration
	DBQueryTimeout time.Duration
	EventsTable    string
	SQLitePath     string

	ShowMoreAfter    int
	MonthCatalogFile string
}

// fileConfig is the YAML form of the settings. Every key maps onto one APP_*
// variable; the environment always wins over the file.
type fileConfig struct {
	ListenAddr         string `yaml:"listen_addr"`
	ReadTimeoutSec     int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec    int    `yaml:"write_timeout_sec"`
	ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec"`
	Log                struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Upstream struct {
		URL        string `yaml:"url"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"upstream"`
	Events struct {
		Backend         string `yaml:"backend"`
		Table           string `yaml:"table"`
		SQLitePath      string `yaml:"sqlite_path"`
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		User            string `yaml:"user"`
		Password        string `yaml:"password"`
		Name            string `yaml:"name"`
		ConnTimeoutSec  int    `yaml:"conn_timeout_sec"`
		QueryTimeoutSec int    `yaml:"query_timeout_sec"`
	} `yaml:"events"`
	UI struct {
		ShowMoreAfter    int    `yaml:"show_more_after"`
		MonthCatalogFile string `yaml:"month_catalog_file"`
	} `yaml:"ui"`
}

// FromEnv loads configuration from environment variables with sensible defaults.
func FromEnv() Config {
	loadConfigDefaultsFromFile()
	loadSecretsDefaultsFromFile()

	return Config{
		ListenAddr:       getEnv("APP_LISTEN_ADDR", ":8080"),
		ReadTimeout:      time.Duration(getEnvInt("APP_READ_TIMEOUT_SEC", 10)) * time.Second,
		WriteTimeout:     time.Duration(getEnvInt("APP_WRITE_TIMEOUT_SEC", 20)) * time.Second,
		ShutdownTimeout:  time.Duration(getEnvInt("APP_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		LogLevel:         getEnv("APP_LOG_LEVEL", "info"),
		LogFormat:        getEnv("APP_LOG_FORMAT", "console"),
		UpstreamURL:      getEnv("APP_UPSTREAM_URL", ""),
		UpstreamTimeout:  time.Duration(getEnvInt("APP_UPSTREAM_TIMEOUT_SEC", 5)) * time.Second,
		EventsBackend:    strings.ToLower(getEnv("APP_EVENTS_BACKEND", EventsNone)),
		DBHost:           getEnv("APP_DB_HOST", "127.0.0.1"),
		DBPort:           getEnvInt("APP_DB_PORT", 3306),
		DBUser:           getEnv("APP_DB_USER", "uptime"),
		DBPassword:       getEnv("APP_DB_PASSWORD", ""),
		DBName:           getEnv("APP_DB_NAME", "uptime"),
		DBConnTimeout:    time.Duration(getEnvInt("APP_DB_CONN_TIMEOUT_SEC", 5)) * time.Second,
		DBQueryTimeout:   time.Duration(getEnvInt("APP_DB_QUERY_TIMEOUT_SEC", 10)) * time.Second,
		EventsTable:      getEnv("APP_EVENTS_TABLE", "base_networkevent"),
		SQLitePath:       getEnv("APP_SQLITE_PATH", ""),
		ShowMoreAfter:    getEnvInt("APP_SHOW_MORE_AFTER", 10),
		MonthCatalogFile: getEnv("APP_MONTH_CATALOG_FILE", ""),
	}
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.EventsBackend {
	case EventsNone, EventsMySQL:
	case EventsSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("APP_SQLITE_PATH required for events backend %q", c.EventsBackend)
		}
	default:
		return fmt.Errorf("unknown events backend %q (want none, mysql or sqlite)", c.EventsBackend)
	}
	if !validTableName(c.EventsTable) {
		return fmt.Errorf("invalid events table name %q", c.EventsTable)
	}
	if c.UpstreamURL != "" {
		u, err := url.Parse(c.UpstreamURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid APP_UPSTREAM_URL %q", c.UpstreamURL)
		}
	}
	if c.ShowMoreAfter < 0 {
		return fmt.Errorf("APP_SHOW_MORE_AFTER must not be negative")
	}
	return nil
}

func validTableName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

func loadConfigDefaultsFromFile() {
	if explicit := strings.TrimSpace(os.Getenv("APP_CONFIG_FILE")); explicit != "" {
		_ = applyYAMLDefaultsFromFile(absPath(explicit))
	}

	candidates := []string{
		"./uptime-dashboard.env",
		"/etc/default/uptime-dashboard",
		"/etc/uptime-dashboard/config.env",
	}
	for _, candidate := range candidates {
		_ = applyEnvDefaultsFromFile(absPath(candidate))
	}
}

func loadSecretsDefaultsFromFile() {
	candidates := make([]string, 0, 3)
	if explicit := strings.TrimSpace(os.Getenv("APP_SECRETS_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	if credDir := strings.TrimSpace(os.Getenv("CREDENTIALS_DIRECTORY")); credDir != "" {
		credName := strings.TrimSpace(os.Getenv("APP_SECRETS_CREDENTIAL_NAME"))
		if credName == "" {
			credName = "app-secrets"
		}
		candidates = append(candidates, filepath.Join(credDir, credName))
	}
	candidates = append(candidates, "/etc/uptime-dashboard/secrets.env")
	for _, candidate := range candidates {
		if err := applyEnvDefaultsFromFile(candidate); err == nil {
			return
		}
	}
}

func absPath(candidate string) string {
	if filepath.IsAbs(candidate) {
		return candidate
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, candidate)
	}
	return candidate
}

// applyYAMLDefaultsFromFile reads a YAML config and exports its non-zero
// values as APP_* defaults.
func applyYAMLDefaultsFromFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	setDefault("APP_LISTEN_ADDR", fc.ListenAddr)
	setDefaultInt("APP_READ_TIMEOUT_SEC", fc.ReadTimeoutSec)
	setDefaultInt("APP_WRITE_TIMEOUT_SEC", fc.WriteTimeoutSec)
	setDefaultInt("APP_SHUTDOWN_TIMEOUT_SEC", fc.ShutdownTimeoutSec)
	setDefault("APP_LOG_LEVEL", fc.Log.Level)
	setDefault("APP_LOG_FORMAT", fc.Log.Format)
	setDefault("APP_UPSTREAM_URL", fc.Upstream.URL)
	setDefaultInt("APP_UPSTREAM_TIMEOUT_SEC", fc.Upstream.TimeoutSec)
	setDefault("APP_EVENTS_BACKEND", fc.Events.Backend)
	setDefault("APP_EVENTS_TABLE", fc.Events.Table)
	setDefault("APP_SQLITE_PATH", fc.Events.SQLitePath)
	setDefault("APP_DB_HOST", fc.Events.Host)
	setDefaultInt("APP_DB_PORT", fc.Events.Port)
	setDefault("APP_DB_USER", fc.Events.User)
	setDefault("APP_DB_PASSWORD", fc.Events.Password)
	setDefault("APP_DB_NAME", fc.Events.Name)
	setDefaultInt("APP_DB_CONN_TIMEOUT_SEC", fc.Events.ConnTimeoutSec)
	setDefaultInt("APP_DB_QUERY_TIMEOUT_SEC", fc.Events.QueryTimeoutSec)
	setDefaultInt("APP_SHOW_MORE_AFTER", fc.UI.ShowMoreAfter)
	setDefault("APP_MONTH_CATALOG_FILE", fc.UI.MonthCatalogFile)
	return nil
}

func applyEnvDefaultsFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if key == "" {
			continue
		}

		if len(val) >= 2 {
			if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
				val = val[1 : len(val)-1]
			}
		}

		setDefault(key, val)
	}

	return scanner.Err()
}

func setDefault(key, val string) {
	if val == "" {
		return
	}
	if os.Getenv(key) == "" {
		_ = os.Setenv(key, val)
	}
}

func setDefaultInt(key string, val int) {
	if val == 0 {
		return
	}
	setDefault(key, strconv.Itoa(val))
}

// MySQLDSN returns a mysql driver DSN with safe defaults for TCP access.
func (c Config) MySQLDSN() string {
	params := url.Values{}
	params.Set("parseTime", "true")
	params.Set("loc", "UTC")
	params.Set("timeout", c.DBConnTimeout.String())
	params.Set("readTimeout", c.DBQueryTimeout.String())
	params.Set("writeTimeout", c.DBQueryTimeout.String())
	params.Set("charset", "utf8mb4")
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, params.Encode())
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}
