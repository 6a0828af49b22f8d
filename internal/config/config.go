package config

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL          = "http://127.0.0.1:7333"
	DefaultDBFileName      = ".blogdesk.db"
	DefaultLogLevel        = "info"
	DefaultRefreshInterval = "30s"
	configFileName         = ".blogdesk.toml"

	DefaultUploadMaxBytes        int64 = 10 * 1024 * 1024
	DefaultUploadMultipartMemory int64 = 8 * 1024 * 1024

	configDirEnvKey          = "BLOGDESK_CONFIG_DIR"
	trustProjectConfigEnvKey = "BLOGDESK_TRUST_PROJECT_CONFIG"
	envFileEnvKey            = "BLOGDESK_ENV_FILE"

	uploadAllowedMediaTypesEnvKey = "BLOGDESK_UPLOAD_ALLOWED_MEDIA_TYPES"
)

// DefaultAllowedImageTypes are the cover image media types accepted by the server.
var DefaultAllowedImageTypes = []string{"image/gif", "image/jpeg", "image/png", "image/svg+xml", "image/webp"}

// UploadConfig defines runtime configuration for cover image uploads.
type UploadConfig struct {
	MaxUploadBytes     int64    `toml:"max_upload_bytes"`
	MultipartMaxMemory int64    `toml:"multipart_max_memory"`
	AllowedMediaTypes  []string `toml:"allowed_media_types"`
}

// Config defines runtime configuration for blogdesk.
type Config struct {
	APIURL                   string       `toml:"api_url"`
	DBPath                   string       `toml:"db_path"`
	APIToken                 string       `toml:"api_token"`
	LogLevel                 string       `toml:"log_level"`
	RefreshInterval          string       `toml:"refresh_interval"`
	UsersFile                string       `toml:"users_file"`
	ImagesDir                string       `toml:"images_dir"`
	ListenRemote             bool         `toml:"listen_remote"`
	Uploads                  UploadConfig `toml:"uploads"`
	TrustedProjectConfigPath string       `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:          DefaultAPIURL,
		DBPath:          "",
		LogLevel:        DefaultLogLevel,
		RefreshInterval: DefaultRefreshInterval,
		Uploads: UploadConfig{
			MaxUploadBytes:     DefaultUploadMaxBytes,
			MultipartMaxMemory: DefaultUploadMultipartMemory,
			AllowedMediaTypes:  append([]string(nil), DefaultAllowedImageTypes...),
		},
	}
}

// RefreshEvery returns the feed refresh interval, falling back to the
// default for unparsable or non-positive values.
func (c *Config) RefreshEvery() time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(c.RefreshInterval)); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultRefreshInterval)
	return d
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

// loadDotEnv exports variables from a .env file without overriding the
// ones already set in the process environment.
func loadDotEnv() error {
	path := strings.TrimSpace(os.Getenv(envFileEnvKey))
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil
		}
		path = filepath.Join(cwd, ".env")
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"api_url",
	"db_path",
	"api_token",
	"log_level",
	"refresh_interval",
	"users_file",
	"images_dir",
	"listen_remote",
	"uploads.max_upload_bytes",
	"uploads.multipart_max_memory",
	"uploads.allowed_media_types",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "api_token":
		return c.APIToken, nil
	case "log_level":
		return c.LogLevel, nil
	case "refresh_interval":
		return c.RefreshInterval, nil
	case "users_file":
		return c.UsersFile, nil
	case "images_dir":
		return c.ImagesDir, nil
	case "listen_remote":
		return strconv.FormatBool(c.ListenRemote), nil
	case "uploads.max_upload_bytes":
		return strconv.FormatInt(c.Uploads.MaxUploadBytes, 10), nil
	case "uploads.multipart_max_memory":
		return strconv.FormatInt(c.Uploads.MultipartMaxMemory, 10), nil
	case "uploads.allowed_media_types":
		return strings.Join(c.Uploads.AllowedMediaTypes, ","), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	// The file may carry an API token.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads .env, then config from trusted files, and applies env overrides.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, configFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}

	if apiURL := os.Getenv("BLOGDESK_API_URL"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv("BLOGDESK_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if token := strings.TrimSpace(os.Getenv("BLOGDESK_API_TOKEN")); token != "" {
		cfg.APIToken = token
	}
	if usersFile := os.Getenv("BLOGDESK_USERS_FILE"); usersFile != "" {
		cfg.UsersFile = usersFile
	}
	if raw := strings.TrimSpace(os.Getenv(uploadAllowedMediaTypesEnvKey)); raw != "" {
		cfg.Uploads.AllowedMediaTypes = splitCSV(raw)
	}

	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if strings.TrimSpace(cfg.RefreshInterval) == "" {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.ImagesDir == "" && cfg.DBPath != "" {
		cfg.ImagesDir = filepath.Join(filepath.Dir(cfg.DBPath), ".blogdesk", "images")
	}
	cfg.normalizeUploadDefaults()

	return &cfg, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "uploads.max_upload_bytes", "uploads.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "listen_remote":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "refresh_interval":
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive duration such as 30s", key)
		}
		return value, nil
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			return strings.ToLower(value), nil
		}
		return nil, fmt.Errorf("%s must be one of debug, info, warn, error", key)
	case "uploads.allowed_media_types":
		return splitCSV(value), nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) normalizeUploadDefaults() {
	if c.Uploads.MaxUploadBytes <= 0 {
		c.Uploads.MaxUploadBytes = DefaultUploadMaxBytes
	}
	if c.Uploads.MultipartMaxMemory <= 0 {
		c.Uploads.MultipartMaxMemory = DefaultUploadMultipartMemory
	}
	c.Uploads.AllowedMediaTypes = normalizeConfiguredMediaTypes(c.Uploads.AllowedMediaTypes)
	if len(c.Uploads.AllowedMediaTypes) == 0 {
		c.Uploads.AllowedMediaTypes = append([]string(nil), DefaultAllowedImageTypes...)
	}
}

func normalizeConfiguredMediaTypes(rawValues []string) []string {
	if len(rawValues) == 0 {
		return nil
	}
	out := make([]string, 0, len(rawValues))
	seen := map[string]struct{}{}
	for _, raw := range rawValues {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parsed, _, err := mime.ParseMediaType(raw)
		if err != nil {
			continue
		}
		normalized := strings.ToLower(strings.TrimSpace(parsed))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
