package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultAPIBaseURL = "https://api.carta.menu/v1"
	defaultDBPath     = "carta.db"
	defaultLogPath    = "carta.log"
	defaultLogLevel   = "info"
	defaultDwell      = 4 * time.Second
	defaultFrame      = 16 * time.Millisecond
)

// Config holds runtime settings for the viewer.
type Config struct {
	APIBaseURL   string        `koanf:"api_base_url"`
	Slug         string        `koanf:"slug"`
	Username     string        `koanf:"username"`
	Password     string        `koanf:"password"`
	DBPath       string        `koanf:"db_path"`
	MenuURL      string        `koanf:"menu_url"`
	LogPath      string        `koanf:"log_path"`
	LogLevel     string        `koanf:"log_level"`
	Tags         []string      `koanf:"tags"`
	Dwell        time.Duration `koanf:"dwell"`
	Frame        time.Duration `koanf:"frame"`
	InlineImages *bool         `koanf:"inline_images"`
}

// LoadFromEnv reads .env, then the TOML config files, then the process
// environment. Later sources win.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return load(configPaths())
}

func load(paths []string) (Config, error) {
	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configPaths() []string {
	paths := []string{}
	if path, err := xdg.SearchConfigFile(filepath.Join("carta", "config.toml")); err == nil {
		paths = append(paths, path)
	}
	return append(paths, "carta.toml")
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString("CARTA_API_BASE_URL", &c.APIBaseURL)
	setString("CARTA_SLUG", &c.Slug)
	setString("CARTA_USERNAME", &c.Username)
	setString("CARTA_PASSWORD", &c.Password)
	setString("CARTA_DB_PATH", &c.DBPath)
	setString("CARTA_MENU_URL", &c.MenuURL)
	setString("CARTA_LOG_PATH", &c.LogPath)
	setString("CARTA_LOG_LEVEL", &c.LogLevel)

	if v := os.Getenv("CARTA_TAGS"); v != "" {
		c.Tags = splitList(v)
	}
	for key, dst := range map[string]*time.Duration{"CARTA_DWELL": &c.Dwell, "CARTA_FRAME": &c.Frame} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s must be a duration: %w", key, err)
		}
		*dst = d
	}
	if v := os.Getenv("CARTA_INLINE_IMAGES"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CARTA_INLINE_IMAGES must be a boolean: %w", err)
		}
		c.InlineImages = &on
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}
	if c.LogPath == "" {
		c.LogPath = defaultLogPath
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Dwell == 0 {
		c.Dwell = defaultDwell
	}
	if c.Frame == 0 {
		c.Frame = defaultFrame
	}
	c.Slug = strings.TrimSpace(c.Slug)
	c.Tags = splitList(strings.Join(c.Tags, ","))
}

// ImagesEnabled reports whether card previews are drawn with chafa.
func (c Config) ImagesEnabled() bool {
	return c.InlineImages == nil || *c.InlineImages
}

// HasCredentials reports whether a sign-in should be attempted at startup.
func (c Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

func (c Config) Validate() error {
	if c.Slug == "" {
		return errors.New("CARTA_SLUG is required")
	}
	if c.APIBaseURL == "" {
		return errors.New("APIBaseURL is required")
	}
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if c.APIBaseURL[len(c.APIBaseURL)-1] == '/' {
		return fmt.Errorf("APIBaseURL must not end with '/': %s", c.APIBaseURL)
	}
	if (c.Username == "") != (c.Password == "") {
		return errors.New("CARTA_USERNAME and CARTA_PASSWORD must be set together")
	}
	if c.Dwell <= 0 {
		return fmt.Errorf("Dwell must be positive: %s", c.Dwell)
	}
	if c.Frame <= 0 {
		return fmt.Errorf("Frame must be positive: %s", c.Frame)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LogLevel must be debug, info, warn or error: %s", c.LogLevel)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
