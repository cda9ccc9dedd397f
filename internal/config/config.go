// Package config loads the viewer configuration from defaults, config/viewer.json, a .env
// file, VIEWER_* environment variables and command-line flags, in increasing priority.
// Viewer preferences toggled at runtime are stored separately in config/prefs.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	DefaultDir    = "config"
	ConfigName    = "viewer"
	PrefsFileName = "prefs.json"
	EnvPrefix     = "VIEWER"
)

type APIConfig struct {
	ServerURL   string `mapstructure:"serverUrl"`
	Institution int64  `mapstructure:"institution"`
	Token       string `mapstructure:"token"`
	User        string `mapstructure:"user"`
}

type ModelConfig struct {
	// ID selects a model record on the backend; its file URL and annotations are used.
	ID int64 `mapstructure:"id"`
	// URL overrides the asset location. Empty with ID 0 shows the placeholder.
	URL string `mapstructure:"url"`
}

type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// HeadlessConfig runs the viewer without a window for a fixed number of frames and
// writes a snapshot.
type HeadlessConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Hz        int    `mapstructure:"hz"`
	Frames    uint64 `mapstructure:"frames"`
	Snapshot  string `mapstructure:"snapshot"`
	Thumbnail string `mapstructure:"thumbnail"`
	ThumbSize int    `mapstructure:"thumbSize"`
}

// Config is the full viewer configuration.
type Config struct {
	LogLevel string         `mapstructure:"logLevel"`
	LogsDir  string         `mapstructure:"logsDir"`
	CacheDir string         `mapstructure:"cacheDir"`
	API      APIConfig      `mapstructure:"api"`
	Model    ModelConfig    `mapstructure:"model"`
	Window   WindowConfig   `mapstructure:"window"`
	Headless HeadlessConfig `mapstructure:"headless"`
	// Exec lists console commands run once the session is up.
	Exec []string `mapstructure:"exec"`
}

// SetDefaults registers every key with its default so env and flag overrides apply.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logsDir", "logs")
	v.SetDefault("cacheDir", "")

	v.SetDefault("api.serverUrl", "http://localhost:8000/api")
	v.SetDefault("api.institution", 1)
	v.SetDefault("api.token", "")
	v.SetDefault("api.user", "")

	v.SetDefault("model.id", 0)
	v.SetDefault("model.url", "")

	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.title", "Model Viewer")

	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.hz", 60)
	v.SetDefault("headless.frames", 120)
	v.SetDefault("headless.snapshot", "snapshot.png")
	v.SetDefault("headless.thumbnail", "")
	v.SetDefault("headless.thumbSize", 256)

	v.SetDefault("exec", []string{})
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"log-level":   "logLevel",
	"cache-dir":   "cacheDir",
	"api-url":     "api.serverUrl",
	"institution": "api.institution",
	"token":       "api.token",
	"user":        "api.user",
	"model-id":    "model.id",
	"model-url":   "model.url",
	"width":       "window.width",
	"height":      "window.height",
	"headless":    "headless.enabled",
	"hz":          "headless.hz",
	"frames":      "headless.frames",
	"snapshot":    "headless.snapshot",
	"thumbnail":   "headless.thumbnail",
	"thumb-size":  "headless.thumbSize",
	"exec":        "exec",
}

// Flags returns the command-line flags. Their defaults are placeholders; unset flags
// never override the config file.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("viewer", pflag.ContinueOnError)
	fs.String("config-dir", DefaultDir, "directory holding viewer.json and prefs.json")
	fs.String("log-level", "", "trace, debug, info, warn or error")
	fs.String("cache-dir", "", "keep downloaded models in this directory")
	fs.String("api-url", "", "backend base URL")
	fs.Int64("institution", 0, "institution id")
	fs.String("token", "", "bearer token")
	fs.String("user", "", "signed-in user name")
	fs.Int64("model-id", 0, "model id on the backend")
	fs.String("model-url", "", "model file URL or path; overrides the backend record")
	fs.Int("width", 0, "window width")
	fs.Int("height", 0, "window height")
	fs.Bool("headless", false, "render without a window and write a snapshot")
	fs.Int("hz", 0, "headless frame rate")
	fs.Uint64("frames", 0, "headless frame count")
	fs.String("snapshot", "", "headless snapshot PNG path")
	fs.String("thumbnail", "", "headless thumbnail PNG path")
	fs.Int("thumb-size", 0, "thumbnail width in pixels")
	fs.StringArray("exec", nil, "console command to run after start (repeatable)")
	return fs
}

// Load builds the configuration. fs may be nil; otherwise it must have been parsed.
func Load(v *viper.Viper, fs *pflag.FlagSet) (Config, error) {
	SetDefaults(v)

	dir := DefaultDir
	if fs != nil {
		if d, err := fs.GetString("config-dir"); err == nil && d != "" {
			dir = d
		}
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(ConfigName)
	v.SetConfigType("json")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", dir, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// loadDotEnv sets variables from path without overriding ones already set. A missing
// file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

// Prefs holds viewer toggles persisted across runs.
type Prefs struct {
	ShowFPS     bool `json:"show_fps"`
	ShowLog     bool `json:"show_log"`
	GridVisible bool `json:"grid_visible"`
	AutoRotate  bool `json:"auto_rotate"`
}

// DefaultPrefs returns the preferences used when none are saved.
func DefaultPrefs() Prefs {
	return Prefs{
		ShowFPS:     false,
		ShowLog:     false,
		GridVisible: true,
		AutoRotate:  true,
	}
}

// LoadPrefs reads dir/prefs.json. A missing or invalid file yields DefaultPrefs.
func LoadPrefs(dir string) Prefs {
	data, err := os.ReadFile(filepath.Join(dir, PrefsFileName))
	if err != nil {
		return DefaultPrefs()
	}
	p := DefaultPrefs()
	if err := json.Unmarshal(data, &p); err != nil {
		return DefaultPrefs()
	}
	return p
}

// SavePrefs writes dir/prefs.json, creating dir if needed.
func SavePrefs(dir string, p Prefs) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, PrefsFileName), data, 0644)
}
