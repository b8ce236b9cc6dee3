package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultToolsetURL    = "https://github.com/LeagueToolkit/cslol-manager/releases/download/2024-10-27-401067d-prerelease/cslol-manager-windows.zip"
	DefaultRepositoryURL = "https://github.com/darkseal-org/lol-skins/archive/refs/heads/main.zip"
	DefaultFeedURL       = "https://raw.communitydragon.org/latest/plugins/rcp-be-lol-game-data/global/default/v1/skins.json"

	defaultInstallPath     = `C:\Riot Games\League of Legends`
	defaultDataDir         = "~/.local/share/skinmgr"
	defaultPatcherBinary   = "cslol-tools/mod-tools.exe"
	defaultHTTPTimeout     = 600
	defaultExtractWorkers  = 8
	defaultLogLevel        = "info"
	defaultUserConfigPath  = "~/.config/skinmgr/config.json"
	defaultLocalConfigName = "config.json"
)

// Config describes the application level configuration loaded from json.
type Config struct {
	InstallPath        string          `json:"install_path"`
	DataDir            string          `json:"data_dir"`
	Sources            SourcesConfig   `json:"sources"`
	HTTPTimeoutSeconds int             `json:"http_timeout_seconds"`
	ExtractWorkers     int             `json:"extract_workers"`
	Organizer          OrganizerConfig `json:"organizer"`
	Patcher            PatcherConfig   `json:"patcher"`
	Mirror             S3Config        `json:"mirror"`
	Log                LogConfig       `json:"log"`
}

// SourcesConfig holds the three remote artifacts.
type SourcesConfig struct {
	ToolsetURL    string `json:"toolset_url"`
	RepositoryURL string `json:"repository_url"`
	FeedURL       string `json:"feed_url"`
}

// OrganizerConfig tunes the repository organisation pass.
type OrganizerConfig struct {
	// SkipBadChroma skips a chroma file whose trailing id cannot be decoded
	// instead of aborting the remaining chroma pass of its champion.
	SkipBadChroma bool `json:"skip_bad_chroma"`
}

// PatcherConfig locates the patcher executable inside the toolset directory.
type PatcherConfig struct {
	Binary string `json:"binary"`
}

// S3Config holds the options for accessing an optional object store mirror.
// Sources using the s3:// scheme are fetched through it.
type S3Config struct {
	Host            string `json:"host"`
	Region          string `json:"region"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token"`
	ForcePathStyle  bool   `json:"force_path_style"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		InstallPath: defaultInstallPath,
		DataDir:     defaultDataDir,
		Sources: SourcesConfig{
			ToolsetURL:    DefaultToolsetURL,
			RepositoryURL: DefaultRepositoryURL,
			FeedURL:       DefaultFeedURL,
		},
		HTTPTimeoutSeconds: defaultHTTPTimeout,
		ExtractWorkers:     defaultExtractWorkers,
		Patcher:            PatcherConfig{Binary: defaultPatcherBinary},
		Log:                LogConfig{Level: defaultLogLevel},
	}
}

// SearchPaths lists the config locations in precedence order. An explicit
// path is the only candidate.
func SearchPaths(explicit string) []string {
	if strings.TrimSpace(explicit) != "" {
		return []string{explicit}
	}
	paths := make([]string, 0, 2)
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, defaultLocalConfigName))
	}
	if user, err := ExpandPath(defaultUserConfigPath); err == nil {
		paths = append(paths, user)
	}
	return paths
}

// LoadFirst tries to load configuration from the given paths, returning the
// first successfully decoded configuration along with its path. If none of
// the paths contain a readable config, an error wrapping os.ErrNotExist is returned.
func LoadFirst(paths ...string) (*Config, string, error) {
	var lastErr error
	for _, path := range paths {
		if path == "" {
			continue
		}
		cfg, err := Load(path)
		if errors.Is(err, os.ErrNotExist) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("config not found in paths %v: %w", paths, os.ErrNotExist)
	}
	return nil, "", lastErr
}

// LoadOrInit loads the first config found on the search path. When none exists
// the defaults are written to the explicit path, or the user path, and returned.
func LoadOrInit(explicit string) (*Config, string, error) {
	cfg, path, err := LoadFirst(SearchPaths(explicit)...)
	if err == nil {
		return cfg, path, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, "", err
	}

	target := explicit
	if strings.TrimSpace(target) == "" {
		target = defaultUserConfigPath
	}
	if target, err = ExpandPath(target); err != nil {
		return nil, "", err
	}
	def := Default()
	if err := def.Save(target); err != nil {
		return nil, "", err
	}
	if err := def.normalize(); err != nil {
		return nil, "", err
	}
	return &def, target, nil
}

// Load reads configuration from a single json file path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration as indented json, creating parent directories.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate performs basic validation of the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config.data_dir must be set")
	}
	if strings.TrimSpace(c.Sources.ToolsetURL) == "" {
		return errors.New("config.sources.toolset_url must be set")
	}
	if strings.TrimSpace(c.Sources.RepositoryURL) == "" {
		return errors.New("config.sources.repository_url must be set")
	}
	if strings.TrimSpace(c.Sources.FeedURL) == "" {
		return errors.New("config.sources.feed_url must be set")
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return errors.New("config.http_timeout_seconds must be positive")
	}
	if c.ExtractWorkers <= 0 {
		return errors.New("config.extract_workers must be positive")
	}
	if strings.TrimSpace(c.Patcher.Binary) == "" {
		return errors.New("config.patcher.binary must be set")
	}
	for _, u := range c.sourceURLs() {
		if !strings.HasPrefix(u, "s3://") {
			continue
		}
		bucket, key, _ := strings.Cut(strings.TrimPrefix(u, "s3://"), "/")
		if bucket == "" || key == "" {
			return fmt.Errorf("config.sources: invalid s3 url %s", u)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.DataDir, err = ExpandPath(c.DataDir); err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}
	c.InstallPath = strings.TrimSpace(c.InstallPath)
	c.Sources.ToolsetURL = strings.TrimSpace(c.Sources.ToolsetURL)
	c.Sources.RepositoryURL = strings.TrimSpace(c.Sources.RepositoryURL)
	c.Sources.FeedURL = strings.TrimSpace(c.Sources.FeedURL)
	c.Patcher.Binary = strings.TrimSpace(c.Patcher.Binary)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.File != "" {
		if c.Log.File, err = ExpandPath(c.Log.File); err != nil {
			return fmt.Errorf("log.file: %w", err)
		}
	}
	return nil
}

// UsesMirror reports whether any source is served from the object store.
func (c *Config) UsesMirror() bool {
	for _, u := range c.sourceURLs() {
		if strings.HasPrefix(u, "s3://") {
			return true
		}
	}
	return false
}

func (c *Config) sourceURLs() []string {
	return []string{c.Sources.ToolsetURL, c.Sources.RepositoryURL, c.Sources.FeedURL}
}

// ExpandPath resolves "~" and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
