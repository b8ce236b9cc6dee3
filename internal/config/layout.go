package config

import (
	"path/filepath"
	"time"
)

// Layout is every fixed on-disk location derived from the data directory.
type Layout struct {
	DataDir string
	// ToolsetDir is created by extracting the toolset archive into DataDir.
	ToolsetDir        string
	PatcherExecutable string
	CompanionConfig   string
	// RepositoryDir is created by extracting the repository archive into DataDir;
	// RepositoryRoot is the skins tree inside it that gets organised.
	RepositoryDir  string
	RepositoryRoot string
	FeedPath       string
	TempDir        string
	LockPath       string
}

// Layout resolves the on-disk layout for the configured data directory.
func (c *Config) Layout() Layout {
	toolset := filepath.Join(c.DataDir, "cslol-manager")
	repo := filepath.Join(c.DataDir, "lol-skins-main")
	return Layout{
		DataDir:           c.DataDir,
		ToolsetDir:        toolset,
		PatcherExecutable: filepath.Join(toolset, filepath.FromSlash(c.Patcher.Binary)),
		CompanionConfig:   filepath.Join(toolset, "config.ini"),
		RepositoryDir:     repo,
		RepositoryRoot:    filepath.Join(repo, "skins"),
		FeedPath:          filepath.Join(c.DataDir, "skins_metadata.json"),
		TempDir:           filepath.Join(c.DataDir, "temp"),
		LockPath:          filepath.Join(c.DataDir, "repository.lock"),
	}
}

// HTTPTimeout returns the download timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
