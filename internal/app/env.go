package app

import (
	"context"
	"io"
	"os"

	"github.com/xxxsen/skinmgr/internal/acquire"
	"github.com/xxxsen/skinmgr/internal/config"
	"github.com/xxxsen/skinmgr/internal/fetch"
	"github.com/xxxsen/skinmgr/internal/storage"
)

// Env is the loaded configuration and the services built from it, shared by
// every runner of one process.
type Env struct {
	Config     *config.Config
	ConfigPath string
	Manager    *acquire.Manager

	In  io.Reader
	Out io.Writer
}

var defaultEnv *Env

// SetDefaultEnv assigns the process environment.
func SetDefaultEnv(e *Env) {
	defaultEnv = e
}

// DefaultEnv returns the process environment set up by the CLI.
func DefaultEnv() *Env {
	return defaultEnv
}

// NewEnv builds the services for cfg. An object store client is created only
// when a source is served from the mirror.
func NewEnv(ctx context.Context, cfg *config.Config, configPath string) (*Env, error) {
	fetchOpts := []fetch.Option{fetch.WithTimeout(cfg.HTTPTimeout())}
	if cfg.UsesMirror() {
		mirror, err := storage.NewS3Client(ctx, cfg.Mirror)
		if err != nil {
			return nil, err
		}
		fetchOpts = append(fetchOpts, fetch.WithMirror(mirror))
	}
	return &Env{
		Config:     cfg,
		ConfigPath: configPath,
		Manager:    acquire.NewManager(cfg, acquire.WithFetcher(fetch.New(fetchOpts...))),
		In:         os.Stdin,
		Out:        os.Stdout,
	}, nil
}
