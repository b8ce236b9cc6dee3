// Package patcher drives the external mod tool through the import, mkoverlay
// and runoverlay stages, keeping at most one overlay process alive.
package patcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/skinmgr/internal/apperr"
	"github.com/xxxsen/skinmgr/internal/config"
	"github.com/xxxsen/skinmgr/internal/fetch"
	"github.com/xxxsen/skinmgr/internal/install"
	"github.com/xxxsen/skinmgr/internal/model"
	"github.com/xxxsen/skinmgr/internal/organizer"
)

// modName is the single mod slot staged inside the working area.
const modName = "skin"

// State is the controller stage.
type State int32

const (
	StateIdle State = iota
	StateStaging
	StatePackaging
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStaging:
		return "staging"
	case StatePackaging:
		return "packaging"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Controller) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Controller applies organised assets to the game. Apply and Stop calls are
// serialised; the overlay process handle never leaves the controller.
type Controller struct {
	mu    sync.Mutex
	state atomic.Int32

	binary          string
	repositoryRoot  string
	tempDir         string
	companionConfig string
	gameDir         string

	exec    Executor
	proc    Process
	current model.AssetRef
}

// NewController builds a controller for the given layout and installation.
func NewController(layout config.Layout, installPath string, opts ...Option) *Controller {
	c := &Controller{
		binary:          layout.PatcherExecutable,
		repositoryRoot:  layout.RepositoryRoot,
		tempDir:         layout.TempDir,
		companionConfig: layout.CompanionConfig,
		gameDir:         install.GameDir(installPath),
		exec:            commandExecutor{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the current stage.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Current returns the asset whose overlay is running.
func (c *Controller) Current() (model.AssetRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proc == nil {
		return model.AssetRef{}, false
	}
	return c.current, true
}

// AssetPath is the organised asset file of ref.
func (c *Controller) AssetPath(ref model.AssetRef) string {
	return filepath.Join(c.repositoryRoot, ref.Dir(), ref.FileName(organizer.AssetExt))
}

// Apply stages, packages and runs the overlay for ref, superseding any
// running overlay. A failure in any stage leaves the controller idle.
func (c *Controller) Apply(ctx context.Context, ref model.AssetRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := logutil.GetLogger(ctx).With(zap.String("asset", ref.String()))
	asset := c.AssetPath(ref)
	// A missing asset is rejected before the running overlay and working area are touched.
	if !fetch.Exists(asset) {
		return apperr.Wrap(apperr.ErrNotFound, "apply", "asset "+asset, nil)
	}

	c.killLocked(ctx)

	if err := os.RemoveAll(c.tempDir); err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "apply", "clear "+c.tempDir, err)
	}
	if err := os.MkdirAll(c.tempDir, 0o755); err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "apply", "create "+c.tempDir, err)
	}

	game := "--game:" + c.gameDir
	modsDir := filepath.Join(c.tempDir, "skins")
	overlayDir := filepath.Join(c.tempDir, "overlay")

	c.setState(StateStaging)
	logger.Info("importing asset", zap.String("path", asset))
	if err := c.exec.Run(ctx, c.binary, []string{"import", asset, filepath.Join(modsDir, modName), game}); err != nil {
		c.setState(StateIdle)
		return apperr.Wrap(apperr.ErrExternalTool, "apply", "import", err)
	}

	c.setState(StatePackaging)
	logger.Info("building overlay")
	if err := c.exec.Run(ctx, c.binary, []string{"mkoverlay", modsDir, overlayDir, game, "--mods:" + modName}); err != nil {
		c.setState(StateIdle)
		return apperr.Wrap(apperr.ErrExternalTool, "apply", "mkoverlay", err)
	}

	proc, err := c.exec.Start(c.binary, []string{"runoverlay", overlayDir, c.companionConfig, game})
	if err != nil {
		c.setState(StateIdle)
		return apperr.Wrap(apperr.ErrExternalTool, "apply", "runoverlay", err)
	}
	c.proc = proc
	c.current = ref
	c.setState(StateRunning)
	logger.Info("overlay running", zap.Int("pid", proc.Pid()))
	return nil
}

// Stop terminates the running overlay, if any.
func (c *Controller) Stop(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.killLocked(ctx)
}

// killLocked signals the running overlay without waiting for it and forgets
// the handle.
func (c *Controller) killLocked(ctx context.Context) {
	defer c.setState(StateIdle)
	if c.proc == nil {
		return
	}
	proc := c.proc
	c.proc = nil
	c.current = model.AssetRef{}
	if err := proc.Kill(); err != nil {
		logutil.GetLogger(ctx).Warn("kill overlay failed", zap.Int("pid", proc.Pid()), zap.Error(err))
		return
	}
	logutil.GetLogger(ctx).Debug("overlay stopped", zap.Int("pid", proc.Pid()))
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
}
