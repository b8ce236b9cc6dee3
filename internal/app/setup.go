package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/skinmgr/internal/apperr"
	"github.com/xxxsen/skinmgr/internal/install"
)

var errNoEnv = errors.New("environment not initialised")

func requireEnv() (*Env, error) {
	env := DefaultEnv()
	if env == nil {
		return nil, errNoEnv
	}
	return env, nil
}

// SetupCommand installs the patcher toolset.
type SetupCommand struct {
	env *Env
}

// NewSetupCommand builds the setup command.
func NewSetupCommand() *SetupCommand { return &SetupCommand{} }

func (c *SetupCommand) Name() string { return "setup" }

func (c *SetupCommand) Desc() string {
	return "Download the patcher toolset and write its companion config"
}

func (c *SetupCommand) Init(f *pflag.FlagSet) {}

func (c *SetupCommand) PreRun(ctx context.Context) error {
	env, err := requireEnv()
	if err != nil {
		return err
	}
	c.env = env
	if !install.IsValid(env.Config.InstallPath) {
		logutil.GetLogger(ctx).Warn("install path does not look like a game installation",
			zap.String("install_path", env.Config.InstallPath),
		)
	}
	return nil
}

func (c *SetupCommand) Run(ctx context.Context) error {
	if err := c.env.Manager.AcquireToolset(ctx); err != nil {
		return err
	}
	layout := c.env.Manager.Layout()
	_, _ = fmt.Fprintf(c.env.Out, "toolset ready: %s\n", layout.ToolsetDir)
	return nil
}

func (c *SetupCommand) PostRun(ctx context.Context) error { return nil }

// requireInstall fails unless the configured install path is a game installation.
func requireInstall(env *Env) error {
	if !install.IsValid(env.Config.InstallPath) {
		return apperr.Wrap(apperr.ErrConfiguration, "install path", env.Config.InstallPath+" has no LeagueClient.exe, use `path --set`", nil)
	}
	return nil
}

func init() {
	RegisterRunner("setup", func() IRunner { return NewSetupCommand() })
}
