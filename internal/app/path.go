package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/skinmgr/internal/acquire"
	"github.com/xxxsen/skinmgr/internal/apperr"
	"github.com/xxxsen/skinmgr/internal/config"
	"github.com/xxxsen/skinmgr/internal/fetch"
	"github.com/xxxsen/skinmgr/internal/install"
)

// PathCommand prints or sets the game installation path.
type PathCommand struct {
	set string

	env *Env
}

// NewPathCommand builds the path command.
func NewPathCommand() *PathCommand { return &PathCommand{} }

func (c *PathCommand) Name() string { return "path" }

func (c *PathCommand) Desc() string { return "Show or set the game installation path" }

func (c *PathCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.set, "set", "", "new installation directory, must contain LeagueClient.exe")
}

func (c *PathCommand) PreRun(ctx context.Context) error {
	env, err := requireEnv()
	if err != nil {
		return err
	}
	c.env = env
	return nil
}

func (c *PathCommand) Run(ctx context.Context) error {
	if strings.TrimSpace(c.set) == "" {
		valid := "valid"
		if !install.IsValid(c.env.Config.InstallPath) {
			valid = "invalid"
		}
		_, _ = fmt.Fprintf(c.env.Out, "%s (%s)\n", c.env.Config.InstallPath, valid)
		return nil
	}
	return SetInstallPath(ctx, c.env, c.set)
}

func (c *PathCommand) PostRun(ctx context.Context) error { return nil }

// SetInstallPath validates and persists a new installation path. The toolset
// companion config is rewritten when the toolset is installed, since it
// embeds the game directory.
func SetInstallPath(ctx context.Context, env *Env, path string) error {
	abs, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return apperr.Wrap(apperr.ErrConfiguration, "install path", "", err)
	}
	if !install.IsValid(abs) {
		return apperr.Wrap(apperr.ErrConfiguration, "install path", abs+" has no LeagueClient.exe", nil)
	}
	env.Config.InstallPath = abs
	if err := env.Config.Save(env.ConfigPath); err != nil {
		return err
	}

	layout := env.Manager.Layout()
	if fetch.Exists(layout.ToolsetDir) {
		if err := acquire.WriteCompanionConfig(layout.CompanionConfig, abs); err != nil {
			return err
		}
	}
	logutil.GetLogger(ctx).Info("install path updated",
		zap.String("install_path", abs),
		zap.String("config", env.ConfigPath),
	)
	_, _ = fmt.Fprintf(env.Out, "install path set to %s\n", abs)
	return nil
}

func init() {
	RegisterRunner("path", func() IRunner { return NewPathCommand() })
}
