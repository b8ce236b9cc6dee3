package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/skinmgr/internal/app"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "skinmgr",
	Short:         "Download, organise and apply League of Legends custom skins",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupEnv(commandContext(cmd), configPath)
	},
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logutil.GetLogger(context.Background()).Error("exec cmd failed", zap.Error(err))
		return err
	}
	return nil
}

func setupEnv(ctx context.Context, explicit string) error {
	cfg, path, err := LoadConfig(explicit)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.File, cfg.Log.Level, 0, 0, 0, true)
	env, err := app.NewEnv(ctx, cfg, path)
	if err != nil {
		return err
	}
	app.SetDefaultEnv(env)
	logutil.GetLogger(ctx).Debug("config loaded",
		zap.String("path", path),
		zap.String("data_dir", cfg.DataDir),
		zap.String("install_path", cfg.InstallPath),
	)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	for _, r := range app.RunnerList() {
		runner := app.MustResolveRunner(r)
		subcmd := &cobra.Command{
			Use:   runner.Name(),
			Short: runner.Desc(),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := commandContext(cmd)
				if err := runner.PreRun(ctx); err != nil {
					return err
				}
				if err := runner.Run(ctx); err != nil {
					return err
				}
				if err := runner.PostRun(ctx); err != nil {
					return err
				}
				return nil
			},
		}
		runner.Init(subcmd.Flags())
		rootCmd.AddCommand(subcmd)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
