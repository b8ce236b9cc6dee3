package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/skinmgr/internal/model"
)

// DownloadCommand installs the skin repository and organises it.
type DownloadCommand struct {
	force bool

	env *Env
}

// NewDownloadCommand builds the download command.
func NewDownloadCommand() *DownloadCommand { return &DownloadCommand{} }

func (c *DownloadCommand) Name() string { return "download" }

func (c *DownloadCommand) Desc() string {
	return "Download the skin repository and metadata feed, then organise the repository"
}

func (c *DownloadCommand) Init(f *pflag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "replace an existing repository")
}

func (c *DownloadCommand) PreRun(ctx context.Context) error {
	env, err := requireEnv()
	if err != nil {
		return err
	}
	c.env = env
	logutil.GetLogger(ctx).Info("starting download", zap.Bool("force", c.force))
	return nil
}

func (c *DownloadCommand) Run(ctx context.Context) error {
	report, err := c.env.Manager.AcquireRepository(ctx, c.force)
	if err != nil {
		return err
	}
	if report == nil {
		_, _ = fmt.Fprintln(c.env.Out, "repository already present, use --force to replace it")
		return nil
	}
	_, _ = fmt.Fprintln(c.env.Out, renderTable(c.env.Out, []string{"Step", "Count"}, reportRows(report), []columnAlignment{alignLeft, alignRight}))
	return nil
}

func (c *DownloadCommand) PostRun(ctx context.Context) error { return nil }

func reportRows(r *model.OrganizeReport) [][]string {
	return [][]string{
		{"champions renamed", strconv.Itoa(r.ChampionsRenamed)},
		{"champions skipped", strconv.Itoa(len(r.ChampionsSkipped))},
		{"skins renamed", strconv.Itoa(r.SkinsRenamed)},
		{"skins unmatched", strconv.Itoa(len(r.SkinsUnmatched))},
		{"chromas moved", strconv.Itoa(r.ChromasMoved)},
		{"chromas skipped", strconv.Itoa(len(r.ChromaSkipped))},
		{"chroma passes abandoned", strconv.Itoa(len(r.ChromaAborts))},
	}
}

func init() {
	RegisterRunner("download", func() IRunner { return NewDownloadCommand() })
}
