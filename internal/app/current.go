package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/xxxsen/skinmgr/internal/lcu"
	"github.com/xxxsen/skinmgr/internal/model"
)

// CurrentCommand prints the skin carousel of the running game client.
type CurrentCommand struct {
	env *Env
}

// NewCurrentCommand builds the current command.
func NewCurrentCommand() *CurrentCommand { return &CurrentCommand{} }

func (c *CurrentCommand) Name() string { return "current" }

func (c *CurrentCommand) Desc() string {
	return "Show the skins offered in the running client's champion select"
}

func (c *CurrentCommand) Init(f *pflag.FlagSet) {}

func (c *CurrentCommand) PreRun(ctx context.Context) error {
	env, err := requireEnv()
	if err != nil {
		return err
	}
	c.env = env
	return nil
}

func (c *CurrentCommand) Run(ctx context.Context) error {
	skins := lcu.CurrentSelection(ctx, c.env.Config.InstallPath)
	if len(skins) == 0 {
		_, _ = fmt.Fprintln(c.env.Out, "no champion select in progress")
		return nil
	}
	root := c.env.Manager.Layout().RepositoryRoot
	rows := make([][]string, 0, len(skins))
	for _, skin := range skins {
		rows = append(rows, []string{
			strconv.Itoa(skin.ChampionID),
			strconv.Itoa(skin.ID),
			skin.Name,
			strconv.Itoa(len(skin.Chromas)),
			installedMark(root, model.RefOf(skin)),
		})
	}
	_, _ = fmt.Fprintln(c.env.Out, renderTable(c.env.Out,
		[]string{"Champion", "ID", "Name", "Chromas", "Installed"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignLeft},
	))
	return nil
}

func (c *CurrentCommand) PostRun(ctx context.Context) error { return nil }

func init() {
	RegisterRunner("current", func() IRunner { return NewCurrentCommand() })
}
