package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/xxxsen/skinmgr/internal/fetch"
	"github.com/xxxsen/skinmgr/internal/model"
	"github.com/xxxsen/skinmgr/internal/organizer"
)

var errEmptyCatalog = errors.New("no metadata feed yet, run `download` or `feed` first")

// ChampionsCommand lists the champions of the feed.
type ChampionsCommand struct {
	env *Env
}

// NewChampionsCommand builds the champions command.
func NewChampionsCommand() *ChampionsCommand { return &ChampionsCommand{} }

func (c *ChampionsCommand) Name() string { return "champions" }

func (c *ChampionsCommand) Desc() string { return "List champions known to the metadata feed" }

func (c *ChampionsCommand) Init(f *pflag.FlagSet) {}

func (c *ChampionsCommand) PreRun(ctx context.Context) error {
	env, err := requireEnv()
	if err != nil {
		return err
	}
	c.env = env
	return nil
}

func (c *ChampionsCommand) Run(ctx context.Context) error {
	champions := c.env.Manager.Store().Champions(ctx)
	if len(champions) == 0 {
		return errEmptyCatalog
	}
	rows := make([][]string, 0, len(champions))
	for _, champ := range champions {
		rows = append(rows, []string{strconv.Itoa(champ.ID), champ.Name})
	}
	_, _ = fmt.Fprintln(c.env.Out, renderTable(c.env.Out, []string{"ID", "Name"}, rows, []columnAlignment{alignRight, alignLeft}))
	return nil
}

func (c *ChampionsCommand) PostRun(ctx context.Context) error { return nil }

// SkinsCommand lists skins, optionally of one champion, with their install state.
type SkinsCommand struct {
	championID int

	env *Env
}

// NewSkinsCommand builds the skins command.
func NewSkinsCommand() *SkinsCommand { return &SkinsCommand{} }

func (c *SkinsCommand) Name() string { return "skins" }

func (c *SkinsCommand) Desc() string { return "List skins and chromas known to the metadata feed" }

func (c *SkinsCommand) Init(f *pflag.FlagSet) {
	f.IntVar(&c.championID, "champion", 0, "only list skins of this champion id")
}

func (c *SkinsCommand) PreRun(ctx context.Context) error {
	if c.championID < 0 {
		return errors.New("skins requires a non-negative --champion")
	}
	env, err := requireEnv()
	if err != nil {
		return err
	}
	c.env = env
	return nil
}

func (c *SkinsCommand) Run(ctx context.Context) error {
	catalog := c.env.Manager.Store().Catalog(ctx)
	if len(catalog.Champions) == 0 {
		return errEmptyCatalog
	}
	skins := catalog.Skins
	if c.championID != 0 {
		skins = catalog.SkinsOf(c.championID)
	}
	root := c.env.Manager.Layout().RepositoryRoot
	_, _ = fmt.Fprintln(c.env.Out, renderTable(c.env.Out,
		[]string{"Champion", "ID", "Name", "Chromas", "Installed"},
		skinRows(root, skins),
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func (c *SkinsCommand) PostRun(ctx context.Context) error { return nil }

func skinRows(root string, skins []model.Skin) [][]string {
	rows := make([][]string, 0, len(skins))
	for _, skin := range skins {
		chromas := make([]string, 0, len(skin.Chromas))
		for _, chroma := range skin.Chromas {
			chromas = append(chromas, strconv.Itoa(chroma.ID))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s (%d)", skin.ChampionName, skin.ChampionID),
			strconv.Itoa(skin.ID),
			skin.Name,
			strings.Join(chromas, ","),
			installedMark(root, model.RefOf(skin)),
		})
	}
	return rows
}

func installedMark(root string, ref model.AssetRef) string {
	if fetch.Exists(assetPath(root, ref)) {
		return "yes"
	}
	return "no"
}

func assetPath(root string, ref model.AssetRef) string {
	return filepath.Join(root, ref.Dir(), ref.FileName(organizer.AssetExt))
}

func init() {
	RegisterRunner("champions", func() IRunner { return NewChampionsCommand() })
	RegisterRunner("skins", func() IRunner { return NewSkinsCommand() })
}
