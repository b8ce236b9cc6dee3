package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/skinmgr/internal/apperr"
	"github.com/xxxsen/skinmgr/internal/config"
	"github.com/xxxsen/skinmgr/internal/model"
)

const appFeed = `{
  "1000": {"id": 1000, "name": "Annie", "splashPath": "/Characters/Annie/Skins/Base/x.jpg"},
  "1009": {"id": 1009, "name": "Tibbers Annie", "splashPath": "/Characters/Annie/Skins/Skin09/x.jpg", "chromas": [{"id": 1010, "colors": ["#DF9117"]}]},
  "222000": {"id": 222000, "name": "Jinx"}
}`

func newTestEnv(t *testing.T) (*Env, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.InstallPath = t.TempDir()
	configPath := filepath.Join(t.TempDir(), "config.json")

	env, err := NewEnv(context.Background(), &cfg, configPath)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	env.Out = out
	SetDefaultEnv(env)
	t.Cleanup(func() { SetDefaultEnv(nil) })
	return env, out
}

func writeAppFeed(t *testing.T, env *Env) {
	t.Helper()
	path := env.Manager.Layout().FeedPath
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(appFeed), 0o644))
}

func runCommand(t *testing.T, r IRunner) error {
	t.Helper()
	ctx := context.Background()
	if err := r.PreRun(ctx); err != nil {
		return err
	}
	if err := r.Run(ctx); err != nil {
		return err
	}
	return r.PostRun(ctx)
}

func TestRunnersRegistered(t *testing.T) {
	for _, name := range []string{"apply", "champions", "current", "download", "feed", "path", "session", "setup", "skins"} {
		r, err := ResolveRunner(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, r.Name())
		assert.NotEmpty(t, r.Desc())
	}
	_, err := ResolveRunner("missing")
	assert.Error(t, err)
}

func TestRunnerRequiresEnv(t *testing.T) {
	SetDefaultEnv(nil)
	assert.ErrorIs(t, NewChampionsCommand().PreRun(context.Background()), errNoEnv)
}

func TestChampionsCommand(t *testing.T) {
	env, out := newTestEnv(t)
	assert.ErrorIs(t, runCommand(t, NewChampionsCommand()), errEmptyCatalog)

	writeAppFeed(t, env)
	require.NoError(t, runCommand(t, NewChampionsCommand()))
	assert.Contains(t, out.String(), "Annie")
	assert.Contains(t, out.String(), "222")
}

func TestSkinsCommand(t *testing.T) {
	env, out := newTestEnv(t)
	writeAppFeed(t, env)

	asset := filepath.Join(env.Manager.Layout().RepositoryRoot, "1", "9.fantome")
	require.NoError(t, os.MkdirAll(filepath.Dir(asset), 0o755))
	require.NoError(t, os.WriteFile(asset, []byte("x"), 0o644))

	cmd := NewSkinsCommand()
	cmd.championID = 1
	require.NoError(t, runCommand(t, cmd))

	text := out.String()
	assert.Contains(t, text, "Tibbers Annie")
	assert.NotContains(t, text, "Jinx")
	rows := skinRows(env.Manager.Layout().RepositoryRoot, env.Manager.Store().Catalog(context.Background()).SkinsOf(1))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Annie (1)", "9", "Tibbers Annie", "10", "yes"}, rows[1])
	assert.Equal(t, "no", rows[0][4])
}

func TestPathCommand(t *testing.T) {
	env, out := newTestEnv(t)

	require.NoError(t, runCommand(t, NewPathCommand()))
	assert.Contains(t, out.String(), "(invalid)")

	game := t.TempDir()
	cmd := NewPathCommand()
	cmd.set = game
	err := runCommand(t, cmd)
	assert.ErrorIs(t, err, apperr.ErrConfiguration)

	require.NoError(t, os.WriteFile(filepath.Join(game, "LeagueClient.exe"), []byte("MZ"), 0o644))
	toolset := env.Manager.Layout().ToolsetDir
	require.NoError(t, os.MkdirAll(toolset, 0o755))
	require.NoError(t, runCommand(t, cmd))

	saved, err := config.Load(env.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, game, saved.InstallPath)

	ini, err := os.ReadFile(env.Manager.Layout().CompanionConfig)
	require.NoError(t, err)
	assert.Contains(t, string(ini), "leaguePath="+filepath.Join(game, "Game"))
}

func TestApplyRequiresArguments(t *testing.T) {
	newTestEnv(t)
	assert.Error(t, NewApplyCommand().PreRun(context.Background()))

	cmd := NewApplyCommand()
	cmd.championID = 1
	cmd.skinID = 1
	assert.ErrorIs(t, cmd.PreRun(context.Background()), apperr.ErrConfiguration)
}

func TestParseSelection(t *testing.T) {
	for _, line := range []string{"1 9", "1/9", " 1\t9 ", "1,9"} {
		ref, err := parseSelection(line)
		require.NoError(t, err, line)
		assert.Equal(t, model.AssetRef{ChampionID: 1, SkinID: 9}, ref)
	}
	for _, bad := range []string{"1", "a 1", "1 b", "0 1", "1 -1", "1 2 3"} {
		_, err := parseSelection(bad)
		assert.Error(t, err, bad)
	}
}

func TestReportRows(t *testing.T) {
	rows := reportRows(&model.OrganizeReport{ChampionsRenamed: 3, SkinsUnmatched: []string{"a", "b"}})
	assert.Equal(t, []string{"champions renamed", "3"}, rows[0])
	assert.Equal(t, []string{"skins unmatched", "2"}, rows[3])
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	out := renderTable(&buf, []string{"ID", "Name"}, [][]string{{"1", "Annie"}, {"222"}}, []columnAlignment{alignRight})
	assert.Contains(t, out, "Annie")
	assert.Contains(t, out, "222")
	assert.True(t, strings.Contains(out, "ID"))
	assert.Empty(t, renderTable(&buf, nil, nil, nil))
}
