package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `{
  "1000": {"id": 1000, "name": "Annie", "splashPath": "/lol-game-data/assets/ASSETS/Characters/Annie/Skins/Base/Images/annie_splash.jpg", "chromas": []},
  "1001": {"id": 1001, "name": "Goth Annie", "splashPath": "/lol-game-data/assets/ASSETS/Characters/Annie/Skins/Skin01/Images/annie_splash.jpg"},
  "1009": {"id": 1009, "name": "Tibbers Annie", "splashPath": "/lol-game-data/assets/ASSETS/Characters/Annie/Skins/Skin09/x.jpg",
           "chromas": [{"id": 1010, "colors": ["#DF9117"]}, {"id": 1011, "colors": ["#2756CE", "#FFFFFF"]}]},
  "121000": {"id": 121000, "name": "Kha'Zix", "splashPath": "/lol-game-data/assets/ASSETS/Characters/KhaZix/Skins/Base/x.jpg"},
  "121001": {"id": 121001, "name": "Mecha Kha'Zix", "splashPath": "/lol-game-data/assets/ASSETS/Characters/KhaZix/Skins/Skin01/x.jpg"}
}`

func writeFeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skins_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestChampions(t *testing.T) {
	t.Parallel()

	store := NewStore(writeFeed(t, sampleFeed))
	champions := store.Champions(context.Background())
	require.Len(t, champions, 2)

	assert.Equal(t, 1, champions[0].ID)
	assert.Equal(t, "Annie", champions[0].Name)
	assert.Equal(t, "https://ddragon.leagueoflegends.com/cdn/img/champion/loading/Annie_0.jpg", champions[0].Image)

	assert.Equal(t, 121, champions[1].ID)
	assert.Equal(t, "Kha'Zix", champions[1].Name)
	assert.Equal(t, "https://ddragon.leagueoflegends.com/cdn/img/champion/loading/Khazix_0.jpg", champions[1].Image)
}

func TestChampionsFirstRecordWins(t *testing.T) {
	t.Parallel()

	feed := `{"1005": {"id": 1005, "name": "Frostfire Annie"}, "1000": {"id": 1000, "name": "Annie"}}`
	champions := NewStore(writeFeed(t, feed)).Champions(context.Background())
	require.Len(t, champions, 1)
	assert.Equal(t, "Frostfire Annie", champions[0].Name)
	assert.Empty(t, champions[0].Image)
}

func TestSkins(t *testing.T) {
	t.Parallel()

	skins := NewStore(writeFeed(t, sampleFeed)).Skins(context.Background())
	require.Len(t, skins, 5)

	base := skins[0]
	assert.Equal(t, 0, base.ID)
	assert.Equal(t, 1, base.ChampionID)
	assert.Empty(t, base.Chromas)

	tibbers := skins[2]
	assert.Equal(t, 9, tibbers.ID)
	assert.Equal(t, "Annie", tibbers.ChampionName)
	assert.Equal(t, "Tibbers Annie", tibbers.Name)
	assert.Equal(t, "https://ddragon.leagueoflegends.com/cdn/img/champion/loading/Annie_9.jpg", tibbers.Image)
	require.Len(t, tibbers.Chromas, 2)
	assert.Equal(t, 10, tibbers.Chromas[0].ID)
	assert.Equal(t, 1, tibbers.Chromas[0].ChampionID)
	assert.Equal(t, "Annie", tibbers.Chromas[1].ChampionName)
	assert.Equal(t, []string{"#2756CE", "#FFFFFF"}, tibbers.Chromas[1].Colors)

	mecha := skins[4]
	assert.Equal(t, 121, mecha.ChampionID)
	assert.Equal(t, "Kha'Zix", mecha.ChampionName)
}

func TestSingleRecordExample(t *testing.T) {
	t.Parallel()

	feed := `{"1001": {"id": 1001, "name": "Annie", "splashPath": "/ASSETS/Characters/Annie/Skins/Skin01/x.jpg", "chromas": []}}`
	catalog := NewStore(writeFeed(t, feed)).Catalog(context.Background())
	require.Len(t, catalog.Champions, 1)
	require.Len(t, catalog.Skins, 1)
	assert.Equal(t, 1, catalog.Champions[0].ID)
	assert.Equal(t, "Annie", catalog.Champions[0].Name)
	assert.Equal(t, 1, catalog.Skins[0].ID)
	assert.Equal(t, 1, catalog.Skins[0].ChampionID)
}

func TestSkinsDropUnknownChampion(t *testing.T) {
	t.Parallel()

	records := []RawSkin{{ID: 1000, Name: "Annie"}, {ID: 2001, Name: "Forsaken Olaf"}}
	skins := buildSkins(records, buildChampions(records[:1]))
	require.Len(t, skins, 1)
	assert.Equal(t, "Annie", skins[0].Name)
}

func TestMissingOrBrokenFeedIsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	missing := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	assert.Empty(t, missing.Champions(ctx))
	assert.Empty(t, missing.Skins(ctx))

	broken := NewStore(writeFeed(t, `{"1000": `))
	assert.Empty(t, broken.Champions(ctx))
	assert.Empty(t, broken.Catalog(ctx).Skins)
}

func TestStoreReloadsEveryQuery(t *testing.T) {
	t.Parallel()

	path := writeFeed(t, `{"1000": {"id": 1000, "name": "Annie"}}`)
	store := NewStore(path)
	require.Len(t, store.Champions(context.Background()), 1)

	require.NoError(t, os.WriteFile(path, []byte(`{"1000": {"id": 1000, "name": "Annie"}, "2000": {"id": 2000, "name": "Olaf"}}`), 0o644))
	assert.Len(t, store.Champions(context.Background()), 2)
}

func TestNameMatching(t *testing.T) {
	t.Parallel()

	assert.True(t, SameName("Jinx", "jinx"))
	assert.True(t, SameName(" Annie ", "ANNIE"))
	assert.False(t, SameName("Annie", "Anivia"))

	assert.True(t, SameSkinName(":Star Guardian", "Star Guardian"))
	assert.True(t, SameSkinName("star guardian", ":STAR GUARDIAN"))
	assert.True(t, SameSkinName("PROJECT: Yi", "project: yi"))
	assert.False(t, SameSkinName("::Star Guardian", "Star Guardian"))
}

func TestChampionKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Annie", ChampionKey("/lol-game-data/assets/ASSETS/Characters/Annie/Skins/Base/x.jpg"))
	assert.Equal(t, "Khazix", ChampionKey("/Characters/KhaZix/Skins/Base/x.jpg"))
	assert.Equal(t, "", ChampionKey("/no/match/here.jpg"))
}
