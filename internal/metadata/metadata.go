package metadata

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/skinmgr/internal/model"
	"github.com/xxxsen/skinmgr/internal/skinid"
)

// Store derives the champion/skin catalog from the feed file on disk. It keeps
// no state between calls: every query reloads the file, so a refreshed feed is
// visible immediately.
type Store struct {
	path string
}

// NewStore creates a store reading the feed at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the feed file location.
func (s *Store) Path() string { return s.path }

func (s *Store) load(ctx context.Context) []RawSkin {
	records, err := ParseFeedFile(s.path)
	if err != nil {
		// A missing or broken feed reads as "not downloaded yet".
		logutil.GetLogger(ctx).Debug("feed unavailable, catalog empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil
	}
	return records
}

// Champions lists one champion per distinct champion id, in feed order.
func (s *Store) Champions(ctx context.Context) []model.Champion {
	return buildChampions(s.load(ctx))
}

// Skins lists every skin whose champion is known, in feed order.
func (s *Store) Skins(ctx context.Context) []model.Skin {
	records := s.load(ctx)
	return buildSkins(records, buildChampions(records))
}

// Catalog returns champions and skins derived from a single read of the feed.
func (s *Store) Catalog(ctx context.Context) *model.Catalog {
	records := s.load(ctx)
	champions := buildChampions(records)
	return &model.Catalog{
		Champions: champions,
		Skins:     buildSkins(records, champions),
	}
}

// BuildCatalog derives a catalog from already parsed records.
func BuildCatalog(records []RawSkin) *model.Catalog {
	champions := buildChampions(records)
	return &model.Catalog{Champions: champions, Skins: buildSkins(records, champions)}
}

func buildChampions(records []RawSkin) []model.Champion {
	seen := make(map[int]struct{}, len(records))
	out := make([]model.Champion, 0)
	for _, raw := range records {
		championID, _ := skinid.Decode(raw.ID)
		if _, ok := seen[championID]; ok {
			continue
		}
		seen[championID] = struct{}{}
		out = append(out, model.Champion{
			ID:    championID,
			Name:  raw.Name,
			Image: ChampionImage(raw.SplashPath),
		})
	}
	return out
}

func buildSkins(records []RawSkin, champions []model.Champion) []model.Skin {
	byID := make(map[int]model.Champion, len(champions))
	for _, c := range champions {
		byID[c.ID] = c
	}

	out := make([]model.Skin, 0, len(records))
	for _, raw := range records {
		championID, skinID := skinid.Decode(raw.ID)
		champion, ok := byID[championID]
		if !ok {
			continue
		}
		chromas := make([]model.Chroma, 0, len(raw.Chromas))
		for _, rc := range raw.Chromas {
			_, chromaID := skinid.Decode(rc.ID)
			chromas = append(chromas, model.Chroma{
				ID:           chromaID,
				ChampionID:   championID,
				ChampionName: champion.Name,
				Colors:       rc.Colors,
			})
		}
		out = append(out, model.Skin{
			ID:           skinID,
			ChampionID:   championID,
			ChampionName: champion.Name,
			Name:         raw.Name,
			Image:        SkinImage(raw.SplashPath, skinID),
			Chromas:      chromas,
		})
	}
	return out
}
