// Package organizer renames an extracted skin repository from display names to
// the numeric layout the patcher reads: <championId>/<skinId>.fantome.
package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/skinmgr/internal/apperr"
	"github.com/xxxsen/skinmgr/internal/metadata"
	"github.com/xxxsen/skinmgr/internal/model"
	"github.com/xxxsen/skinmgr/internal/skinid"
)

const (
	// AssetExt marks an organised asset.
	AssetExt = ".fantome"
	// SourceExt is the extension of assets in the extracted repository.
	SourceExt = ".zip"
	// ChromaDir is the per-champion directory holding chroma assets.
	ChromaDir = "chromas"
)

var trailingIDRegexp = regexp.MustCompile(`(\d+)$`)

// Organizer performs one organisation pass over a repository root.
type Organizer struct {
	skipBadChroma bool
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithSkipBadChroma makes a chroma file with an undecodable id skip only that
// file. By default the rest of the champion's chroma pass is abandoned.
func WithSkipBadChroma(skip bool) Option {
	return func(o *Organizer) {
		o.skipBadChroma = skip
	}
}

// New builds an Organizer.
func New(opts ...Option) *Organizer {
	o := &Organizer{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Organize renames every champion directory below root that matches the
// catalog. It must run once per extraction: an organised tree no longer
// matches any display name.
func (o *Organizer) Organize(ctx context.Context, root string, catalog *model.Catalog) (*model.OrganizeReport, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("root", root))
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrFileSystem, "organize", "read "+root, err)
	}

	report := &model.OrganizeReport{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		champion, ok := catalog.ChampionByName(name, metadata.SameName)
		if !ok {
			logger.Debug("champion directory not in feed, skipped", zap.String("dir", name))
			report.ChampionsSkipped = append(report.ChampionsSkipped, name)
			continue
		}
		if err := o.organizeChampion(ctx, root, name, champion, catalog, report); err != nil {
			return report, err
		}
	}

	logger.Info("repository organised",
		zap.Int("champions_renamed", report.ChampionsRenamed),
		zap.Int("champions_skipped", len(report.ChampionsSkipped)),
		zap.Int("skins_renamed", report.SkinsRenamed),
		zap.Int("skins_unmatched", len(report.SkinsUnmatched)),
		zap.Int("chromas_moved", report.ChromasMoved),
		zap.Int("chroma_aborts", len(report.ChromaAborts)),
	)
	return report, nil
}

func (o *Organizer) organizeChampion(ctx context.Context, root, name string, champion model.Champion, catalog *model.Catalog, report *model.OrganizeReport) error {
	src := filepath.Join(root, name)
	dir := filepath.Join(root, strconv.Itoa(champion.ID))
	if src != dir {
		if err := os.Rename(src, dir); err != nil {
			return apperr.Wrap(apperr.ErrFileSystem, "organize", fmt.Sprintf("rename %s to %d", name, champion.ID), err)
		}
	}
	report.ChampionsRenamed++

	if err := o.renameSkins(ctx, dir, name, catalog.SkinsOf(champion.ID), report); err != nil {
		return err
	}
	return o.moveChromas(ctx, dir, name, report)
}

func (o *Organizer) renameSkins(ctx context.Context, dir, championDir string, skins []model.Skin, report *model.OrganizeReport) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "organize", "read "+dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), SourceExt) {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		skin, ok := matchSkin(stem, championDir, skins)
		if !ok {
			logutil.GetLogger(ctx).Debug("skin file not in feed, left as is",
				zap.String("champion", championDir),
				zap.String("file", entry.Name()),
			)
			report.SkinsUnmatched = append(report.SkinsUnmatched, championDir+"/"+entry.Name())
			continue
		}
		target := filepath.Join(dir, model.RefOf(skin).FileName(AssetExt))
		if err := os.Rename(filepath.Join(dir, entry.Name()), target); err != nil {
			return apperr.Wrap(apperr.ErrFileSystem, "organize", "rename "+entry.Name(), err)
		}
		report.SkinsRenamed++
	}
	return nil
}

// matchSkin resolves a repository file stem to a skin. Files are named either
// after the skin or after the champion directory joined to it with "_".
func matchSkin(stem, championDir string, skins []model.Skin) (model.Skin, bool) {
	candidates := []string{stem}
	prefix := championDir + "_"
	if len(stem) > len(prefix) && strings.EqualFold(stem[:len(prefix)], prefix) {
		candidates = append(candidates, stem[len(prefix):])
	}
	for _, candidate := range candidates {
		for _, skin := range skins {
			if metadata.SameSkinName(skin.Name, candidate) {
				return skin, true
			}
		}
	}
	return model.Skin{}, false
}

func (o *Organizer) moveChromas(ctx context.Context, dir, championDir string, report *model.OrganizeReport) error {
	chromaRoot := filepath.Join(dir, ChromaDir)
	info, err := os.Stat(chromaRoot)
	if err != nil || !info.IsDir() {
		return nil
	}
	logger := logutil.GetLogger(ctx).With(zap.String("champion", championDir))

	groups, err := os.ReadDir(chromaRoot)
	if err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "organize", "read "+chromaRoot, err)
	}
	for _, group := range groups {
		if !group.IsDir() {
			continue
		}
		groupDir := filepath.Join(chromaRoot, group.Name())
		files, err := os.ReadDir(groupDir)
		if err != nil {
			return apperr.Wrap(apperr.ErrFileSystem, "organize", "read "+groupDir, err)
		}
		for _, file := range files {
			if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), SourceExt) {
				continue
			}
			id, err := chromaID(file.Name())
			if err != nil {
				entry := championDir + "/" + ChromaDir + "/" + group.Name() + "/" + file.Name()
				if o.skipBadChroma {
					logger.Warn("chroma id undecodable, file skipped", zap.String("file", entry), zap.Error(err))
					report.ChromaSkipped = append(report.ChromaSkipped, entry)
					continue
				}
				logger.Warn("chroma id undecodable, chroma pass abandoned", zap.String("file", entry), zap.Error(err))
				report.ChromaAborts = append(report.ChromaAborts, championDir)
				return nil
			}
			target := filepath.Join(dir, strconv.Itoa(id)+AssetExt)
			if err := os.Rename(filepath.Join(groupDir, file.Name()), target); err != nil {
				return apperr.Wrap(apperr.ErrFileSystem, "organize", "move chroma "+file.Name(), err)
			}
			report.ChromasMoved++
		}
	}

	if err := os.RemoveAll(chromaRoot); err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "organize", "remove "+chromaRoot, err)
	}
	return nil
}

// chromaID decodes the champion-local id from the flat id a chroma file name
// ends with.
func chromaID(fileName string) (int, error) {
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	m := trailingIDRegexp.FindStringSubmatch(stem)
	if m == nil {
		return 0, apperr.Wrap(apperr.ErrIDDecode, "chroma", "no trailing id in "+fileName, nil)
	}
	flat, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrIDDecode, "chroma", "parse id of "+fileName, err)
	}
	_, local := skinid.Decode(flat)
	if local <= 0 {
		return 0, apperr.Wrap(apperr.ErrIDDecode, "chroma", fmt.Sprintf("id %d of %s has no skin part", flat, fileName), nil)
	}
	return local, nil
}
