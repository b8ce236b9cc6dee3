package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xxxsen/skinmgr/internal/apperr"
)

const defaultExtractWorkers = 8

// Extract unpacks the zip archive in data below dest. Directory entries are
// created, file entries are written with missing parents created on demand and
// existing files overwritten. Entries escaping dest are rejected before
// anything is written.
func Extract(ctx context.Context, data []byte, dest string, workers int) error {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "extract", "open archive", err)
	}

	targets := make([]string, len(reader.File))
	for i, f := range reader.File {
		rel, err := validateEntryPath(f.Name)
		if err != nil {
			return apperr.Wrap(apperr.ErrFileSystem, "extract", "", err)
		}
		targets[i] = filepath.Join(dest, filepath.FromSlash(rel))
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "extract", "create "+dest, err)
	}

	if workers <= 0 {
		workers = defaultExtractWorkers
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	files := 0
	var dirErr error
	for i, f := range reader.File {
		target := targets[i]
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				dirErr = apperr.Wrap(apperr.ErrFileSystem, "extract", "create "+target, err)
				break
			}
			continue
		}
		files++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return writeEntry(f, target)
		})
	}
	// Writers already queued must finish before returning.
	waitErr := g.Wait()
	if dirErr != nil {
		return dirErr
	}
	if waitErr != nil {
		return waitErr
	}

	logutil.GetLogger(ctx).Debug("archive extracted",
		zap.String("dest", dest),
		zap.Int("entries", len(reader.File)),
		zap.Int("files", files),
	)
	return nil
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "extract", "create parent of "+target, err)
	}

	src, err := f.Open()
	if err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "extract", "open entry "+f.Name, err)
	}
	defer src.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "extract", "create "+target, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return apperr.Wrap(apperr.ErrFileSystem, "extract", "write "+target, err)
	}
	if err := out.Close(); err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "extract", "close "+target, err)
	}
	return nil
}

// validateEntryPath returns the cleaned slash path of an archive entry, or an
// error when the entry is absolute or climbs out of the destination.
func validateEntryPath(name string) (string, error) {
	slashed := strings.ReplaceAll(name, `\`, "/")
	if slashed == "" {
		return "", fmt.Errorf("empty archive entry name")
	}
	if strings.HasPrefix(slashed, "/") || filepath.VolumeName(name) != "" || hasDriveLetter(slashed) {
		return "", fmt.Errorf("absolute path not allowed in archive: %s", name)
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("path traversal attempt in archive: %s", name)
	}
	return clean, nil
}

func hasDriveLetter(p string) bool {
	return len(p) >= 2 && p[1] == ':' && ((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}
