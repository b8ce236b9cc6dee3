// Package acquire downloads the patcher toolset, the skin repository and the
// metadata feed into the data directory.
package acquire

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/skinmgr/internal/apperr"
	"github.com/xxxsen/skinmgr/internal/config"
	"github.com/xxxsen/skinmgr/internal/fetch"
	"github.com/xxxsen/skinmgr/internal/metadata"
	"github.com/xxxsen/skinmgr/internal/model"
	"github.com/xxxsen/skinmgr/internal/organizer"
)

const lockRetryDelay = 200 * time.Millisecond

// Fetcher retrieves remote artifacts.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Download(ctx context.Context, url, dest string) error
}

// Organizer renames an extracted repository into the numeric layout.
type Organizer interface {
	Organize(ctx context.Context, root string, catalog *model.Catalog) (*model.OrganizeReport, error)
}

// ExtractFunc unpacks an archive below dest.
type ExtractFunc func(ctx context.Context, data []byte, dest string, workers int) error

// Manager runs the acquisition sequences. Repository acquisition is exclusive
// within the process and, through a lock file, across processes sharing the
// data directory.
type Manager struct {
	mu       sync.Mutex
	fileLock *flock.Flock

	layout      config.Layout
	sources     config.SourcesConfig
	installPath string
	workers     int

	fetcher   Fetcher
	organizer Organizer
	extract   ExtractFunc
	store     *metadata.Store
}

// Option configures a Manager.
type Option func(*Manager)

// WithFetcher overrides the artifact fetcher.
func WithFetcher(f Fetcher) Option {
	return func(m *Manager) {
		if f != nil {
			m.fetcher = f
		}
	}
}

// WithOrganizer overrides the repository organizer.
func WithOrganizer(o Organizer) Option {
	return func(m *Manager) {
		if o != nil {
			m.organizer = o
		}
	}
}

// WithExtractor overrides archive extraction.
func WithExtractor(fn ExtractFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.extract = fn
		}
	}
}

// NewManager builds a Manager for cfg.
func NewManager(cfg *config.Config, opts ...Option) *Manager {
	layout := cfg.Layout()
	m := &Manager{
		fileLock:    flock.New(layout.LockPath),
		layout:      layout,
		sources:     cfg.Sources,
		installPath: cfg.InstallPath,
		workers:     cfg.ExtractWorkers,
		fetcher:     fetch.New(fetch.WithTimeout(cfg.HTTPTimeout())),
		organizer:   organizer.New(organizer.WithSkipBadChroma(cfg.Organizer.SkipBadChroma)),
		extract:     fetch.Extract,
		store:       metadata.NewStore(layout.FeedPath),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the metadata store backed by the managed feed file.
func (m *Manager) Store() *metadata.Store { return m.store }

// Layout returns the managed on-disk layout.
func (m *Manager) Layout() config.Layout { return m.layout }

// AcquireToolset installs the patcher toolset unless it is already present.
// It takes no lock: extraction overwrites, so concurrent callers at worst
// download twice.
func (m *Manager) AcquireToolset(ctx context.Context) error {
	logger := logutil.GetLogger(ctx).With(zap.String("dest", m.layout.ToolsetDir))
	if fetch.Exists(m.layout.ToolsetDir) {
		logger.Debug("toolset already present")
		return nil
	}

	logger.Info("downloading toolset", zap.String("url", m.sources.ToolsetURL))
	data, err := m.fetcher.Fetch(ctx, m.sources.ToolsetURL)
	if err != nil {
		return fmt.Errorf("download toolset: %w", err)
	}
	if err := m.extract(ctx, data, m.layout.DataDir, m.workers); err != nil {
		return fmt.Errorf("extract toolset: %w", err)
	}
	if err := WriteCompanionConfig(m.layout.CompanionConfig, m.installPath); err != nil {
		return err
	}
	logger.Info("toolset installed")
	return nil
}

// AcquireRepository downloads, extracts and organises the skin repository.
// Without force an existing repository is kept. Concurrent callers run one
// after another; a caller that finds the repository installed by its
// predecessor returns without work. The returned report is nil when nothing
// was done.
func (m *Manager) AcquireRepository(ctx context.Context, force bool) (*model.OrganizeReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.lockFile(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := m.fileLock.Unlock(); err != nil {
			logutil.GetLogger(ctx).Warn("release repository lock failed", zap.Error(err))
		}
	}()

	logger := logutil.GetLogger(ctx).With(zap.String("dest", m.layout.RepositoryRoot))
	if !force && fetch.Exists(m.layout.RepositoryRoot) {
		logger.Debug("repository already present")
		return nil, nil
	}

	if fetch.Exists(m.layout.RepositoryDir) {
		if err := os.RemoveAll(m.layout.RepositoryDir); err != nil {
			return nil, apperr.Wrap(apperr.ErrFileSystem, "acquire repository", "remove "+m.layout.RepositoryDir, err)
		}
		logger.Info("previous repository removed")
	}

	if err := m.RefreshFeed(ctx); err != nil {
		return nil, err
	}

	logger.Info("downloading repository", zap.String("url", m.sources.RepositoryURL))
	data, err := m.fetcher.Fetch(ctx, m.sources.RepositoryURL)
	if err != nil {
		return nil, fmt.Errorf("download repository: %w", err)
	}
	if err := m.extract(ctx, data, m.layout.DataDir, m.workers); err != nil {
		return nil, fmt.Errorf("extract repository: %w", err)
	}

	report, err := m.organizer.Organize(ctx, m.layout.RepositoryRoot, m.store.Catalog(ctx))
	if err != nil {
		return report, fmt.Errorf("organize repository: %w", err)
	}
	logger.Info("repository installed")
	return report, nil
}

// RefreshFeed replaces the metadata feed file with the current remote copy.
func (m *Manager) RefreshFeed(ctx context.Context) error {
	logger := logutil.GetLogger(ctx).With(zap.String("url", m.sources.FeedURL))
	logger.Info("refreshing metadata feed")
	if err := m.fetcher.Download(ctx, m.sources.FeedURL, m.layout.FeedPath); err != nil {
		return fmt.Errorf("refresh feed: %w", err)
	}
	logger.Info("metadata feed refreshed", zap.String("path", m.layout.FeedPath))
	return nil
}

func (m *Manager) lockFile(ctx context.Context) error {
	if err := os.MkdirAll(m.layout.DataDir, 0o755); err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "acquire repository", "create "+m.layout.DataDir, err)
	}
	ok, err := m.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "acquire repository", "lock "+m.layout.LockPath, err)
	}
	if !ok {
		return apperr.Wrap(apperr.ErrFileSystem, "acquire repository", "lock "+m.layout.LockPath+" not acquired", nil)
	}
	return nil
}
