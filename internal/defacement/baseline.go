package defacement

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/y0ug/defacemon/internal/database"
	"github.com/y0ug/defacemon/internal/database/models"
	"github.com/y0ug/defacemon/internal/fetcher"
)

// PageRenderer renders a site template without going over the network.
type PageRenderer interface {
	Render(name string) ([]byte, error)
}

// ManagerConfig holds the collaborators of a BaselineManager.
type ManagerConfig struct {
	Mode            Mode
	Protected       Protected
	StaticDir       string
	StaticURLPrefix string
	Database        database.Database
	Fetcher         fetcher.Fetcher // used in network mode
	Renderer        PageRenderer    // used in direct mode
	Logger          *logrus.Logger
	Now             func() time.Time
}

// BaselineManager creates, loads and deletes the trusted baseline.
type BaselineManager struct {
	Config ManagerConfig
	// sem serializes create and delete so concurrent admin calls do not
	// interleave their writes.
	sem *semaphore.Weighted
}

// NewBaselineManager initializes a new BaselineManager.
func NewBaselineManager(config ManagerConfig) *BaselineManager {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if config.StaticURLPrefix == "" {
		config.StaticURLPrefix = "/static/"
	}
	return &BaselineManager{
		Config: config,
		sem:    semaphore.NewWeighted(1),
	}
}

// Create captures a new baseline from url and replaces the stored one.
func (m *BaselineManager) Create(ctx context.Context, url string) (models.Baseline, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return models.Baseline{}, err
	}
	defer m.sem.Release(1)

	logger := m.Config.Logger.WithFields(logrus.Fields{
		"url":  url,
		"mode": m.Config.Mode,
	})

	body, contentType, err := m.pageContent(ctx, url)
	if err != nil {
		logger.WithError(err).Error("Failed to obtain page for baseline")
		return models.Baseline{}, err
	}

	doc, err := fetcher.Parse(body, contentType)
	if err != nil {
		return models.Baseline{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	baseline := models.Baseline{
		CreatedAt: m.Config.Now().UTC(),
		SourceURL: url,
		Zones:     models.ZoneSet{},
		Images:    models.ImageSet{},
	}

	for _, id := range m.Config.Protected.Zones {
		el := doc.FindByID(id)
		if el == nil {
			logger.WithField("zone", id).Debug("Zone not present, omitted from baseline")
			continue
		}
		hash, preview, err := zoneFingerprint(el)
		if err != nil {
			return models.Baseline{}, fmt.Errorf("zone %s: %w", id, err)
		}
		baseline.Zones = append(baseline.Zones, models.ZoneFingerprint{
			ID:      id,
			Hash:    hash,
			Preview: preview,
		})
	}

	paths := staticPaths{dir: m.Config.StaticDir, prefix: m.Config.StaticURLPrefix}
	for _, img := range m.Config.Protected.Images {
		full := filepath.Join(m.Config.StaticDir, filepath.FromSlash(img.Path))
		hash, size, err := imageFingerprint(full)
		if err != nil {
			if isNotExist(err) {
				logger.WithField("image", img.ID).Debug("Image not present, omitted from baseline")
				continue
			}
			return models.Baseline{}, fmt.Errorf("image %s: %w", img.ID, err)
		}
		baseline.Images = append(baseline.Images, models.ImageFingerprint{
			ID:   img.ID,
			Path: paths.publicPath(img.Path),
			Hash: hash,
			Size: size,
		})
	}

	if len(baseline.Zones) == 0 && len(baseline.Images) == 0 {
		logger.Warn("Baseline covers no zones and no images; checks will never detect changes")
	}

	if err := m.Config.Database.SaveBaseline(ctx, baseline); err != nil {
		return models.Baseline{}, fmt.Errorf("failed to save baseline: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"zones":  len(baseline.Zones),
		"images": len(baseline.Images),
	}).Info("Baseline created")
	return baseline, nil
}

// pageContent returns the markup the baseline is built from.
func (m *BaselineManager) pageContent(ctx context.Context, url string) ([]byte, string, error) {
	switch m.Config.Mode {
	case ModeNetwork:
		if m.Config.Fetcher == nil {
			return nil, "", fmt.Errorf("%w: no fetcher configured", ErrFetch)
		}
		body, contentType, err := m.Config.Fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrFetch, err)
		}
		return body, contentType, nil
	case ModeDirect:
		if m.Config.Renderer == nil {
			return nil, "", fmt.Errorf("%w: no renderer configured", ErrRender)
		}
		body, err := m.Config.Renderer.Render(fetcher.HomeTemplate)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrRender, err)
		}
		return body, "text/html; charset=utf-8", nil
	default:
		return nil, "", fmt.Errorf("unsupported mode: %s", m.Config.Mode)
	}
}

// Load returns the stored baseline.
func (m *BaselineManager) Load(ctx context.Context) (models.Baseline, error) {
	return m.Config.Database.LoadBaseline(ctx)
}

// Exists reports whether a baseline is stored.
func (m *BaselineManager) Exists(ctx context.Context) (bool, error) {
	return m.Config.Database.BaselineExists(ctx)
}

// Delete removes the stored baseline and reports whether there was one.
func (m *BaselineManager) Delete(ctx context.Context) (bool, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer m.sem.Release(1)

	deleted, err := m.Config.Database.DeleteBaseline(ctx)
	if err != nil {
		return false, err
	}
	if deleted {
		m.Config.Logger.Info("Baseline deleted")
	}
	return deleted, nil
}
