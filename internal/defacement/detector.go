package defacement

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/y0ug/defacemon/internal/database/models"
	"github.com/y0ug/defacemon/internal/fetcher"
)

const (
	summaryClean      = "No changes detected"
	summaryFetchError = "Error fetching page"
	summaryParseError = "Error parsing page"
)

// DetectorConfig holds the collaborators of a Detector.
type DetectorConfig struct {
	Fetcher         fetcher.Fetcher
	StaticDir       string
	StaticURLPrefix string
	Logger          *logrus.Logger
	Now             func() time.Time
}

// Detector compares the live page against a baseline.
type Detector struct {
	Config DetectorConfig
}

// NewDetector initializes a new Detector.
func NewDetector(config DetectorConfig) *Detector {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if config.StaticURLPrefix == "" {
		config.StaticURLPrefix = "/static/"
	}
	return &Detector{Config: config}
}

// Check fetches url and reports every zone and image that no longer matches
// baseline. It never fails: a page that cannot be fetched is reported through
// the Error field and is not counted as defacement.
func (d *Detector) Check(ctx context.Context, baseline models.Baseline, url string) models.ChangeReport {
	report := models.ChangeReport{
		Timestamp: d.Config.Now().UTC(),
		Changes:   []models.Change{},
		Summary:   summaryClean,
	}
	logger := d.Config.Logger.WithField("url", url)

	if d.Config.Fetcher == nil {
		logger.Error("Defacement check has no fetcher configured")
		report.Error = "Failed to fetch URL: no fetcher configured"
		report.Summary = summaryFetchError
		return report
	}

	body, contentType, err := d.Config.Fetcher.Fetch(ctx, url)
	if err != nil {
		logger.WithError(err).Warn("Defacement check could not fetch page")
		report.Error = fmt.Sprintf("Failed to fetch URL: %v", err)
		report.Summary = summaryFetchError
		return report
	}

	doc, err := fetcher.Parse(body, contentType)
	if err != nil {
		logger.WithError(err).Warn("Defacement check could not parse page")
		report.Error = fmt.Sprintf("Failed to parse page: %v", err)
		report.Summary = summaryParseError
		return report
	}

	for _, zone := range baseline.Zones {
		if c, changed := d.checkZone(doc, zone, logger); changed {
			report.Changes = append(report.Changes, c)
		}
	}

	paths := staticPaths{dir: d.Config.StaticDir, prefix: d.Config.StaticURLPrefix}
	for _, img := range baseline.Images {
		if c, changed := d.checkImage(paths, img, logger); changed {
			report.Changes = append(report.Changes, c)
		}
	}

	if n := len(report.Changes); n > 0 {
		report.DefacementDetected = true
		report.Summary = changeSummary(n)
		logger.WithField("changes", n).Warn("Defacement detected")
	}
	return report
}

func (d *Detector) checkZone(doc *fetcher.Document, zone models.ZoneFingerprint, logger *logrus.Entry) (models.Change, bool) {
	el := doc.FindByID(zone.ID)
	if el == nil {
		return models.Change{
			Type:        models.ChangeZone,
			Zone:        zone.ID,
			Description: fmt.Sprintf("Zone %q is missing from page", zone.ID),
			Severity:    models.SeverityCritical,
		}, true
	}

	hash, preview, err := zoneFingerprint(el)
	if err != nil {
		logger.WithError(err).WithField("zone", zone.ID).Error("Failed to fingerprint zone")
	}
	if hash == zone.Hash {
		return models.Change{}, false
	}
	return models.Change{
		Type:           models.ChangeZone,
		Zone:           zone.ID,
		ExpectedHash:   zone.Hash,
		CurrentHash:    hash,
		Description:    fmt.Sprintf("Zone %q content has been modified", zone.ID),
		CurrentPreview: preview,
	}, true
}

func (d *Detector) checkImage(paths staticPaths, img models.ImageFingerprint, logger *logrus.Entry) (models.Change, bool) {
	missing := models.Change{
		Type:        models.ChangeImage,
		Image:       img.ID,
		Path:        img.Path,
		Description: fmt.Sprintf("Image %q is missing", img.ID),
		Severity:    models.SeverityCritical,
	}

	full, err := paths.localPath(img.Path)
	if err != nil {
		logger.WithError(err).WithField("image", img.ID).Error("Baseline image path rejected")
		return missing, true
	}
	hash, size, err := imageFingerprint(full)
	if err != nil {
		if !isNotExist(err) {
			logger.WithError(err).WithField("image", img.ID).Error("Failed to read image")
			missing.Description = fmt.Sprintf("Image %q could not be read", img.ID)
		}
		return missing, true
	}
	if hash == img.Hash {
		return models.Change{}, false
	}

	expectedSize := img.Size
	return models.Change{
		Type:         models.ChangeImage,
		Image:        img.ID,
		Path:         img.Path,
		ExpectedHash: img.Hash,
		CurrentHash:  hash,
		ExpectedSize: &expectedSize,
		CurrentSize:  &size,
		Description:  fmt.Sprintf("Image %q has been replaced or modified", img.ID),
	}, true
}

func changeSummary(n int) string {
	if n == 1 {
		return "1 change detected"
	}
	return fmt.Sprintf("%d changes detected", n)
}
