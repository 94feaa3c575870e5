package defacement

import (
	"context"

	"github.com/y0ug/defacemon/internal/database/models"
)

// ReportNotifier is told about every check that detected defacement.
type ReportNotifier interface {
	NotifyDefacement(url string, report models.ChangeReport)
}

// Service ties the baseline store to the detector for the HTTP layer.
type Service struct {
	Baselines  *BaselineManager
	Detector   *Detector
	Notifier   ReportNotifier // optional
	DefaultURL string
}

// Check loads the baseline and compares url against it. Loading errors
// (database.ErrBaselineNotFound, database.ErrCorruptBaseline) are returned;
// fetch problems are carried inside the report.
func (s *Service) Check(ctx context.Context, url string) (models.ChangeReport, error) {
	baseline, err := s.Baselines.Load(ctx)
	if err != nil {
		return models.ChangeReport{}, err
	}
	report := s.Detector.Check(ctx, baseline, url)
	if report.DefacementDetected && s.Notifier != nil {
		s.Notifier.NotifyDefacement(url, report)
	}
	return report, nil
}
