package notifications

import (
	"fmt"
	"strings"

	"github.com/containrrr/shoutrrr/pkg/router"
	"github.com/containrrr/shoutrrr/pkg/types"
	"github.com/sirupsen/logrus"
	"github.com/y0ug/defacemon/internal/database/models"
)

// Notifier handles sending notifications via Shoutrrr.
type Notifier struct {
	sr     *router.ServiceRouter
	logger *logrus.Logger
}

// NewNotifier initializes a new Notifier with the provided Shoutrrr URLs.
func NewNotifier(urls []string, logger *logrus.Logger) (*Notifier, error) {
	sr, err := router.New(nil, urls...)
	if err != nil {
		return nil, err
	}
	return &Notifier{sr: sr, logger: logger}, nil
}

// Send sends a notification message to all configured services.
func (n *Notifier) Send(title, message string) {
	params := types.Params{
		"title": title,
	}
	failed := false
	for _, err := range n.sr.Send(message, &params) {
		if err != nil {
			failed = true
			n.logger.WithError(err).Error("Failed to send notification")
		}
	}
	if !failed {
		n.logger.Info("Notification sent successfully")
	}
}

// NotifyDefacement announces a report that detected changes.
func (n *Notifier) NotifyDefacement(url string, report models.ChangeReport) {
	n.Send("Defacement detected", FormatReport(url, report))
}

// FormatReport renders a short plain-text digest of report.
func FormatReport(url string, report models.ChangeReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s on **%s** at %s\n", report.Summary, url, report.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))
	for _, c := range report.Changes {
		line := c.Description
		if c.Severity != "" {
			line = fmt.Sprintf("[%s] %s", c.Severity, line)
		}
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return strings.TrimRight(b.String(), "\n")
}
