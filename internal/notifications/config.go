package notifications

import (
	"os"
	"strings"
)

// NotificationConfig holds the notification-related configuration.
type NotificationConfig struct {
	ShoutrrrURLs []string
}

// Enabled reports whether any notification target is configured.
func (c *NotificationConfig) Enabled() bool {
	return len(c.ShoutrrrURLs) > 0
}

// LoadNotificationConfig loads notification configuration from environment
// variables. SHOUTRRR_URLS is optional; without it notifications are off.
func LoadNotificationConfig() (*NotificationConfig, error) {
	return &NotificationConfig{
		ShoutrrrURLs: parseShoutrrrURLs(os.Getenv("SHOUTRRR_URLS")),
	}, nil
}

// parseShoutrrrURLs parses a comma-separated list of Shoutrrr URLs.
func parseShoutrrrURLs(urls string) []string {
	var result []string
	for _, url := range strings.Split(urls, ",") {
		trimmed := strings.TrimSpace(url)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
