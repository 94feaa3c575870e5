package webserver

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// WebserverConfig holds the configuration for the webserver.
type WebserverConfig struct {
	ListenTo           string
	CorsAllowedOrigins []string
	RateLimitEnabled   bool
	RateLimitTimes     int
	RateLimitWindow    time.Duration
	TrustedProxies     []netip.Prefix
	Version            string
}

// NewWebserverConfig initializes the webserver configuration from environment variables.
func NewWebserverConfig() (*WebserverConfig, error) {
	config := &WebserverConfig{
		CorsAllowedOrigins: []string{
			"http://localhost:9000",
			"http://127.0.0.1:9000",
			"http://localhost:3000",
		},
		RateLimitEnabled: true,
		RateLimitTimes:   100,
		RateLimitWindow:  60 * time.Second,
		Version:          "1.0.0",
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	config.ListenTo = ":" + port

	corsAllowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if corsAllowedOrigins != "" {
		config.CorsAllowedOrigins = strings.Split(corsAllowedOrigins, ",")
	}

	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			logrus.Infof("Invalid RATE_LIMIT_ENABLED %q. Keeping rate limiting enabled.", v)
			enabled = true
		}
		config.RateLimitEnabled = enabled
	}

	if v := os.Getenv("RATE_LIMIT_TIMES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			logrus.Infof("Invalid RATE_LIMIT_TIMES. Defaulting to %d.", config.RateLimitTimes)
		} else {
			config.RateLimitTimes = n
		}
	}

	if v := os.Getenv("RATE_LIMIT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			logrus.Infof("Invalid RATE_LIMIT_SECONDS. Defaulting to %s.", config.RateLimitWindow)
		} else {
			config.RateLimitWindow = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		proxies, err := parseTrustedProxies(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TRUSTED_PROXIES: %w", err)
		}
		config.TrustedProxies = proxies
	}

	if v := os.Getenv("APP_VERSION"); v != "" {
		config.Version = v
	}

	return config, nil
}
