package defacement

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Mode selects how the baseline page content is obtained.
type Mode string

const (
	// ModeNetwork fetches the page over HTTP.
	ModeNetwork Mode = "network"
	// ModeDirect renders the home template in-process.
	ModeDirect Mode = "direct"
)

// Config holds the defacement-specific configuration.
type Config struct {
	Mode            Mode
	DataDir         string
	StaticDir       string
	StaticURLPrefix string
	TemplateDir     string
	SiteTitle       string
	DefaultURL      string
	CreateTimeout   time.Duration
	CheckTimeout    time.Duration
	Protected       Protected
}

// LoadConfig loads defacement configuration from environment variables.
func LoadConfig() (*Config, error) {
	mode, err := resolveMode(os.Getenv("FETCH_MODE"), os.Getenv("PRODUCTION"), os.Getenv("VERCEL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Mode:            mode,
		DataDir:         envOr("DATA_DIR", "data"),
		StaticDir:       envOr("STATIC_DIR", "static"),
		StaticURLPrefix: "/static/",
		TemplateDir:     os.Getenv("TEMPLATE_DIR"),
		SiteTitle:       envOr("SITE_TITLE", "Government Portal"),
		DefaultURL:      envOr("DEFAULT_URL", "http://localhost:9000"),
		CreateTimeout:   secondsOr("CREATE_TIMEOUT_SECONDS", 10),
		CheckTimeout:    secondsOr("CHECK_TIMEOUT_SECONDS", 5),
		Protected:       DefaultProtected(),
	}

	if zones := parseZones(os.Getenv("PROTECTED_ZONES")); len(zones) > 0 {
		cfg.Protected.Zones = zones
	}
	if raw := os.Getenv("PROTECTED_IMAGES"); raw != "" {
		images, err := parseImages(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PROTECTED_IMAGES: %v", err)
		}
		cfg.Protected.Images = images
	}

	return cfg, nil
}

// resolveMode honours an explicit FETCH_MODE and otherwise falls back to the
// deployment signals: PRODUCTION=true or VERCEL=1 mean network mode.
func resolveMode(explicit, production, vercel string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(explicit))) {
	case ModeNetwork:
		return ModeNetwork, nil
	case ModeDirect:
		return ModeDirect, nil
	case "":
	default:
		return "", fmt.Errorf("unsupported FETCH_MODE: %s", explicit)
	}
	if strings.EqualFold(production, "true") || vercel == "1" {
		return ModeNetwork, nil
	}
	return ModeDirect, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func secondsOr(key string, def int) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(def) * time.Second
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		logrus.Infof("Invalid %s. Defaulting to %d seconds.", key, def)
		n = def
	}
	return time.Duration(n) * time.Second
}
