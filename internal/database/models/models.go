package models

import (
	"time"
)

// Change types.
const (
	ChangeZone  = "zone"
	ChangeImage = "image"
)

// SeverityCritical marks a protected element that disappeared.
const SeverityCritical = "critical"

// ZoneFingerprint is the recorded state of one protected page zone.
type ZoneFingerprint struct {
	ID      string `json:"-"`
	Hash    string `json:"hash"`
	Preview string `json:"content_preview"`
}

// ImageFingerprint is the recorded state of one protected image file.
type ImageFingerprint struct {
	ID   string `json:"-"`
	Path string `json:"path"` // public path, e.g. /static/images/logo1.png
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Baseline is the trusted snapshot every check is compared against.
type Baseline struct {
	CreatedAt time.Time `json:"created_at"`
	SourceURL string    `json:"url"`
	Zones     ZoneSet   `json:"zones"`
	Images    ImageSet  `json:"images"`
}

// Summary returns the short view exposed by the status endpoints.
func (b *Baseline) Summary() BaselineSummary {
	return BaselineSummary{
		CreatedAt:   b.CreatedAt,
		ZonesCount:  len(b.Zones),
		ImagesCount: len(b.Images),
	}
}

// BaselineSummary describes a baseline without its fingerprints.
type BaselineSummary struct {
	CreatedAt   time.Time `json:"created_at"`
	ZonesCount  int       `json:"zones_count"`
	ImagesCount int       `json:"images_count"`
}

// Change is a single deviation from the baseline. Type selects which of the
// optional fields are populated.
type Change struct {
	Type           string `json:"type"`
	Zone           string `json:"zone,omitempty"`
	Image          string `json:"image,omitempty"`
	Path           string `json:"path,omitempty"`
	ExpectedHash   string `json:"expected_hash,omitempty"`
	CurrentHash    string `json:"current_hash,omitempty"`
	ExpectedSize   *int64 `json:"expected_size,omitempty"`
	CurrentSize    *int64 `json:"current_size,omitempty"`
	Description    string `json:"description"`
	CurrentPreview string `json:"current_preview,omitempty"`
	Severity       string `json:"severity,omitempty"`
}

// ChangeReport is the outcome of one defacement check.
type ChangeReport struct {
	Timestamp          time.Time `json:"timestamp"`
	DefacementDetected bool      `json:"defacement_detected"`
	Changes            []Change  `json:"changes"`
	Summary            string    `json:"summary"`
	Error              string    `json:"error,omitempty"`
}

// BaselineStatusResponse is the body of GET /baseline/status.
type BaselineStatusResponse struct {
	Exists   bool             `json:"exists"`
	Baseline *BaselineSummary `json:"baseline"`
}

// BaselineCreateResponse is the body of POST /baseline/create.
type BaselineCreateResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Baseline BaselineSummary `json:"baseline"`
}

// ResetResponse is the body of DELETE /baseline/reset.
type ResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
