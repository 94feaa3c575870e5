package database

import (
	"encoding/json"
	"fmt"

	"github.com/y0ug/defacemon/internal/database/models"
)

// encodeBaseline renders b as the indented, human-inspectable record document.
func encodeBaseline(b models.Baseline) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal baseline: %w", err)
	}
	return data, nil
}

// decodeBaseline parses a stored record, tagging any failure as corrupt.
func decodeBaseline(data []byte) (models.Baseline, error) {
	var b models.Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return models.Baseline{}, fmt.Errorf("%w: %v", ErrCorruptBaseline, err)
	}
	return b, nil
}
