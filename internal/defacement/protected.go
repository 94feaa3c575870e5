package defacement

import (
	"fmt"
	"path"
	"strings"
)

// ProtectedImage maps an image id to its path under the static root.
type ProtectedImage struct {
	ID   string
	Path string // relative to the static root, e.g. images/logo1.png
}

// Protected is the ordered set of zones and images a baseline covers.
type Protected struct {
	Zones  []string
	Images []ProtectedImage
}

// DefaultProtected returns the zones and images of the portal home page.
func DefaultProtected() Protected {
	return Protected{
		Zones: []string{"header", "sidebar", "footer"},
		Images: []ProtectedImage{
			{ID: "logo1", Path: "images/logo1.png"},
			{ID: "image2", Path: "images/image2.png"},
			{ID: "image1", Path: "images/image1.png"},
			{ID: "image3", Path: "images/image3.png"},
		},
	}
}

// parseZones reads a comma-separated zone list.
func parseZones(input string) []string {
	var zones []string
	for _, z := range strings.Split(input, ",") {
		if z = strings.TrimSpace(z); z != "" {
			zones = append(zones, z)
		}
	}
	return zones
}

// parseImages reads a comma-separated list of id=relative/path entries.
func parseImages(input string) ([]ProtectedImage, error) {
	var images []ProtectedImage
	for _, entry := range strings.Split(input, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, rel, ok := strings.Cut(entry, "=")
		id, rel = strings.TrimSpace(id), strings.TrimSpace(rel)
		if !ok || id == "" || rel == "" {
			return nil, fmt.Errorf("invalid image entry: %s", entry)
		}
		clean := path.Clean("/" + rel)[1:]
		if clean == "" || clean != strings.TrimPrefix(rel, "/") {
			return nil, fmt.Errorf("invalid image path in entry '%s'", entry)
		}
		images = append(images, ProtectedImage{ID: id, Path: clean})
	}
	return images, nil
}
