package defacement

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/y0ug/defacemon/internal/fetcher"
	"github.com/y0ug/defacemon/internal/hashutil"
)

const previewLength = 100

// zoneFingerprint hashes the normalized outer markup of el and captures a
// short preview of its visible text.
func zoneFingerprint(el *fetcher.Element) (hash, preview string, err error) {
	markup, err := el.OuterHTML()
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize zone: %w", err)
	}
	return hashutil.HashString(hashutil.NormalizeHTML(markup)), el.Preview(previewLength), nil
}

// imageFingerprint hashes the file at full and returns its size. A missing
// file yields an error matching fs.ErrNotExist.
func imageFingerprint(full string) (hash string, size int64, err error) {
	info, err := os.Stat(full)
	if err != nil {
		return "", 0, err
	}
	if info.IsDir() {
		return "", 0, fmt.Errorf("%s: %w", full, fs.ErrNotExist)
	}
	hash, err = hashutil.HashFile(full)
	if err != nil {
		return "", 0, err
	}
	return hash, info.Size(), nil
}

// staticPaths maps public image paths onto the static directory.
type staticPaths struct {
	dir    string
	prefix string
}

// publicPath returns the URL path an image is served under.
func (s staticPaths) publicPath(rel string) string {
	return s.prefix + strings.TrimPrefix(rel, "/")
}

// localPath resolves a stored public path to a file under the static root.
// Paths that would escape the root are rejected.
func (s staticPaths) localPath(public string) (string, error) {
	rel := strings.TrimPrefix(public, s.prefix)
	rel = strings.TrimPrefix(rel, "/")
	clean := path.Clean("/" + rel)[1:]
	if clean == "" || clean != rel {
		return "", fmt.Errorf("invalid image path %q", public)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
