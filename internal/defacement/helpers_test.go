package defacement

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/y0ug/defacemon/internal/database"
	"github.com/y0ug/defacemon/internal/fetcher"
)

const homePage = `<!DOCTYPE html>
<html><body>
<div id="header">Welcome</div>
<div id="sidebar">
    <ul>
        <li>Departments</li>
        <li>Services</li>
    </ul>
</div>
<div id="content">Body text</div>
<div id="footer">Copyright</div>
</body></html>`

// site is a page server whose markup can be swapped between requests.
type site struct {
	mu   sync.Mutex
	html string
	srv  *httptest.Server
}

func newSite(t *testing.T, html string) *site {
	t.Helper()
	s := &site{html: html}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(s.html))
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *site) set(html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.html = html
}

func (s *site) URL() string {
	return s.srv.URL
}

// staticTree writes the given relative files under a temp static root.
func staticTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return dir
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

var fixedNow = func() time.Time {
	return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
}

type fixture struct {
	manager   *BaselineManager
	detector  *Detector
	db        *database.FileDB
	staticDir string
}

func newFixture(t *testing.T, protected Protected, files map[string]string) *fixture {
	t.Helper()
	staticDir := staticTree(t, files)
	db := database.NewFileDB(filepath.Join(t.TempDir(), "baseline.json"))
	logger := quietLogger()

	manager := NewBaselineManager(ManagerConfig{
		Mode:      ModeNetwork,
		Protected: protected,
		StaticDir: staticDir,
		Database:  db,
		Fetcher:   fetcher.NewHTTPClient(10*time.Second, 0),
		Renderer:  fetcher.NewRenderer("", "Portal"),
		Logger:    logger,
		Now:       fixedNow,
	})
	detector := NewDetector(DetectorConfig{
		Fetcher:   fetcher.NewHTTPClient(5*time.Second, 0),
		StaticDir: staticDir,
		Logger:    logger,
		Now:       fixedNow,
	})
	return &fixture{manager: manager, detector: detector, db: db, staticDir: staticDir}
}

var defaultImages = map[string]string{
	"images/logo1.png":  "logo-bytes",
	"images/image1.png": "image-one",
	"images/image2.png": "image-two",
	"images/image3.png": "image-three",
}

func blockingHandler(release <-chan struct{}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
}
