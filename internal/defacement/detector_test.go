package defacement

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/y0ug/defacemon/internal/database/models"
	"github.com/y0ug/defacemon/internal/fetcher"
	"github.com/y0ug/defacemon/internal/hashutil"
)

func baselineFor(t *testing.T, f *fixture, url string) models.Baseline {
	t.Helper()
	b, err := f.manager.Create(context.Background(), url)
	require.NoError(t, err)
	return b
}

func TestCheckUnchangedPageIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newSite(t, homePage)
	f := newFixture(t, DefaultProtected(), defaultImages)
	b := baselineFor(t, f, s.URL())

	for i := 0; i < 2; i++ {
		report := f.detector.Check(ctx, b, s.URL())
		require.False(t, report.DefacementDetected)
		require.Empty(t, report.Changes)
		require.NotNil(t, report.Changes)
		require.Equal(t, "No changes detected", report.Summary)
		require.Empty(t, report.Error)
		require.Equal(t, fixedNow(), report.Timestamp)
	}
}

func TestCheckDetectsModifiedZone(t *testing.T) {
	ctx := context.Background()
	s := newSite(t, `<div id="header">Welcome</div>`)
	f := newFixture(t, Protected{Zones: []string{"header"}}, nil)
	b := baselineFor(t, f, s.URL())
	h1 := b.Zones[0].Hash

	s.set(`<div id="header">Welcome!</div>`)
	report := f.detector.Check(ctx, b, s.URL())

	require.True(t, report.DefacementDetected)
	require.Equal(t, "1 change detected", report.Summary)
	require.Len(t, report.Changes, 1)

	c := report.Changes[0]
	require.Equal(t, models.ChangeZone, c.Type)
	require.Equal(t, "header", c.Zone)
	require.Equal(t, h1, c.ExpectedHash)
	require.Equal(t, hashutil.HashString(`<div id="header">Welcome!</div>`), c.CurrentHash)
	require.NotEqual(t, c.ExpectedHash, c.CurrentHash)
	require.Equal(t, "Welcome!", c.CurrentPreview)
	require.Equal(t, `Zone "header" content has been modified`, c.Description)
	require.Empty(t, c.Severity)
}

func TestCheckDetectsAttributeChange(t *testing.T) {
	ctx := context.Background()
	s := newSite(t, `<div id="footer"><a href="/contact">Contact</a></div>`)
	f := newFixture(t, Protected{Zones: []string{"footer"}}, nil)
	b := baselineFor(t, f, s.URL())

	s.set(`<div id="footer"><a href="http://evil.example">Contact</a></div>`)
	report := f.detector.Check(ctx, b, s.URL())
	require.True(t, report.DefacementDetected)
	require.Equal(t, "footer", report.Changes[0].Zone)
}

func TestCheckIgnoresWhitespaceReformatting(t *testing.T) {
	ctx := context.Background()
	s := newSite(t, homePage)
	f := newFixture(t, DefaultProtected(), nil)
	b := baselineFor(t, f, s.URL())

	reflowed := `<html><body><div id="header">Welcome</div>
<div id="sidebar"> <ul>
	<li>Departments</li>   <li>Services</li>
</ul> </div>
<div id="footer">Copyright</div></body></html>`
	s.set(reflowed)

	report := f.detector.Check(ctx, b, s.URL())
	require.False(t, report.DefacementDetected, "changes: %+v", report.Changes)
}

func TestCheckDetectsMissingZone(t *testing.T) {
	ctx := context.Background()
	s := newSite(t, homePage)
	f := newFixture(t, DefaultProtected(), nil)
	b := baselineFor(t, f, s.URL())

	s.set(strings.Replace(homePage, `<div id="footer">Copyright</div>`, "", 1))
	report := f.detector.Check(ctx, b, s.URL())

	require.True(t, report.DefacementDetected)
	require.Len(t, report.Changes, 1)
	c := report.Changes[0]
	require.Equal(t, models.ChangeZone, c.Type)
	require.Equal(t, "footer", c.Zone)
	require.Equal(t, models.SeverityCritical, c.Severity)
	require.Empty(t, c.ExpectedHash)
	require.Equal(t, `Zone "footer" is missing from page`, c.Description)
}

func TestCheckDetectsImageTamper(t *testing.T) {
	ctx := context.Background()
	s := newSite(t, homePage)
	f := newFixture(t, DefaultProtected(), defaultImages)
	b := baselineFor(t, f, s.URL())

	logo := filepath.Join(f.staticDir, "images", "logo1.png")
	require.NoError(t, os.WriteFile(logo, []byte("defaced-logo-bytes"), 0644))

	report := f.detector.Check(ctx, b, s.URL())
	require.True(t, report.DefacementDetected)
	require.Len(t, report.Changes, 1)

	c := report.Changes[0]
	require.Equal(t, models.ChangeImage, c.Type)
	require.Equal(t, "logo1", c.Image)
	require.Equal(t, "/static/images/logo1.png", c.Path)
	require.Equal(t, hashutil.HashString("logo-bytes"), c.ExpectedHash)
	require.Equal(t, hashutil.HashString("defaced-logo-bytes"), c.CurrentHash)
	require.Equal(t, int64(len("logo-bytes")), *c.ExpectedSize)
	require.Equal(t, int64(len("defaced-logo-bytes")), *c.CurrentSize)
	require.Equal(t, `Image "logo1" has been replaced or modified`, c.Description)
}

func TestCheckSameSizeImageSwapStillDetected(t *testing.T) {
	ctx := context.Background()
	s := newSite(t, homePage)
	f := newFixture(t, Protected{Images: []ProtectedImage{{ID: "logo1", Path: "images/logo1.png"}}},
		map[string]string{"images/logo1.png": "AAAA"})
	b := baselineFor(t, f, s.URL())

	require.NoError(t, os.WriteFile(filepath.Join(f.staticDir, "images", "logo1.png"), []byte("AAAB"), 0644))
	report := f.detector.Check(ctx, b, s.URL())
	require.Len(t, report.Changes, 1)
	require.Equal(t, *report.Changes[0].ExpectedSize, *report.Changes[0].CurrentSize)
}

func TestCheckDetectsMissingImage(t *testing.T) {
	ctx := context.Background()
	s := newSite(t, homePage)
	f := newFixture(t, DefaultProtected(), defaultImages)
	b := baselineFor(t, f, s.URL())

	require.NoError(t, os.Remove(filepath.Join(f.staticDir, "images", "image2.png")))
	report := f.detector.Check(ctx, b, s.URL())

	require.Len(t, report.Changes, 1)
	c := report.Changes[0]
	require.Equal(t, "image2", c.Image)
	require.Equal(t, models.SeverityCritical, c.Severity)
	require.Equal(t, `Image "image2" is missing`, c.Description)
	require.Nil(t, c.ExpectedSize)
}

func TestCheckOrdersZonesBeforeImages(t *testing.T) {
	ctx := context.Background()
	s := newSite(t, homePage)
	f := newFixture(t, DefaultProtected(), defaultImages)
	b := baselineFor(t, f, s.URL())

	s.set(`<div id="footer">Hacked</div>`)
	require.NoError(t, os.Remove(filepath.Join(f.staticDir, "images", "image3.png")))
	require.NoError(t, os.WriteFile(filepath.Join(f.staticDir, "images", "logo1.png"), []byte("x"), 0644))

	report := f.detector.Check(ctx, b, s.URL())
	got := []string{}
	for _, c := range report.Changes {
		got = append(got, c.Type+":"+c.Zone+c.Image)
	}
	require.Equal(t, []string{
		"zone:header", "zone:sidebar", "zone:footer",
		"image:logo1", "image:image3",
	}, got)
	require.Equal(t, "5 changes detected", report.Summary)
}

func TestCheckFetchFailureIsContained(t *testing.T) {
	ctx := context.Background()
	s := newSite(t, homePage)
	f := newFixture(t, DefaultProtected(), nil)
	b := baselineFor(t, f, s.URL())
	url := s.URL()
	s.srv.Close()

	report := f.detector.Check(ctx, b, url)
	require.False(t, report.DefacementDetected)
	require.Empty(t, report.Changes)
	require.NotNil(t, report.Changes)
	require.Equal(t, "Error fetching page", report.Summary)
	require.True(t, strings.HasPrefix(report.Error, "Failed to fetch URL: "), report.Error)
}

type stubFetcher struct {
	err error
}

func (s stubFetcher) Fetch(context.Context, string) ([]byte, string, error) {
	return nil, "", s.err
}

func TestCheckAlwaysUsesNetworkFetcher(t *testing.T) {
	// Even for a baseline built from the rendered template the check goes
	// through the fetcher.
	f := newFixture(t, DefaultProtected(), nil)
	f.manager.Config.Mode = ModeDirect
	b := baselineFor(t, f, "http://localhost:9000")

	f.detector.Config.Fetcher = stubFetcher{err: errors.New("connection refused")}
	report := f.detector.Check(context.Background(), b, "http://localhost:9000")
	require.Equal(t, "Failed to fetch URL: connection refused", report.Error)
}

func TestCheckTimesOut(t *testing.T) {
	ctx := context.Background()
	s := newSite(t, homePage)
	f := newFixture(t, DefaultProtected(), nil)
	b := baselineFor(t, f, s.URL())

	blocked := make(chan struct{})
	slow := httptest.NewServer(blockingHandler(blocked))
	defer slow.Close()
	defer close(blocked)

	f.detector.Config.Fetcher = fetcher.NewHTTPClient(100*time.Millisecond, 0)
	start := time.Now()
	report := f.detector.Check(ctx, b, slow.URL)
	require.Less(t, time.Since(start), 3*time.Second)
	require.NotEmpty(t, report.Error)
	require.False(t, report.DefacementDetected)
}

func TestCheckOversizedPageReportsError(t *testing.T) {
	ctx := context.Background()
	const sizeCap = 4096
	page := func(footer string) string {
		return `<html><body><div id="header">Welcome</div><div id="sidebar">Links</div>` +
			`<div id="footer">` + footer + `</div></body></html>`
	}
	padding := strings.Repeat("x", sizeCap)

	s := newSite(t, page(padding+"original footer"))
	f := newFixture(t, DefaultProtected(), nil)
	f.manager.Config.Fetcher = fetcher.NewHTTPClient(5*time.Second, sizeCap)
	f.detector.Config.Fetcher = fetcher.NewHTTPClient(5*time.Second, sizeCap)

	_, err := f.manager.Create(ctx, s.URL())
	require.ErrorIs(t, err, ErrFetch)
	require.ErrorIs(t, err, fetcher.ErrTooLarge)
	exists, err := f.manager.Exists(ctx)
	require.NoError(t, err)
	require.False(t, exists)

	s.set(page("original footer"))
	b := baselineFor(t, f, s.URL())

	// An edit hidden past the cap must not come back as a clean check.
	s.set(page(padding + "DEFACED BY ATTACKER"))
	report := f.detector.Check(ctx, b, s.URL())
	require.NotEqual(t, "No changes detected", report.Summary)
	require.Equal(t, "Error fetching page", report.Summary)
	require.Contains(t, report.Error, "too large")
}

func TestCheckWithoutFetcherReportsError(t *testing.T) {
	d := NewDetector(DetectorConfig{Logger: quietLogger(), Now: fixedNow})
	report := d.Check(context.Background(), models.Baseline{}, "http://localhost:9000")
	require.False(t, report.DefacementDetected)
	require.Equal(t, "Error fetching page", report.Summary)
	require.Equal(t, "Failed to fetch URL: no fetcher configured", report.Error)
}

func TestChangeSummary(t *testing.T) {
	require.Equal(t, "1 change detected", changeSummary(1))
	require.Equal(t, "2 changes detected", changeSummary(2))
}
