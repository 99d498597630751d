package window

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
)

// Default development server addresses for the renderer bundles.
const (
	DefaultDevOverlayURL   = "http://localhost:5179/#/overlay"
	DefaultDevDashboardURL = "http://localhost:5174"
)

// OverlayRoute is the content route the overlay window loads.
const OverlayRoute = "/overlay"

// ContentURLs are the addresses each window loads.
type ContentURLs struct {
	Overlay   string
	Dashboard string
}

// ContentSource describes where window content comes from.
type ContentSource struct {
	Dev          bool
	DevOverlay   string
	DevDashboard string
	// ResourcesDir holds the packaged index.html.
	ResourcesDir string
	// Bridge is the command channel address handed to content as a query
	// parameter. Empty leaves URLs untouched.
	Bridge string
}

// Resolve builds the overlay and dashboard URLs.
func (s ContentSource) Resolve() (ContentURLs, error) {
	var overlay, dashboard *url.URL

	if s.Dev {
		var err error
		overlay, err = url.Parse(orDefault(s.DevOverlay, DefaultDevOverlayURL))
		if err != nil {
			return ContentURLs{}, fmt.Errorf("invalid dev overlay URL: %w", err)
		}
		dashboard, err = url.Parse(orDefault(s.DevDashboard, DefaultDevDashboardURL))
		if err != nil {
			return ContentURLs{}, fmt.Errorf("invalid dev dashboard URL: %w", err)
		}
	} else {
		if s.ResourcesDir == "" {
			return ContentURLs{}, errors.New("resources directory not configured")
		}
		dir, err := filepath.Abs(s.ResourcesDir)
		if err != nil {
			return ContentURLs{}, fmt.Errorf("failed to resolve resources directory: %w", err)
		}
		index := filepath.ToSlash(filepath.Join(dir, "index.html"))
		overlay = &url.URL{Scheme: "file", Path: index, Fragment: OverlayRoute}
		dashboard = &url.URL{Scheme: "file", Path: index}
	}

	if s.Bridge != "" {
		withBridge(overlay, s.Bridge)
		withBridge(dashboard, s.Bridge)
	}

	return ContentURLs{Overlay: overlay.String(), Dashboard: dashboard.String()}, nil
}

// withBridge adds the bridge query. The fragment carries the route and is
// left alone.
func withBridge(u *url.URL, bridge string) {
	q := u.Query()
	q.Set("bridge", bridge)
	u.RawQuery = q.Encode()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
