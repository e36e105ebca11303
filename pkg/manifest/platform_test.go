package manifest_test

import (
	"testing"

	"github.com/ospreyhq/osprey-cli/pkg/manifest"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func TestToPlatformDefaults(t *testing.T) {
	m := &types.Manifest{
		LicenseKey: "lic-123",
		StartupApp: &types.StartupApp{
			UUID: "layouts-demo",
			URL:  "http://localhost:9000/demo/index.html",
			Icon: "http://localhost:9000/demo/icon.png",
		},
	}

	p := manifest.ToPlatform(m)

	if p.LicenseKey != "lic-123" {
		t.Errorf("LicenseKey = %q, want lic-123", p.LicenseKey)
	}
	if p.Platform.UUID != "layouts-demo" {
		t.Errorf("Platform.UUID = %q, want layouts-demo", p.Platform.UUID)
	}
	if p.Platform.ApplicationIcon != "http://localhost:9000/demo/icon.png" {
		t.Errorf("Platform.ApplicationIcon = %q", p.Platform.ApplicationIcon)
	}

	if len(p.Snapshot.Windows) != 1 {
		t.Fatalf("got %d snapshot windows, want 1", len(p.Snapshot.Windows))
	}
	w := p.Snapshot.Windows[0]
	if w.URL != "http://localhost:9000/demo/index.html" {
		t.Errorf("window URL = %q", w.URL)
	}
	if !w.AutoShow {
		t.Error("window should default to autoShow")
	}
	if w.DefaultWidth != 600 || w.DefaultHeight != 600 {
		t.Errorf("window geometry = %dx%d, want 600x600", w.DefaultWidth, w.DefaultHeight)
	}
}

func TestToPlatformExplicitGeometry(t *testing.T) {
	m := &types.Manifest{
		StartupApp: &types.StartupApp{
			UUID:          "layouts-demo",
			URL:           "http://localhost:9000/demo/index.html",
			AutoShow:      boolPtr(false),
			Frame:         boolPtr(false),
			DefaultWidth:  intPtr(1024),
			DefaultHeight: intPtr(768),
			DefaultTop:    intPtr(40),
			DefaultLeft:   intPtr(120),
		},
	}

	w := manifest.ToPlatform(m).Snapshot.Windows[0]
	if w.AutoShow {
		t.Error("explicit autoShow=false was overridden")
	}
	if w.Frame == nil || *w.Frame {
		t.Error("explicit frame=false was overridden")
	}
	if w.DefaultWidth != 1024 || w.DefaultHeight != 768 {
		t.Errorf("window geometry = %dx%d, want 1024x768", w.DefaultWidth, w.DefaultHeight)
	}
	if w.DefaultTop == nil || *w.DefaultTop != 40 {
		t.Errorf("window top = %v, want 40", w.DefaultTop)
	}
	if w.DefaultLeft == nil || *w.DefaultLeft != 120 {
		t.Errorf("window left = %v, want 120", w.DefaultLeft)
	}
}

func TestToPlatformCarriesOuterBlocks(t *testing.T) {
	m := &types.Manifest{
		Shortcut: &types.Shortcut{Name: "Layouts", Icon: "icon.ico"},
		Runtime:  &types.RuntimeOptions{Version: "stable", Arguments: "--v=1"},
		Services: []types.Service{{Name: "layouts", ManifestURL: "https://cdn.example.com/app.json"}},
		StartupApp: &types.StartupApp{
			UUID: "layouts-demo",
			URL:  "http://localhost:9000/demo/index.html",
		},
	}

	p := manifest.ToPlatform(m)
	if p.Shortcut == nil || p.Shortcut.Name != "Layouts" {
		t.Error("shortcut block was not carried over")
	}
	if p.Runtime == nil || p.Runtime.Version != "stable" {
		t.Error("runtime block was not carried over")
	}
	if len(p.Services) != 1 || p.Services[0].Name != "layouts" {
		t.Error("services block was not carried over")
	}
}

func TestToPlatformNoStartupApp(t *testing.T) {
	p := manifest.ToPlatform(&types.Manifest{LicenseKey: "lic-123"})
	if len(p.Snapshot.Windows) != 0 {
		t.Errorf("got %d snapshot windows, want 0", len(p.Snapshot.Windows))
	}
}
