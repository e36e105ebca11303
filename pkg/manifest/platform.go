package manifest

import (
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// Window geometry applied when the source omits it
const (
	defaultWindowWidth  = 600
	defaultWindowHeight = 600
)

// ToPlatform re-projects a classic manifest into the platform snapshot
// shape. The conversion is one-way and lossy: the startup app becomes the
// only snapshot window, and out-of-schema startup properties are dropped.
func ToPlatform(m *types.Manifest) *types.PlatformManifest {
	platform := &types.PlatformManifest{
		LicenseKey: m.LicenseKey,
		Shortcut:   m.Shortcut,
		Runtime:    m.Runtime,
		Services:   m.Services,
		Platform:   &types.PlatformOptions{},
		Snapshot:   &types.Snapshot{Windows: []types.SnapshotWindow{}},
	}

	app := m.StartupApp
	if app == nil {
		return platform
	}

	platform.Platform.UUID = app.UUID
	platform.Platform.ApplicationIcon = app.Icon

	window := types.SnapshotWindow{
		URL:           app.URL,
		AutoShow:      true,
		Frame:         app.Frame,
		DefaultWidth:  defaultWindowWidth,
		DefaultHeight: defaultWindowHeight,
		DefaultTop:    app.DefaultTop,
		DefaultLeft:   app.DefaultLeft,
	}
	if app.AutoShow != nil {
		window.AutoShow = *app.AutoShow
	}
	if app.DefaultWidth != nil {
		window.DefaultWidth = *app.DefaultWidth
	}
	if app.DefaultHeight != nil {
		window.DefaultHeight = *app.DefaultHeight
	}

	platform.Snapshot.Windows = []types.SnapshotWindow{window}
	return platform
}
