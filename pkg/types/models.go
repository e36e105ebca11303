package types

import (
	"encoding/json"
)

// ProjectKind distinguishes service projects from standalone applications
type ProjectKind string

const (
	// KindService is a project built around a background service with
	// client, provider and demo sub-apps
	KindService ProjectKind = "service"

	// KindApplication is a standalone desktop application project
	KindApplication ProjectKind = "application"
)

// Mode selects the URL space a manifest is rewritten for
type Mode string

const (
	// ModeDebug rewrites manifests against the local dev server
	ModeDebug Mode = "debug"

	// ModeDeploy rewrites manifests against the CDN location
	ModeDeploy Mode = "deploy"
)

// ServiceMode controls how a project's own service declaration is handled
// during a manifest rewrite
type ServiceMode string

const (
	// ServiceModeNormal keeps the service declaration and re-resolves its
	// manifest URL
	ServiceModeNormal ServiceMode = "normal"

	// ServiceModeNone strips the project's service declaration
	ServiceModeNone ServiceMode = "none"

	// ServiceModeInjected bundles the service into the runtime: the
	// declaration is removed and the startup app is annotated instead
	ServiceModeInjected ServiceMode = "injected"
)

// Manifest is the classic application descriptor consumed by the runtime
type Manifest struct {
	// LicenseKey identifies the licensee
	LicenseKey string `json:"licenseKey,omitempty"`

	// Devtools opens the devtools port when set
	DevtoolsPort int `json:"devtools_port,omitempty"`

	// StartupApp describes the main application window
	StartupApp *StartupApp `json:"startup_app,omitempty"`

	// Shortcut describes the desktop shortcut
	Shortcut *Shortcut `json:"shortcut,omitempty"`

	// Runtime selects the runtime build and its argument string
	Runtime *RuntimeOptions `json:"runtime,omitempty"`

	// Services lists the background services the application depends on
	Services []Service `json:"services,omitempty"`
}

// startupAppKeys are the fixed-schema keys of a startup_app block. Anything
// else round-trips through StartupApp.Extra.
var startupAppKeys = []string{
	"uuid", "name", "url", "icon",
	"autoShow", "frame", "saveWindowState",
	"defaultWidth", "defaultHeight", "defaultTop", "defaultLeft",
}

// StartupApp describes the main application window. The schema is fixed;
// out-of-schema properties (such as injected service annotations) live in
// Extra and are merged back on marshalling.
type StartupApp struct {
	// UUID uniquely identifies the application to the runtime
	UUID string `json:"uuid,omitempty"`

	// Name is the application name
	Name string `json:"name,omitempty"`

	// URL is the page loaded into the main window
	URL string `json:"url,omitempty"`

	// Icon is the window icon URL
	Icon string `json:"icon,omitempty"`

	// AutoShow shows the window as soon as it is created
	AutoShow *bool `json:"autoShow,omitempty"`

	// Frame enables the native window frame
	Frame *bool `json:"frame,omitempty"`

	// SaveWindowState restores window geometry between sessions
	SaveWindowState *bool `json:"saveWindowState,omitempty"`

	// DefaultWidth is the initial window width in pixels
	DefaultWidth *int `json:"defaultWidth,omitempty"`

	// DefaultHeight is the initial window height in pixels
	DefaultHeight *int `json:"defaultHeight,omitempty"`

	// DefaultTop is the initial window top offset in pixels
	DefaultTop *int `json:"defaultTop,omitempty"`

	// DefaultLeft is the initial window left offset in pixels
	DefaultLeft *int `json:"defaultLeft,omitempty"`

	// Extra holds properties outside the fixed schema
	Extra map[string]interface{} `json:"-"`
}

type startupAppFields StartupApp

// UnmarshalJSON decodes the fixed schema and collects unknown keys into Extra
func (s *StartupApp) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, (*startupAppFields)(s)); err != nil {
		return err
	}
	raw := make(map[string]interface{})
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range startupAppKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		s.Extra = raw
	}
	return nil
}

// MarshalJSON merges Extra back into the fixed-schema document
func (s StartupApp) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(startupAppFields(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return base, nil
	}
	merged := make(map[string]interface{})
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, value := range s.Extra {
		merged[key] = value
	}
	return json.Marshal(merged)
}

// SetExtra records an out-of-schema property on the startup app
func (s *StartupApp) SetExtra(key string, value interface{}) {
	if s.Extra == nil {
		s.Extra = make(map[string]interface{})
	}
	s.Extra[key] = value
}

// Shortcut describes the desktop shortcut created at install time
type Shortcut struct {
	// Company is the vendor name shown in the start menu
	Company string `json:"company,omitempty"`

	// Description is the shortcut tooltip
	Description string `json:"description,omitempty"`

	// Icon is the shortcut icon URL
	Icon string `json:"icon,omitempty"`

	// Name is the shortcut display name
	Name string `json:"name,omitempty"`
}

// RuntimeOptions selects the runtime build an application runs on
type RuntimeOptions struct {
	// Arguments is the argument string passed to the runtime process
	Arguments string `json:"arguments,omitempty"`

	// Version is a release channel name or a literal build number
	Version string `json:"version"`
}

// Service declares a background service dependency
type Service struct {
	// Name is the service name
	Name string `json:"name"`

	// ManifestURL locates the service's own manifest
	ManifestURL string `json:"manifestUrl,omitempty"`

	// Config is the service configuration payload, passed through untouched
	Config json.RawMessage `json:"config,omitempty"`
}

// PlatformManifest is the platform-style descriptor: a platform block plus
// a window snapshot instead of a single startup app
type PlatformManifest struct {
	// LicenseKey identifies the licensee
	LicenseKey string `json:"licenseKey,omitempty"`

	// Platform describes the platform identity
	Platform *PlatformOptions `json:"platform"`

	// Snapshot lists the windows restored at startup
	Snapshot *Snapshot `json:"snapshot"`

	// Shortcut describes the desktop shortcut
	Shortcut *Shortcut `json:"shortcut,omitempty"`

	// Runtime selects the runtime build and its argument string
	Runtime *RuntimeOptions `json:"runtime,omitempty"`

	// Services lists the background services the platform depends on
	Services []Service `json:"services,omitempty"`
}

// PlatformOptions identifies a platform application
type PlatformOptions struct {
	// UUID uniquely identifies the platform to the runtime
	UUID string `json:"uuid"`

	// ApplicationIcon is the platform icon URL
	ApplicationIcon string `json:"applicationIcon,omitempty"`
}

// Snapshot is the window layout restored when a platform starts
type Snapshot struct {
	// Windows lists the snapshot windows
	Windows []SnapshotWindow `json:"windows"`
}

// SnapshotWindow describes one window in a platform snapshot
type SnapshotWindow struct {
	// URL is the page loaded into the window
	URL string `json:"url,omitempty"`

	// AutoShow shows the window as soon as it is created
	AutoShow bool `json:"autoShow"`

	// Frame enables the native window frame
	Frame *bool `json:"frame,omitempty"`

	// DefaultWidth is the initial window width in pixels
	DefaultWidth int `json:"defaultWidth"`

	// DefaultHeight is the initial window height in pixels
	DefaultHeight int `json:"defaultHeight"`

	// DefaultTop is the initial window top offset in pixels
	DefaultTop *int `json:"defaultTop,omitempty"`

	// DefaultLeft is the initial window left offset in pixels
	DefaultLeft *int `json:"defaultLeft,omitempty"`
}
