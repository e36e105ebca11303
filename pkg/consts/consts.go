package consts

// Project configuration filenames
const (
	// ServiceConfigFile marks a service project
	ServiceConfigFile = "services.config.json"

	// ProjectConfigFile marks a standalone application project
	ProjectConfigFile = "project.config.json"
)

// Project layout
const (
	// ResourcesDir holds static application resources
	ResourcesDir = "res"

	// SourcesDir holds TypeScript/JavaScript sources
	SourcesDir = "src"

	// DistDir receives build output
	DistDir = "dist"

	// ChannelsFile defines the release channels for manifest generation
	ChannelsFile = "channels.yaml"
)

// Well-known manifest locations under ResourcesDir
const (
	// DemoManifestFile is the default demo manifest
	DemoManifestFile = "demo/app.json"

	// LocalProviderFile is the local demo provider manifest
	LocalProviderFile = "demo/app.local.json"

	// ProviderManifestFile is the provider manifest source
	ProviderManifestFile = "provider/app.json"

	// TestProviderFile is the test provider manifest
	TestProviderFile = "test/provider.json"
)

// Provider version tokens with dedicated resolution rules
const (
	// TokenLocal resolves against the local dev server
	TokenLocal = "local"

	// TokenStable resolves to the CDN release manifest
	TokenStable = "stable"

	// TokenStaging resolves to the CDN staging manifest
	TokenStaging = "staging"

	// TokenTesting resolves to the local test provider manifest
	TokenTesting = "testing"
)

// Runtime release channels
const (
	// ChannelStable is the default release channel
	ChannelStable = "stable"

	// ChannelAlpha is the alpha release channel
	ChannelAlpha = "alpha"

	// ChannelBeta is the beta release channel
	ChannelBeta = "beta"

	// ChannelCanary is the canary release channel
	ChannelCanary = "canary"

	// ChannelCanaryNext is the next-canary release channel
	ChannelCanaryNext = "canary-next"
)

// Project configuration keys
const (
	// KeyName is the project/service name
	KeyName = "NAME"

	// KeyTitle is the human-readable project title
	KeyTitle = "TITLE"

	// KeyPort is the dev server port
	KeyPort = "PORT"

	// KeyCDNLocation is the CDN base URL for deployed assets
	KeyCDNLocation = "CDN_LOCATION"

	// KeyInjectable marks a service as bundleable into the runtime
	KeyInjectable = "INJECTABLE"

	// KeyDemoManifest overrides the default demo manifest path
	KeyDemoManifest = "DEMO_MANIFEST"

	// KeyLauncher overrides the runtime launcher binary
	KeyLauncher = "LAUNCHER"

	// KeyVersion is bound during templating when a semver token resolves
	// through the CDN
	KeyVersion = "VERSION"
)

// DefaultLauncherBinary is the runtime launcher looked up on PATH when the
// configuration does not name one.
const DefaultLauncherBinary = "osprey-launcher"
