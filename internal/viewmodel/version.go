package viewmodel

import "github.com/Masterminds/semver/v3"

// Version is the runtime version reported by the `ayaka_version` command
// (spec.md §6). Parsed once at init through Masterminds/semver, the same
// library the plugin host uses for ABI constraint checking
// (internal/pluginhost/manifest.go), so a malformed literal fails at
// package init rather than surfacing as a confusing front-end string.
const Version = "0.1.0"

var parsedVersion = semver.MustParse(Version)

// AyakaVersion returns the runtime's semantic version string.
func AyakaVersion() string {
	return parsedVersion.String()
}
