package pluginhost

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
)

// HostABIVersion is the ABI version this host implements (spec.md §4.1). A
// plugin may ship an optional sidecar manifest declaring a minimum it
// requires; load fails with a LoadError if the host doesn't satisfy it.
const HostABIVersion = "1.0.0"

// manifest is the optional `<module>.manifest.yaml` sidecar next to a
// plugin's `.wasm` file.
type manifest struct {
	MinABI string `yaml:"min_abi"`
}

// checkABICompat reads wasmPath's sidecar manifest, if any, and verifies the
// host's ABI version satisfies its min_abi constraint. A missing sidecar or
// missing min_abi field is not an error — compatibility is assumed.
func checkABICompat(wasmPath string) error {
	manifestPath := strings.TrimSuffix(wasmPath, ".wasm") + ".manifest.yaml"
	data, err := os.ReadFile(manifestPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if m.MinABI == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(m.MinABI)
	if err != nil {
		return fmt.Errorf("invalid min_abi constraint %q: %w", m.MinABI, err)
	}
	hostVer, err := semver.NewVersion(HostABIVersion)
	if err != nil {
		return fmt.Errorf("invalid host ABI version %q: %w", HostABIVersion, err)
	}
	if !constraint.Check(hostVer) {
		return fmt.Errorf("host ABI %s does not satisfy required %s", HostABIVersion, m.MinABI)
	}
	return nil
}
