package rowship

import "github.com/rerun-io/rowship/pkg/log"

// Version information for rowship.
const (
	// Version is the current version of rowship.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with
	// this version.
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersions returns the versions of rowship and its sub-modules.
func ModuleVersions() map[string]string {
	return map[string]string{
		"rowship": Version,
		"log":     log.Version,
	}
}
