// Package version records the server version and the schema version
// comparisons the store migrator relies on.
package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the service current released version.
var Version = "0.3.1"

// DevVersion is the service current development version.
var DevVersion = "0.3.1"

func GetCurrentVersion(mode string) string {
	if mode == "dev" {
		return DevVersion
	}
	return Version
}

// GetMinorVersion returns the minor version of the given version string,
// e.g. "0.3.1" -> "0.3".
func GetMinorVersion(version string) string {
	versionList := strings.Split(version, ".")
	if len(versionList) < 3 {
		return version
	}
	return versionList[0] + "." + versionList[1]
}

// GetSchemaVersion returns the schema version for the given server version.
// Schema versions track only major.minor plus a patch counter bumped by
// migration files, so a fresh install starts at <major.minor>.0.
func GetSchemaVersion(version string) string {
	return GetMinorVersion(version) + ".0"
}

// IsVersionGreaterOrEqualThan returns true if version >= target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(normalize(version), normalize(target)) >= 0
}

// IsVersionGreaterThan returns true if version > target.
func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare(normalize(version), normalize(target)) > 0
}

func normalize(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return fmt.Sprintf("v%s", version)
}
