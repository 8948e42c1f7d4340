package netforge

import (
	"github.com/Masterminds/semver/v3"
)

// Version is the current version of the client.
// The version follows semantic versioning (MAJOR.MINOR.PATCH).
const Version = "1.2.0"

// UserAgent is the default User-Agent header sent with every request.
const UserAgent = "netforge/" + Version

// serverConstraint defines the range of NetBox-compatible server versions the
// client is known to work against. Bulk endpoints and token provisioning both
// predate 3.0, nothing newer than the 4.x API surface is assumed.
var serverConstraint *semver.Constraints

func init() {
	var err error
	serverConstraint, err = semver.NewConstraint(">= 3.0.0, < 5.0.0")
	if err != nil {
		panic(err)
	}
}

// IsServerCompatible reports whether the given server version is within the
// supported range. The version must be a valid semantic version string, as
// reported by the status endpoint's netbox-version field.
// Returns false for invalid version strings.
func IsServerCompatible(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return serverConstraint.Check(v)
}
