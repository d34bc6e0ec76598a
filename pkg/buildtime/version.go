// Package buildtime holds values fixed when the binary is built.
//
// VERSION and revision files beside this are overwritten by the build script.
package buildtime

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

//go:embed revision
var revision string

func init() {
	version = strings.TrimSpace(version)
	revision = strings.TrimSpace(revision)
}

// VERSION is the release version of this build.
func VERSION() string {
	return version
}

// GIT_REVISION is the commit hash of this build.
func GIT_REVISION() string {
	return revision
}

func VersionString() string {
	return version + " (commit: " + revision + ")"
}
