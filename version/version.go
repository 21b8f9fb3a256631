package version

import (
	"fmt"
	"strings"
	"sync"
)

// validBuildCharacters is the alphabet of semantic versioning build metadata.
const validBuildCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-."

const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

// appBuild is overridden at build time with
// '-ldflags "-X github.com/kaspanet/bluedag/version.appBuild=foo"'.
// It's ignored unless it only contains validBuildCharacters.
var appBuild string

var (
	version     string
	versionOnce sync.Once
)

// Version returns the application version, with the build metadata appended
// when there is any.
func Version() string {
	versionOnce.Do(func() {
		version = formatVersion(appMajor, appMinor, appPatch, appBuild)
	})
	return version
}

func formatVersion(major, minor, patch uint, build string) string {
	version := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if isValidBuild(build) {
		version += "+" + build
	}
	return version
}

func isValidBuild(build string) bool {
	if build == "" {
		return false
	}
	return strings.IndexFunc(build, func(r rune) bool {
		return !strings.ContainsRune(validBuildCharacters, r)
	}) == -1
}
