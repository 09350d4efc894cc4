// Package version exposes build information injected at link time.
package version

//nolint:gochecknoglobals // These variables are overridden with -ldflags at build time.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// BuildTime is the moment the binary was built.
	BuildTime = "unknown"
)

// projectURL is advertised to the catalog in the User-Agent header.
const projectURL = "https://github.com/oshokin/hifi-grabber"

// Short returns the bare version string.
func Short() string {
	return Version
}

// Full returns the version together with commit and build time.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}

// UserAgent returns the default User-Agent of the catalog client.
func UserAgent() string {
	return "hifi-grabber/" + Version + " (+" + projectURL + ")"
}
