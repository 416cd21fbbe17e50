package build

import "fmt"

// Set at link time, e.g. -ldflags "-X github.com/rohmanhakim/newsfeed/internal/build.Version=1.2.0".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// UserAgent is the default User-Agent header for feed requests.
func UserAgent() string {
	return fmt.Sprintf("newsfeed/%s", Version)
}
