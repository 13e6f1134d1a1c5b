package version

import (
	"fmt"
	"net/http"
	"runtime"
)

// This variables are injected at build time.

// DSCKeysVersion hosts the version of the app.
var DSCKeysVersion = "development"

// Commit is the commit hash of the build
var Commit string

// BuildDate is the date it was built
var BuildDate string

// UserAgent returns the User-Agent sent with every request made by dsc-keys.
func UserAgent() string {
	return fmt.Sprintf("dsc-keys/%s (%s/%s)", DSCKeysVersion, runtime.GOOS, runtime.GOARCH)
}

// SetUserAgent sets the User-Agent header of req.
func SetUserAgent(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent())
}
