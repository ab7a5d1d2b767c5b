// Package version reports what a binary was built from: its own version,
// the VCS revision and the version of the injection engine it links.
//
// Version, GitCommit and BuildTime are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/inject/version.Version=1.0.0"
package version
