// Package build holds build-time information.
package build

// Build metadata, overwritten by linker flags in release builds.
var (
	// Version is the application version.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
