// Package buildinfo stores build-time metadata shared across packages.
package buildinfo

// Version and Commit are set via ldflags during build.
var (
	Version = "dev"
	Commit  = "none"
)

// String formats the version line printed by `gridlaunch version`.
func String() string {
	return "gridlaunch " + Version + " (" + Commit + ")"
}
