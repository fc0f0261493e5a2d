package config

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// SetBuildFlags records build metadata injected through ldflags
func SetBuildFlags(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
}
