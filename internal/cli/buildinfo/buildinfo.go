package buildinfo

import "runtime"

// Build-time variables injected via -ldflags; defaults are used for dev builds.
var (
	version   = "0.1.0-dev"
	commit    = ""
	date      = ""
	builtBy   = ""
	goVersion = ""
)

// Version returns the semantic version string.
func Version() string {
	return version
}

// VersionSimple returns version number with short commit hash for --version flag.
func VersionSimple() string {
	v := version
	if commit != "" {
		if len(commit) >= 7 {
			v += " (" + commit[:7] + ")"
		} else {
			v += " (" + commit + ")"
		}
	}
	return v
}

// UserAgent is sent to the card office on every request.
func UserAgent() string {
	return "cardtrack/" + version + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}

// GoVersion returns the build-time Go version, falling back to the runtime's.
func GoVersion() string {
	if goVersion != "" {
		return goVersion
	}
	return runtime.Version()
}

// Commit returns the full commit hash if provided via -ldflags.
func Commit() string { return commit }

// BuildDate returns the build date, with the builder appended when known.
func BuildDate() string {
	if date == "" {
		return ""
	}
	if builtBy != "" {
		return date + " (" + builtBy + ")"
	}
	return date
}
