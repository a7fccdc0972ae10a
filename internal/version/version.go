// Package version provides version information about the application.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time by the pipeline, e.g.
//
//	-ldflags "-X hello-eks/internal/version.Version=v1.0.0 -X hello-eks/internal/version.Commit=$GIT_SHA"
var (
	// Version is the git tag version number.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date of the build.
	BuildDate = "unknown"
)

// Info holds all the version information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

// Get returns the version information.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion

		for _, setting := range bi.Settings {
			switch setting.Key {
			case "-compiler":
				info.Compiler = setting.Value
			case "GOOS":
				info.Platform = setting.Value
			case "GOARCH":
				if info.Platform != "" {
					info.Platform += "/" + setting.Value
				}
			case "vcs.revision":
				if info.Commit == "unknown" {
					info.Commit = setting.Value
				}
			}
		}
	}

	if info.GoVersion == "" {
		info.GoVersion = runtime.Version()
	}
	if info.Platform == "" {
		info.Platform = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	}

	return info
}

// String renders the info for the --version flag.
func (i Info) String() string {
	return fmt.Sprintf("hello-eks version %s\n  commit: %s\n  built: %s (%s)\n  go: %s\n  platform: %s\n",
		i.Version, i.Commit, i.BuildDate, BuildAge(i.BuildDate, time.Now()), i.GoVersion, i.Platform)
}

// BuildAge returns a human-readable age of buildDate relative to now.
func BuildAge(buildDate string, now time.Time) string {
	if buildDate == "unknown" || buildDate == "" {
		return "unknown"
	}

	t, err := time.Parse(time.RFC3339, buildDate)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05Z", buildDate)
		if err != nil {
			return "unknown"
		}
	}

	duration := now.Sub(t)

	if duration < time.Hour {
		return fmt.Sprintf("%d minutes ago", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%d hours ago", int(duration.Hours()))
	} else if duration < 30*24*time.Hour {
		return fmt.Sprintf("%d days ago", int(duration.Hours()/24))
	} else if duration < 365*24*time.Hour {
		return fmt.Sprintf("%d months ago", int(duration.Hours()/(24*30)))
	}
	return fmt.Sprintf("%d years ago", int(duration.Hours()/(24*365)))
}
