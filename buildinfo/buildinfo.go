package buildinfo

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// Build information variables set via ldflags during compilation
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var startTime = time.Now()

// Info contains build and runtime information
type Info struct {
	Version   string        `json:"version" example:"v1.0.0"`
	Commit    string        `json:"commit" example:"abc123def456"`
	BuildDate string        `json:"buildDate" example:"2025-11-22T10:00:00Z"`
	GoVersion string        `json:"goVersion" example:"go1.25.4"`
	Hostname  string        `json:"hostname" example:"devbox-01"`
	PID       int           `json:"pid" example:"4242"`
	Uptime    time.Duration `json:"uptime" swaggertype:"integer" example:"3600000000000"`
}

func GetInfo() Info {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Hostname:  hostname,
		PID:       os.Getpid(),
		Uptime:    time.Since(startTime),
	}
}

// String renders the info for the startup log line.
func (i Info) String() string {
	return fmt.Sprintf("Version: %s, Commit: %s, BuildDate: %s, GoVersion: %s, Hostname: %s, PID: %d",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Hostname, i.PID)
}

// SetStartTime overrides the start time used for uptime
func SetStartTime(t time.Time) {
	startTime = t
}
