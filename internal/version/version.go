// Package version exposes build-time metadata for the gateway binary.
// Version, BuildDate and GitCommit are populated via -ldflags at build time.
package version

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// Set via: -ldflags "-X socialgate/internal/version.Version=..."
	Version = "unknown"

	// Set via: -ldflags "-X socialgate/internal/version.BuildDate=..."
	BuildDate = "unknown"

	// Set via: -ldflags "-X socialgate/internal/version.GitCommit=..."
	GitCommit = "unknown"
)

// Info holds build metadata plus per-process runtime identity.
type Info struct {
	Version    string    `json:"version"`
	GitCommit  string    `json:"git_commit"`
	BuildDate  string    `json:"build_date"`
	InstanceID string    `json:"instance_id"`
	Hostname   string    `json:"hostname"`
	StartedAt  time.Time `json:"started_at"`
}

var (
	once sync.Once
	info Info
)

// GetInfo returns build metadata and runtime information. The instance ID,
// hostname and start time are computed on first call and cached for the
// lifetime of the process.
func GetInfo() Info {
	once.Do(func() {
		info = Info{
			Version:    Version,
			GitCommit:  GitCommit,
			BuildDate:  BuildDate,
			InstanceID: uuid.New().String(),
			Hostname:   getHostname(),
			StartedAt:  time.Now(),
		}
	})
	return info
}

// Uptime reports how long the process has been running, truncated to seconds.
func (i Info) Uptime() time.Duration {
	if i.StartedAt.IsZero() {
		return 0
	}
	return time.Since(i.StartedAt).Truncate(time.Second)
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

// String formats version info for CLI display.
func (i Info) String() string {
	return fmt.Sprintf("socialgate version %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildDate)
}
