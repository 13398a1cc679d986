package version

import (
	"testing"
	"time"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.GitCommit == "" {
		t.Error("GitCommit should not be empty")
	}
	if info.BuildDate == "" {
		t.Error("BuildDate should not be empty")
	}
	if info.InstanceID == "" {
		t.Error("InstanceID should not be empty")
	}
	if info.Hostname == "" {
		t.Error("Hostname should not be empty")
	}
	if info.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}

	// Subsequent calls return the cached identity
	info2 := GetInfo()
	if info.InstanceID != info2.InstanceID {
		t.Errorf("InstanceID should be cached, got %s then %s", info.InstanceID, info2.InstanceID)
	}
	if !info.StartedAt.Equal(info2.StartedAt) {
		t.Errorf("StartedAt should be cached, got %s then %s", info.StartedAt, info2.StartedAt)
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		expected string
	}{
		{
			name: "full version info",
			info: Info{
				Version:   "1.2.3",
				GitCommit: "abc1234",
				BuildDate: "2026-02-21T10:00:00Z",
			},
			expected: "socialgate version 1.2.3 (commit: abc1234, built: 2026-02-21T10:00:00Z)",
		},
		{
			name: "unknown values",
			info: Info{
				Version:   "unknown",
				GitCommit: "unknown",
				BuildDate: "unknown",
			},
			expected: "socialgate version unknown (commit: unknown, built: unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.info.String()
			if result != tt.expected {
				t.Errorf("String() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestUptime(t *testing.T) {
	if got := (Info{}).Uptime(); got != 0 {
		t.Errorf("Uptime() with zero start = %v, want 0", got)
	}

	started := Info{StartedAt: time.Now().Add(-90 * time.Second)}
	got := started.Uptime()
	if got < 90*time.Second || got > 92*time.Second {
		t.Errorf("Uptime() = %v, want about 90s", got)
	}
	if got%time.Second != 0 {
		t.Errorf("Uptime() = %v, want whole seconds", got)
	}
}

func TestGetHostname(t *testing.T) {
	if getHostname() == "" {
		t.Error("getHostname() should return non-empty string")
	}
}
