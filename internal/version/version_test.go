package version

import (
	"strings"
	"testing"
)

func TestBanner(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	t.Cleanup(func() { GitCommit, BuildDate = origCommit, origDate })

	tests := []struct {
		commit, date string
		want         string
	}{
		{"", "", "swell " + Version + " go"},
		{"abc1234", "", "swell " + Version + " (abc1234) go"},
		{"abc1234", "2026-01-02", "swell " + Version + " (abc1234, 2026-01-02) go"},
	}
	for _, tt := range tests {
		GitCommit, BuildDate = tt.commit, tt.date
		if got := Banner(false); !strings.HasPrefix(got, tt.want) {
			t.Errorf("Banner() = %q, want prefix %q", got, tt.want)
		}
	}
}

func TestBannerColor(t *testing.T) {
	if strings.Contains(Banner(false), "\x1b[") {
		t.Error("plain banner has escapes")
	}
	if !strings.Contains(Banner(true), "\x1b[") {
		t.Error("colored banner has no escapes")
	}
}
