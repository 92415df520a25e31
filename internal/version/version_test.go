package version

import "testing"

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"dev", "none", "unknown", "dev (development build)"},
		{"v1.2.0", "abc1234", "2026-10-01", "v1.2.0 (commit: abc1234, built: 2026-10-01)"},
	}

	for _, tt := range tests {
		if got := FormatVersion(tt.version, tt.commit, tt.date); got != tt.want {
			t.Errorf("FormatVersion(%q) = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Name != Name || info.Version != Version || info.Commit != Commit || info.Date != Date {
		t.Errorf("Get() = %+v", info)
	}
	if !info.Dev {
		t.Error("default build should report Dev")
	}
}

func TestGet_Release(t *testing.T) {
	saved := Version
	t.Cleanup(func() { Version = saved })

	Version = "v1.0.0"
	if Get().Dev {
		t.Error("tagged build should not report Dev")
	}
	if got := GetVersion(); got != "v1.0.0 (commit: "+Commit+", built: "+Date+")" {
		t.Errorf("GetVersion() = %q", got)
	}
}
