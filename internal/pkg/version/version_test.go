package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

// readBuildInfo를 교체하므로 병렬로 실행하지 않습니다.

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo, ok bool) {
	t.Helper()

	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, ok }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestEnrich_RuntimeFields(t *testing.T) {
	stubBuildInfo(t, nil, false)

	got := enrich(Info{Version: "v1.0.0", Commit: "abcdef0"})

	assert.Equal(t, "v1.0.0", got.Version)
	assert.Equal(t, "abcdef0", got.Commit)
	assert.Equal(t, runtime.Version(), got.GoVersion)
	assert.Equal(t, runtime.GOOS, got.OS)
	assert.Equal(t, runtime.GOARCH, got.Arch)
}

func TestEnrich_VCSFallback(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}, true)

	got := enrich(Info{})

	assert.Equal(t, "v0.3.1", got.Version)
	assert.Equal(t, "0123456789abcdef", got.Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", got.BuildDate)
	assert.True(t, got.DirtyBuild)
}

func TestEnrich_LdflagsTakePrecedence(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffff"}},
	}, true)

	got := enrich(Info{Version: "v2.0.0", Commit: "1111111"})

	assert.Equal(t, "v2.0.0", got.Version)
	assert.Equal(t, "1111111", got.Commit)
}

func TestEnrich_Unknown(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true)

	got := enrich(Info{})

	assert.Equal(t, unknown, got.Version)
	assert.Equal(t, unknown, got.Commit)
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"빈 정보", Info{}, "unknown"},
		{"버전만", Info{Version: "v1.0.0"}, "v1.0.0"},
		{
			"전체",
			Info{Version: "v1.0.0", Commit: "0123456789", BuildDate: "2026-01-01", GoVersion: "go1.24.0", OS: "linux", Arch: "amd64", DirtyBuild: true},
			"v1.0.0+dirty (commit: 0123456, date: 2026-01-01, go: go1.24.0, linux/amd64)",
		},
		{"unknown 커밋 생략", Info{Version: "v1.0.0", Commit: unknown}, "v1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestInfo_ToMap(t *testing.T) {
	m := Info{Version: "v1.0.0", Commit: "abc", DirtyBuild: true}.ToMap()

	assert.Equal(t, "v1.0.0", m["version"])
	assert.Equal(t, "abc", m["commit"])
	assert.Equal(t, true, m["dirty_build"])
	assert.Len(t, m, 7)
}

func TestGet_Stable(t *testing.T) {
	assert.Equal(t, Get(), Get())
	assert.NotEmpty(t, Get().Version)
}
