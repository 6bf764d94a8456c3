// SPDX-License-Identifier: MIT
package build

import (
	"os"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origFlags   ldFlags
)

func TestMain(m *testing.M) {
	origName, origTime, origCommit, origVersion = buildName, buildTime, buildCommit, buildVersion
	origFlags = *buildFlags

	exitCode := m.Run()

	buildName, buildTime, buildCommit, buildVersion = origName, origTime, origCommit, origVersion
	*buildFlags = origFlags
	os.Exit(exitCode)
}

func devFlags() *ldFlags {
	return &ldFlags{Name: "stripchart", Time: "unknown", Commit: "unknown", Version: "dev"}
}

func TestInitialize(t *testing.T) {
	full := ldFlags{Name: "stripchart", Time: "2025-04-13", Commit: "abcdef1", Version: "v0.3.0"}

	tests := []struct {
		name       string
		set        ldFlags
		wantErrMsg string
	}{
		{"missing name", ldFlags{Time: full.Time, Commit: full.Commit, Version: full.Version}, "BuildName is required"},
		{"missing time", ldFlags{Name: full.Name, Commit: full.Commit, Version: full.Version}, "BuildTime is required"},
		{"missing commit", ldFlags{Name: full.Name, Time: full.Time, Version: full.Version}, "BuildCommit is required"},
		{"missing version", ldFlags{Name: full.Name, Time: full.Time, Commit: full.Commit}, "BuildVersion is required"},
		{"all set", full, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buildFlags = devFlags()
			buildName, buildTime, buildCommit, buildVersion = tt.set.Name, tt.set.Time, tt.set.Commit, tt.set.Version

			err := Initialize()

			if tt.wantErrMsg != "" {
				if err == nil || err.Error() != tt.wantErrMsg {
					t.Fatalf("Initialize() error = %v, want %q", err, tt.wantErrMsg)
				}
				if *GetBuildFlags() != *devFlags() {
					t.Errorf("failed Initialize changed flags to %+v", *GetBuildFlags())
				}
				return
			}

			if err != nil {
				t.Fatalf("Initialize() unexpected error: %v", err)
			}
			if got := *GetBuildFlags(); got != tt.set {
				t.Errorf("GetBuildFlags() = %+v, want %+v", got, tt.set)
			}
		})
	}
}

func TestString(t *testing.T) {
	f := &ldFlags{Name: "stripchart", Time: "2025-04-13", Commit: "abcdef1", Version: "v0.3.0"}
	want := "v0.3.0 (commit abcdef1, built 2025-04-13)"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := devFlags().String(); got != "dev (commit unknown, built unknown)" {
		t.Errorf("dev String() = %q", got)
	}
}
