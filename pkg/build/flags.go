// SPDX-License-Identifier: MIT
//
// Package build carries the stripchart binary's identity: the command name
// and the version line printed by --version. Release builds stamp it with
// linker flags, for example
//
//	go build -ldflags "-X stripchart/pkg/build.buildVersion=v0.3.0 ..."
//
// Local builds keep the development identity.
package build

import "fmt"

// Description is the one-line summary shown in help output.
const Description = "Live waveform and spectrogram strip chart with plate export"

type ldFlags struct {
	Name    string // command name used in usage lines
	Time    string
	Commit  string
	Version string
}

// String is the --version line.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", f.Version, f.Commit, f.Time)
}

// Set with -X at link time.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var buildFlags = &ldFlags{
	Name:    "stripchart",
	Time:    "unknown",
	Commit:  "unknown",
	Version: "dev",
}

// Initialize adopts the linker-stamped identity. A partial stamp is
// rejected as a whole so the version line never mixes release and
// development values.
func Initialize() error {
	stamped := []struct {
		flag, value string
	}{
		{"BuildName", buildName},
		{"BuildTime", buildTime},
		{"BuildCommit", buildCommit},
		{"BuildVersion", buildVersion},
	}
	for _, s := range stamped {
		if s.value == "" {
			return fmt.Errorf("%s is required", s.flag)
		}
	}

	*buildFlags = ldFlags{
		Name:    buildName,
		Time:    buildTime,
		Commit:  buildCommit,
		Version: buildVersion,
	}
	return nil
}

// GetBuildFlags returns the identity the CLI reports.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
