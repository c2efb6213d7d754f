package main

import (
	"cmp"
	"runtime/debug"
)

// Stamped with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var version, commit, date string

// buildMeta is what --version prints.
type buildMeta struct {
	version string
	commit  string
	date    string
}

// currentBuild merges ldflags stamps with the module's embedded build
// information. Stamps win; missing values get placeholders.
func currentBuild() buildMeta {
	m := buildMeta{version: version, commit: commit, date: date}

	if info, ok := debug.ReadBuildInfo(); ok {
		m.version = cmp.Or(m.version, info.Main.Version)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				m.commit = cmp.Or(m.commit, shortRevision(s.Value))
			case "vcs.time":
				m.date = cmp.Or(m.date, s.Value)
			}
		}
	}

	m.version = cmp.Or(m.version, "(devel)")
	m.commit = cmp.Or(m.commit, "unknown")
	m.date = cmp.Or(m.date, "unknown")
	return m
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// versionTemplate is the cobra template printed for --version.
func versionTemplate() string {
	b := currentBuild()
	return "{{.Name}} version {{.Version}}\n" +
		"  commit: " + b.commit + "\n" +
		"  built:  " + b.date + "\n"
}
