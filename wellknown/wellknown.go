// Package wellknown recognizes the well-known descriptor files and
// google.protobuf.* symbols that the import composer and the ingestion
// engine must treat specially: their imports are skipped without being
// fetched and their extends are silently skipped (spec.md §4.3, §4.4). It is adapted
// from the teacher's wellknownimports package, which embedded the actual
// .proto sources for the standard imports; this builder never parses a
// well-known file, so only the manifest of recognized paths survives,
// matched with a glob instead of an exact string.
package wellknown

import (
	"bufio"
	"bytes"
	"embed"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

//go:embed manifest.txt
var manifestFS embed.FS

var manifest []string

func init() {
	data, err := manifestFS.ReadFile("manifest.txt")
	if err != nil {
		panic(err)
	}
	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		manifest = append(manifest, line)
	}
}

// IsWellKnownImportPath reports whether path (a relative import path, using
// "/" regardless of host OS) names a well-known descriptor file that the
// import composer should not attempt to fetch. Each manifest entry is
// matched as a doublestar pattern rather than a literal string, so a
// manifest line can later generalize to a whole subtree (e.g.
// "google/protobuf/**") without a second matching mechanism.
func IsWellKnownImportPath(path string) bool {
	for _, pattern := range manifest {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// IsWellKnownRef reports whether ref (a dotted, possibly leading-dot
// symbolic reference, as used by an `extend` block's ref field) names a
// google.protobuf.* internal descriptor symbol, per spec.md §4.3's "extend
// targets an internal descriptor path" clause.
func IsWellKnownRef(ref string) bool {
	return strings.HasPrefix(strings.TrimPrefix(ref, "."), "google.protobuf.")
}

// Paths returns the manifest of recognized well-known file paths, mostly
// useful for tests and diagnostics.
func Paths() []string {
	out := make([]string, len(manifest))
	copy(out, manifest)
	return out
}
