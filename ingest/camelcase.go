package ingest

import (
	"strings"

	"github.com/rivo/uniseg"
)

// camelCase implements the convertFieldsToCamelCase option (spec.md §6):
// an extension field's original_name becomes originalName for its runtime
// key. It walks the name by grapheme cluster, not by byte or rune, so a
// multi-byte identifier segment adjacent to an underscore is never split
// mid-cluster.
func camelCase(name string) string {
	var b strings.Builder
	upperNext := false
	g := uniseg.NewGraphemes(name)
	for g.Next() {
		cluster := g.Str()
		if cluster == "_" {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteString(strings.ToUpper(cluster))
			upperNext = false
			continue
		}
		b.WriteString(cluster)
	}
	return b.String()
}
