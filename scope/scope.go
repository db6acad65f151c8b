// Package scope implements the scope resolver (spec.md §4.2): given a
// namespace node and a symbolic, possibly dotted and possibly
// fully-qualified name, find the node it refers to.
package scope

import (
	"regexp"
	"strings"

	"github.com/protoschema/pbschema/tree"
)

// identifier matches a single unqualified proto identifier segment.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsTypeName reports whether s is a builtin type name, the TYPE grammar of
// spec.md §6.
func IsTypeName(s string) bool {
	_, ok := tree.Builtins[s]
	return ok
}

// IsTypeRef reports whether s matches the TYPEREF grammar of spec.md §6: a
// dotted identifier, optionally prefixed with a leading dot for an absolute
// reference.
func IsTypeRef(s string) bool {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return false
	}
	for _, seg := range strings.Split(s, ".") {
		if !identifier.MatchString(seg) {
			return false
		}
	}
	return true
}

// Resolve looks up ref against from and, if the first attempt misses, its
// ancestors up to the tree root (spec.md §4.2 rule 1). If ref begins with a
// ".", the search starts at the root instead and only that one scope is
// tried. excludeNonNamespace, when set, rejects a hit that resolved to
// anything other than a plain *tree.Namespace (rule 3).
func Resolve(from tree.Node, ref string, excludeNonNamespace bool) (tree.Node, bool) {
	if from == nil || ref == "" {
		return nil, false
	}

	absolute := strings.HasPrefix(ref, ".")
	segments := strings.Split(strings.TrimPrefix(ref, "."), ".")

	if absolute {
		return descend(root(from), segments, excludeNonNamespace)
	}

	for s := from; s != nil; s = s.Parent() {
		if hit, ok := descend(s, segments, excludeNonNamespace); ok {
			return hit, true
		}
	}
	return nil, false
}

// root walks up to the anonymous root of the tree containing n.
func root(n tree.Node) tree.Node {
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

// descend consumes segments left-to-right, descending into named children
// of start. Any missing segment aborts (spec.md §4.2 rule 2).
func descend(start tree.Node, segments []string, excludeNonNamespace bool) (tree.Node, bool) {
	cur := start
	for _, seg := range segments {
		container, ok := cur.(tree.Container)
		if !ok {
			return nil, false
		}
		child, ok := container.Child(tree.Name(seg))
		if !ok {
			return nil, false
		}
		cur = child
	}
	if excludeNonNamespace {
		if _, ok := cur.(*tree.Namespace); !ok {
			return nil, false
		}
	}
	return cur, true
}
