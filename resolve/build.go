package resolve

import (
	"strings"

	"github.com/tidwall/btree"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protoschema/pbschema/scope"
	"github.com/protoschema/pbschema/tree"
)

// Index is the sorted, fully-qualified-name-to-node symbol table consulted
// by Projection.Build: a github.com/tidwall/btree.Map gives deterministic,
// sorted iteration (useful for diagnostics and dedup reporting) at O(log n)
// point lookups, matching the ordered-map role btree.Map plays in the
// teacher's own parser and report packages.
type Index struct {
	bt btree.Map[protoreflect.FullName, tree.Node]
}

// BuildIndex walks root's entire subtree and records every descendant by its
// fully-qualified name.
func BuildIndex(root *tree.Namespace) *Index {
	idx := &Index{}
	indexChildren(idx, root)
	return idx
}

func indexChildren(idx *Index, c tree.Container) {
	for _, child := range c.Children() {
		idx.bt.Set(child.FullName(), child)
		if cc, ok := child.(tree.Container); ok {
			indexChildren(idx, cc)
		}
	}
}

// Lookup finds a node by its exact fully-qualified name.
func (idx *Index) Lookup(name protoreflect.FullName) (tree.Node, bool) {
	return idx.bt.Get(name)
}

// Projection is the builder's resolved, cached, lookup-friendly view of a
// reflection tree (spec.md §4.6): resolution runs at most once between
// invalidations, and the projected index is cached for subsequent build()
// calls.
type Projection struct {
	root     *tree.Namespace
	resolved bool
	index    *Index
}

// NewProjection creates a Projection over root. Resolution has not run yet.
func NewProjection(root *tree.Namespace) *Projection {
	return &Projection{root: root}
}

// Resolved reports whether the resolution pass has already run.
func (p *Projection) Resolved() bool { return p.resolved }

// EnsureResolved runs the resolution pass unless it has already run since
// the last Invalidate, always walking from
// the tree's root rather than from whatever the insertion pointer happens
// to rest at. The insertion pointer is not reliably the root at the moment
// resolveAll runs — a bare define with no create afterward leaves it parked
// inside the just-defined namespace — and resolving from anywhere but the
// root would silently skip sibling subtrees outside it.
func (p *Projection) EnsureResolved() error {
	if p.resolved {
		return nil
	}
	if err := Pass(p.root); err != nil {
		return err
	}
	p.resolved = true
	p.index = BuildIndex(p.root)
	return nil
}

// Build ensures resolution has run, then returns the node at path (a dotted
// fully-qualified name, with or without a leading dot), or the root
// projection itself if path is empty. A path already split into segments is
// not accepted.
func (p *Projection) Build(path string) (tree.Node, bool, error) {
	if err := p.EnsureResolved(); err != nil {
		return nil, false, err
	}
	if path == "" {
		return p.root, true, nil
	}
	node, ok := p.index.Lookup(protoreflect.FullName(strings.TrimPrefix(path, ".")))
	return node, ok, nil
}

// Lookup returns the raw reflection node at path using the scope resolver
// anchored at the root, independent of whether resolution has run.
func (p *Projection) Lookup(path string, excludeNonNamespace bool) (tree.Node, bool) {
	if path == "" {
		return p.root, true
	}
	return scope.Resolve(p.root, path, excludeNonNamespace)
}

// Invalidate clears the cached resolved/indexed state, called whenever a
// successful ingestion call (create/import/define) mutates the tree after a
// prior resolveAll.
func (p *Projection) Invalidate() {
	p.resolved = false
	p.index = nil
}
