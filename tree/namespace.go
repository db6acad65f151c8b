package tree

// Namespace is an ordered collection of child nodes plus a bag of
// file/package-level options. The root of a reflection tree is an anonymous
// Namespace; define creates further Namespaces to model proto packages.
type Namespace struct {
	*container
	options map[string]any
	arenas  *arenaSet // non-nil only on the anonymous root
}

// NewRoot creates the anonymous root Namespace of a fresh reflection tree.
// It is the sole node in any tree not allocated from an arena, since it is
// what every other node's arena lookup walks up to find.
func NewRoot() *Namespace {
	return &Namespace{container: newContainer("", nil), arenas: &arenaSet{}}
}

// NewNamespace creates a Namespace child of parent, named name.
func NewNamespace(parent Node, name Name) *Namespace {
	ns := arenasOf(parent).namespaces.New(Namespace{container: newContainer(name, parent)})
	if p, ok := parent.(Container); ok {
		addChild(p, ns)
	}
	return ns
}

// Options returns the namespace's option table, creating it on first use.
func (n *Namespace) Options() map[string]any {
	if n.options == nil {
		n.options = make(map[string]any)
	}
	return n.options
}

// MergeOptions merges opts onto the namespace's existing options, later
// values winning on key collision, mirroring the import composer's "merge
// json.options onto the current namespace" step.
func (n *Namespace) MergeOptions(opts map[string]any) {
	if len(opts) == 0 {
		return
	}
	dst := n.Options()
	for k, v := range opts {
		dst[k] = v
	}
}

// IsRoot reports whether n is the anonymous tree root.
func (n *Namespace) IsRoot() bool {
	return n.parent == nil
}

// addChild attaches child under parent's container bookkeeping. It's a
// package-level helper (rather than a Container method) because Container is
// a read-only interface to outside packages; only tree itself mutates it.
func addChild(parent Container, child Node) {
	if c, ok := parent.(interface{ addRaw(Node) }); ok {
		c.addRaw(child)
	}
}

func (n *Namespace) addRaw(child Node) { n.container.add(child) }
func (m *Message) addRaw(child Node)   { m.container.add(child) }
func (e *Enum) addRaw(child Node)      { e.container.add(child) }
func (s *Service) addRaw(child Node)   { s.container.add(child) }
