package tree

import "github.com/protoschema/pbschema/internal/arena"

// arenaSet is the collection of per-type arenas that back every node
// allocation in one reflection tree, rooted on the tree's anonymous
// Namespace. Keeping nodes on dedicated arenas, rather than allocating each
// with its own `new`, mirrors the teacher's arena-backed node storage in its
// AST and linker packages, adapted here from compressed integer handles to
// plain stable pointers since this tree has no serialized on-disk form to
// compress for.
type arenaSet struct {
	namespaces      arena.Arena[Namespace]
	messages        arena.Arena[Message]
	fields          arena.Arena[Field]
	extensionFields arena.Arena[ExtensionField]
	extensions      arena.Arena[Extension]
	oneofs          arena.Arena[OneOf]
	enums           arena.Arena[Enum]
	enumValues      arena.Arena[EnumValue]
	services        arena.Arena[Service]
	methods         arena.Arena[RPCMethod]
}

// arenasOf walks n's ancestor chain to the anonymous tree root and returns its
// arena set. Every node in a tree reachable from NewRoot has one, since
// NewRoot is the only way to introduce a root Namespace.
func arenasOf(n Node) *arenaSet {
	cur := n
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	root, ok := cur.(*Namespace)
	if !ok || root.arenas == nil {
		// Defensive only: every constructor in this package reaches the
		// root through a Namespace chain. A nil arena set here means a node
		// was built outside the exported constructors.
		return &arenaSet{}
	}
	return root.arenas
}
