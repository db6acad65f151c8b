// Package tree defines the reflection node types that make up a built
// schema: Namespace, Message, Field, ExtensionField, Extension, OneOf, Enum,
// EnumValue, Service, and RPCMethod. Nodes are created during ingestion,
// mutated only during resolution (to bind symbolic type references), and
// otherwise immutable for the life of a Builder.
package tree

import (
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Name and FullName reuse the protobuf reflection package's string types
// rather than introducing parallel ones, since a built schema is meant to be
// consumed the same way a compiled protobuf descriptor is.
type (
	Name        = protoreflect.Name
	FullName    = protoreflect.FullName
	FieldNumber = protoreflect.FieldNumber
	// FieldType is the resolved, tagged type of a field: a builtin scalar
	// kind, or EnumKind/MessageKind/GroupKind once a symbolic reference has
	// been bound by the resolution pass.
	FieldType = protoreflect.Kind
)

// Node is the capability shared by every element of the reflection tree:
// a name, and a parent (nil only for the root Namespace).
type Node interface {
	Name() Name
	Parent() Node
	FullName() FullName
}

// Container is a Node that owns an ordered set of named children. Namespace,
// Message, Enum, and Service are containers; Field, OneOf, EnumValue,
// Extension, and RPCMethod are leaves.
type Container interface {
	Node
	Child(Name) (Node, bool)
	Children() []Node
}

// container implements the bookkeeping shared by every node kind that holds
// named children. It's embedded by pointer so that Namespace, Message, Enum,
// and Service all get Name/Parent/FullName/Child/Children for free, while
// remaining distinguishable from one another by their own Go type — the
// classifier's "shape, not tag" philosophy carried into the reflection tree
// itself.
type container struct {
	name     Name
	parent   Node
	children []Node
	byName   map[Name]Node
}

func newContainer(name Name, parent Node) *container {
	return &container{
		name:   name,
		parent: parent,
		byName: make(map[Name]Node),
	}
}

func (c *container) Name() Name   { return c.name }
func (c *container) Parent() Node { return c.parent }

func (c *container) FullName() FullName {
	return fullName(c.parent, c.name)
}

func (c *container) Child(name Name) (Node, bool) {
	n, ok := c.byName[name]
	return n, ok
}

func (c *container) Children() []Node {
	return c.children
}

// add appends a child to the container, indexing it by name. A later add
// with a name already present shadows the earlier one in the by-name index
// but both remain in declaration order in Children(); spec.md's error
// taxonomy has no "duplicate name" kind, so this is intentionally lenient
// (see DESIGN.md).
func (c *container) add(n Node) {
	c.children = append(c.children, n)
	c.byName[n.Name()] = n
}

// fullName computes the dot-joined path from the root (exclusive) down to
// name, the way every Node's FullName is derived.
func fullName(parent Node, name Name) FullName {
	if parent == nil || parent.Parent() == nil && parent.Name() == "" {
		// parent is nil, or parent is the anonymous root: name is top-level.
		return FullName(name)
	}
	var b strings.Builder
	b.WriteString(string(parent.FullName()))
	b.WriteByte('.')
	b.WriteString(string(name))
	return FullName(b.String())
}
