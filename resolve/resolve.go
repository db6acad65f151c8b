// Package resolve implements the resolution pass (spec.md §4.5) and the
// build projection (spec.md §4.6): binding every symbolic type reference
// left behind by ingestion, then making the resolved tree available by
// dotted path.
package resolve

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protoschema/pbschema/schemaerr"
	"github.com/protoschema/pbschema/scope"
	"github.com/protoschema/pbschema/tree"
)

// Pass walks the subtree rooted at ptr, binding every Field, ExtensionField,
// and RPCMethod type reference it finds. It is the entirety of resolveAll's
// work; callers (the Projection, or a Builder directly) are responsible for
// resetting the insertion pointer and latching the resolved flag afterward.
func Pass(ptr tree.Node) error {
	return walk(ptr)
}

func walk(n tree.Node) error {
	switch v := n.(type) {
	case *tree.Namespace:
		return walkChildren(v)
	case *tree.Message:
		return walkChildren(v)
	case *tree.Service:
		return walkChildren(v)
	case *tree.Enum:
		return nil
	case *tree.ExtensionField:
		return resolveFieldType(&v.Field, v.DeclaringScope())
	case *tree.Field:
		return resolveFieldType(v, v.Parent())
	case *tree.RPCMethod:
		return resolveMethod(v)
	case *tree.EnumValue, *tree.OneOf, *tree.Extension:
		return nil
	default:
		return schemaerr.New(schemaerr.InvalidDefinition, "", "unexpected node kind %T reached by the resolver", n)
	}
}

func walkChildren(c tree.Container) error {
	for _, child := range c.Children() {
		if err := walk(child); err != nil {
			return err
		}
	}
	return nil
}

// resolveFieldType binds f's declared type, resolving any symbolic reference
// against scope (the field's own parent for an ordinary field, or the
// declaring extend site for an extension field).
func resolveFieldType(f *tree.Field, scopeNode tree.Node) error {
	typeRef := f.TypeRef()

	if kind, ok := tree.Builtins[typeRef]; ok {
		f.Resolve(kind, nil)
	} else {
		if !scope.IsTypeRef(typeRef) {
			return schemaerr.New(schemaerr.UnresolvableType, typeRef, "does not match the type-reference grammar")
		}
		target, ok := scope.Resolve(scopeNode, typeRef, false)
		if !ok {
			return schemaerr.New(schemaerr.UnresolvableType, typeRef, "no such type visible from %s", scopeNode.FullName())
		}
		switch t := target.(type) {
		case *tree.Enum:
			if f.Syntax() == tree.Proto3 && t.Syntax() == tree.Proto2 {
				return schemaerr.New(schemaerr.SyntaxMismatch, typeRef, "proto3 field cannot reference proto2 enum %s", t.FullName())
			}
			f.Resolve(protoreflect.EnumKind, t)
		case *tree.Message:
			kind := protoreflect.MessageKind
			if t.IsGroup() {
				kind = protoreflect.GroupKind
			}
			f.Resolve(kind, t)
		default:
			return schemaerr.New(schemaerr.UnresolvableType, typeRef, "resolved to a %T, which is neither a message nor an enum", target)
		}
	}

	if f.IsMap() {
		keyKind, ok := tree.Builtins[f.KeyRef()]
		if !ok || !tree.IsValidMapKeyType(keyKind) {
			return schemaerr.New(schemaerr.IllegalKeyType, f.KeyRef(), "map key type must be a builtin integer, string, or bool type")
		}
		f.ResolveMapKey(keyKind)
	}
	return nil
}

func resolveMethod(m *tree.RPCMethod) error {
	svc := m.Parent()

	req, ok := scope.Resolve(svc, m.RequestName(), false)
	if !ok {
		return schemaerr.New(schemaerr.UnresolvableType, m.RequestName(), "rpc request type not found")
	}
	reqMsg, ok := req.(*tree.Message)
	if !ok {
		return schemaerr.New(schemaerr.UnresolvableType, m.RequestName(), "resolved to a %T, not a message", req)
	}

	resp, ok := scope.Resolve(svc, m.ResponseName(), false)
	if !ok {
		return schemaerr.New(schemaerr.UnresolvableType, m.ResponseName(), "rpc response type not found")
	}
	respMsg, ok := resp.(*tree.Message)
	if !ok {
		return schemaerr.New(schemaerr.UnresolvableType, m.ResponseName(), "resolved to a %T, not a message", resp)
	}

	m.Resolve(reqMsg, respMsg)
	return nil
}
