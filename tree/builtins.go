package tree

import "google.golang.org/protobuf/reflect/protoreflect"

// Builtins is the "builtin type registry" external collaborator of
// spec.md §6: a constant mapping from builtin type names, as they appear in
// a field's declared type string, to their tag value. It deliberately
// reuses protoreflect.Kind rather than a hand-rolled enum, so a built schema
// speaks the same vocabulary as the rest of the protobuf-go ecosystem.
//
// enum, message, and group are not listed here: a field's declared type
// only ever names one of these builtins directly, or else a symbolic
// reference that the resolution pass turns into EnumKind, MessageKind, or
// GroupKind.
var Builtins = map[string]FieldType{
	"double":   protoreflect.DoubleKind,
	"float":    protoreflect.FloatKind,
	"int32":    protoreflect.Int32Kind,
	"int64":    protoreflect.Int64Kind,
	"uint32":   protoreflect.Uint32Kind,
	"uint64":   protoreflect.Uint64Kind,
	"sint32":   protoreflect.Sint32Kind,
	"sint64":   protoreflect.Sint64Kind,
	"fixed32":  protoreflect.Fixed32Kind,
	"fixed64":  protoreflect.Fixed64Kind,
	"sfixed32": protoreflect.Sfixed32Kind,
	"sfixed64": protoreflect.Sfixed64Kind,
	"bool":     protoreflect.BoolKind,
	"string":   protoreflect.StringKind,
	"bytes":    protoreflect.BytesKind,
}

// IsValidMapKeyType reports whether t is one of the builtins legal as a map
// key: any integral or bool or string kind, per spec.md invariant 7 ("never
// enums or messages"). Floating point types and bytes are excluded the same
// way real protobuf map keys exclude them.
func IsValidMapKeyType(t FieldType) bool {
	switch t {
	case protoreflect.Int32Kind, protoreflect.Int64Kind,
		protoreflect.Uint32Kind, protoreflect.Uint64Kind,
		protoreflect.Sint32Kind, protoreflect.Sint64Kind,
		protoreflect.Fixed32Kind, protoreflect.Fixed64Kind,
		protoreflect.Sfixed32Kind, protoreflect.Sfixed64Kind,
		protoreflect.BoolKind, protoreflect.StringKind:
		return true
	default:
		return false
	}
}
