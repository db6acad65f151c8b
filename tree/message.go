package tree

import (
	"golang.org/x/exp/constraints"
)

// Syntax is the schema dialect a message or enum was declared under.
type Syntax uint8

const (
	SyntaxUnknown Syntax = iota
	Proto2
	Proto3
)

// Rule is a field's cardinality.
type Rule uint8

const (
	RuleUnknown Rule = iota
	Required
	Optional
	Repeated
	// Map is not in spec.md's literal {required, optional, repeated} set, but
	// the same section requires a keyType attribute "only when rule=map" —
	// matching how protobuf.js itself represents map fields. See DESIGN.md.
	Map
)

// IDMin and IDMax are the legal bounds for a field or extension id, standing
// in for the "Id bounds" external collaborator of spec.md §6.
const (
	IDMin FieldNumber = 1
	IDMax FieldNumber = 536870911 // 2^29 - 1, protobuf's real field-number ceiling
)

// Clamp restricts v to [lo, hi], used when recording a message's extension
// range (spec.md invariant 1: "clamped to the global [ID_MIN, ID_MAX]").
func Clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ExtRange is a message's declared extension id range, inclusive on both
// ends.
type ExtRange struct {
	Lo, Hi FieldNumber
}

// Contains reports whether id falls within the range.
func (r ExtRange) Contains(id FieldNumber) bool {
	return id >= r.Lo && id <= r.Hi
}

// Message is a Namespace that additionally carries a declared field set, an
// optional extension range, a group flag (proto2 groups are represented as
// messages with this flag set), and a syntax tag.
type Message struct {
	*container

	fields          []*Field
	extensionFields []*ExtensionField
	fieldsByID      map[FieldNumber]FieldLike
	oneofs          []*OneOf
	oneofsByName    map[Name]*OneOf

	extRange    *ExtRange
	group       bool
	syntax      Syntax
}

// NewMessage creates a Message child of parent.
func NewMessage(parent Node, name Name, syntax Syntax) *Message {
	m := arenasOf(parent).messages.New(Message{
		container:    newContainer(name, parent),
		fieldsByID:   make(map[FieldNumber]FieldLike),
		oneofsByName: make(map[Name]*OneOf),
		syntax:       syntax,
	})
	if p, ok := parent.(Container); ok {
		addChild(p, m)
	}
	return m
}

func (m *Message) Fields() []*Field                   { return m.fields }
func (m *Message) ExtensionFields() []*ExtensionField  { return m.extensionFields }
func (m *Message) OneOfs() []*OneOf                    { return m.oneofs }
func (m *Message) Syntax() Syntax                      { return m.syntax }
func (m *Message) IsGroup() bool                       { return m.group }
func (m *Message) SetGroup(g bool)                     { m.group = g }
func (m *Message) ExtensionRange() (ExtRange, bool) {
	if m.extRange == nil {
		return ExtRange{}, false
	}
	return *m.extRange, true
}

// SetExtensionRange records lo..hi as the message's extension range, clamped
// to [IDMin, IDMax].
func (m *Message) SetExtensionRange(lo, hi FieldNumber) {
	m.extRange = &ExtRange{Lo: Clamp(lo, IDMin, IDMax), Hi: Clamp(hi, IDMin, IDMax)}
}

// OneOfByName looks up a oneof declared directly on this message.
func (m *Message) OneOfByName(name Name) (*OneOf, bool) {
	o, ok := m.oneofsByName[name]
	return o, ok
}

// AddOneOf declares a new oneof on the message.
func (m *Message) AddOneOf(name Name) *OneOf {
	o := arenasOf(m).oneofs.New(OneOf{name: name, parent: m})
	m.oneofs = append(m.oneofs, o)
	m.oneofsByName[name] = o
	m.container.add(o)
	return o
}

// FieldByID reports whether a field or extension field with the given id is
// already attached to the message — the uniqueness check of spec.md
// invariant 1.
func (m *Message) FieldByID(id FieldNumber) (FieldLike, bool) {
	f, ok := m.fieldsByID[id]
	return f, ok
}

// AddField attaches a newly-created, already id-checked Field to the
// message.
func (m *Message) AddField(f *Field) {
	f.parent = m
	m.fields = append(m.fields, f)
	m.fieldsByID[f.id] = f
	m.container.add(f)
}

// AddExtensionField attaches an already range/id-checked ExtensionField to
// the message (the target of the extend block), independent of the
// namespace in which the extend block itself appeared.
func (m *Message) AddExtensionField(f *ExtensionField) {
	f.parent = m
	m.extensionFields = append(m.extensionFields, f)
	m.fieldsByID[f.id] = f
	m.container.add(f)
}

// FieldLike is implemented by Field and ExtensionField: anything that
// occupies a field id slot on a Message.
type FieldLike interface {
	Node
	ID() FieldNumber
}

// Field is a leaf under a Message.
type Field struct {
	name    Name
	parent  Node
	rule    Rule
	id      FieldNumber
	typeRef string // raw declared type: a builtin name or a symbolic reference
	isMap   bool
	keyRef  string // raw declared map key type, set only when rule == Map

	options map[string]any
	oneof   *OneOf
	syntax  Syntax

	// Populated by the resolution pass.
	Type         FieldType
	KeyType      FieldType
	resolvedType Node // *Message or *Enum
}

// NewField constructs a field detached from any message; callers attach it
// with Message.AddField or ExtensionField wrapping. It is allocated on the
// arena of the root reachable from attachTo, which becomes the field's
// parent once AddField runs.
func NewField(attachTo Node, name Name, rule Rule, id FieldNumber, typeRef string, syntax Syntax) *Field {
	return arenasOf(attachTo).fields.New(Field{name: name, rule: rule, id: id, typeRef: typeRef, syntax: syntax})
}

func (f *Field) Name() Name       { return f.name }
func (f *Field) Parent() Node     { return f.parent }
func (f *Field) FullName() FullName { return fullName(f.parent, f.name) }
func (f *Field) ID() FieldNumber  { return f.id }
func (f *Field) Rule() Rule       { return f.rule }
func (f *Field) Syntax() Syntax   { return f.syntax }
func (f *Field) TypeRef() string  { return f.typeRef }
func (f *Field) IsMap() bool      { return f.isMap }
func (f *Field) KeyRef() string   { return f.keyRef }
func (f *Field) OneOf() *OneOf    { return f.oneof }
func (f *Field) ResolvedType() Node { return f.resolvedType }

// SetMapKey marks the field as a map field with the given raw key type.
func (f *Field) SetMapKey(keyRef string) {
	f.isMap = true
	f.keyRef = keyRef
}

// SetOneOf records the oneof f belongs to; invariant 4 requires the oneof to
// have been declared earlier in the same message, enforced by the caller
// (the ingestion engine) before calling this.
func (f *Field) SetOneOf(o *OneOf) {
	f.oneof = o
	o.fields = append(o.fields, f)
}

// Options returns the field's option table, creating it on first use.
func (f *Field) Options() map[string]any {
	if f.options == nil {
		f.options = make(map[string]any)
	}
	return f.options
}

// resolve is called by the resolution pass once the field's type has been
// bound.
func (f *Field) resolve(t FieldType, target Node) {
	f.Type = t
	f.resolvedType = target
}

// Resolve exposes field resolution to the resolve package without making the
// fields themselves exported-mutable from arbitrary callers.
func (f *Field) Resolve(t FieldType, target Node) { f.resolve(t, target) }

func (f *Field) ResolveMapKey(t FieldType) { f.KeyType = t }

// ExtensionField is a Field whose runtime key is rooted at the extend
// block's namespace rather than at the target message, per spec.md §3.
type ExtensionField struct {
	Field
	declaringScope Node // the namespace in which `extend` appeared
	extension      *Extension
}

// NewExtensionField constructs an extension field. effectiveName is the
// (possibly camelCased) name used for the runtime key; the original source
// name is kept only on the sibling Extension node.
func NewExtensionField(effectiveName Name, rule Rule, id FieldNumber, typeRef string, syntax Syntax, declaringScope Node) *ExtensionField {
	return arenasOf(declaringScope).extensionFields.New(ExtensionField{
		Field:          Field{name: effectiveName, rule: rule, id: id, typeRef: typeRef, syntax: syntax},
		declaringScope: declaringScope,
	})
}

// FullName overrides Field.FullName: an extension field's fully qualified
// name is rooted at the extend site, not at the target message it is
// attached to.
func (e *ExtensionField) FullName() FullName {
	return fullName(e.declaringScope, e.name)
}

// DeclaringScope returns the namespace the enclosing extend block appeared
// in, used to resolve the field's own type reference.
func (e *ExtensionField) DeclaringScope() Node { return e.declaringScope }

func (e *ExtensionField) Extension() *Extension { return e.extension }

// Extension is a thin wrapper node placed in the namespace where an extend
// block appeared. It preserves the original, pre-camelCase source name for
// user-visible naming, and back-points at the field it introduced.
type Extension struct {
	name   Name
	parent Node
	field  *ExtensionField
}

// NewExtension creates an Extension node and links it bidirectionally with
// its ExtensionField.
func NewExtension(originalName Name, parent Node, field *ExtensionField) *Extension {
	e := arenasOf(parent).extensions.New(Extension{name: originalName, parent: parent, field: field})
	field.extension = e
	if p, ok := parent.(Container); ok {
		addChild(p, e)
	}
	return e
}

func (e *Extension) Name() Name         { return e.name }
func (e *Extension) Parent() Node       { return e.parent }
func (e *Extension) FullName() FullName { return fullName(e.parent, e.name) }
func (e *Extension) Field() *ExtensionField { return e.field }

// OneOf is a named grouping of fields within one message.
type OneOf struct {
	name   Name
	parent Node
	fields []*Field
}

func (o *OneOf) Name() Name         { return o.name }
func (o *OneOf) Parent() Node       { return o.parent }
func (o *OneOf) FullName() FullName { return fullName(o.parent, o.name) }
func (o *OneOf) Fields() []*Field   { return o.fields }
