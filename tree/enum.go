package tree

// Enum is an ordered set of EnumValue children.
type Enum struct {
	*container
	values []*EnumValue
	syntax Syntax
}

// NewEnum creates an Enum child of parent.
func NewEnum(parent Node, name Name, syntax Syntax) *Enum {
	e := arenasOf(parent).enums.New(Enum{container: newContainer(name, parent), syntax: syntax})
	if p, ok := parent.(Container); ok {
		addChild(p, e)
	}
	return e
}

func (e *Enum) Values() []*EnumValue { return e.values }
func (e *Enum) Syntax() Syntax       { return e.syntax }

// AddValue appends a new EnumValue.
func (e *Enum) AddValue(name Name, id int32) *EnumValue {
	v := arenasOf(e).enumValues.New(EnumValue{name: name, parent: e, id: id})
	e.values = append(e.values, v)
	e.container.add(v)
	return v
}

// EnumValue is a named, numbered member of an Enum.
type EnumValue struct {
	name   Name
	parent Node
	id     int32
}

func (v *EnumValue) Name() Name         { return v.name }
func (v *EnumValue) Parent() Node       { return v.parent }
func (v *EnumValue) FullName() FullName { return fullName(v.parent, v.name) }
func (v *EnumValue) ID() int32          { return v.id }
