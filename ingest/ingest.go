// Package ingest implements the ingestion engine (spec.md §4.3): the
// iterative, stack-based descent that turns a tree of descriptor records
// into reflection nodes under a moving insertion pointer.
package ingest

import (
	"sort"
	"strings"

	"github.com/protoschema/pbschema/classify"
	"github.com/protoschema/pbschema/desc"
	"github.com/protoschema/pbschema/schemaerr"
	"github.com/protoschema/pbschema/scope"
	"github.com/protoschema/pbschema/tree"
	"github.com/protoschema/pbschema/wellknown"
)

// Options configures ingestion behavior recognized by spec.md §6.
type Options struct {
	// ConvertFieldsToCamelCase rewrites extension field names to camelCase
	// for the runtime key only; the sibling Extension node keeps the
	// original name.
	ConvertFieldsToCamelCase bool
}

// Engine drives ingestion against a single reflection tree. It is not safe
// for concurrent use; spec.md §5 documents the builder as single-threaded.
type Engine struct {
	root *tree.Namespace
	ptr  tree.Node
	opts Options
}

// New creates an Engine whose insertion pointer starts at root.
func New(root *tree.Namespace, opts Options) *Engine {
	return &Engine{root: root, ptr: root, opts: opts}
}

// Pointer returns the current insertion pointer.
func (e *Engine) Pointer() tree.Node { return e.ptr }

// SetPointer repositions the insertion pointer directly, used by the import
// composer to save/restore around a sequence of create() calls (spec.md
// §4.4).
func (e *Engine) SetPointer(n tree.Node) { e.ptr = n }

// Reset moves the insertion pointer back to the root.
func (e *Engine) Reset() { e.ptr = e.root }

// Define walks dotted, creating any missing Namespace segment and reusing
// any that already exists, then leaves the insertion pointer at the final
// segment (spec.md §4.3).
func (e *Engine) Define(dotted string) error {
	if !scope.IsTypeRef(dotted) {
		return schemaerr.New(schemaerr.IllegalNamespace, dotted, "does not match the type-reference grammar")
	}
	segments := strings.Split(strings.TrimPrefix(dotted, "."), ".")
	cur := tree.Node(e.root)
	for _, seg := range segments {
		container, ok := cur.(tree.Container)
		if !ok {
			return schemaerr.New(schemaerr.IllegalNamespace, dotted, "%q is not a namespace", cur.FullName())
		}
		if child, ok := container.Child(tree.Name(seg)); ok {
			ns, ok := child.(*tree.Namespace)
			if !ok {
				return schemaerr.New(schemaerr.IllegalNamespace, dotted, "%q is already defined as a non-namespace", seg)
			}
			cur = ns
			continue
		}
		cur = tree.NewNamespace(cur, tree.Name(seg))
	}
	e.ptr = cur
	return nil
}

// Create processes one or more descriptor records with the insertion
// pointer's iterative, explicit-stack nested descent (spec.md §4.3): a
// message's nested messages/enums/services are processed before its
// siblings, without recursing the Go call stack.
func (e *Engine) Create(defs ...desc.Record) error {
	if len(defs) == 0 {
		return nil
	}
	stack := [][]desc.Record{defs}
	for len(stack) > 0 {
		n := len(stack) - 1
		list := stack[n]
		stack = stack[:n]

		for len(list) > 0 {
			def := list[0]
			list = list[1:]

			kind, err := classify.Classify(def)
			if err != nil {
				return err
			}
			switch kind {
			case classify.Message:
				m, nested, err := e.createMessage(def)
				if err != nil {
					return err
				}
				if len(nested) > 0 {
					// Push the remainder even when empty, so that every
					// descent is matched by one step back to the parent.
					stack = append(stack, list)
					list = nested
					e.ptr = m
					continue
				}
			case classify.Enum:
				if err := e.createEnum(def); err != nil {
					return err
				}
			case classify.Service:
				if err := e.createService(def); err != nil {
					return err
				}
			case classify.Extend:
				if err := e.createExtend(def); err != nil {
					return err
				}
			default:
				return schemaerr.New(schemaerr.InvalidDefinition, "", "unclassified definition reached ingestion")
			}
		}

		if p := e.ptr.Parent(); p != nil {
			e.ptr = p
		}
	}
	return nil
}

func parseSyntax(s string) tree.Syntax {
	switch s {
	case "proto3":
		return tree.Proto3
	case "proto2":
		return tree.Proto2
	default:
		// spec.md leaves an unspecified syntax undefined; real protobuf
		// treats it as proto2 (with a warning this library has no channel
		// for), so we do the same for compatibility purposes.
		return tree.Proto2
	}
}

func parseRule(s string) tree.Rule {
	switch s {
	case "required":
		return tree.Required
	case "optional":
		return tree.Optional
	case "repeated":
		return tree.Repeated
	case "map":
		return tree.Map
	default:
		return tree.RuleUnknown
	}
}

func setOptions(rec desc.Record, dst func() map[string]any, name string) error {
	raw, ok := rec["options"]
	if !ok {
		return nil
	}
	m, ok := rec.Map("options")
	if !ok {
		return schemaerr.New(schemaerr.IllegalOptions, name, "options present but not a mapping (got %T)", raw)
	}
	d := dst()
	for k, v := range m {
		d[k] = v
	}
	return nil
}

// createMessage creates a Message under the current pointer, along with its
// oneofs and declared fields, and returns any nested message/enum/service
// records for the caller's stack-based descent.
func (e *Engine) createMessage(def desc.Record) (*tree.Message, []desc.Record, error) {
	name, _ := def.String("name")
	syntax := parseSyntax(mustString(def, "syntax"))
	m := tree.NewMessage(e.ptr, tree.Name(name), syntax)
	m.SetGroup(def.Bool("group"))

	if oneofs, ok := def.Map("oneofs"); ok {
		names := make([]string, 0, len(oneofs))
		for k := range oneofs {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, n := range names {
			m.AddOneOf(tree.Name(n))
		}
	}

	for _, f := range def.Records("fields") {
		if err := e.addMessageField(m, f, syntax); err != nil {
			return nil, nil, err
		}
	}

	if rng, ok := def.Slice("extensions"); ok && len(rng) == 2 {
		lo, _ := toInt(rng[0])
		hi, _ := toInt(rng[1])
		m.SetExtensionRange(tree.FieldNumber(lo), tree.FieldNumber(hi))
	}

	nested := def.Records("messages")
	nested = append(nested, def.Records("enums")...)
	nested = append(nested, def.Records("services")...)
	return m, nested, nil
}

func (e *Engine) addMessageField(m *tree.Message, f desc.Record, syntax tree.Syntax) error {
	idN, _ := f.Int("id")
	id := tree.FieldNumber(idN)
	fieldName, _ := f.String("name")
	fullName := string(m.FullName()) + "." + fieldName

	if _, exists := m.FieldByID(id); exists {
		return schemaerr.New(schemaerr.DuplicateFieldID, fullName, "field id %d already used on %s", id, m.FullName())
	}

	ruleStr, _ := f.String("rule")
	rule := parseRule(ruleStr)
	typeRef, _ := f.String("type")

	field := tree.NewField(m, tree.Name(fieldName), rule, id, typeRef, syntax)

	if oneofName, ok := f.String("oneof"); ok {
		oneof, ok := m.OneOfByName(tree.Name(oneofName))
		if !ok {
			return schemaerr.New(schemaerr.IllegalOneOf, fullName, "oneof %q not declared in %s", oneofName, m.FullName())
		}
		field.SetOneOf(oneof)
	}

	if rule == tree.Map {
		keyRef, _ := f.String("keyType")
		field.SetMapKey(keyRef)
	}

	if err := setOptions(f, field.Options, fullName); err != nil {
		return err
	}

	m.AddField(field)
	return nil
}

func (e *Engine) createEnum(def desc.Record) error {
	name, _ := def.String("name")
	syntax := parseSyntax(mustString(def, "syntax"))
	en := tree.NewEnum(e.ptr, tree.Name(name), syntax)
	for _, v := range def.Records("values") {
		vname, _ := v.String("name")
		id, _ := v.Int("id")
		en.AddValue(tree.Name(vname), int32(id))
	}
	return nil
}

func (e *Engine) createService(def desc.Record) error {
	name, _ := def.String("name")
	svc := tree.NewService(e.ptr, tree.Name(name))

	rpc, _ := def.Map("rpc")
	names := make([]string, 0, len(rpc))
	for k := range rpc {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, methodName := range names {
		raw, _ := rpc[methodName].(map[string]any)
		rec := desc.Record(raw)
		reqName, _ := rec.String("requestType")
		respName, _ := rec.String("responseType")
		method := svc.AddMethod(tree.Name(methodName), reqName, respName, rec.Bool("requestStream"), rec.Bool("responseStream"))
		if err := setOptions(rec, method.Options, string(svc.FullName())+"."+methodName); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) createExtend(def desc.Record) error {
	ref, _ := def.String("ref")

	target, ok := scope.Resolve(e.ptr, ref, false)
	if !ok {
		if wellknown.IsWellKnownRef(ref) {
			// Compatibility with well-known descriptor extensions this
			// builder has no target for: silently skip (spec.md §4.3).
			return nil
		}
		return schemaerr.New(schemaerr.ExtendedNotDefined, ref, "extend target not defined")
	}
	targetMsg, ok := target.(*tree.Message)
	if !ok {
		return schemaerr.New(schemaerr.ExtendedNotDefined, ref, "resolved to a %T, not a message", target)
	}

	extRange, hasRange := targetMsg.ExtensionRange()

	for _, f := range def.Records("fields") {
		idN, _ := f.Int("id")
		id := tree.FieldNumber(idN)
		sourceName, _ := f.String("name")

		if _, exists := targetMsg.FieldByID(id); exists {
			return schemaerr.New(schemaerr.DuplicateFieldID, ref, "field id %d already used on %s", id, targetMsg.FullName())
		}
		if !hasRange || !extRange.Contains(id) {
			return schemaerr.New(schemaerr.IllegalExtensionRange, ref, "field id %d outside %s's extension range", id, targetMsg.FullName())
		}

		effectiveName := sourceName
		if e.opts.ConvertFieldsToCamelCase {
			effectiveName = camelCase(sourceName)
		}

		ruleStr, _ := f.String("rule")
		typeRef, _ := f.String("type")
		syntax := targetMsg.Syntax()

		ef := tree.NewExtensionField(tree.Name(effectiveName), parseRule(ruleStr), id, typeRef, syntax, e.ptr)
		if err := setOptions(f, ef.Options, ref); err != nil {
			return err
		}
		targetMsg.AddExtensionField(ef)
		tree.NewExtension(tree.Name(sourceName), e.ptr, ef)
	}
	return nil
}

func mustString(r desc.Record, key string) string {
	s, _ := r.String(key)
	return s
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
