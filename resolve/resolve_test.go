package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protoschema/pbschema/desc"
	"github.com/protoschema/pbschema/ingest"
	"github.com/protoschema/pbschema/tree"
)

func TestPassResolvesBuiltinField(t *testing.T) {
	root := tree.NewRoot()
	e := ingest.New(root, ingest.Options{})
	require.NoError(t, e.Create(desc.Record{
		"name":   "M",
		"syntax": "proto3",
		"fields": []any{
			map[string]any{"name": "x", "rule": "optional", "type": "int32", "id": int64(1)},
		},
	}))

	require.NoError(t, Pass(root))

	msg := root.Children()[0].(*tree.Message)
	f := msg.Fields()[0]
	require.Equal(t, protoreflect.Int32Kind, f.Type)
	require.Nil(t, f.ResolvedType(), "builtin field should not carry a resolvedType")
}

func TestPassResolvesMessageReference(t *testing.T) {
	root := tree.NewRoot()
	e := ingest.New(root, ingest.Options{})
	require.NoError(t, e.Create(
		desc.Record{"name": "Target", "syntax": "proto3"},
		desc.Record{
			"name":   "Holder",
			"syntax": "proto3",
			"fields": []any{
				map[string]any{"name": "t", "rule": "optional", "type": "Target", "id": int64(1)},
			},
		},
	))

	require.NoError(t, Pass(root))

	var holder *tree.Message
	for _, c := range root.Children() {
		if m, ok := c.(*tree.Message); ok && m.Name() == tree.Name("Holder") {
			holder = m
		}
	}
	require.NotNil(t, holder, "expected to find Holder")
	f := holder.Fields()[0]
	require.Equal(t, protoreflect.MessageKind, f.Type)
	require.NotNil(t, f.ResolvedType(), "expected resolvedType to be set for a symbolic reference")
}

func TestPassRejectsProto3FieldReferencingProto2Enum(t *testing.T) {
	root := tree.NewRoot()
	e := ingest.New(root, ingest.Options{})
	require.NoError(t, e.Create(
		desc.Record{
			"name":   "Old",
			"syntax": "proto2",
			"values": []any{map[string]any{"name": "A", "id": int64(0)}},
		},
		desc.Record{
			"name":   "New",
			"syntax": "proto3",
			"fields": []any{
				map[string]any{"name": "v", "rule": "optional", "type": "Old", "id": int64(1)},
			},
		},
	))

	require.Error(t, Pass(root), "expected a syntax-mismatch error for a proto3 field referencing a proto2 enum")
}

func TestPassResolvesMapKeyType(t *testing.T) {
	root := tree.NewRoot()
	e := ingest.New(root, ingest.Options{})
	require.NoError(t, e.Create(desc.Record{
		"name":   "M",
		"syntax": "proto3",
		"fields": []any{
			map[string]any{"name": "m", "rule": "map", "type": "string", "keyType": "string", "id": int64(1)},
		},
	}))

	require.NoError(t, Pass(root))

	msg := root.Children()[0].(*tree.Message)
	f := msg.Fields()[0]
	require.Equal(t, protoreflect.StringKind, f.KeyType)
}

func TestPassRejectsIllegalMapKeyType(t *testing.T) {
	root := tree.NewRoot()
	e := ingest.New(root, ingest.Options{})
	require.NoError(t, e.Create(desc.Record{
		"name":   "M",
		"syntax": "proto3",
		"fields": []any{
			map[string]any{"name": "m", "rule": "map", "type": "string", "keyType": "bytes", "id": int64(1)},
		},
	}))

	require.Error(t, Pass(root), "expected an illegal-key-type error for a bytes map key")
}

func TestPassResolvesRPCMethod(t *testing.T) {
	root := tree.NewRoot()
	e := ingest.New(root, ingest.Options{})
	require.NoError(t, e.Create(
		desc.Record{"name": "Req", "syntax": "proto3"},
		desc.Record{"name": "Resp", "syntax": "proto3"},
		desc.Record{
			"name": "Svc",
			"rpc": map[string]any{
				"Call": map[string]any{"requestType": "Req", "responseType": "Resp"},
			},
		},
	))

	require.NoError(t, Pass(root))

	var svc *tree.Service
	for _, c := range root.Children() {
		if s, ok := c.(*tree.Service); ok {
			svc = s
		}
	}
	require.NotNil(t, svc, "expected to find Svc")
	m := svc.Methods()[0]
	require.NotNil(t, m.ResolvedRequestType())
	require.NotNil(t, m.ResolvedResponseType())
}

func TestProjectionBuildAndLookup(t *testing.T) {
	root := tree.NewRoot()
	e := ingest.New(root, ingest.Options{})
	require.NoError(t, e.Define("a.b"))
	require.NoError(t, e.Create(desc.Record{
		"name":   "M",
		"syntax": "proto3",
		"fields": []any{
			map[string]any{"name": "x", "rule": "optional", "type": "int32", "id": int64(1)},
		},
	}))

	p := NewProjection(root)
	node, ok, err := p.Build("a.b.M")
	require.NoError(t, err)
	require.True(t, ok, "expected a.b.M to be found")
	require.IsType(t, &tree.Message{}, node)
	require.True(t, p.Resolved(), "expected Build to have run resolution")

	field, ok := p.Lookup("a.b.M.x", false)
	require.True(t, ok, "expected lookup of a.b.M.x to succeed")
	require.IsType(t, &tree.Field{}, field)
}

func TestProjectionBuildMissingPathIsAbsent(t *testing.T) {
	root := tree.NewRoot()
	p := NewProjection(root)
	_, ok, err := p.Build("nonexistent.Path")
	require.NoError(t, err)
	require.False(t, ok, "expected a missing path to report absent, not found")
}

// TestEnsureResolvedIsPointerIndependent guards against resolution silently
// skipping root-level siblings when the insertion pointer is left parked
// inside a namespace by a bare define with no create afterward: build()
// must still surface every subtree's resolved field types, regardless of
// where ingestion last left the pointer.
func TestEnsureResolvedIsPointerIndependent(t *testing.T) {
	root := tree.NewRoot()
	e := ingest.New(root, ingest.Options{})
	require.NoError(t, e.Create(desc.Record{
		"name":   "RootLevel",
		"syntax": "proto3",
		"fields": []any{
			map[string]any{"name": "x", "rule": "optional", "type": "int32", "id": int64(1)},
		},
	}))

	// Leaves the insertion pointer parked at a.b, not back at the root.
	require.NoError(t, e.Define("a.b"))

	p := NewProjection(root)
	node, ok, err := p.Build("RootLevel")
	require.NoError(t, err)
	require.True(t, ok, "expected RootLevel to be found even though the pointer is parked elsewhere")

	msg := node.(*tree.Message)
	f := msg.Fields()[0]
	require.Equal(t, protoreflect.Int32Kind, f.Type, "RootLevel.x must be resolved despite the parked pointer")
}

// TestProjectionBuildStructuralSnapshot exercises go-cmp's structural
// comparison against the resolved tree's Go shape directly, rather than
// only spot-checking individual fields.
func TestProjectionBuildStructuralSnapshot(t *testing.T) {
	root := tree.NewRoot()
	e := ingest.New(root, ingest.Options{})
	require.NoError(t, e.Create(desc.Record{
		"name":   "M",
		"syntax": "proto3",
		"fields": []any{
			map[string]any{"name": "x", "rule": "optional", "type": "int32", "id": int64(1)},
			map[string]any{"name": "y", "rule": "optional", "type": "string", "id": int64(2)},
		},
	}))
	require.NoError(t, Pass(root))

	msg := root.Children()[0].(*tree.Message)

	type fieldShape struct {
		Name tree.Name
		Type protoreflect.Kind
	}
	var got []fieldShape
	for _, f := range msg.Fields() {
		got = append(got, fieldShape{Name: f.Name(), Type: f.Type})
	}
	want := []fieldShape{
		{Name: "x", Type: protoreflect.Int32Kind},
		{Name: "y", Type: protoreflect.StringKind},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolved field shape mismatch (-want +got):\n%s", diff)
	}
}
