package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFullNameNesting(t *testing.T) {
	root := NewRoot()
	a := NewNamespace(root, "a")
	b := NewNamespace(a, "b")
	m := NewMessage(b, "M", Proto3)
	f := NewField(m, "x", Optional, 1, "int32", Proto3)
	m.AddField(f)

	require.Equal(t, "a.b", string(b.FullName()))
	require.Equal(t, "a.b.M", string(m.FullName()))
	require.Equal(t, "a.b.M.x", string(f.FullName()))

	child, ok := b.Child("M")
	require.True(t, ok)
	require.Equal(t, Node(m), child)
}

func TestMessageFieldIDUniqueness(t *testing.T) {
	root := NewRoot()
	m := NewMessage(root, "M", Proto3)
	f1 := NewField(m, "x", Optional, 1, "int32", Proto3)
	m.AddField(f1)

	_, ok := m.FieldByID(1)
	require.True(t, ok, "expected field id 1 to be registered")

	_, ok = m.FieldByID(2)
	require.False(t, ok, "field id 2 should not be registered")
}

func TestExtensionFieldFullNameRootedAtDeclaringScope(t *testing.T) {
	root := NewRoot()
	pkg := NewNamespace(root, "pkg")
	target := NewMessage(pkg, "Target", Proto2)
	target.SetExtensionRange(100, 200)

	extendSite := NewNamespace(root, "other")
	ef := NewExtensionField("ext_field", Optional, 150, "int32", Proto2, extendSite)
	target.AddExtensionField(ef)
	NewExtension("ext_field", extendSite, ef)

	require.Equal(t, "other.ext_field", string(ef.FullName()))
	require.Equal(t, Node(target), ef.Parent())
	require.Equal(t, Name("ext_field"), ef.Extension().Name())
}

func TestClamp(t *testing.T) {
	require.Equal(t, FieldNumber(5), Clamp(FieldNumber(5), IDMin, IDMax))
	require.Equal(t, IDMin, Clamp(FieldNumber(0), IDMin, IDMax))
	require.Equal(t, IDMax, Clamp(FieldNumber(1<<30), IDMin, IDMax))
}
