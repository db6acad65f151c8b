package wellknown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsWellKnownImportPath(t *testing.T) {
	cases := map[string]bool{
		"google/protobuf/descriptor.proto":        true,
		"google/protobuf/compiler/plugin.proto":   true,
		"myapp/foo.proto":                         false,
		"vendor/google/protobuf/descriptor.proto": false,
	}
	for in, want := range cases {
		require.Equal(t, want, IsWellKnownImportPath(in), "IsWellKnownImportPath(%q)", in)
	}
}

func TestIsWellKnownRef(t *testing.T) {
	cases := map[string]bool{
		"google.protobuf.FileOptions":    true,
		".google.protobuf.MethodOptions": true,
		"mypkg.Foo":                      false,
	}
	for in, want := range cases {
		require.Equal(t, want, IsWellKnownRef(in), "IsWellKnownRef(%q)", in)
	}
}

func TestPathsNonEmpty(t *testing.T) {
	require.NotEmpty(t, Paths())
}
