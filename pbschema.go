// Package pbschema builds a resolved reflection tree of protobuf types from
// descriptor records: definition ingestion, import composition, and name
// resolution, the way a compiled FileDescriptorSet is built up before it is
// used to encode or decode messages.
package pbschema

import (
	"sync"

	"github.com/petermattis/goid"

	"github.com/protoschema/pbschema/classify"
	"github.com/protoschema/pbschema/desc"
	"github.com/protoschema/pbschema/importer"
	"github.com/protoschema/pbschema/ingest"
	"github.com/protoschema/pbschema/resolve"
	"github.com/protoschema/pbschema/schemaerr"
	"github.com/protoschema/pbschema/tree"
)

// Options configures a Builder. All fields are optional; a zero Options
// builds descriptors with no imports and no camelCasing.
type Options struct {
	// ConvertFieldsToCamelCase rewrites extension field names to camelCase
	// for their runtime key only (spec.md §6).
	ConvertFieldsToCamelCase bool

	// Loader is the external resource-loader collaborator consulted by
	// Import for any non-inlined entry in a descriptor's imports list.
	Loader importer.Loader

	// TextParser, if set, lets Import consume non-JSON/YAML descriptor
	// files directly instead of requiring the ".proto" extension to have
	// been swapped for ".json".
	TextParser importer.TextParser

	// ImportRoot is used only when a descriptor passed to Import has no
	// filename context at all to derive an import root from.
	ImportRoot string
}

// Builder is the schema builder's public entry point. It is single-threaded
// and non-reentrant: a nested call from the same goroutine, or a call from
// another goroutine while one is in flight, is rejected with
// schemaerr.Reentrant rather than left undefined, per spec.md §5.
type Builder struct {
	root     *tree.Namespace
	engine   *ingest.Engine
	composer *importer.Composer
	proj     *resolve.Projection

	mu              sync.Mutex
	activeGoroutine int64
	active          bool
}

// New creates an empty Builder.
func New(opts Options) *Builder {
	root := tree.NewRoot()
	engine := ingest.New(root, ingest.Options{ConvertFieldsToCamelCase: opts.ConvertFieldsToCamelCase})
	composer := importer.New(engine, importer.Options{
		Loader:     opts.Loader,
		TextParser: opts.TextParser,
		ImportRoot: opts.ImportRoot,
	})
	return &Builder{
		root:     root,
		engine:   engine,
		composer: composer,
		proj:     resolve.NewProjection(root),
	}
}

// enter guards against reentrant use of the Builder from the same goroutine
// and concurrent use from another one. The returned func marks the Builder
// idle again. Cached resolution is invalidated separately, by Define, Create
// and Import after they succeed.
func (b *Builder) enter() (func(), error) {
	gid := goid.Get()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active && b.activeGoroutine == gid {
		return nil, schemaerr.New(schemaerr.Reentrant, "", "Builder method called reentrantly from goroutine %d", gid)
	}
	if b.active {
		return nil, schemaerr.New(schemaerr.Reentrant, "", "Builder method called concurrently from goroutine %d while goroutine %d is active", gid, b.activeGoroutine)
	}
	b.active = true
	b.activeGoroutine = gid
	return func() {
		b.mu.Lock()
		b.active = false
		b.mu.Unlock()
	}, nil
}

// Reset moves the insertion pointer back to the root.
func (b *Builder) Reset() error {
	exit, err := b.enter()
	if err != nil {
		return err
	}
	defer exit()
	b.engine.Reset()
	return nil
}

// Define creates (or reuses) the namespace chain named by dotted, advancing
// the insertion pointer to its final segment.
func (b *Builder) Define(dotted string) error {
	exit, err := b.enter()
	if err != nil {
		return err
	}
	defer exit()
	if err := b.engine.Define(dotted); err != nil {
		return err
	}
	b.proj.Invalidate()
	return nil
}

// Create ingests one or more descriptor records under the current insertion
// pointer.
func (b *Builder) Create(defs ...desc.Record) error {
	exit, err := b.enter()
	if err != nil {
		return err
	}
	defer exit()
	if err := b.engine.Create(defs...); err != nil {
		return err
	}
	b.proj.Invalidate()
	return nil
}

// Import merges rec, and recursively everything it transitively imports,
// into the builder (spec.md §4.4).
func (b *Builder) Import(rec desc.Record, filename *importer.Filename) error {
	exit, err := b.enter()
	if err != nil {
		return err
	}
	defer exit()
	if err := b.composer.Import(rec, filename); err != nil {
		return err
	}
	b.proj.Invalidate()
	return nil
}

// ResolveAll binds every symbolic type reference left behind by ingestion
// (spec.md §4.5). It is idempotent.
func (b *Builder) ResolveAll() error {
	exit, err := b.enter()
	if err != nil {
		return err
	}
	defer exit()
	if err := b.proj.EnsureResolved(); err != nil {
		return err
	}
	b.engine.Reset()
	return nil
}

// Build ensures resolution has run, then returns the node at path (empty for
// the whole tree), reporting whether it was found.
func (b *Builder) Build(path string) (tree.Node, bool, error) {
	exit, err := b.enter()
	if err != nil {
		return nil, false, err
	}
	defer exit()
	return b.proj.Build(path)
}

// Lookup returns the raw reflection node at path, resolved with the scope
// resolver anchored at the root, independent of whether resolution has run.
func (b *Builder) Lookup(path string, excludeNonNamespace bool) (tree.Node, bool, error) {
	exit, err := b.enter()
	if err != nil {
		return nil, false, err
	}
	defer exit()
	node, ok := b.proj.Lookup(path, excludeNonNamespace)
	return node, ok, nil
}

// IsMessage, IsEnum, IsService, IsExtend, and IsMessageField re-export the
// definition classifier's predicates as part of the Builder's public surface
// (spec.md §6).
func IsMessage(r desc.Record) bool      { return classify.IsMessage(r) }
func IsEnum(r desc.Record) bool         { return classify.IsEnum(r) }
func IsService(r desc.Record) bool      { return classify.IsService(r) }
func IsExtend(r desc.Record) bool       { return classify.IsExtend(r) }
func IsMessageField(r desc.Record) bool { return classify.IsMessageField(r) }
