// Package importer implements the import composer (spec.md §4.4): recursive,
// deduplicated merging of a descriptor file and everything it transitively
// references, via the external Loader and optional TextParser collaborators.
package importer

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/protoschema/pbschema/desc"
	"github.com/protoschema/pbschema/ingest"
	"github.com/protoschema/pbschema/schemaerr"
	"github.com/protoschema/pbschema/tree"
	"github.com/protoschema/pbschema/wellknown"
)

// Loader is the external resource-loader collaborator of spec.md §6:
// fetch(path) -> bytes | absent.
type Loader interface {
	Fetch(path string) (data []byte, ok bool)
}

// TextParser is the external text-parser collaborator of spec.md §6: given
// file contents, it returns a descriptor tree with the same shape JSON
// decodes into.
type TextParser interface {
	Parse(contents []byte) (desc.Record, error)
}

// Filename identifies the file a descriptor originated from, either as a
// bare path or as a {root, file} pair (spec.md §4.4).
type Filename struct {
	Root string
	File string
}

func (f *Filename) canonical() string {
	if f == nil || f.File == "" {
		return ""
	}
	if f.Root == "" {
		return cleanPath(f.File)
	}
	return joinPath(f.Root, f.File)
}

func cleanPath(s string) string {
	if s == "" {
		return s
	}
	return path.Clean(s)
}

// joinPath combines root and rel with "\" if either segment already uses it,
// else "/" (spec.md §4.4's delimiter-selection rule).
func joinPath(root, rel string) string {
	root = strings.TrimRight(root, "/\\")
	if root == "" || root == "." {
		return rel
	}
	delim := "/"
	if strings.ContainsRune(root, '\\') || strings.ContainsRune(rel, '\\') {
		delim = "\\"
	}
	return root + delim + rel
}

func deriveRoot(canonicalFilename string) string {
	if i := strings.LastIndexAny(canonicalFilename, "/\\"); i >= 0 {
		return canonicalFilename[:i]
	}
	return "."
}

// Options configures a Composer.
type Options struct {
	Loader     Loader
	TextParser TextParser
	// ImportRoot is used only when a descriptor has imports but no filename
	// context at all to derive a root from (spec.md's import-root-unknown
	// error is otherwise raised).
	ImportRoot string
}

// Composer drives import composition against a single ingestion Engine. Like
// Engine, it is not safe for concurrent use.
type Composer struct {
	engine     *ingest.Engine
	loader     Loader
	textParser TextParser
	importRoot string
	seen       map[string]bool
}

// New creates a Composer that ingests into engine.
func New(engine *ingest.Engine, opts Options) *Composer {
	return &Composer{
		engine:     engine,
		loader:     opts.Loader,
		textParser: opts.TextParser,
		importRoot: opts.ImportRoot,
		seen:       make(map[string]bool),
	}
}

// Import merges json, and recursively everything it transitively imports,
// into the Composer's Engine (spec.md §4.4).
func (c *Composer) Import(rec desc.Record, filename *Filename) error {
	canon := filename.canonical()
	if canon != "" {
		if c.seen[canon] {
			c.engine.Reset()
			return nil
		}
		c.seen[canon] = true
	}

	if err := c.processImports(rec, canon); err != nil {
		return err
	}

	stampSyntaxTree(rec)

	if err := c.defineAndCreate(rec); err != nil {
		return err
	}

	c.engine.Reset()
	return nil
}

func (c *Composer) processImports(rec desc.Record, canon string) error {
	imports, ok := rec.Slice("imports")
	if !ok || len(imports) == 0 {
		return nil
	}

	root := ""
	if canon != "" {
		root = deriveRoot(canon)
	} else if c.importRoot != "" {
		root = c.importRoot
	} else {
		return schemaerr.New(schemaerr.ImportRootUnknown, canon, "descriptor has imports but no filename context to resolve them against")
	}

	for i, raw := range imports {
		switch v := raw.(type) {
		case string:
			if err := c.importRelativePath(v, root); err != nil {
				return err
			}
		case map[string]any:
			if err := c.importInline(desc.Record(v), canon, i); err != nil {
				return err
			}
		case desc.Record:
			if err := c.importInline(v, canon, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Composer) importRelativePath(rel, root string) error {
	if wellknown.IsWellKnownImportPath(rel) {
		return nil
	}

	resolved := joinPath(root, rel)
	fetchPath := resolved
	if strings.HasSuffix(fetchPath, ".proto") && c.textParser == nil {
		fetchPath = strings.TrimSuffix(fetchPath, ".proto") + ".json"
	}

	if c.loader == nil {
		return schemaerr.New(schemaerr.ImportMissing, fetchPath, "no resource loader configured")
	}
	data, ok := c.loader.Fetch(fetchPath)
	if !ok {
		return schemaerr.New(schemaerr.ImportMissing, fetchPath, "resource loader returned no data")
	}

	decoded, err := c.decode(fetchPath, data)
	if err != nil {
		return err
	}
	return c.Import(decoded, &Filename{File: fetchPath})
}

func (c *Composer) importInline(rec desc.Record, parentCanon string, index int) error {
	return c.Import(rec, &Filename{File: synthesizeName(parentCanon, index)})
}

// synthesizeName avoids canonical-name collisions between inlined imports by
// appending "_import<i>" before the extension, or at the end if there is
// none (spec.md §4.4).
func synthesizeName(base string, i int) string {
	if base == "" {
		base = "inline"
	}
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_import%d%s", stem, i, ext)
}

func (c *Composer) decode(filePath string, data []byte) (desc.Record, error) {
	switch {
	case strings.HasSuffix(filePath, ".yaml"), strings.HasSuffix(filePath, ".yml"):
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, schemaerr.Wrap(schemaerr.ImportMissing, filePath, err)
		}
		return desc.Record(m), nil
	case strings.HasSuffix(filePath, ".json"):
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, schemaerr.Wrap(schemaerr.ImportMissing, filePath, err)
		}
		return desc.Record(m), nil
	default:
		if c.textParser == nil {
			return nil, schemaerr.New(schemaerr.ImportMissing, filePath, "no text parser configured for %q", filePath)
		}
		return c.textParser.Parse(data)
	}
}

// stampSyntaxTree implements spec.md §4.4's syntax-propagation step: when
// json.syntax is set, every nested message and enum descriptor is stamped
// with it before ingestion. Enums do not recurse further.
func stampSyntaxTree(rec desc.Record) {
	syntax, ok := rec.String("syntax")
	if !ok || syntax == "" {
		return
	}
	for _, m := range rec.Records("messages") {
		stampMessageSyntax(m, syntax)
	}
	for _, e := range rec.Records("enums") {
		e["syntax"] = syntax
	}
}

func stampMessageSyntax(m desc.Record, syntax string) {
	m["syntax"] = syntax
	for _, nm := range m.Records("messages") {
		stampMessageSyntax(nm, syntax)
	}
	for _, ne := range m.Records("enums") {
		ne["syntax"] = syntax
	}
}

func (c *Composer) defineAndCreate(rec desc.Record) error {
	if pkg, ok := rec.String("package"); ok && pkg != "" {
		if err := c.engine.Define(pkg); err != nil {
			return err
		}
	}

	if opts, ok := rec.Map("options"); ok {
		if ns, ok := c.engine.Pointer().(*tree.Namespace); ok {
			ns.MergeOptions(opts)
		}
	}

	savedPtr := c.engine.Pointer()

	var group []desc.Record
	group = append(group, rec.Records("messages")...)
	group = append(group, rec.Records("enums")...)
	group = append(group, rec.Records("services")...)
	if len(group) > 0 {
		if err := c.engine.Create(group...); err != nil {
			return err
		}
	}
	c.engine.SetPointer(savedPtr)

	if extends := rec.Records("extends"); len(extends) > 0 {
		if err := c.engine.Create(extends...); err != nil {
			return err
		}
	}
	c.engine.SetPointer(savedPtr)

	return nil
}
