// Package yamlfile reads and writes the YAML documents yamltr translates.
//
// Files are kept as yaml.Node trees so that a round trip preserves key
// order, comments, anchors and scalar styles:
//
//	# shown on the start page
//	greeting: "Hello {name}!"
//	nav:
//	  home: Home
//	  items:
//	    - First
//	    - Second
//
// Only a single document per file is supported. An empty input yields an
// empty File, which marshals back to empty output.
package yamlfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultIndent is the number of spaces used per nesting level on output.
const DefaultIndent = 2

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

// Leaf is a single string value in the document.
type Leaf struct {
	// Path holds the mapping keys leading to the value. Sequence items share
	// the path of their sequence.
	Path []string
	// Value is the scalar text.
	Value string
	// Style is the original scalar style (plain, quoted, literal, ...).
	Style yaml.Style
	// Line is the 1-based source line, 0 for nodes not read from a file.
	Line int
}

// Key returns the dot-joined path (e.g. "nav.home").
func (l Leaf) Key() string {
	return strings.Join(l.Path, ".")
}

// File is a parsed YAML document.
type File struct {
	// doc is the DocumentNode, nil for empty input.
	doc    *yaml.Node
	indent int
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a YAML file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	f := &File{indent: DefaultIndent}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		return nil, errors.New("parsing YAML: multiple documents are not supported")
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return f, nil
	}
	f.doc = &doc
	return f, nil
}

// ---------------------------------------------------------------------------
// Querying
// ---------------------------------------------------------------------------

// Empty reports whether the file holds no document.
func (f *File) Empty() bool {
	return f.doc == nil || len(f.doc.Content) == 0
}

// Document returns the DocumentNode, or nil for an empty file.
func (f *File) Document() *yaml.Node {
	return f.doc
}

// Root returns the document's content node, or nil for an empty file.
func (f *File) Root() *yaml.Node {
	if f.Empty() {
		return nil
	}
	return f.doc.Content[0]
}

// Leaves returns every string value in document order.
func (f *File) Leaves() []Leaf {
	var out []Leaf
	collectLeaves(f.Root(), nil, &out)
	return out
}

func collectLeaves(n *yaml.Node, path []string, out *[]Leaf) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			child := make([]string, len(path), len(path)+1)
			copy(child, path)
			collectLeaves(n.Content[i+1], append(child, n.Content[i].Value), out)
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			collectLeaves(c, path, out)
		}
	case yaml.ScalarNode:
		// Only string scalars are translatable; skip null, bool, int, float.
		if n.ShortTag() != "!!str" {
			return
		}
		*out = append(*out, Leaf{
			Path:  path,
			Value: n.Value,
			Style: n.Style,
			Line:  n.Line,
		})
	}
}

// Stats returns (total string values, non-blank values, percent non-blank).
func (f *File) Stats() (int, int, float64) {
	leaves := f.Leaves()
	total := len(leaves)
	filled := 0
	for _, l := range leaves {
		if strings.TrimSpace(l.Value) != "" {
			filled++
		}
	}
	pct := 0.0
	if total > 0 {
		pct = float64(filled) / float64(total) * 100
	}
	return total, filled, pct
}

// ---------------------------------------------------------------------------
// Rebuilding
// ---------------------------------------------------------------------------

// WithRoot returns a new File carrying root and this file's document-level
// comments and indent. root may be a DocumentNode or a content node.
func (f *File) WithRoot(root *yaml.Node) *File {
	out := &File{indent: f.indent}
	switch {
	case root == nil:
		return out
	case root.Kind == yaml.DocumentNode:
		out.doc = root
	case f.doc != nil:
		doc := *f.doc
		doc.Content = []*yaml.Node{root}
		out.doc = &doc
	default:
		out.doc = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	}
	return out
}

// SetIndent sets the output indentation. Values below 1 select DefaultIndent.
func (f *File) SetIndent(spaces int) {
	if spaces < 1 {
		spaces = DefaultIndent
	}
	f.indent = spaces
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal serialises the document, preserving structure, comments and
// scalar styles. An empty file marshals to no bytes.
func (f *File) Marshal() ([]byte, error) {
	if f.Empty() {
		return []byte{}, nil
	}

	indent := f.indent
	if indent < 1 {
		indent = DefaultIndent
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(f.doc); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile serialises the file and writes it to the given path, creating
// parent directories as needed.
func (f *File) WriteFile(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
