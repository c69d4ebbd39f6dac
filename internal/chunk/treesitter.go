package chunk

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/jamie8johnson/cqs/internal/langs"
	"github.com/jamie8johnson/cqs/internal/model"
)

// TreeSitterChunker is the single, language-agnostic walker driving every
// grammar-backed language in the registry. Per spec.md §9 "closed variant
// set", the only thing that varies by language is the *langs.Spec table
// row; this file never switches on a language name.
type TreeSitterChunker struct {
	spec *langs.Spec
}

// NewTreeSitterChunker builds a Chunker for one registry Spec.
func NewTreeSitterChunker(spec *langs.Spec) *TreeSitterChunker {
	return &TreeSitterChunker{spec: spec}
}

type definition struct {
	node      *sitter.Node
	name      string
	kind      model.ChunkKind
	startLine int
	endLine   int
}

func (c *TreeSitterChunker) Chunk(origin, language string, source []byte, mtime time.Time) (*Result, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(c.spec.Grammar)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return wholeFileFallback(origin, language, source, mtime, fallbackName(origin)), nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		// Grammar loaded but the file failed to parse cleanly: degrade
		// gracefully per spec.md §4.2 rather than failing the pass.
		return wholeFileFallback(origin, language, source, mtime, fallbackName(origin)), nil
	}

	lines := strings.Split(string(source), "\n")
	defs := c.collectDefinitions(root, source, nil)
	if len(defs) == 0 {
		return wholeFileFallback(origin, language, source, mtime, fallbackName(origin)), nil
	}

	result := &Result{}
	now := time.Now()
	for _, d := range defs {
		children := buildChunks(origin, language, d.name, d.kind, d.startLine, d.endLine, lines, mtime, now)
		result.Chunks = append(result.Chunks, children...)
	}

	result.Calls = c.collectCalls(root, source, origin, defs)
	result.Types = c.collectTypeEdges(defs, source, origin)
	return result, nil
}

func fallbackName(origin string) string {
	parts := strings.Split(origin, "/")
	return parts[len(parts)-1]
}

// collectDefinitions walks the tree recursively, reclassifying a
// Function-kind definition as Method when nested (directly or
// transitively, without crossing another definition) inside a container
// kind (class/struct/trait/interface/impl-as-class).
func (c *TreeSitterChunker) collectDefinitions(node *sitter.Node, source []byte, enclosing *definition) []*definition {
	var out []*definition
	if node == nil {
		return out
	}

	var next *definition
	for _, dk := range c.spec.Definitions {
		if node.Kind() == dk.NodeKind {
			kind := dk.Kind
			if kind == model.KindFunction && enclosing != nil && c.spec.ContainerKinds[enclosing.kind] {
				kind = model.KindMethod
			}
			d := &definition{
				node:      node,
				name:      fieldText(node, c.spec.NameField, source),
				kind:      kind,
				startLine: int(node.StartPosition().Row) + 1,
				endLine:   int(node.EndPosition().Row) + 1,
			}
			if d.name != "" {
				out = append(out, d)
				next = d
			}
			break
		}
	}
	if next == nil {
		next = enclosing
	}

	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		out = append(out, c.collectDefinitions(node.Child(uint(i)), source, next)...)
	}
	return out
}

func fieldText(node *sitter.Node, field string, source []byte) string {
	if field == "" {
		return ""
	}
	n := node.ChildByFieldName(field)
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 || startLine > len(lines) {
		return ""
	}
	start, end := startLine-1, endLine
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return strings.TrimSpace(text)
}

// collectCalls walks the whole tree for call-shaped nodes and attributes
// each to its innermost enclosing definition. Every definition contributes
// here regardless of whether it was chunked whole or windowed — this is
// what backs the denormalized function_calls table (spec.md §3, §9
// "oversized functions").
func (c *TreeSitterChunker) collectCalls(root *sitter.Node, source []byte, origin string, defs []*definition) []*model.Call {
	byNode := make(map[*sitter.Node]*definition, len(defs))
	for _, d := range defs {
		byNode[d.node] = d
	}

	var calls []*model.Call
	var walk func(node *sitter.Node, enclosing *definition)
	walk = func(node *sitter.Node, enclosing *definition) {
		if node == nil {
			return
		}
		if d, ok := byNode[node]; ok {
			enclosing = d
		}
		for _, kind := range c.spec.CallNodeKinds {
			if node.Kind() == kind {
				if callee := calleeName(node, c.spec.CallCalleeField, source); callee != "" && enclosing != nil {
					calls = append(calls, &model.Call{
						CallerName: enclosing.name,
						CalleeName: callee,
						Origin:     origin,
						Line:       int(node.StartPosition().Row) + 1,
					})
				}
				break
			}
		}
		count := int(node.ChildCount())
		for i := 0; i < count; i++ {
			walk(node.Child(uint(i)), enclosing)
		}
	}
	walk(root, nil)
	return calls
}

// calleeName extracts the textual callee from a call node's callee field,
// taking the final identifier segment of a member-access expression
// (e.g. "obj.method(...)" -> "method").
func calleeName(node *sitter.Node, field string, source []byte) string {
	n := node.ChildByFieldName(field)
	if n == nil {
		return ""
	}
	text := string(source[n.StartByte():n.EndByte()])
	if i := strings.LastIndexAny(text, ".:>"); i >= 0 {
		text = text[i+1:]
	}
	text = strings.TrimFunc(text, func(r rune) bool { return r == '(' || r == ')' || r == '&' || r == '*' })
	return text
}

// collectTypeEdges walks each definition's parameter list, return type and
// implements/extends clause for type references. The result is a
// name-resolved, heuristic edge set, not a semantic type system (spec.md
// §1 Non-goals).
func (c *TreeSitterChunker) collectTypeEdges(defs []*definition, source []byte, origin string) []*model.TypeEdge {
	var edges []*model.TypeEdge
	for _, d := range defs {
		chunkID := ChunkID(origin, d.name, d.startLine, nil)
		if c.spec.ParamListField != "" {
			if n := d.node.ChildByFieldName(c.spec.ParamListField); n != nil {
				edges = append(edges, typeIdentifiers(n, source, chunkID, origin, model.EdgeParam)...)
			}
		}
		if c.spec.ReturnTypeField != "" {
			if n := d.node.ChildByFieldName(c.spec.ReturnTypeField); n != nil {
				edges = append(edges, typeIdentifiers(n, source, chunkID, origin, model.EdgeReturn)...)
			}
		}
		if c.spec.ImplField != "" {
			if n := d.node.ChildByFieldName(c.spec.ImplField); n != nil {
				edges = append(edges, typeIdentifiers(n, source, chunkID, origin, model.EdgeImpl)...)
			}
		}
	}
	return edges
}

func typeIdentifiers(node *sitter.Node, source []byte, chunkID, origin string, kind model.EdgeKind) []*model.TypeEdge {
	var edges []*model.TypeEdge
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if strings.Contains(n.Kind(), "identifier") || strings.Contains(n.Kind(), "type_") {
			name := string(source[n.StartByte():n.EndByte()])
			if isLikelyTypeName(name) {
				edges = append(edges, &model.TypeEdge{
					ChunkID:        chunkID,
					TargetTypeName: name,
					Kind:           kind,
					Origin:         origin,
					Line:           int(n.StartPosition().Row) + 1,
				})
			}
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			walk(n.Child(uint(i)))
		}
	}
	walk(node)
	return edges
}

// isLikelyTypeName filters a fixed list of keywords and primitive type
// names out of the blunt identifier scan in typeIdentifiers; any other
// identifier, lowercase or not, is kept. This is a precision heuristic,
// not a correctness one: false negatives here degrade to a missing type
// edge, never an incorrect one.
func isLikelyTypeName(name string) bool {
	if name == "" {
		return false
	}
	switch name {
	case "self", "this", "void", "int", "string", "bool", "float", "double",
		"char", "byte", "var", "let", "const", "static", "public", "private",
		"final", "none", "interface{}", "any":
		return false
	}
	return true
}
