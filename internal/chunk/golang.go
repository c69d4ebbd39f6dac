package chunk

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"time"

	"github.com/jamie8johnson/cqs/internal/model"
)

// GoChunker extracts Go source using the standard library's own parser
// rather than a tree-sitter grammar: the example pack carries tree-sitter
// bindings for nine other languages but none for Go, and go/parser is the
// ecosystem-idiomatic way for a Go tool to parse Go (internal/langs has no
// registry row for "go" precisely because there is no grammar to bind —
// see DESIGN.md).
type GoChunker struct{}

func NewGoChunker() *GoChunker { return &GoChunker{} }

func (g *GoChunker) Chunk(origin, language string, source []byte, mtime time.Time) (*Result, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, origin, source, parser.ParseComments)
	if err != nil {
		return wholeFileFallback(origin, language, source, mtime, fallbackName(origin)), nil
	}

	lines := strings.Split(string(source), "\n")
	now := time.Now()
	result := &Result{}

	for _, decl := range file.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.TYPE {
			for _, spec := range gd.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok {
					kind := model.KindStruct
					switch ts.Type.(type) {
					case *ast.InterfaceType:
						kind = model.KindInterface
					case *ast.StructType:
						kind = model.KindStruct
					default:
						kind = model.KindStruct
					}
					start := fset.Position(decl.Pos()).Line
					end := fset.Position(decl.End()).Line
					result.Chunks = append(result.Chunks, buildChunks(origin, language, ts.Name.Name, kind, start, end, lines, mtime, now)...)
				}
			}
		}
	}

	var funcs []*ast.FuncDecl
	for _, decl := range file.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok {
			funcs = append(funcs, fd)
			kind := model.KindFunction
			name := fd.Name.Name
			if fd.Recv != nil && len(fd.Recv.List) > 0 {
				kind = model.KindMethod
			}
			start := fset.Position(fd.Pos()).Line
			end := fset.Position(fd.End()).Line
			result.Chunks = append(result.Chunks, buildChunks(origin, language, name, kind, start, end, lines, mtime, now)...)

			// Param and return type edges, walked straight off the AST
			// rather than via a tree-sitter field lookup — same heuristic
			// contract (name-resolved, not semantic) as the other
			// languages' ImplField/ParamListField walks.
			chunkID := ChunkID(origin, name, start, nil)
			if fd.Type.Params != nil {
				for _, f := range fd.Type.Params.List {
					for _, tn := range typeNames(f.Type) {
						result.Types = append(result.Types, &model.TypeEdge{ChunkID: chunkID, TargetTypeName: tn, Kind: model.EdgeParam, Origin: origin, Line: start})
					}
				}
			}
			if fd.Type.Results != nil {
				for _, f := range fd.Type.Results.List {
					for _, tn := range typeNames(f.Type) {
						result.Types = append(result.Types, &model.TypeEdge{ChunkID: chunkID, TargetTypeName: tn, Kind: model.EdgeReturn, Origin: origin, Line: start})
					}
				}
			}
		}
	}

	for _, fd := range funcs {
		result.Calls = append(result.Calls, collectGoCalls(fd, origin)...)
	}

	if len(result.Chunks) == 0 {
		return wholeFileFallback(origin, language, source, mtime, fallbackName(origin)), nil
	}
	return result, nil
}

func typeNames(expr ast.Expr) []string {
	switch t := expr.(type) {
	case *ast.Ident:
		return []string{t.Name}
	case *ast.StarExpr:
		return typeNames(t.X)
	case *ast.SelectorExpr:
		return []string{t.Sel.Name}
	case *ast.ArrayType:
		return typeNames(t.Elt)
	case *ast.MapType:
		return append(typeNames(t.Key), typeNames(t.Value)...)
	case *ast.Ellipsis:
		return typeNames(t.Elt)
	default:
		return nil
	}
}

func collectGoCalls(fd *ast.FuncDecl, origin string) []*model.Call {
	var calls []*model.Call
	if fd.Body == nil {
		return calls
	}
	ast.Inspect(fd.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		name := ""
		switch fn := call.Fun.(type) {
		case *ast.Ident:
			name = fn.Name
		case *ast.SelectorExpr:
			name = fn.Sel.Name
		}
		if name != "" {
			calls = append(calls, &model.Call{
				CallerName: fd.Name.Name,
				CalleeName: name,
				Origin:     origin,
			})
		}
		return true
	})
	return calls
}
