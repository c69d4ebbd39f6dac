// Package langs is the closed table of supported languages: one entry per
// language tag carrying its file extensions, tree-sitter grammar (where
// one exists in the pack), and the node-kind vocabulary the chunker walks
// to find definitions, call sites and type references. Adding a language
// is exactly one registerX call in NewRegistry; nothing else in the
// chunker branches on language name.
package langs

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/jamie8johnson/cqs/internal/model"
)

// DefKind pairs a tree-sitter node kind with the chunk kind it produces.
type DefKind struct {
	NodeKind string
	Kind     model.ChunkKind
}

// Spec is one row of the language table.
type Spec struct {
	Name       string
	Extensions []string

	// Grammar is nil for languages handled by a dedicated, non-tree-sitter
	// extractor (go, sql, markdown) — see internal/chunk for those.
	Grammar *sitter.Language

	// Definitions lists the node kinds that become chunks, and the chunk
	// kind they default to. A Function-kind definition found nested inside
	// a chunk whose kind is in ContainerKinds is reclassified as Method.
	Definitions    []DefKind
	ContainerKinds map[model.ChunkKind]bool

	// NameField is the tree-sitter field name holding a definition's
	// identifier (uniformly "name" across every grammar in the pack).
	NameField string

	// CallNodeKinds are node kinds representing a call expression.
	CallNodeKinds []string
	// CallCalleeField is the field on a call node holding the callee
	// expression (an identifier, or a member-access expression whose
	// final segment is taken as the callee name).
	CallCalleeField string

	// ParamListField is the field on a definition node holding its
	// parameter list, walked for Param type edges.
	ParamListField string
	// ReturnTypeField is the field on a definition node holding its
	// return type annotation, walked for Return type edges. Empty if the
	// grammar does not expose one as a named field.
	ReturnTypeField string
	// ImplField is the field on a container definition node holding the
	// trait/interface/superclass list it implements, walked for Impl type
	// edges. Empty if the language has no such construct.
	ImplField string
}

// Registry is the closed set of language Specs, keyed by tag and by
// extension.
type Registry struct {
	byName map[string]*Spec
	byExt  map[string]*Spec
}

// NewRegistry builds the default registry. Supported set: rust, python,
// typescript, javascript, go, c, java, php, ruby, sql, markdown — a
// superset of spec.md's required minimum (go/c/java/python/rust/
// typescript/javascript/sql/markdown), picking up php and ruby for free
// since their grammars are already in the dependency set.
func NewRegistry() *Registry {
	r := &Registry{byName: map[string]*Spec{}, byExt: map[string]*Spec{}}
	for _, s := range []*Spec{
		pythonSpec(), javaSpec(), phpSpec(), cSpec(), rustSpec(),
		typescriptSpec(), javascriptSpec(), rubySpec(),
	} {
		r.register(s)
	}
	return r
}

func (r *Registry) register(s *Spec) {
	r.byName[s.Name] = s
	for _, ext := range s.Extensions {
		r.byExt[ext] = s
	}
}

// ByName returns the Spec for a language tag.
func (r *Registry) ByName(name string) (*Spec, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// ByExtension returns the Spec for a file extension (including the dot).
func (r *Registry) ByExtension(ext string) (*Spec, bool) {
	s, ok := r.byExt[ext]
	return s, ok
}

// Extensions lists every extension handled by a tree-sitter grammar Spec.
// "go", "sql" and "md"/"markdown" are handled outside this table (see
// internal/chunk/golang.go, sql.go, markdown.go) and are not listed here.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for e := range r.byExt {
		exts = append(exts, e)
	}
	return exts
}

func containers(kinds ...model.ChunkKind) map[model.ChunkKind]bool {
	m := make(map[model.ChunkKind]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

func pythonSpec() *Spec {
	return &Spec{
		Name:       "python",
		Extensions: []string{".py"},
		Grammar:    sitter.NewLanguage(python.Language()),
		Definitions: []DefKind{
			{"function_definition", model.KindFunction},
			{"class_definition", model.KindClass},
		},
		ContainerKinds:  containers(model.KindClass),
		NameField:       "name",
		CallNodeKinds:   []string{"call"},
		CallCalleeField: "function",
		ParamListField:  "parameters",
		ReturnTypeField: "return_type",
	}
}

func javaSpec() *Spec {
	return &Spec{
		Name:       "java",
		Extensions: []string{".java"},
		Grammar:    sitter.NewLanguage(java.Language()),
		Definitions: []DefKind{
			{"method_declaration", model.KindMethod},
			{"constructor_declaration", model.KindMethod},
			{"class_declaration", model.KindClass},
			{"interface_declaration", model.KindInterface},
			{"enum_declaration", model.KindEnum},
		},
		ContainerKinds:  containers(model.KindClass, model.KindInterface, model.KindEnum),
		NameField:       "name",
		CallNodeKinds:   []string{"method_invocation", "object_creation_expression"},
		CallCalleeField: "name",
		ParamListField:  "parameters",
		ReturnTypeField: "type",
		ImplField:       "interfaces",
	}
}

func phpSpec() *Spec {
	return &Spec{
		Name:       "php",
		Extensions: []string{".php"},
		Grammar:    sitter.NewLanguage(php.LanguagePHP()),
		Definitions: []DefKind{
			{"function_definition", model.KindFunction},
			{"method_declaration", model.KindMethod},
			{"class_declaration", model.KindClass},
			{"interface_declaration", model.KindInterface},
		},
		ContainerKinds:  containers(model.KindClass, model.KindInterface),
		NameField:       "name",
		CallNodeKinds:   []string{"function_call_expression", "member_call_expression"},
		CallCalleeField: "function",
		ParamListField:  "parameters",
		ReturnTypeField: "return_type",
		ImplField:       "interfaces",
	}
}

func cSpec() *Spec {
	return &Spec{
		Name:       "c",
		Extensions: []string{".c", ".h"},
		Grammar:    sitter.NewLanguage(c.Language()),
		Definitions: []DefKind{
			{"function_definition", model.KindFunction},
			{"struct_specifier", model.KindStruct},
			{"enum_specifier", model.KindEnum},
		},
		ContainerKinds:  containers(model.KindStruct),
		NameField:       "name",
		CallNodeKinds:   []string{"call_expression"},
		CallCalleeField: "function",
		ParamListField:  "parameters",
	}
}

func rustSpec() *Spec {
	return &Spec{
		Name:       "rust",
		Extensions: []string{".rs"},
		Grammar:    sitter.NewLanguage(rust.Language()),
		Definitions: []DefKind{
			{"function_item", model.KindFunction},
			{"struct_item", model.KindStruct},
			{"enum_item", model.KindEnum},
			{"trait_item", model.KindTrait},
			{"impl_item", model.KindClass}, // impl blocks act as a method container
		},
		ContainerKinds:  containers(model.KindClass, model.KindTrait),
		NameField:       "name",
		CallNodeKinds:   []string{"call_expression"},
		CallCalleeField: "function",
		ParamListField:  "parameters",
		ReturnTypeField: "return_type",
		ImplField:       "trait",
	}
}

func typescriptSpec() *Spec {
	return &Spec{
		Name:       "typescript",
		Extensions: []string{".ts", ".tsx"},
		Grammar:    sitter.NewLanguage(typescript.LanguageTypescript()),
		Definitions: []DefKind{
			{"function_declaration", model.KindFunction},
			{"method_definition", model.KindMethod},
			{"class_declaration", model.KindClass},
			{"interface_declaration", model.KindInterface},
		},
		ContainerKinds:  containers(model.KindClass, model.KindInterface),
		NameField:       "name",
		CallNodeKinds:   []string{"call_expression"},
		CallCalleeField: "function",
		ParamListField:  "parameters",
		ReturnTypeField: "return_type",
		ImplField:       "implements_clause",
	}
}

// javascriptSpec reuses the TypeScript grammar: the TS grammar parses the
// JS subset of its syntax, and the pack carries no separate JavaScript
// grammar module (only tree-sitter-typescript). interface_declaration
// simply never matches in plain JS source, which is harmless.
func javascriptSpec() *Spec {
	s := *typescriptSpec()
	s.Name = "javascript"
	s.Extensions = []string{".js", ".mjs", ".jsx"}
	return &s
}

func rubySpec() *Spec {
	return &Spec{
		Name:       "ruby",
		Extensions: []string{".rb"},
		Grammar:    sitter.NewLanguage(ruby.Language()),
		Definitions: []DefKind{
			{"method", model.KindMethod},
			{"class", model.KindClass},
			{"module", model.KindClass},
		},
		ContainerKinds:  containers(model.KindClass),
		NameField:       "name",
		CallNodeKinds:   []string{"call", "method_call"},
		CallCalleeField: "method",
	}
}
