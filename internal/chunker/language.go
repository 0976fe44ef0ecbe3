package chunker

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_json "github.com/tree-sitter/tree-sitter-json/bindings/go"
	tree_sitter_kotlin "github.com/tree-sitter-grammars/tree-sitter-kotlin/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_scala "github.com/tree-sitter/tree-sitter-scala/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	tree_sitter_yaml "github.com/tree-sitter-grammars/tree-sitter-yaml/bindings/go"
)

// languageFor maps a file extension (without the leading dot, already
// lower-cased) to a tree-sitter language, mirroring the original
// source's ext_to_language table (§4.2: "rs, ts, tsx, py, java,
// kt, json, yaml|yml, plus c, cpp, cs, go, scala where available").
var languageFor = map[string]func() *tree_sitter.Language{
	"rs":    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
	"ts":    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) },
	"tsx":   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()) },
	"py":    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
	"java":  func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) },
	"kt":    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_kotlin.Language()) },
	"json":  func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_json.Language()) },
	"yaml":  func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_yaml.Language()) },
	"yml":   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_yaml.Language()) },
	"c":     func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_c.Language()) },
	"h":     func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_c.Language()) },
	"cpp":   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
	"cc":    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
	"hpp":   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
	"cs":    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_csharp.Language()) },
	"go":    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) },
	"scala": func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_scala.Language()) },
}

// SupportedExtension reports whether ext (no leading dot, lower-case)
// has a registered language binding.
func SupportedExtension(ext string) bool {
	_, ok := languageFor[ext]
	return ok
}

// LanguageForExtension returns the tree-sitter language for ext, or
// false if the extension is unsupported.
func LanguageForExtension(ext string) (*tree_sitter.Language, bool) {
	f, ok := languageFor[ext]
	if !ok {
		return nil, false
	}
	return f(), true
}
