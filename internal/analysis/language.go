// Package analysis detects languages and computes per-file and per-tree
// code metrics. Every filesystem access goes through the security
// validator first, and results are cached in the shared store so repeated
// queries for the same file are free.
package analysis

import (
	"path/filepath"
	"strings"
)

// Meta describes how a language marks comments. Languages without block
// comments leave BlockOpen and BlockClose empty.
type Meta struct {
	Name       string
	LineMarker string
	BlockOpen  string
	BlockClose string
}

// langByExt maps a lowercase file extension to its language name.
var langByExt = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".pyi":   "Python",
	".js":    "JavaScript",
	".mjs":   "JavaScript",
	".cjs":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".jsx":   "JavaScript",
	".java":  "Java",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".cc":    "C++",
	".cxx":   "C++",
	".hpp":   "C++",
	".cs":    "C#",
	".rb":    "Ruby",
	".rs":    "Rust",
	".php":   "PHP",
	".swift": "Swift",
	".kt":    "Kotlin",
	".kts":   "Kotlin",
	".scala": "Scala",
	".sh":    "Shell",
	".bash":  "Shell",
	".zsh":   "Shell",
	".ps1":   "PowerShell",
	".lua":   "Lua",
	".pl":    "Perl",
	".r":     "R",
	".sql":   "SQL",
	".html":  "HTML",
	".htm":   "HTML",
	".css":   "CSS",
	".scss":  "SCSS",
	".less":  "Less",
	".json":  "JSON",
	".yaml":  "YAML",
	".yml":   "YAML",
	".toml":  "TOML",
	".xml":   "XML",
	".md":    "Markdown",
	".proto": "Protobuf",
	".tf":    "Terraform",
	".zig":   "Zig",
	".ex":    "Elixir",
	".exs":   "Elixir",
	".hs":    "Haskell",
	".dart":  "Dart",
	".vim":   "Vimscript",
}

// metaByLang maps a language name to its comment markers.
var metaByLang = map[string]Meta{
	"Go":         {Name: "Go", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"C":          {Name: "C", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"C++":        {Name: "C++", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"C#":         {Name: "C#", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"Java":       {Name: "Java", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"JavaScript": {Name: "JavaScript", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"TypeScript": {Name: "TypeScript", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"Rust":       {Name: "Rust", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"Swift":      {Name: "Swift", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"Kotlin":     {Name: "Kotlin", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"Scala":      {Name: "Scala", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"PHP":        {Name: "PHP", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"Dart":       {Name: "Dart", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"Zig":        {Name: "Zig", LineMarker: "//"},
	"Python":     {Name: "Python", LineMarker: "#", BlockOpen: `"""`, BlockClose: `"""`},
	"Ruby":       {Name: "Ruby", LineMarker: "#", BlockOpen: "=begin", BlockClose: "=end"},
	"Shell":      {Name: "Shell", LineMarker: "#"},
	"PowerShell": {Name: "PowerShell", LineMarker: "#", BlockOpen: "<#", BlockClose: "#>"},
	"Perl":       {Name: "Perl", LineMarker: "#"},
	"R":          {Name: "R", LineMarker: "#"},
	"YAML":       {Name: "YAML", LineMarker: "#"},
	"TOML":       {Name: "TOML", LineMarker: "#"},
	"Terraform":  {Name: "Terraform", LineMarker: "#", BlockOpen: "/*", BlockClose: "*/"},
	"Elixir":     {Name: "Elixir", LineMarker: "#"},
	"Lua":        {Name: "Lua", LineMarker: "--", BlockOpen: "--[[", BlockClose: "]]"},
	"SQL":        {Name: "SQL", LineMarker: "--", BlockOpen: "/*", BlockClose: "*/"},
	"Haskell":    {Name: "Haskell", LineMarker: "--", BlockOpen: "{-", BlockClose: "-}"},
	"HTML":       {Name: "HTML", BlockOpen: "<!--", BlockClose: "-->"},
	"XML":        {Name: "XML", BlockOpen: "<!--", BlockClose: "-->"},
	"CSS":        {Name: "CSS", BlockOpen: "/*", BlockClose: "*/"},
	"SCSS":       {Name: "SCSS", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"Less":       {Name: "Less", LineMarker: "//", BlockOpen: "/*", BlockClose: "*/"},
	"Vimscript":  {Name: "Vimscript", LineMarker: `"`},
	"Protobuf":   {Name: "Protobuf", LineMarker: "//"},
	"Markdown":   {Name: "Markdown"},
	"JSON":       {Name: "JSON"},
}

// DetectLanguage returns the language for a file path based on its
// extension, or "" when the extension is unknown. Results are cached per
// path in the shared store.
func (a *Analyzer) DetectLanguage(path string) string {
	if a.store != nil {
		if lang, ok := a.store.Language(path, a.root); ok {
			return lang
		}
	}

	lang := langByExt[strings.ToLower(filepath.Ext(path))]
	if a.store != nil {
		a.store.SetLanguage(path, lang, a.root)
	}
	return lang
}

// Meta returns the comment-marker metadata for the language of the given
// file path. The zero Meta is returned for unknown extensions.
func (a *Analyzer) Meta(path string) Meta {
	if a.store != nil {
		if cached, ok := a.store.LanguageMeta(path, a.root); ok {
			if meta, ok := cached.(Meta); ok {
				return meta
			}
		}
	}

	meta := metaByLang[a.DetectLanguage(path)]
	if a.store != nil {
		a.store.SetLanguageMeta(path, meta, a.root)
	}
	return meta
}

// Languages returns the names of all languages the detector knows, in
// unspecified order.
func Languages() []string {
	names := make([]string, 0, len(metaByLang))
	for name := range metaByLang {
		names = append(names, name)
	}
	return names
}
