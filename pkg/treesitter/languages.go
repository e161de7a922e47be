package treesitter

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// languages maps source file extensions to grammars. Java is the only
// language the extraction pipeline currently understands.
var languages = map[string]*sitter.Language{
	".java": java.GetLanguage(),
}

// LanguageFor returns the grammar registered for a source file's
// extension, or nil when the file type is not supported.
func LanguageFor(path string) *sitter.Language {
	return languages[strings.ToLower(filepath.Ext(path))]
}

// Supported reports whether a grammar is registered for the file.
func Supported(path string) bool {
	return LanguageFor(path) != nil
}

// Extensions returns the registered file extensions in stable order.
func Extensions() []string {
	exts := make([]string, 0, len(languages))
	for ext := range languages {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
