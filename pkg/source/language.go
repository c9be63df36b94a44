package source

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Language identifies a supported grammar.
type Language string

const (
	C   Language = "c"
	CPP Language = "cpp"
)

var extensions = map[string]Language{
	".c":   C,
	".h":   C,
	".cc":  CPP,
	".cpp": CPP,
	".cxx": CPP,
	".c++": CPP,
	".hpp": CPP,
	".hh":  CPP,
	".hxx": CPP,
	".ino": CPP,
}

var aliases = map[string]Language{
	"c":   C,
	"cpp": CPP,
	"c++": CPP,
	"cxx": CPP,
}

// Languages returns the supported languages.
func Languages() []Language { return []Language{C, CPP} }

// Extensions returns the file extensions recognized by [LanguageFor], sorted.
func Extensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseLanguage resolves a language name such as "c", "cpp" or "c++".
func ParseLanguage(name string) (Language, error) {
	if l, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
}

// LanguageFor infers the language from a file name's extension.
func LanguageFor(path string) (Language, error) {
	if l, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%w: no grammar for %q", ErrUnsupportedLanguage, filepath.Base(path))
}

func (l Language) String() string { return string(l) }

func (l Language) grammar() (*sitter.Language, error) {
	switch l {
	case C:
		return c.GetLanguage(), nil
	case CPP:
		return cpp.GetLanguage(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, string(l))
}
