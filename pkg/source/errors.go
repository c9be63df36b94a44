package source

import "errors"

var (
	// ErrNoContent is returned when there is nothing to parse: the input is
	// empty or the file does not exist.
	ErrNoContent = errors.New("no content")

	// ErrUnsupportedLanguage is returned for unknown languages and file
	// extensions.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrSyntax is returned by [StrictMirror] for error and missing nodes.
	ErrSyntax = errors.New("syntax error")
)
