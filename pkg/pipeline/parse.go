package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/matzehuels/astview/pkg/source"
)

// ReadSource returns the bytes the pipeline parses: opts.Source when set,
// otherwise the contents of opts.Path. A missing file is reported as
// [source.ErrNoContent].
func ReadSource(opts Options) ([]byte, error) {
	if opts.Source != nil {
		return opts.Source, nil
	}
	data, err := os.ReadFile(opts.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", source.ErrNoContent, opts.Path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.Path, err)
	}
	if len(data) > source.MaxFileSize {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", opts.Path, len(data), source.MaxFileSize)
	}
	return data, nil
}

// Parse parses src according to opts. The caller owns the returned tree.
func Parse(ctx context.Context, src []byte, opts Options) (*source.Tree, error) {
	lang, err := opts.ResolveLanguage()
	if err != nil {
		return nil, err
	}
	popts := []source.Option{source.WithPath(opts.Path)}
	if opts.Anonymous {
		popts = append(popts, source.WithAnonymous())
	}
	st, err := source.Parse(ctx, lang, src, popts...)
	if errors.Is(err, source.ErrNoContent) && opts.Path != "" {
		return nil, fmt.Errorf("%w: %s is empty", source.ErrNoContent, opts.Path)
	}
	return st, err
}
