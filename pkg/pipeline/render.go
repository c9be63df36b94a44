package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/astview/pkg/diagram"
	"github.com/matzehuels/astview/pkg/render"
)

// Render generates output artifacts in the requested formats. Formats are
// rendered concurrently; the diagram is only read.
func Render(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, error) {
	ropts := opts.RenderOptions()
	artifacts := make(map[string][]byte, len(opts.Formats))
	var mu sync.Mutex

	formats := make([]render.Format, len(opts.Formats))
	for i, name := range opts.Formats {
		f, err := render.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats[i] = f
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range opts.Formats {
		f := formats[i]
		g.Go(func() error {
			data, err := render.Render(ctx, d, f, ropts)
			if err != nil {
				return fmt.Errorf("render %s: %w", name, err)
			}
			mu.Lock()
			artifacts[name] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}
