package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/matzehuels/astview/pkg/cache"
	"github.com/matzehuels/astview/pkg/config"
)

func TestCacheDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	c := New(io.Discard, LogInfo)
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(base, "astview"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	c.cfg.Cache.Dir = "/srv/astview-cache"
	if dir, _ := c.cacheDir(); dir != "/srv/astview-cache" {
		t.Errorf("configured cacheDir() = %q", dir)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	c := New(io.Discard, LogInfo)
	c.cfg.Cache.Dir = t.TempDir()

	tests := []struct {
		name     string
		backend  string
		noCache  bool
		wantFile bool
	}{
		{"file", config.CacheFile, false, true},
		{"none", config.CacheNone, false, false},
		{"no-cache flag", config.CacheFile, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.cfg.Cache.Backend = tt.backend
			got, err := c.newCache(ctx, tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer got.Close()
			fc, isFile := got.(*cache.FileCache)
			if isFile != tt.wantFile {
				t.Fatalf("newCache() = %T, want file cache %v", got, tt.wantFile)
			}
			if isFile && fc.Dir() != c.cfg.Cache.Dir {
				t.Errorf("Dir() = %q, want %q", fc.Dir(), c.cfg.Cache.Dir)
			}
		})
	}
}
