package spec

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscore/pkg/logger"
)

// Default discovery patterns. READMEs and vendored trees sit next to agent
// documents in catalog repositories and are never specifications themselves.
var (
	DefaultIncludePatterns = []string{"**/*.md"}
	DefaultExcludePatterns = []string{"**/README.md", "**/.git/**", "**/node_modules/**"}
)

// Discovery finds specification documents under a root directory by matching
// slash-separated relative paths against doublestar patterns.
type Discovery struct {
	includes []string
	excludes []string
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithIncludePatterns replaces the default include patterns.
func WithIncludePatterns(patterns ...string) Option {
	return func(d *Discovery) error {
		if err := validatePatterns(patterns); err != nil {
			return err
		}
		d.includes = patterns
		return nil
	}
}

// WithExcludePatterns replaces the default exclude patterns.
func WithExcludePatterns(patterns ...string) Option {
	return func(d *Discovery) error {
		if err := validatePatterns(patterns); err != nil {
			return err
		}
		d.excludes = patterns
		return nil
	}
}

func validatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid glob pattern '%s'", pattern)
		}
	}
	return nil
}

// NewDiscovery creates a document discovery instance
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if len(d.includes) == 0 {
		d.includes = DefaultIncludePatterns
	}
	if len(d.excludes) == 0 {
		d.excludes = DefaultExcludePatterns
	}

	return d, nil
}

// Discover walks root and returns matching document paths in sorted order.
func (d *Discovery) Discover(ctx context.Context, root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if d.matches(filepath.ToSlash(rel)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan '%s'", root)
	}

	sort.Strings(paths)

	logger.G(ctx).WithFields(map[string]interface{}{
		"root":  root,
		"count": len(paths),
	}).Debug("Discovered specification documents")

	return paths, nil
}

func (d *Discovery) matches(rel string) bool {
	included := false
	for _, pattern := range d.includes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}

	for _, pattern := range d.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}
