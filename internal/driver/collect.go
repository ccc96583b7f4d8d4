// Package driver orchestrates the normalizer over many files: collecting
// sources, running the pipeline in parallel, caching procedure indexes and
// timing the phases. Commands call into here; the transforms themselves
// live in stmt, proc and norm.
package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"f90norm/internal/project"
)

// CollectSourceFiles expands paths into the sorted list of Fortran sources
// to process. Directories are walked recursively and filtered through the
// configured extensions and include/exclude globs; dot-directories are
// skipped. Explicitly named files are taken as-is, except that exclude
// globs still apply to them. Duplicates are dropped.
func CollectSourceFiles(paths []string, cfg project.Config) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			excluded, err := matchAny(cfg.Files.Exclude, filepath.ToSlash(filepath.Clean(root)))
			if err != nil {
				return nil, err
			}
			if !excluded {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !hasExtension(path, cfg.Files.Extensions) {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			ok, err := matchesConfig(cfg, filepath.ToSlash(rel))
			if err != nil {
				return err
			}
			if ok {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// hasExtension matches exactly: ".F90" sources usually run through the
// preprocessor and are left alone unless configured in explicitly.
func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}

// matchesConfig checks rel (slash-separated, relative to the walked root)
// against the include and exclude globs.
func matchesConfig(cfg project.Config, rel string) (bool, error) {
	if len(cfg.Files.Include) > 0 {
		ok, err := matchAny(cfg.Files.Include, rel)
		if err != nil || !ok {
			return false, err
		}
	}
	excluded, err := matchAny(cfg.Files.Exclude, rel)
	if err != nil {
		return false, err
	}
	return !excluded, nil
}

func matchAny(patterns []string, rel string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, fmt.Errorf("bad glob %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
