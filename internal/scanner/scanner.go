// Package scanner discovers analyzable files. It applies extension and
// exclude-pattern filtering so the analysis core only ever sees files it
// supports.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dusk-indust/guardian/internal/analysis"
	"github.com/dusk-indust/guardian/internal/lang"
)

// defaultExcludes are skipped in every scan.
var defaultExcludes = []string{
	".git/",
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	"__pycache__/",
}

// Discover walks root and returns targets in lexicographic path order.
// extensions restricts which suffixes are attempted; excludePatterns are
// gitignore-style lines matched against paths relative to root. A root
// that is a single file is returned as a one-element target list.
func Discover(root string, extensions, excludePatterns []string) ([]analysis.Target, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	if !info.IsDir() {
		t, ok := targetFor(root, allowed)
		if !ok {
			return nil, fmt.Errorf("unsupported file type: %s", root)
		}
		return []analysis.Target{t}, nil
	}

	matcher := ignore.CompileIgnoreLines(append(defaultExcludes, excludePatterns...)...)

	var targets []analysis.Target
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if rel != "." && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.MatchesPath(rel) {
			return nil
		}
		if t, ok := targetFor(path, allowed); ok {
			targets = append(targets, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].Path < targets[j].Path })
	return targets, nil
}

func targetFor(path string, allowed map[string]bool) (analysis.Target, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if len(allowed) > 0 && !allowed[ext] {
		return analysis.Target{}, false
	}
	language, ok := lang.FromExtension(ext)
	if !ok {
		return analysis.Target{}, false
	}
	return analysis.Target{Path: path, Language: language}, true
}
