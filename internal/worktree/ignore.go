package worktree

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/vx/internal/constants"
)

// alwaysIgnored are never part of a tree.
var alwaysIgnored = []string{constants.Vx, ".git"}

type ignorePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool // match against the full relative path instead of the base name
}

// Matcher decides whether a worktree path is ignored. The last matching
// pattern wins, so "!keep.log" after "*.log" re-includes keep.log.
type Matcher struct {
	patterns []ignorePattern
}

// NewMatcher reads root/.vxignore, if present, and appends extra patterns.
func NewMatcher(root string, extra []string) (*Matcher, error) {
	m := &Matcher{}
	for _, name := range alwaysIgnored {
		m.patterns = append(m.patterns, ignorePattern{pattern: name})
	}

	f, err := os.Open(filepath.Join(root, constants.IgnoreFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", constants.IgnoreFile, err)
	default:
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if p, ok := parsePattern(scanner.Text()); ok {
				m.patterns = append(m.patterns, p)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", constants.IgnoreFile, err)
		}
	}

	for _, line := range extra {
		if p, ok := parsePattern(line); ok {
			m.patterns = append(m.patterns, p)
		}
	}

	for _, p := range m.patterns {
		if _, err := path.Match(p.pattern, ""); err != nil {
			return nil, fmt.Errorf("bad ignore pattern %q: %w", p.pattern, err)
		}
	}
	return m, nil
}

// parsePattern parses one ignore line. Blank lines and # comments yield
// false.
func parsePattern(line string) (ignorePattern, bool) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return ignorePattern{}, false
	}

	var p ignorePattern
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return ignorePattern{}, false
	}

	p.hasSlash = strings.Contains(line, "/")
	p.pattern = line
	return p, true
}

// Ignored reports whether rel, a slash-separated path relative to the
// worktree root, is ignored.
func (m *Matcher) Ignored(rel string, isDir bool) bool {
	ignored := false
	for _, p := range m.patterns {
		if p.matches(rel, isDir) {
			ignored = !p.negated
		}
	}
	return ignored
}

func (p *ignorePattern) matches(rel string, isDir bool) bool {
	if p.dirOnly {
		// The directory itself, or anything below it.
		if strings.HasPrefix(rel, p.pattern+"/") {
			return true
		}
		if !isDir {
			return false
		}
	}

	if p.hasSlash {
		matched, _ := path.Match(p.pattern, rel)
		return matched
	}
	matched, _ := path.Match(p.pattern, path.Base(rel))
	return matched
}
