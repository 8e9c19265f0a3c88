package main

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// scriptExtensions are the extensions of the files minified when walking directories.
var scriptExtensions = map[string]bool{
	"js":  true,
	"mjs": true,
	"cjs": true,
}

// filterRule includes or excludes the paths matching pattern. Rules are applied in order and the last match wins.
type filterRule struct {
	include bool
	pattern string
}

// filterFlag is an argp option that adds one rule per occurrence, so that --include and --exclude keep their
// relative order on the command line.
type filterFlag struct {
	include bool
	rules   *[]filterRule
}

func (f filterFlag) Help() (string, string) {
	return "", "string"
}

func (f filterFlag) Scan(name string, s []string) (int, error) {
	if len(s) == 0 || s[0] == "" {
		return 0, fmt.Errorf("--%s: missing pattern", name)
	}
	*f.rules = append(*f.rules, filterRule{f.include, s[0]})
	return 1, nil
}

// pathFilter selects the files to minify.
type pathFilter struct {
	matches []*regexp.Regexp
	rules   []*regexp.Regexp
	include []bool
}

func newPathFilter(matches []string, rules []filterRule) (*pathFilter, error) {
	f := &pathFilter{}
	for _, pattern := range matches {
		re, err := compilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("--match %s: %w", pattern, err)
		}
		f.matches = append(f.matches, re)
	}
	for _, rule := range rules {
		re, err := compilePattern(rule.pattern)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", rule.pattern, err)
		}
		f.rules = append(f.rules, re)
		f.include = append(f.include, rule.include)
	}
	return f, nil
}

// selects returns true if the base name matches one of the --match patterns, if any, and the path is not excluded.
func (f *pathFilter) selects(filename string) bool {
	if 0 < len(f.matches) {
		base := filepath.Base(filename)
		match := false
		for _, re := range f.matches {
			if re.MatchString(base) {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	selected := true
	for i, re := range f.rules {
		if re.MatchString(filename) {
			selected = f.include[i]
		}
	}
	return selected
}

// isScript is like selects but also requires a JavaScript file extension, it is used for files found in
// directories.
func (f *pathFilter) isScript(filename string) bool {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	return scriptExtensions[ext] && f.selects(filename)
}

// compilePattern returns a regular expression for a glob pattern, or for a regular expression prefixed by ~.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if strings.HasPrefix(pattern, "~") {
		return regexp.Compile(pattern[1:])
	}
	if strings.HasPrefix(pattern, `\~`) {
		pattern = pattern[1:]
	}
	sep := regexp.QuoteMeta(string(filepath.Separator))
	var sb strings.Builder
	sb.WriteByte('^')
	for i, part := range strings.Split(pattern, "**") {
		if i != 0 {
			sb.WriteString(".*")
		}
		part = regexp.QuoteMeta(part)
		part = strings.ReplaceAll(part, `\*`, "[^"+sep+"]*")
		part = strings.ReplaceAll(part, `\?`, "[^"+sep+"]?")
		sb.WriteString(part)
	}
	sb.WriteByte('$')
	return regexp.Compile(sb.String())
}
