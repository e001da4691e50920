// Package parser extracts #include and #version directives from shader
// source. Extraction sits behind the Parser interface so a grammar-based
// implementation can replace the regexp one without touching callers;
// both directives are line-anchored, which keeps the regexps exact.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// IncludeMatch is one `#include "..."` occurrence found in a file's text.
type IncludeMatch struct {
	// RawPath is the string between the quotes, unresolved.
	RawPath string
	// Line is the zero-based line index the directive occupies.
	Line int
	// ByteStart/ByteEnd bound the whole directive (from '#' through the
	// closing quote) within the source, used by the merge builder to
	// rewrite unresolved includes to #error directives in place.
	ByteStart, ByteEnd int
}

// Parser is the pluggable include/version extraction boundary.
type Parser interface {
	ParseIncludes(text string) ([]IncludeMatch, error)
	ParseVersion(text string) (int, bool, error)
}

var (
	includeRe = regexp.MustCompile(`(?m)^[ \t]*(#include\s+"([^"]+)")`)
	versionRe = regexp.MustCompile(`(?m)^#version\s+(\d+)`)
)

// Default is the regexp-backed Parser used throughout this module.
type Default struct{}

// NewDefault returns the regexp-based parser.
func NewDefault() Default { return Default{} }

// ParseIncludes returns every #include "..." occurrence in textual
// (and therefore line) order.
func (Default) ParseIncludes(text string) ([]IncludeMatch, error) {
	var matches []IncludeMatch
	locs := includeRe.FindAllStringSubmatchIndex(text, -1)
	lineOf := newLineIndexer(text)
	for _, loc := range locs {
		matches = append(matches, IncludeMatch{
			RawPath:   text[loc[4]:loc[5]],
			Line:      lineOf(loc[2]),
			ByteStart: loc[2],
			ByteEnd:   loc[3],
		})
	}
	return matches, nil
}

// ParseVersion extracts the directive's numeric argument. found is false
// when no #version line exists.
func (Default) ParseVersion(text string) (int, bool, error) {
	m := versionRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false, nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// newLineIndexer returns a function mapping a byte offset to its
// zero-based line index, computed once per call to ParseIncludes.
func newLineIndexer(text string) func(offset int) int {
	starts := []int{0}
	for i, r := range text {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return func(offset int) int {
		// binary search would be tidier but these slices are small
		// (shader files rarely exceed a few hundred lines).
		line := 0
		for i := 1; i < len(starts); i++ {
			if starts[i] > offset {
				break
			}
			line = i
		}
		return line
	}
}

// KnownVersion maps a raw #version number to itself if it is one of the
// GLSL versions OptiFine recognizes; anything else defaults to 110.
func KnownVersion(n int) int {
	switch n {
	case 110, 120, 130, 140, 150, 330, 400, 410, 420, 430, 440, 450, 460:
		return n
	default:
		return 110
	}
}

// FindVersionLineOffset returns the zero-based line index of the first
// `#version` directive, or 0 if absent.
func FindVersionLineOffset(text string) int {
	for i, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#version ") {
			return i
		}
	}
	return 0
}
