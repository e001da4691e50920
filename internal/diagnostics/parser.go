// Package diagnostics implements the vendor-aware compiler output parser
// and source back-mapper: raw driver stdout in, per-file LSP diagnostics
// out.
package diagnostics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/optifine-glsl/mcglsl-lsp/internal/lspdiag"
	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
	"github.com/optifine-glsl/mcglsl-lsp/internal/sourcefile"
)

// nvidiaRegex matches the NVIDIA driver's "0(9) : error C0000: ..." shape.
// The first capture is the SourceNum, not a filepath: the merged view's
// synthetic #line directives report the numeric id the SourceMapper
// allocated, not a path.
var nvidiaRegex = regexp.MustCompile(`^(?P<source>\d+)\((?P<line>\d+)\) : (?P<severity>error|warning) [A-C]\d+: (?P<message>.+)$`)

// defaultRegex matches the AMD/Mesa/other shape: "ERROR: 0:9: '}' : syntax error".
var defaultRegex = regexp.MustCompile(`^(?P<severity>ERROR|WARNING): (?P<source>[^?<>*|"\n]+):(?P<line>\d+): (?:'.*' :|[a-z]+\(#\d+\)) +(?P<message>.+)$`)

// Parser parses raw compiler stdout into per-file diagnostics, mapping the
// numeric source ids reported against a merged view back to the original
// file paths through the SourceMapper used to build that view. A Parser is
// scoped to one vendor name for its lifetime; construct a new one if the
// configured vendor changes.
type Parser struct {
	vendor string
	re     *regexp.Regexp
}

// New returns a Parser for vendor, selecting the NVIDIA-specific line
// shape when vendor is exactly "NVIDIA Corporation" and the generic
// AMD/Mesa shape otherwise.
func New(vendor string) *Parser {
	re := defaultRegex
	if vendor == "NVIDIA Corporation" {
		re = nvidiaRegex
	}
	return &Parser{vendor: vendor, re: re}
}

// Parse scans output line by line, mapping every matched diagnostic back
// to its originating file via mapper, and groups the result by the
// resulting normpath.Path. root is used whenever a matched source id
// cannot be resolved through mapper.
func (p *Parser) Parse(output string, root normpath.Path, mapper *sourcefile.SourceMapper[normpath.Path]) map[normpath.Path][]lspdiag.Diagnostic {
	result := make(map[normpath.Path][]lspdiag.Diagnostic)

	for _, line := range strings.Split(output, "\n") {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		groups := namedGroups(p.re, m)

		lineNum := 0
		if raw, ok := groups["line"]; ok {
			if n, err := strconv.Atoi(raw); err == nil {
				lineNum = n
			}
		}
		// Vendor output reports 1-based lines; diagnostics are zero-based
		// throughout. Some ATI drivers reportedly emit zero-based lines
		// already; if that resurfaces, the offset belongs here, keyed on
		// the vendor string.
		zeroBased := lineNum - 1
		if zeroBased < 0 {
			zeroBased = 0
		}

		path := root
		if raw, ok := groups["source"]; ok {
			if num, err := strconv.Atoi(raw); err == nil {
				if resolved, found := mapper.Lookup(sourcefile.SourceNum(num)); found {
					path = resolved
				}
			}
		}

		severity := lspdiag.SeverityInformation
		switch strings.ToLower(groups["severity"]) {
		case "error":
			severity = lspdiag.SeverityError
		case "warning":
			severity = lspdiag.SeverityWarning
		}

		diag := lspdiag.Diagnostic{
			Range: lspdiag.Range{
				Start: lspdiag.Position{Line: uint32(zeroBased), Character: 0},
				End:   lspdiag.Position{Line: uint32(zeroBased), Character: 1000},
			},
			Severity: severity,
			Source:   lspdiag.Source,
			Message:  strings.TrimSpace(groups["message"]),
		}
		result[path] = append(result[path], diag)
	}

	return result
}

// BackFill ensures every path visited in a tree has an entry in result
// (possibly empty), so the editor clears stale diagnostics for files
// that no longer produce any.
func BackFill(result map[normpath.Path][]lspdiag.Diagnostic, visited []normpath.Path) map[normpath.Path][]lspdiag.Diagnostic {
	for _, p := range visited {
		if _, ok := result[p]; !ok {
			result[p] = nil
		}
	}
	return result
}

func namedGroups(re *regexp.Regexp, match []string) map[string]string {
	out := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		out[name] = match[i]
	}
	return out
}
