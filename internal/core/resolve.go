package core

// resolve.go maps a header row onto canonical fields.
//
// Matching runs in two phases over normalized headers:
//  1. Aliases: a header matches when an alias is a substring of it, or it
//     is a substring of an alias. The leftmost matching column wins.
//  2. Rules: extended pay-scale fields need a header containing every token
//     of one rule, e.g. "da" and "150".
//
// There is no scoring. Missing recommended columns only produce warnings.

import (
	"fmt"
	"strings"
)

// ColumnMapping maps a canonical field to its column index.
// Unmapped fields are absent.
type ColumnMapping map[Field]int

// Index returns the column for f.
func (m ColumnMapping) Index(f Field) (int, bool) {
	i, ok := m[f]
	return i, ok
}

// Resolution is the result of resolving a header row.
type Resolution struct {
	Mapping  ColumnMapping
	Headers  []string
	Warnings []Warning
}

// MappedHeaders returns field -> original header text for display.
func (r Resolution) MappedHeaders() map[Field]string {
	out := make(map[Field]string, len(r.Mapping))
	for f, i := range r.Mapping {
		if i < len(r.Headers) {
			out[f] = r.Headers[i]
		}
	}
	return out
}

// ResolveColumns resolves a header row with the built-in aliases.
func ResolveColumns(header []string) Resolution {
	return DefaultAliases().Resolve(header)
}

// Resolve resolves a header row against t.
func (t AliasTable) Resolve(header []string) Resolution {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = NormalizeHeader(h)
	}

	mapping := make(ColumnMapping)
	for _, spec := range fieldSpecs {
		var (
			col int
			ok  bool
		)
		if spec.Extended {
			col, ok = matchRules(normalized, t.Rules[spec.Field])
		} else {
			col, ok = matchAliases(normalized, t.Aliases[spec.Field])
		}
		if ok {
			mapping[spec.Field] = col
		}
	}

	res := Resolution{
		Mapping: mapping,
		Headers: append([]string(nil), header...),
	}
	for _, f := range requiredFields {
		if _, ok := mapping[f]; ok {
			continue
		}
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnMissingColumn,
			Field:   f,
			Message: fmt.Sprintf("missing recommended column %q", specByField[f].Label),
		})
	}
	return res
}

// matchAliases returns the leftmost column matching any alias.
func matchAliases(headers, aliases []string) (int, bool) {
	for col, h := range headers {
		if h == "" {
			continue
		}
		for _, a := range aliases {
			if a == "" {
				continue
			}
			if strings.Contains(h, a) || strings.Contains(a, h) {
				return col, true
			}
		}
	}
	return 0, false
}

// matchRules returns the leftmost column containing every token of a rule.
func matchRules(headers []string, rules [][]string) (int, bool) {
	for col, h := range headers {
		if h == "" {
			continue
		}
		for _, rule := range rules {
			if containsAll(h, rule) {
				return col, true
			}
		}
	}
	return 0, false
}

func containsAll(h string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(h, tok) {
			return false
		}
	}
	return true
}
