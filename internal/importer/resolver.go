package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Resolver maps spreadsheet headers to canonical fields. It carries no
// domain knowledge; callers supply the alias list per field.
type Resolver struct {
	headers []string
	folded  []string
}

// NewResolver builds a resolver for one spreadsheet's header row.
func NewResolver(headers []string) *Resolver {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = foldHeader(h)
	}
	return &Resolver{headers: headers, folded: folded}
}

// Value returns the first non-empty cell matching any alias. Exact
// case-sensitive matches win over folded (trimmed, case- and
// accent-insensitive) matches; aliases are tried in the order given.
func (r *Resolver) Value(record []string, aliases ...string) string {
	for _, alias := range aliases {
		for i, h := range r.headers {
			if h == alias {
				if v := cellAt(record, i); v != "" {
					return v
				}
			}
		}
	}

	for _, alias := range aliases {
		fa := foldHeader(alias)
		for i, fh := range r.folded {
			if fh == fa {
				if v := cellAt(record, i); v != "" {
					return v
				}
			}
		}
	}

	return ""
}

func cellAt(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldHeader lowercases, trims, and strips diacritics so "Endereço" and
// "endereco" compare equal.
func foldHeader(s string) string {
	folded, _, err := transform.String(deaccent, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return folded
}
