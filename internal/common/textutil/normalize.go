// Package textutil holds the text normalization shared by duplicate detection
// and criteria matching.
package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC, trims, and collapses internal whitespace runs to a
// single space. Case is preserved.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// Key is Normalize followed by lower-casing; two strings that compare equal
// under Key are treated as the same value.
func Key(s string) string {
	return strings.ToLower(Normalize(s))
}

// KeyPtr is Key for optional values; nil yields "".
func KeyPtr(s *string) string {
	if s == nil {
		return ""
	}
	return Key(*s)
}

// IsBlank reports whether s is nil or only whitespace.
func IsBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// KeySet builds a lookup set of Key(v) for every non-blank value.
func KeySet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if k := Key(v); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// UnionFold appends every value from incoming whose key is not already
// present, keeping the first spelling seen. Blank values are dropped.
func UnionFold(existing, incoming []string) []string {
	if len(existing) == 0 && len(incoming) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, list := range [][]string{existing, incoming} {
		for _, v := range list {
			k := Key(v)
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
