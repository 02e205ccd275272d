package util

import "strings"

// IsEmpty reports whether s is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// FlattenStrings joins items with sep, skipping empty entries.
func FlattenStrings(items []string, sep string) string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !IsEmpty(item) {
			out = append(out, strings.TrimSpace(item))
		}
	}
	return strings.Join(out, sep)
}

// ResolveToken substitutes every occurrence of token in path with value.
// Returns path unchanged when it does not contain the token.
func ResolveToken(token, value, path string) string {
	if !strings.Contains(path, token) {
		return path
	}
	return strings.ReplaceAll(path, token, value)
}

// Dedup returns items with duplicates removed, preserving first-seen order.
func Dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
