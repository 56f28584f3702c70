// Package util holds small text helpers shared by the API client and the
// secrets loader.
package util

import "strings"

// SplitNonEmptyLines splits s on newlines, trims each line and drops blank ones.
func SplitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Truncate shortens s to at most max runes, appending "..." when it cuts.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max < 0 {
		max = 0
	}
	return string(r[:max]) + "..."
}
