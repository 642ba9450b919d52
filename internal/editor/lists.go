// Package editor converts between the text a user types into a field and the
// values the resume document stores.
package editor

import "strings"

// SplitLines turns multi-line input into one entry per non-blank line.
func SplitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// JoinLines is the display form of a newline list.
func JoinLines(items []string) string {
	return strings.Join(items, "\n")
}

// SplitComma splits on commas, trims every token and drops empty ones.
func SplitComma(s string) []string {
	out := []string{}
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// JoinComma is the display form of a comma list.
func JoinComma(items []string) string {
	return strings.Join(items, ", ")
}
