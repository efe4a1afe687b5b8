// Package util provides common string helpers for command arguments.
package util

import "strings"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanArgs trims surrounding quotes and unescapes doubled quotes in place.
func CleanArgs(data []string) []string {
	for i, v := range data {
		data[i] = FixEscapeQuotes(TrimQuotes(v))
	}
	return data
}

// ParseStringArray parses a stringified array of quoted strings.
// Input format: ["str1","str2"]. Bare words are accepted too: [str1, str2].
// A value without brackets is a single element; empty input is no elements.
func ParseStringArray(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return nil
	}
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		s = s[1 : len(s)-1]
	}

	var out []string
	for _, part := range strings.Split(s, ",") {
		part = FixEscapeQuotes(TrimQuotes(strings.TrimSpace(part)))
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Contains reports whether slice holds str.
func Contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
