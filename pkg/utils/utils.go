package utils

import (
	"strings"
)

// LimitStr returns a string truncated to n runes with "..." appended if longer.
func LimitStr(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// CleanJSON removes markdown code blocks from a string to extract raw JSON.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	// Remove markdown code blocks
	if strings.HasPrefix(s, "```") {
		lines := strings.Split(s, "\n")
		if len(lines) >= 2 {
			// Remove first line (```json) and last line (```)
			if strings.HasPrefix(lines[0], "```") {
				lines = lines[1:]
			}
			if len(lines) > 0 && strings.HasPrefix(lines[len(lines)-1], "```") {
				lines = lines[:len(lines)-1]
			}
			s = strings.Join(lines, "\n")
		}
	}
	return strings.TrimSpace(s)
}

// ExtractJSON pulls the JSON object out of raw model output: a reasoning
// block ending in </think> is dropped, code fences are removed, and anything
// outside the outermost braces is trimmed. It returns "" when no object
// start is found.
func ExtractJSON(s string) string {
	if strings.Contains(s, "<think>") {
		if idx := strings.LastIndex(s, "</think>"); idx != -1 {
			s = s[idx+len("</think>"):]
		}
	}

	s = CleanJSON(s)
	if len(s) == 0 {
		return ""
	}
	if s[0] != '{' {
		j := strings.Index(s, "{")
		if j == -1 {
			return ""
		}
		s = s[j:]
	}
	if k := strings.LastIndex(s, "}"); k != -1 {
		s = s[:k+1]
	}
	return s
}

// SanitizeFilename replaces dangerous characters with underscores.
func SanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.TrimSpace(s)
	return s
}
