package appid

import (
	"log/slog"
	"regexp"
	"strings"
)

var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`store\.steampowered\.com/app/(\d+)`),
	regexp.MustCompile(`steamdb\.info/app/(\d+)`),
}

// Extract pulls a numeric app id out of a single input. URL forms are tried
// in order before falling back to treating all-digit input as an id.
func Extract(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	for _, pattern := range urlPatterns {
		if m := pattern.FindStringSubmatch(input); m != nil {
			return m[1], true
		}
	}
	if isDigits(input) {
		return input, true
	}
	return "", false
}

// Resolve applies Extract to every input, preserving first-seen order and
// dropping duplicates. Unresolvable inputs are logged and skipped rather
// than failing the batch.
func Resolve(inputs []string, logger *slog.Logger) []string {
	seen := make(map[string]struct{}, len(inputs))
	resolved := make([]string, 0, len(inputs))
	for _, item := range inputs {
		id, ok := Extract(item)
		if !ok {
			if logger != nil {
				logger.Warn("input is not a valid app id or link, skipping", "input", item)
			}
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		resolved = append(resolved, id)
	}
	return resolved
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
