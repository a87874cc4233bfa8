package tools

import (
	"fmt"
	"strconv"
	"strings"
)

// Argument values arrive as decoded JSON, so numbers are float64 and
// arrays are []interface{}. These helpers coerce them for handlers.

// StringArg returns args[key] as a trimmed string, or fallback when the
// key is absent or empty.
func StringArg(args map[string]any, key, fallback string) string {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprintf("%v", v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// RequiredString returns args[key] as a trimmed string, erroring when the
// value is missing or blank.
func RequiredString(args map[string]any, key string) (string, error) {
	s := StringArg(args, key, "")
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredArg, key)
	}
	return s, nil
}

// IntArg returns args[key] as an int, accepting float64 and numeric
// strings, or fallback.
func IntArg(args map[string]any, key string, fallback int) int {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed
		}
	}
	return fallback
}

// BoolArg returns args[key] as a bool, accepting "true"/"false" strings,
// or fallback.
func BoolArg(args map[string]any, key string, fallback bool) bool {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	}
	return fallback
}

// StringSliceArg returns args[key] as a []string, accepting []interface{}
// of strings. Missing or malformed values yield nil.
func StringSliceArg(args map[string]any, key string) []string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}
