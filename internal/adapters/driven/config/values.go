// Package config holds the value coercion shared by the ConfigStore adapters.
// Subpackage file persists settings as TOML.
package config

// String returns v when it is a string, "" otherwise.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int returns v as an int. TOML decodes integers as int64; floats are truncated.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Float returns v as a float64, widening integers so "min_relevance = 0" reads as 0.0.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// Bool returns v when it is a bool, false otherwise.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}
