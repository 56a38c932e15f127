package provider

import "time"

// Settings reads typed values from a factory config map. Missing or
// mistyped keys yield the zero value.
type Settings map[string]any

func (s Settings) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Duration accepts a time.Duration or a string such as "30s".
func (s Settings) Duration(key string) time.Duration {
	switch v := s[key].(type) {
	case time.Duration:
		return v
	case string:
		d, _ := time.ParseDuration(v)
		return d
	}
	return 0
}

func (s Settings) Int(key string) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (s Settings) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}
