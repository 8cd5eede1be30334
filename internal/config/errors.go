package config

import "fmt"

// FieldError is a setting with an unusable value
type FieldError struct {
	Line   int // 0 when not read from a file
	Key    string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("config line %d: %s=%q: %s", e.Line, e.Key, e.Value, e.Reason)
	}
	return fmt.Sprintf("config %s=%q: %s", e.Key, e.Value, e.Reason)
}
