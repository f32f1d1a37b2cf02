// File path: internal/llm/extract.go
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoObject means the text holds no balanced top-level JSON object.
var ErrNoObject = errors.New("llm: no JSON object found")

// DecodeError wraps a JSON object span that failed to decode.
type DecodeError struct {
	Span string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("llm: invalid JSON object: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ExtractObject returns the first balanced {...} span in text. Braces inside
// JSON strings, including escaped quotes, do not count.
func ExtractObject(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if start < 0 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoObject
}

// DecodeObject extracts the first object in text and decodes it into v.
func DecodeObject(text string, v any) error {
	span, err := ExtractObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return &DecodeError{Span: span, Err: err}
	}
	return nil
}
