package models

import (
	"fmt"
	"strings"
)

// Result is the decoded JSON body returned by a pipeline endpoint. The backend
// owns its shape; the readers below only look at the fields the dashboard uses.
type Result map[string]any

// Text is the raw text produced by ingestion.
func (r Result) Text() string { return r.str("text") }

// CleanText is the normalized text produced by preprocessing.
func (r Result) CleanText() string { return r.str("clean_text") }

// Summary is the abstract produced by summarization.
func (r Result) Summary() string { return r.str("summary") }

// ErrorMessage returns the backend's "error" field when it is truthy.
func (r Result) ErrorMessage() string {
	v, ok := r["error"]
	if !ok || !Truthy(v) {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Keywords returns the extracted keywords, if any.
func (r Result) Keywords() []string { return r.list("keywords") }

// Entities returns the extracted entities. Entities arrive either as plain
// strings or as [text, label] pairs; pairs are formatted as "text (label)".
func (r Result) Entities() []string { return r.list("entities") }

// Has reports whether the field is present and truthy. An empty list counts.
func (r Result) Has(key string) bool {
	v, ok := r[key]
	return ok && Truthy(v)
}

func (r Result) str(key string) string {
	s, _ := r[key].(string)
	return s
}

func (r Result) list(key string) []string {
	raw, ok := r[key].([]any)
	if !ok {
		if ss, ok := r[key].([]string); ok {
			return ss
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, formatItem(item))
	}
	return out
}

func formatItem(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		if len(parts) == 2 {
			return fmt.Sprintf("%s (%s)", parts[0], parts[1])
		}
		return strings.Join(parts, " ")
	case map[string]any:
		text, _ := v["text"].(string)
		label, _ := v["type"].(string)
		if text != "" && label != "" {
			return fmt.Sprintf("%s (%s)", text, label)
		}
		if text != "" {
			return text
		}
	}
	return fmt.Sprint(item)
}

// Truthy mirrors how a JSON value reads in a boolean context: empty strings,
// zero numbers, false and null are falsy. Arrays and objects are always truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}
