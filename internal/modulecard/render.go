package modulecard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paperiq/dashboard/internal/models"
)

// Kind names the shape a result was recognized as.
type Kind string

const (
	KindError     Kind = "error"
	KindText      Kind = "text"
	KindCleanText Kind = "clean_text"
	KindInsights  Kind = "insights"
	KindSummary   Kind = "summary"
	KindRaw       Kind = "raw"
)

// Output is a rendered result, ready for a template or a terminal.
type Output struct {
	Kind     Kind     `json:"kind"`
	Heading  string   `json:"heading,omitempty"`
	Body     string   `json:"body,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Entities []string `json:"entities,omitempty"`
}

// Render picks the first matching shape. It returns nil for an empty result.
func Render(result any) *Output {
	switch v := result.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		if strings.Contains(strings.ToLower(v), "error") {
			return &Output{Kind: KindError, Body: v}
		}
		return raw(v)
	case models.Result:
		if v == nil {
			return nil
		}
		return renderResult(v)
	case map[string]any:
		if v == nil {
			return nil
		}
		return renderResult(models.Result(v))
	default:
		return raw(v)
	}
}

func renderResult(r models.Result) *Output {
	if msg := r.ErrorMessage(); msg != "" {
		return &Output{Kind: KindError, Body: msg}
	}
	if text := r.Text(); text != "" {
		return &Output{Kind: KindText, Heading: "Extracted Text:", Body: text}
	}
	if clean := r.CleanText(); clean != "" {
		return &Output{Kind: KindCleanText, Heading: "Cleaned Text:", Body: clean}
	}
	if r.Has("entities") || r.Has("keywords") {
		return &Output{Kind: KindInsights, Keywords: r.Keywords(), Entities: r.Entities()}
	}
	if summary := r.Summary(); summary != "" {
		return &Output{Kind: KindSummary, Heading: "Summary:", Body: summary}
	}
	return raw(r)
}

func raw(v any) *Output {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &Output{Kind: KindRaw, Body: fmt.Sprint(v)}
	}
	return &Output{Kind: KindRaw, Body: string(data)}
}

// Text formats an output for a terminal.
func (o *Output) Text() string {
	if o == nil {
		return ""
	}
	var b strings.Builder
	switch o.Kind {
	case KindError:
		b.WriteString("Error: ")
		b.WriteString(o.Body)
	case KindInsights:
		if len(o.Keywords) > 0 {
			b.WriteString("Keywords: ")
			b.WriteString(strings.Join(o.Keywords, ", "))
		}
		if len(o.Entities) > 0 {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString("Entities: ")
			b.WriteString(strings.Join(o.Entities, ", "))
		}
	default:
		if o.Heading != "" {
			b.WriteString(o.Heading)
			b.WriteString("\n")
		}
		b.WriteString(o.Body)
	}
	return b.String()
}
