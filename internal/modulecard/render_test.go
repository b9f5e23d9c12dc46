package modulecard

import (
	"testing"

	"github.com/paperiq/dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		wantKind Kind
		wantHead string
		wantBody string
	}{
		{name: "error string", input: "Network Error: timeout", wantKind: KindError, wantBody: "Network Error: timeout"},
		{name: "error field wins over text", input: models.Result{"error": "No file uploaded", "text": "x"}, wantKind: KindError, wantBody: "No file uploaded"},
		{name: "ingestion", input: models.Result{"message": "ok", "text": "raw"}, wantKind: KindText, wantHead: "Extracted Text:", wantBody: "raw"},
		{name: "empty text falls through", input: models.Result{"text": "", "clean_text": "clean"}, wantKind: KindCleanText, wantHead: "Cleaned Text:", wantBody: "clean"},
		{name: "preprocess", input: map[string]any{"clean_text": "clean"}, wantKind: KindCleanText, wantHead: "Cleaned Text:", wantBody: "clean"},
		{name: "summary", input: models.Result{"status": "success", "summary": "short"}, wantKind: KindSummary, wantHead: "Summary:", wantBody: "short"},
		{name: "unknown shape", input: models.Result{"doc_id": "d1"}, wantKind: KindRaw, wantBody: "{\n  \"doc_id\": \"d1\"\n}"},
		{name: "plain string", input: "hello", wantKind: KindRaw, wantBody: `"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Render(tt.input)
			require.NotNil(t, out)
			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantHead, out.Heading)
			assert.Equal(t, tt.wantBody, out.Body)
		})
	}
}

func TestRender_Insights(t *testing.T) {
	out := Render(models.Result{
		"entities": []any{[]any{"Paris", "GPE"}, "Ada"},
		"keywords": []any{},
	})
	require.NotNil(t, out)
	assert.Equal(t, KindInsights, out.Kind)
	assert.Empty(t, out.Keywords)
	assert.Equal(t, []string{"Paris (GPE)", "Ada"}, out.Entities)
	assert.Equal(t, "Entities: Paris (GPE), Ada", out.Text())

	both := Render(models.Result{"keywords": []any{"a", "b"}, "entities": []any{"c"}})
	assert.Equal(t, "Keywords: a, b\nEntities: c", both.Text())
}

func TestRender_Empty(t *testing.T) {
	assert.Nil(t, Render(nil))
	assert.Nil(t, Render(""))
	assert.Nil(t, Render(models.Result(nil)))
	assert.Equal(t, "", (*Output)(nil).Text())
}

func TestOutput_Text(t *testing.T) {
	assert.Equal(t, "Summary:\nshort", Render(models.Result{"summary": "short"}).Text())
	assert.Equal(t, "Error: boom", Render(models.Result{"error": "boom"}).Text())
}
