package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/paperiq/dashboard/internal/session"
	"github.com/paperiq/dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments_InputValidationSkipsNetwork(t *testing.T) {
	c, fake, _ := newTestClient(t)
	login(t, c)
	ctx := context.Background()
	before := len(fake.Requests())

	_, err := c.Ingest(ctx, nil)
	assert.ErrorIs(t, err, ErrNoFile)
	_, err = c.Preprocess(ctx, "")
	assert.ErrorIs(t, err, ErrNoText)
	_, err = c.Extract(ctx, "")
	assert.ErrorIs(t, err, ErrNoText)
	_, err = c.Summarize(ctx, nil)
	assert.ErrorIs(t, err, ErrNoFile)

	assert.Len(t, fake.Requests(), before)
}

func TestIngest(t *testing.T) {
	c, fake, _ := newTestClient(t)
	login(t, c)

	out, err := c.Ingest(context.Background(), writeDoc(t, "paper.pdf", "%PDF-1.4 body"))
	require.NoError(t, err)
	assert.Equal(t, "  Raw Text of paper.pdf  ", out.Text())

	req, ok := fake.Last("/api/ingest/")
	require.True(t, ok)
	assert.Equal(t, "paper.pdf", req.FileName)
	assert.Equal(t, len("%PDF-1.4 body"), req.FileSize)
	assert.Equal(t, "Bearer "+testutil.FakeToken, req.Authorization)
}

func TestPreprocessAndExtract(t *testing.T) {
	c, fake, _ := newTestClient(t)
	login(t, c)
	ctx := context.Background()

	pre, err := c.Preprocess(ctx, "  Hello World ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", pre.CleanText())
	req, _ := fake.Last("/api/preprocess/")
	assert.Equal(t, "  Hello World ", req.Form["text"])

	ins, err := c.Extract(ctx, pre.CleanText())
	require.NoError(t, err)
	assert.Equal(t, []string{"document", "analysis"}, ins.Keywords())
	assert.Equal(t, []string{"Ada Lovelace (PERSON)", "PaperIQ (ORG)"}, ins.Entities())
}

func TestSummarize(t *testing.T) {
	t.Run("sends user id", func(t *testing.T) {
		c, fake, _ := newTestClient(t)
		login(t, c)

		out, err := c.Summarize(context.Background(), writeDoc(t, "paper.docx", "docx bytes"))
		require.NoError(t, err)
		assert.Equal(t, "Summary of paper.docx", out.Summary())

		req, _ := fake.Last("/api/summarize/")
		assert.Equal(t, "user-42", req.Form["user_id"])
		assert.Equal(t, "paper.docx", req.FileName)
	})

	t.Run("requires stored user", func(t *testing.T) {
		c, fake, store := newTestClient(t)
		require.NoError(t, store.Set(session.KeyAccessToken, testutil.FakeToken))

		_, err := c.Summarize(context.Background(), writeDoc(t, "paper.pdf", "x"))
		assert.True(t, errors.Is(err, ErrNotLoggedIn))
		assert.Equal(t, 0, fake.Count("/api/summarize/"))
	})

	t.Run("missing file on disk", func(t *testing.T) {
		c, _, _ := newTestClient(t)
		login(t, c)
		doc := writeDoc(t, "paper.pdf", "x")
		doc.Path = doc.Path + ".gone"

		_, err := c.Summarize(context.Background(), doc)
		assert.Error(t, err)
	})
}
