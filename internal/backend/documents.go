package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/paperiq/dashboard/internal/models"
	"github.com/paperiq/dashboard/internal/session"
)

// Ingest uploads the document and returns its raw text under "text".
func (c *Client) Ingest(ctx context.Context, file *models.FileInfo) (models.Result, error) {
	if file == nil {
		return nil, ErrNoFile
	}
	return c.postForm(ctx, "/ingest/", nil, file)
}

// Preprocess cleans raw text and returns it under "clean_text".
func (c *Client) Preprocess(ctx context.Context, text string) (models.Result, error) {
	if text == "" {
		return nil, ErrNoText
	}
	return c.postForm(ctx, "/preprocess/", map[string]string{"text": text}, nil)
}

// Extract returns "entities" and "keywords" found in the text.
func (c *Client) Extract(ctx context.Context, text string) (models.Result, error) {
	if text == "" {
		return nil, ErrNoText
	}
	return c.postForm(ctx, "/extract/", map[string]string{"text": text}, nil)
}

// Summarize uploads the document on behalf of the signed-in user and returns
// its "summary". The backend also stores the document and its entities.
func (c *Client) Summarize(ctx context.Context, file *models.FileInfo) (models.Result, error) {
	if file == nil {
		return nil, ErrNoFile
	}
	user := session.User(c.store)
	if user == nil || user.ID == "" {
		return nil, ErrNotLoggedIn
	}
	return c.postForm(ctx, "/summarize/", map[string]string{"user_id": user.ID}, file)
}

// postForm sends a multipart form. Documents are capped by the upload
// validator, so the body is built in memory.
func (c *Client) postForm(ctx context.Context, path string, fields map[string]string, file *models.FileInfo) (models.Result, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if file != nil {
		if err := writeFilePart(w, file); err != nil {
			return nil, err
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("writing form field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	var out models.Result
	if err := c.do(ctx, http.MethodPost, path, body, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeFilePart(w *multipart.Writer, file *models.FileInfo) error {
	src, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", file.Name, err)
	}
	defer src.Close()

	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copying %s: %w", file.Name, err)
	}
	return nil
}
