// fake_backend.go - In-process stand-in for the PaperIQ backend API
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/paperiq/dashboard/internal/models"
)

// Credentials the fake backend accepts.
const (
	FakeEmail    = "ada@example.com"
	FakePassword = "s3cret"
	FakeToken    = "fake-access-token"
)

// RecordedRequest is what the fake backend saw for one call.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	Form          map[string]string
	FileName      string
	FileSize      int
}

// FakeBackend serves the backend routes under /api and records every request.
type FakeBackend struct {
	Server *httptest.Server
	User   models.User

	mu           sync.Mutex
	requests     []RecordedRequest
	unauthorized bool
	failures     map[string]int
}

// NewFakeBackend starts a fake backend that is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	f := &FakeBackend{
		User:     models.User{ID: "user-42", Name: "Ada Lovelace", Email: FakeEmail},
		failures: make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register/", f.handleRegister)
	mux.HandleFunc("/api/auth/login/", f.handleLogin)
	mux.HandleFunc("/api/auth/user/", f.authed(f.handleUser))
	mux.HandleFunc("/api/ingest/", f.authed(f.handleIngest))
	mux.HandleFunc("/api/preprocess/", f.authed(f.handlePreprocess))
	mux.HandleFunc("/api/extract/", f.authed(f.handleExtract))
	mux.HandleFunc("/api/summarize/", f.authed(f.handleSummarize))

	f.Server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the API base URL to hand to a backend client.
func (f *FakeBackend) URL() string {
	return f.Server.URL + "/api"
}

// SetUnauthorized makes every authenticated route answer 401.
func (f *FakeBackend) SetUnauthorized(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unauthorized = v
}

// FailWith makes the route at path (e.g. "/api/extract/") answer status.
func (f *FakeBackend) FailWith(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = status
}

// Requests returns a copy of every recorded request.
func (f *FakeBackend) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// Count returns how many requests hit path.
func (f *FakeBackend) Count(path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request to path.
func (f *FakeBackend) Last(path string) (RecordedRequest, bool) {
	reqs := f.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return RecordedRequest{}, false
}

func (f *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Form:          map[string]string{},
		}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(32 << 20); err == nil {
				for k, v := range r.MultipartForm.Value {
					rec.Form[k] = v[0]
				}
				if fhs := r.MultipartForm.File["file"]; len(fhs) > 0 {
					rec.FileName = fhs[0].Filename
					rec.FileSize = int(fhs[0].Size)
				}
			}
		}
		f.mu.Lock()
		f.requests = append(f.requests, rec)
		status, failing := f.failures[r.URL.Path]
		f.mu.Unlock()

		if failing {
			writeJSON(w, status, map[string]any{"error": "forced failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		unauthorized := f.unauthorized
		f.mu.Unlock()
		if unauthorized || r.Header.Get("Authorization") != "Bearer "+FakeToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Authentication credentials were not provided."})
			return
		}
		next(w, r)
	}
}

func (f *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name, Email, Password string
	}
	if err := decodeJSON(r.Body, &body); err != nil || body.Name == "" || body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "All fields are required."})
		return
	}
	if body.Email == FakeEmail {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Email already registered."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "User registered successfully."})
}

func (f *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email, Password string
	}
	if err := decodeJSON(r.Body, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Email and password are required."})
		return
	}
	if body.Email != FakeEmail || body.Password != FakePassword {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"refresh": "fake-refresh-token",
		"access":  FakeToken,
		"user":    f.User,
	})
}

func (f *FakeBackend) handleUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, f.User)
}

func (f *FakeBackend) handleIngest(w http.ResponseWriter, r *http.Request) {
	name, ok := uploadedName(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No file uploaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "File ingested successfully",
		"text":    "  Raw Text of " + name + "  ",
	})
}

func (f *FakeBackend) handlePreprocess(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("text")
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No text provided"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clean_text": strings.ToLower(strings.TrimSpace(text))})
}

func (f *FakeBackend) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("text") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No text provided"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entities": []any{[]any{"Ada Lovelace", "PERSON"}, []any{"PaperIQ", "ORG"}},
		"keywords": []any{"document", "analysis"},
	})
}

func (f *FakeBackend) handleSummarize(w http.ResponseWriter, r *http.Request) {
	name, ok := uploadedName(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No file uploaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "success",
		"filename":             name,
		"summary":              "Summary of " + name,
		"doc_id":               "doc-1",
		"entities_saved_count": 2,
	})
}

func uploadedName(r *http.Request) (string, bool) {
	_, fh, err := r.FormFile("file")
	if err != nil {
		return "", false
	}
	return fh.Filename, true
}

func decodeJSON(body io.Reader, v any) error {
	return json.NewDecoder(body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
