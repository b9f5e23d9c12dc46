package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/paperiq/dashboard/internal/dashboard"
	"github.com/paperiq/dashboard/internal/storage"
	"github.com/paperiq/dashboard/internal/testutil"
	"github.com/paperiq/dashboard/internal/upload"
	"github.com/paperiq/dashboard/internal/web"
	"github.com/paperiq/dashboard/internal/websession"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type testServer struct {
	t       *testing.T
	e       *echo.Echo
	backend *testutil.FakeBackend
	store   *storage.LocalStore
	cookie  *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fake := testutil.NewFakeBackend(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	validator := upload.DefaultValidator()
	sessions := websession.NewManager(websession.Config{BackendURL: fake.URL()},
		upload.NewManager(validator, store, nil), nil)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	deps := &Dependencies{Sessions: sessions, Validator: validator, BackendURL: fake.URL(), Version: "test"}
	SetupMiddleware(e, renderer, nil, true)
	RegisterRoutes(e, NewHandlers(deps), deps)

	return &testServer{t: t, e: e, backend: fake, store: store}
}

// do sends a request as the same browser, carrying the session cookie.
func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == DefaultCookieName {
			s.cookie = ck
		}
	}
	return rec
}

func (s *testServer) get(path string, asJSON bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if asJSON {
		req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	}
	return s.do(req)
}

func (s *testServer) postForm(path string, form url.Values, asJSON bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if asJSON {
		req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	}
	return s.do(req)
}

func (s *testServer) upload(name string, content []byte, source string, asJSON bool) *httptest.ResponseRecorder {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", name)
	part.Write(content)
	writer.WriteField("source", source)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/dashboard/upload", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	if asJSON {
		req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	}
	return s.do(req)
}

func (s *testServer) login() {
	s.t.Helper()
	rec := s.postForm("/login", url.Values{
		"email":    {testutil.FakeEmail},
		"password": {testutil.FakePassword},
	}, false)
	require.Equal(s.t, http.StatusSeeOther, rec.Code)
	require.Equal(s.t, DashboardPath, rec.Header().Get(echo.HeaderLocation))
}

func (s *testServer) state() dashboard.View {
	s.t.Helper()
	rec := s.get("/dashboard/state?drain=true", true)
	require.Equal(s.t, http.StatusOK, rec.Code)
	var v dashboard.View
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func noticeMessages(v dashboard.View) []string {
	out := make([]string, 0, len(v.Notices))
	for _, n := range v.Notices {
		out = append(out, n.Message)
	}
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.get("/api/health", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Nil(t, s.cookie, "health checks do not start sessions")
}

func TestDashboard_RequiresLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/dashboard", false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get(echo.HeaderLocation))

	rec = s.get("/dashboard/state", true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	assert.Equal(t, LoginPath, apiErr.Redirect)

	rec = s.get("/", false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DashboardPath, rec.Header().Get(echo.HeaderLocation))
}

func TestLogin_CarriesBearerToken(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.get("/dashboard/me", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Ada Lovelace"`)

	last, ok := s.backend.Last("/api/auth/user/")
	require.True(t, ok)
	assert.Equal(t, "Bearer "+testutil.FakeToken, last.Authorization)

	page := s.get("/dashboard", false)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Welcome back, Ada Lovelace")
	assert.Contains(t, page.Body.String(), "Upload Document")

	rec = s.get("/login", false)
	assert.Equal(t, http.StatusSeeOther, rec.Code, "signed-in users skip the login page")
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantText   string
	}{
		{
			name:       "wrong password",
			form:       url.Values{"email": {testutil.FakeEmail}, "password": {"nope"}},
			wantStatus: http.StatusUnauthorized,
			wantText:   "Invalid credentials",
		},
		{
			name:       "missing password",
			form:       url.Values{"email": {testutil.FakeEmail}},
			wantStatus: http.StatusBadRequest,
			wantText:   "Email and password are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.postForm("/login", tt.form, false)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantText)
			assert.Contains(t, rec.Body.String(), `value="ada@example.com"`)

			rec = s.get("/dashboard", false)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
		})
	}
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	rec := s.postForm("/register", url.Values{
		"name": {"Grace"}, "email": {"grace@example.com"}, "password": {"pw"},
	}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, s.get("/login", false).Body.String(), "Registration successful")

	rec = s.postForm("/register", url.Values{
		"name": {"Ada"}, "email": {testutil.FakeEmail}, "password": {"pw"},
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered.")

	rec = s.postForm("/register", url.Values{"name": {"Ada"}, "email": {"not-an-email"}, "password": {"pw"}}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, s.backend.Count("/api/auth/register/"), "invalid input never reaches the backend")
}

func TestUpload_RejectsBadExtension(t *testing.T) {
	s := newTestServer(t)
	s.login()
	s.state()

	rec := s.upload("notes.txt", []byte("hello"), "drop", false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DashboardPath, rec.Header().Get(echo.HeaderLocation))

	v := s.state()
	assert.Nil(t, v.File)
	assert.Equal(t, []string{"Please upload a PDF or DOCX file"}, noticeMessages(v))
	assert.Zero(t, s.store.Count())

	rec = s.upload("huge.pdf", make([]byte, upload.DefaultMaxSize+1), "browse", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "File size must be less than 10MB")
	assert.Zero(t, s.store.Count())
}

func TestPipeline_JSONClient(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.upload("paper.pdf", []byte("%PDF-1.4"), "drop", true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"drop"`)

	want := map[string]string{
		"ingestion":  "Raw Text of paper.pdf",
		"preprocess": "raw text of paper.pdf",
		"extract":    "Ada Lovelace (PERSON)",
		"summarize":  "Summary of paper.pdf",
	}
	for _, step := range []string{"ingestion", "preprocess", "extract", "summarize"} {
		rec := s.postForm("/dashboard/steps/"+step, nil, true)
		require.Equal(t, http.StatusOK, rec.Code, step)
		assert.Contains(t, rec.Body.String(), want[step], step)
	}

	summarize, ok := s.backend.Last("/api/summarize/")
	require.True(t, ok)
	assert.Equal(t, "user-42", summarize.Form["user_id"])
	assert.Equal(t, "paper.pdf", summarize.FileName)

	v := s.state()
	require.NotNil(t, v.File)
	for _, card := range v.Cards {
		assert.NotNil(t, card.Output, card.Title)
		assert.False(t, card.Processing, card.Title)
	}
}

func TestSteps_Preconditions(t *testing.T) {
	s := newTestServer(t)
	s.login()
	require.Equal(t, http.StatusCreated, s.upload("paper.docx", []byte("doc"), "browse", true).Code)
	s.state()

	rec := s.postForm("/dashboard/steps/preprocess", nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), dashboard.MsgNeedIngestion)

	rec = s.postForm("/dashboard/steps/extract", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DashboardPath, rec.Header().Get(echo.HeaderLocation))

	assert.Equal(t, []string{dashboard.MsgNeedIngestion, dashboard.MsgNeedPreprocess}, noticeMessages(s.state()))
	assert.Zero(t, s.backend.Count("/api/preprocess/"))
	assert.Zero(t, s.backend.Count("/api/extract/"))

	rec = s.postForm("/dashboard/steps/translate", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSteps_BackendFailure(t *testing.T) {
	s := newTestServer(t)
	s.login()
	require.Equal(t, http.StatusCreated, s.upload("paper.pdf", []byte("pdf"), "browse", true).Code)
	s.state()
	s.backend.FailWith("/api/ingest/", http.StatusInternalServerError)

	rec := s.postForm("/dashboard/steps/ingestion", nil, true)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	v := s.state()
	assert.Equal(t, []string{"Ingestion Module failed"}, noticeMessages(v))
	assert.Nil(t, v.Cards[0].Output)
}

func TestUnauthorized_RedirectsToLogin(t *testing.T) {
	s := newTestServer(t)
	s.login()
	require.Equal(t, http.StatusCreated, s.upload("paper.pdf", []byte("pdf"), "browse", true).Code)
	s.backend.SetUnauthorized(true)

	rec := s.postForm("/dashboard/steps/ingestion", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get(echo.HeaderLocation))

	rec = s.get("/dashboard", false)
	assert.Equal(t, http.StatusSeeOther, rec.Code, "stored session was cleared")

	page := s.get("/login", false)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), dashboard.MsgSessionExpired)
}

func TestSummarize_StoredUserWithoutID(t *testing.T) {
	s := newTestServer(t)
	s.backend.User.ID = ""
	s.login()
	require.Equal(t, http.StatusCreated, s.upload("paper.pdf", []byte("pdf"), "browse", true).Code)
	s.state()

	rec := s.postForm("/dashboard/steps/summarize", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DashboardPath, rec.Header().Get(echo.HeaderLocation))

	page := s.get("/dashboard", false)
	require.Equal(t, http.StatusOK, page.Code, "session stays signed in")
	assert.Contains(t, page.Body.String(), "Summarization Module failed")

	rec = s.postForm("/dashboard/steps/summarize", nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, s.backend.Count("/api/summarize/"))
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	s.login()
	require.Equal(t, http.StatusCreated, s.upload("paper.pdf", []byte("pdf"), "browse", true).Code)

	rec := s.postForm("/logout", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get(echo.HeaderLocation))
	assert.Zero(t, s.store.Count())

	page := s.get("/login", false)
	assert.Contains(t, page.Body.String(), dashboard.MsgLoggedOut)
	assert.Equal(t, http.StatusSeeOther, s.get("/dashboard", false).Code)
}

func TestClearFile(t *testing.T) {
	s := newTestServer(t)
	s.login()
	require.Equal(t, http.StatusCreated, s.upload("paper.pdf", []byte("pdf"), "browse", true).Code)

	rec := s.postForm("/dashboard/file/clear", nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, s.state().File)
	assert.Zero(t, s.store.Count())
}

func TestStateMsgpack(t *testing.T) {
	s := newTestServer(t)
	s.login()
	require.Equal(t, http.StatusCreated, s.upload("paper.pdf", []byte("pdf"), "browse", true).Code)

	rec := s.get("/dashboard/state/msgpack", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mimeMsgpack, rec.Header().Get(echo.HeaderContentType))

	var decoded map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded))
	cards, ok := decoded["cards"].([]interface{})
	require.True(t, ok)
	assert.Len(t, cards, 4)
	file, ok := decoded["file"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "paper.pdf", file["name"])
	assert.NotContains(t, file, "Path")
}
