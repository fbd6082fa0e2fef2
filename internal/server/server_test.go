package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-board-go/internal/apply"
	"job-board-go/internal/auth"
	"job-board-go/internal/config"
	"job-board-go/internal/filter"
	"job-board-go/internal/models"
	"job-board-go/internal/surface"
	"job-board-go/pkg/httpclient"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubFetcher struct {
	jobs []models.Job
	err  error
}

func (f *stubFetcher) FetchJobs(ctx context.Context) ([]models.Job, error) {
	return f.jobs, f.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func sampleJobs() []models.Job {
	now := time.Now()
	raw := []models.Job{
		{ID: "1", Title: "Go Developer", Company: "Acme", Industry: "IT", JobType: models.JobTypeFullTime,
			Location: models.Location{City: "Bangalore", State: "Karnataka", Country: "India"}},
		{ID: "2", Title: "Accountant", Company: "Ledger", Industry: "Finance", JobType: models.JobTypePartTime,
			Location: models.Location{Text: "Mumbai"}},
		{ID: "3", Title: "Full Stack Engineer", Company: "Shop", Industry: "E-commerce", JobType: models.JobTypeRemote},
	}
	for i := range raw {
		raw[i] = models.Normalize(raw[i], now)
	}
	return raw
}

type fixture struct {
	engine    *filter.Engine
	dashboard *surface.Dashboard
	handler   http.Handler
}

func newFixture(t *testing.T, deps Deps) *fixture {
	t.Helper()

	if deps.Engine == nil {
		deps.Engine = filter.NewEngine(&stubFetcher{jobs: sampleJobs()}, quietLogger())
		require.NoError(t, deps.Engine.Load(context.Background()))
	}
	deps.Dashboard = surface.NewDashboard(deps.Engine, 10*time.Millisecond)
	t.Cleanup(deps.Dashboard.Close)

	srv := NewServer(config.ServerConfig{Port: 8080}, deps, quietLogger())
	return &fixture{engine: deps.Engine, dashboard: deps.Dashboard, handler: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func jobIDs(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	var out struct {
		Jobs []models.Job `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	ids := make([]string, 0, len(out.Jobs))
	for _, j := range out.Jobs {
		ids = append(ids, j.ID)
	}
	return ids
}

func TestHealthAndRequestID(t *testing.T) {
	f := newFixture(t, Deps{})

	w := f.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 3, body["total"])
}

func TestHealthReportsLoadError(t *testing.T) {
	engine := filter.NewEngine(&stubFetcher{err: errors.New("upstream down")}, quietLogger())
	require.Error(t, engine.Load(context.Background()))

	f := newFixture(t, Deps{Engine: engine})
	body := decode(t, f.do(t, http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, "degraded", body["status"])
	assert.Contains(t, body["error"], "upstream down")

	w := f.do(t, http.MethodGet, "/api/v1/jobs/1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestFilterRoutes(t *testing.T) {
	f := newFixture(t, Deps{})

	w := f.do(t, http.MethodPost, "/api/v1/filters", map[string]string{"industry": "finance"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"2"}, jobIDs(t, w))

	w = f.do(t, http.MethodDelete, "/api/v1/filters/industry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"1", "2", "3"}, jobIDs(t, w))

	w = f.do(t, http.MethodPost, "/api/v1/filters", map[string]string{"fullStack": "yes"})
	assert.Equal(t, []string{"3"}, jobIDs(t, w))

	w = f.do(t, http.MethodDelete, "/api/v1/filters", nil)
	assert.Equal(t, []string{"1", "2", "3"}, jobIDs(t, w))

	w = f.do(t, http.MethodDelete, "/api/v1/filters/colour", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/filters", map[string]string{"colour": "red"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJob(t *testing.T) {
	f := newFixture(t, Deps{})

	w := f.do(t, http.MethodGet, "/api/v1/jobs/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Accountant", decode(t, w)["title"])

	w = f.do(t, http.MethodGet, "/api/v1/jobs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchAndSidebarRoutes(t *testing.T) {
	f := newFixture(t, Deps{})

	w := f.do(t, http.MethodPost, "/api/v1/search", surfaceEdit{Dimension: "jobType", Value: "Full-time"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"1"}, jobIDs(t, w))

	w = f.do(t, http.MethodPost, "/api/v1/sidebar/toggle", surfaceEdit{Dimension: "jobType", Value: "Remote"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"3"}, jobIDs(t, w))

	w = f.do(t, http.MethodPost, "/api/v1/search", surfaceEdit{Dimension: "keyword", Value: "stack"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["pending"])

	w = f.do(t, http.MethodPost, "/api/v1/search/submit", nil)
	assert.Equal(t, []string{"3"}, jobIDs(t, w))
	assert.Equal(t, "stack", f.engine.Filters().Get(filter.Keyword))

	w = f.do(t, http.MethodDelete, "/api/v1/sidebar/jobType", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, jobIDs(t, w))

	w = f.do(t, http.MethodDelete, "/api/v1/dashboard", nil)
	assert.Equal(t, []string{"1", "2", "3"}, jobIDs(t, w))

	w = f.do(t, http.MethodPost, "/api/v1/sidebar/toggle", surfaceEdit{Dimension: "keyword", Value: "go"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSidebarCatalog(t *testing.T) {
	f := newFixture(t, Deps{})

	w := f.do(t, http.MethodGet, "/api/v1/sidebar", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Sections []surface.Section `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Sections, len(surface.Catalog()))
}

func TestRefetchFailure(t *testing.T) {
	fetcher := &stubFetcher{jobs: sampleJobs()}
	engine := filter.NewEngine(fetcher, quietLogger())
	require.NoError(t, engine.Load(context.Background()))
	f := newFixture(t, Deps{Engine: engine})

	fetcher.err = errors.New("boom")
	w := f.do(t, http.MethodPost, "/api/v1/jobs/refetch", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode(t, w)["error"], "boom")
}

func TestApplyRoute(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.FormValue("email") == "taken@example.com" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"Already applied"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	client := apply.NewClient(httpclient.NewHttpClient(5*time.Second), nil, apply.Options{ApplyURL: upstream.URL}, quietLogger())
	f := newFixture(t, Deps{Apply: client})

	post := func(email string, resume []byte) *httptest.ResponseRecorder {
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		_ = mw.WriteField("fullname", "Jane Doe")
		_ = mw.WriteField("email", email)
		_ = mw.WriteField("mobile", "9876543210")
		_ = mw.WriteField("coverLetter", "Hello")
		if resume != nil {
			part, _ := mw.CreateFormFile("resume", "cv.pdf")
			_, _ = part.Write(resume)
		}
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/2/apply", buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)
		return w
	}

	pdf := []byte("%PDF-1.4\n%test\n")

	w := post("jane@example.com", pdf)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/2", gotPath)

	w = post("taken@example.com", pdf)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Already applied", decode(t, w)["error"])

	w = post("jane@example.com", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Resume")
}

func TestApplyDisabled(t *testing.T) {
	f := newFixture(t, Deps{})
	w := f.do(t, http.MethodPost, "/api/v1/jobs/1/apply", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthRoutes(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)

		switch {
		case strings.HasSuffix(r.URL.Path, "/login") && creds.Password == "secret":
			_, _ = w.Write([]byte(`{"token":"opaque-token","message":"ok"}`))
		case strings.HasSuffix(r.URL.Path, "/login"):
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
		default:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"message":"User registered"}`))
		}
	}))
	defer upstream.Close()

	store := auth.NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	client := auth.NewClient(httpclient.NewHttpClient(5*time.Second), nil, upstream.URL, 0, store, quietLogger())
	f := newFixture(t, Deps{Auth: client})

	w := f.do(t, http.MethodPost, "/api/v1/auth/login", models.Credentials{Email: "a@b.co", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])

	w = f.do(t, http.MethodPost, "/api/v1/auth/login", models.Credentials{Email: "a@b.co", Password: "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "opaque-token", decode(t, w)["token"])

	w = f.do(t, http.MethodGet, "/api/v1/auth/status", nil)
	assert.Equal(t, true, decode(t, w)["authenticated"])

	w = f.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodGet, "/api/v1/auth/status", nil)
	assert.Equal(t, false, decode(t, w)["authenticated"])

	w = f.do(t, http.MethodPost, "/api/v1/auth/register", models.Registration{Name: "Jane", Email: "j@x.io", Password: "secret1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
