package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-app/inkwell/ai/compose"
	"github.com/inkwell-app/inkwell/ai/prompt"
	"github.com/inkwell-app/inkwell/internal/profile"
	"github.com/inkwell-app/inkwell/store"
	"github.com/inkwell-app/inkwell/store/db/sqlite"
)

// fakeRunner returns canned pipeline results.
type fakeRunner struct {
	content string
	err     error
	lastReq *prompt.DocumentRequest
}

func (f *fakeRunner) Run(_ context.Context, req *prompt.DocumentRequest, mode compose.Mode, _ string) (*compose.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &compose.Result{
		RunID:   "run-1",
		Mode:    mode,
		Content: f.content,
		Stats: compose.StageStats{
			WriteMs:          1200,
			PromptTokens:     50,
			CompletionTokens: 900,
			TotalDurationMs:  1300,
		},
	}, nil
}

func newTestService(t *testing.T, runner PipelineRunner) (*APIV1Service, *echo.Echo) {
	t.Helper()
	p := &profile.Profile{
		Mode:      "dev",
		Driver:    "sqlite",
		DSN:       filepath.Join(t.TempDir(), "test.db"),
		LLMAPIKey: "test-key",
	}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close() })
	require.NoError(t, driver.Migrate(context.Background()))

	svc := NewAPIV1Service(p, store.New(driver, p), runner, nil)
	e := echo.New()
	svc.Register(e)
	return svc, e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateDocument(t *testing.T) {
	runner := &fakeRunner{content: "Intro paragraph.\n\nBody paragraph. It has two sentences."}
	svc, e := newTestService(t, runner)

	rec := postJSON(e, "/api/v1/documents", `{
		"topic": "AI in agriculture",
		"document_type": "Research Paper",
		"academic_level": "PhD",
		"target_words": 3000,
		"mode": "direct"
	}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp["status"])
	assert.Equal(t, "AI in agriculture", resp["topic"])
	assert.NotEmpty(t, resp["uid"])
	assert.EqualValues(t, 8, resp["words_generated"])
	assert.EqualValues(t, 3, resp["sentence_count"])
	assert.EqualValues(t, 2, resp["paragraph_count"])

	// Persisted.
	uid := resp["uid"].(string)
	doc, err := svc.Store.GetDocument(context.Background(), &store.FindDocument{UID: &uid})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, store.DocumentCompleted, doc.Status)
}

func TestCreateDocument_Validation(t *testing.T) {
	_, e := newTestService(t, &fakeRunner{content: "x"})

	tests := []struct {
		name string
		body string
	}{
		{"missing topic", `{"document_type": "Thesis"}`},
		{"bad type", `{"topic": "t", "document_type": "Novel"}`},
		{"bad level", `{"topic": "t", "academic_level": "Expert"}`},
		{"bad mode", `{"topic": "t", "mode": "turbo"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(e, "/api/v1/documents", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateDocument_Defaults(t *testing.T) {
	runner := &fakeRunner{content: "text"}
	_, e := newTestService(t, runner)

	rec := postJSON(e, "/api/v1/documents", `{"topic": "minimal request"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "Thesis", runner.lastReq.DocumentType)
	assert.Equal(t, "Undergraduate", runner.lastReq.AcademicLevel)
	assert.Equal(t, prompt.DefaultTargetWords, runner.lastReq.TargetWords)
}

func TestCreateDocument_PipelineFailureRecorded(t *testing.T) {
	svc, e := newTestService(t, &fakeRunner{err: errors.New("upstream 500")})

	rec := postJSON(e, "/api/v1/documents", `{"topic": "doomed"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	status := store.DocumentFailed
	docs, err := svc.Store.ListDocuments(context.Background(), &store.FindDocument{Status: &status})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doomed", docs[0].Topic)
}

func TestCreateDocument_NoLLMConfigured(t *testing.T) {
	svc, e := newTestService(t, &fakeRunner{content: "x"})
	svc.Profile.LLMAPIKey = ""

	rec := postJSON(e, "/api/v1/documents", `{"topic": "t"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetListDelete(t *testing.T) {
	svc, e := newTestService(t, &fakeRunner{content: "body text"})

	rec := postJSON(e, "/api/v1/documents", `{"topic": "first"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	uid := created["uid"].(string)

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+uid, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "body text")
	})

	t.Run("get missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/nope", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list omits content", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents?limit=5", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "body text")
	})

	t.Run("delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/"+uid, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		doc, err := svc.Store.GetDocument(context.Background(), &store.FindDocument{UID: &uid})
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("delete missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/"+uid, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDownloadDocument(t *testing.T) {
	_, e := newTestService(t, &fakeRunner{content: "The document body."})

	rec := postJSON(e, "/api/v1/documents", `{"topic": "energy policy", "document_type": "Synopsis"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	uid := created["uid"].(string)

	t.Run("txt", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+uid+"/download?format=txt", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "The document body.", rec.Body.String())
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "energy_policy_Synopsis.txt")
	})

	t.Run("md has metadata header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+uid+"/download?format=md", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "# energy policy")
		assert.Contains(t, body, "**Document Type:** Synopsis")
		assert.Contains(t, body, "The document body.")
	})

	t.Run("bad format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+uid+"/download?format=pdf", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
