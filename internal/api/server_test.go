package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/StockInsights/config"
	"github.com/dyike/StockInsights/models"
)

type mockAssistant struct {
	answer    string
	fragments []string
	err       error
	panicMsg  string
	questions []string
}

func (m *mockAssistant) Answer(_ context.Context, question string) (string, error) {
	m.questions = append(m.questions, question)
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockAssistant) Stream(_ context.Context, question string) iter.Seq2[string, error] {
	m.questions = append(m.questions, question)
	return func(yield func(string, error) bool) {
		for _, f := range m.fragments {
			if !yield(f, nil) {
				return
			}
		}
		if m.panicMsg != "" {
			panic(m.panicMsg)
		}
		if m.err != nil {
			yield("", m.err)
		}
	}
}

func newTestServer(t *testing.T, a Answerer, staticDir string) *Server {
	t.Helper()
	return NewServer(&config.ServerConfig{GinMode: gin.TestMode, StaticDir: staticDir}, a)
}

func postAsk(t *testing.T, s *Server, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &mockAssistant{}, "")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestAsk_Stream(t *testing.T) {
	a := &mockAssistant{fragments: []string{"AAPL is ", "up.\nMore\r\n", "end"}}
	s := newTestServer(t, a, "")

	rec := postAsk(t, s, "/ask", `{"question":"How is AAPL?"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	assert.Equal(t, "data: AAPL is \n\ndata: up.\ndata: More\ndata: \n\ndata: end\n\n", rec.Body.String())
	assert.Equal(t, []string{"How is AAPL?"}, a.questions)
}

func TestAsk_StreamInternalError(t *testing.T) {
	a := &mockAssistant{fragments: []string{"partial"}, err: errors.New("encode tool result: boom")}
	s := newTestServer(t, a, "")

	rec := postAsk(t, s, "/ask", `{"question":"q"}`, nil)

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "data: partial\n\n"))
	assert.Contains(t, body, "data: Sorry — something went wrong on the server while answering that.\n\n")
	assert.NotContains(t, body, "boom")
}

func TestAsk_StreamConfigError(t *testing.T) {
	a := &mockAssistant{err: &config.MissingEnvError{Vars: []string{"OPENAI_API_KEY"}}}
	s := newTestServer(t, a, "")

	rec := postAsk(t, s, "/ask", `{"question":"q"}`, nil)
	assert.Equal(t, "data: Missing required environment variables: OPENAI_API_KEY. Please set them in your environment or .env file.\n\n", rec.Body.String())
}

func TestAsk_StreamPanic(t *testing.T) {
	a := &mockAssistant{fragments: []string{"hello"}, panicMsg: "nil pointer"}
	s := newTestServer(t, a, "")

	rec := postAsk(t, s, "/ask", `{"question":"q"}`, nil)
	assert.Equal(t, "data: hello\n\ndata: Sorry — something went wrong on the server while answering that.\n\n", rec.Body.String())
}

func TestAsk_JSON(t *testing.T) {
	a := &mockAssistant{answer: "MSFT trades at $415."}
	s := newTestServer(t, a, "")

	for name, tc := range map[string]struct {
		target  string
		headers map[string]string
	}{
		"query flag":    {target: "/ask?stream=false"},
		"accept header": {target: "/ask", headers: map[string]string{"Accept": "application/json"}},
	} {
		t.Run(name, func(t *testing.T) {
			rec := postAsk(t, s, tc.target, `{"question":"MSFT?"}`, tc.headers)
			assert.Equal(t, http.StatusOK, rec.Code)

			var resp models.AskResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "MSFT trades at $415.", resp.Answer)
		})
	}
}

func TestAsk_JSONInternalErrorIsAnAnswer(t *testing.T) {
	s := newTestServer(t, &mockAssistant{err: errors.New("secret detail")}, "")

	rec := postAsk(t, s, "/ask?stream=false", `{"question":"q"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")

	var resp models.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Sorry — something went wrong on the server while answering that.", resp.Answer)
}

func TestAsk_JSONPanicIsAnAnswer(t *testing.T) {
	s := newTestServer(t, &mockAssistant{panicMsg: "nil pointer"}, "")

	rec := postAsk(t, s, "/ask?stream=false", `{"question":"q"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Sorry — something went wrong on the server while answering that.", resp.Answer)
}

func TestAsk_BadRequest(t *testing.T) {
	a := &mockAssistant{}
	s := newTestServer(t, a, "")

	for _, body := range []string{`{}`, `{"question":""}`, `not json`} {
		rec := postAsk(t, s, "/ask", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, a.questions)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &mockAssistant{}, "")

	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestStaticFrontend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Stock Insights</h1>"), 0o644))
	s := newTestServer(t, &mockAssistant{}, dir)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stock Insights")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticFrontend_MissingDir(t *testing.T) {
	s := newTestServer(t, &mockAssistant{}, filepath.Join(t.TempDir(), "nope"))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWithHandler(t *testing.T) {
	mounted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("mcp"))
	})
	s := NewServer(&config.ServerConfig{GinMode: gin.TestMode}, &mockAssistant{}, WithHandler("/mcp", mounted))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(nil)))
	assert.Equal(t, "mcp", rec.Body.String())
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEvent(&buf, "a\x00b\r\nc"))
	assert.Equal(t, "data: ab\ndata: c\n\n", buf.String())

	buf.Reset()
	require.NoError(t, writeEvent(&buf, ""))
	assert.Equal(t, "data: \n\n", buf.String())
}
