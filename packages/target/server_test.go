package target

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/smokespec/packages/core/runner"
	smokehttp "github.com/abdul-hamid-achik/smokespec/packages/http"
	"github.com/abdul-hamid-achik/smokespec/packages/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	st, err := store.Open("sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := httptest.NewServer(NewServer(st, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestHealthcheck(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, "GET", srv.URL+"/healthcheck", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRequestID_Echoed(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest("GET", srv.URL+"/healthcheck", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestTodos_Lifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, "GET", srv.URL+"/api/todos", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)

	resp, body = do(t, "POST", srv.URL+"/api/todos", `{"title":"buy milk","body":"2 liters"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/api/todos/1", resp.Header.Get("Location"))
	assert.JSONEq(t, `{"id":1,"title":"buy milk","body":"2 liters","done":false}`, body)

	resp, _ = do(t, "GET", srv.URL+"/api/todos/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	resp, body = do(t, "PUT", srv.URL+"/api/todos/1", `{"title":"buy oat milk","body":"1 liter"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":1,"title":"buy oat milk","body":"1 liter","done":false}`, body)

	resp, body = do(t, "PATCH", srv.URL+"/api/todos/1/done", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var todo store.Todo
	require.NoError(t, json.Unmarshal([]byte(body), &todo))
	assert.True(t, todo.Done)

	resp, _ = do(t, "DELETE", srv.URL+"/api/todos/1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, "GET", srv.URL+"/api/todos/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, "DELETE", srv.URL+"/api/todos/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTodos_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"invalid json", "POST", "/api/todos", `{"title":`, http.StatusBadRequest},
		{"missing title", "POST", "/api/todos", `{"body":"x"}`, http.StatusBadRequest},
		{"array body", "POST", "/api/todos", `["x"]`, http.StatusBadRequest},
		{"non numeric id", "PATCH", "/api/todos/abc/done", "", http.StatusBadRequest},
		{"zero id", "GET", "/api/todos/0", "", http.StatusBadRequest},
		{"put bad body", "PUT", "/api/todos/1", `nope`, http.StatusBadRequest},
		{"put missing", "PUT", "/api/todos/99", `{"title":"x"}`, http.StatusNotFound},
		{"patch missing", "PATCH", "/api/todos/99/done", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusBadRequest {
				assert.Equal(t, "Invalid id", body)
			}
		})
	}
}

func TestTodos_StringDoneFlag(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, "POST", srv.URL+"/api/todos", `{"title":"x","done":"true"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, `"done":true`)
}

func TestStatic(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>home</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.JS"), []byte("console.log(1)"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "index.htm"), []byte("docs"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0755))

	srv := newTestServer(t, WithRoot(root))

	t.Run("root serves index.html", func(t *testing.T) {
		resp, body := do(t, "GET", srv.URL+"/", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
		assert.Equal(t, "<h1>home</h1>", body)
	})

	t.Run("extension lookup ignores case", func(t *testing.T) {
		resp, _ := do(t, "GET", srv.URL+"/app.JS", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/javascript", resp.Header.Get("Content-Type"))
	})

	t.Run("directory falls back to index.htm", func(t *testing.T) {
		resp, body := do(t, "GET", srv.URL+"/docs", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "docs", body)
	})

	t.Run("directory without index", func(t *testing.T) {
		resp, body := do(t, "GET", srv.URL+"/empty/", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body, "<H1>Not Found</H1>")
	})

	t.Run("missing file", func(t *testing.T) {
		resp, body := do(t, "GET", srv.URL+"/nope.css", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
		assert.Contains(t, body, "Not Found")
	})

	t.Run("traversal stays under root", func(t *testing.T) {
		resp, _ := do(t, "GET", srv.URL+"/../../etc/passwd", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("write methods are rejected", func(t *testing.T) {
		resp, _ := do(t, "POST", srv.URL+"/index.html", "x")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestStatic_CustomIndexFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("default"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "home.html"), []byte("home"), 0644))

	srv := newTestServer(t, WithRoot(root), WithDefaults("home.html", "index.html"))

	resp, body := do(t, "GET", srv.URL+"/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "home", body)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/html", contentType("a/index.HTML"))
	assert.Equal(t, "image/svg+xml", contentType("logo.svg"))
	assert.Equal(t, "application/octet-stream", contentType("README"))
	assert.Equal(t, "application/octet-stream", contentType("video.mp4"))
}

func TestCORS(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		srv := newTestServer(t, WithCORS(true))

		resp, _ := do(t, "OPTIONS", srv.URL+"/api/todos", "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

		resp, _ = do(t, "GET", srv.URL+"/healthcheck", "")
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("disabled", func(t *testing.T) {
		srv := newTestServer(t)

		resp, _ := do(t, "GET", srv.URL+"/healthcheck", "")
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t)

	do(t, "GET", srv.URL+"/api/todos/5", "")
	resp, body := do(t, "GET", srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "smokespec_target_requests_total")
	assert.Contains(t, body, `endpoint="/api/todos/{id}"`)
}

func TestSmokeChecksAgainstTarget(t *testing.T) {
	srv := newTestServer(t, WithRoot(t.TempDir()))
	client := smokehttp.NewClient()
	ctx := context.Background()
	payload := map[string]string{"title": "smoke", "body": "check"}

	require.NoError(t, runner.TestGet(ctx, client, srv.URL+"/healthcheck"))
	require.NoError(t, runner.TestPost(ctx, client, srv.URL+"/api/todos", payload))
	require.NoError(t, runner.TestPut(ctx, client, srv.URL+"/api/todos/1", payload))
	require.NoError(t, runner.TestDelete(ctx, client, srv.URL+"/api/todos/1"))

	assert.Error(t, runner.TestDelete(ctx, client, srv.URL+"/api/todos/1"))
}

func TestServer_Addr(t *testing.T) {
	s := NewServer(nil, WithHost("127.0.0.1"), WithPort(9090))
	assert.Equal(t, "127.0.0.1:9090", s.Addr())
	assert.Equal(t, "0.0.0.0:8080", NewServer(nil).Addr())
}
