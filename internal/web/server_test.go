package web

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/gomesh/internal/metrics"
	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/engine/enginetest"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T, eng *enginetest.Engine) *client {
	t.Helper()
	dir := t.TempDir()
	if eng == nil {
		eng = enginetest.New(dir)
	}
	srv, err := NewServer(Config{
		Engine:      eng,
		Metrics:     metrics.New(),
		RowsPerPage: 5,
		ViewWidth:   160,
		ViewHeight:  120,
		Parameters:  engine.DefaultParameters(),
		WorkDir:     dir,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.registry.closeAll()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

func (c *client) get(path string) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.http.Get(c.base + path)
	require.NoError(c.t, err)
	return resp, readBody(c.t, resp)
}

func (c *client) post(path, body string) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.http.Post(c.base+path, "application/json", strings.NewReader(body))
	require.NoError(c.t, err)
	return resp, readBody(c.t, resp)
}

func (c *client) upload(path, field, filename, content string) (*http.Response, string) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(c.t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	resp, err := c.http.Post(c.base+path, mw.FormDataContentType(), &buf)
	require.NoError(c.t, err)
	return resp, readBody(c.t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestPageShowsUpload(t *testing.T) {
	c := newTestServer(t, nil)

	resp, body := c.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome to the Meshing App!")
	assert.Contains(t, body, `name="geometry"`)
	assert.Contains(t, body, "@get('/updates')")
}

func TestSessionCookieSecureOnlyWhenConfigured(t *testing.T) {
	for _, secure := range []bool{false, true} {
		dir := t.TempDir()
		srv, err := NewServer(Config{
			Engine:        enginetest.New(dir),
			Metrics:       metrics.New(),
			RowsPerPage:   5,
			ViewWidth:     160,
			ViewHeight:    120,
			Parameters:    engine.DefaultParameters(),
			WorkDir:       dir,
			SecureCookies: secure,
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		srv.registry.closeAll()

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, cookieName, cookies[0].Name)
		assert.Equal(t, secure, cookies[0].Secure, "secure=%v", secure)
		assert.Equal(t, secure, strings.Contains(rec.Header().Get("Set-Cookie"), "Secure"))
	}
}

func TestInvalidUploadShowsDialog(t *testing.T) {
	c := newTestServer(t, nil)

	resp, body := c.upload("/upload", "geometry", "broken.step", "not a step file")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Error in Geometry Upload")
	assert.Contains(t, body, "Please upload a valid geometry file")
	assert.Contains(t, body, "Welcome to the Meshing App!")

	_, body = c.post("/dialog/dismiss", "")
	assert.NotContains(t, body, "Error in Geometry Upload")
}

func TestUnsupportedExtensionShowsDialog(t *testing.T) {
	c := newTestServer(t, nil)

	_, body := c.upload("/upload", "geometry", "box.stl", enginetest.StepContent)
	assert.Contains(t, body, "Error in Geometry Upload")
}

func TestUploadSelectAndMesh(t *testing.T) {
	c := newTestServer(t, nil)

	_, body := c.upload("/upload", "geometry", "box.step", enginetest.StepContent)
	assert.NotContains(t, body, "Welcome to the Meshing App!")
	assert.Contains(t, body, `id="viewer"`)
	assert.Contains(t, body, "Boundingbox:")

	resp, body := c.post("/rows/faces/2/click", `{"ctrl":false,"shift":false}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")
	assert.Contains(t, body, `id="app"`)

	_, body = c.post("/rows/faces/4/click", `{"shift":true}`)
	assert.Contains(t, body, `id="app"`)

	_, body = c.post("/bulk/maxh", `{"value":"2.0"}`)
	assert.NotContains(t, body, `class="error"`)

	_, body = c.post("/mesh/generate", "")
	assert.Contains(t, body, "Download Mesh")
	assert.Contains(t, body, `download="box.vol"`)
	assert.Contains(t, body, "Mesh: ")

	resp, body = c.get("/mesh/download")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "box.vol")
	assert.Equal(t, enginetest.TetraMesh, body)
}

func TestMeshingFailureShowsDialog(t *testing.T) {
	eng := enginetest.New(t.TempDir())
	eng.FailMeshing = "Meshing failed at edge 3"
	c := newTestServer(t, eng)

	c.upload("/upload", "geometry", "box.step", enginetest.StepContent)
	_, body := c.post("/mesh/generate", "")
	assert.Contains(t, body, "Meshing failed at edge 3")

	resp, _ := c.get("/mesh/download")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvalidActionReportsError(t *testing.T) {
	c := newTestServer(t, nil)
	c.upload("/upload", "geometry", "box.step", enginetest.StepContent)

	_, body := c.post("/tab/vertices", "")
	assert.Contains(t, body, `class="error"`)

	_, body = c.post("/parameters/grading", `{"value":"1.5"}`)
	assert.Contains(t, body, `class="error"`)
}

func TestRestartReturnsToUpload(t *testing.T) {
	c := newTestServer(t, nil)
	c.upload("/upload", "geometry", "box.step", enginetest.StepContent)

	_, body := c.post("/restart", "")
	assert.Contains(t, body, "Welcome to the Meshing App!")
}

func TestViewerFrame(t *testing.T) {
	c := newTestServer(t, nil)
	c.upload("/upload", "geometry", "box.step", enginetest.StepContent)

	resp, body := c.get("/viewer.png")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "\x89PNG"))
}

func TestExportAnnotations(t *testing.T) {
	c := newTestServer(t, nil)

	resp, _ := c.get("/annotations/export")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	c.upload("/upload", "geometry", "box.step", enginetest.StepContent)
	c.post("/rows/faces/1/name", `{"value":"inlet"}`)

	resp, body := c.get("/annotations/export")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "inlet")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "box.annotations.yaml")
}

func TestMetricsEndpoint(t *testing.T) {
	c := newTestServer(t, nil)
	c.get("/")

	resp, body := c.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "gomesh_active_sessions 1")
}

func TestStaticFiles(t *testing.T) {
	c := newTestServer(t, nil)

	resp, _ := c.get("/static/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
}
