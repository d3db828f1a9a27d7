package http

import (
	"context"
	"io/fs"
	stdhttp "net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/msgboard/internal/core"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeSender records forwarded messages instead of dialing the ingest server.
type fakeSender struct {
	mu   sync.Mutex
	sent []core.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg core.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) messages() []core.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Message(nil), f.sent...)
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0xff}

// createTestFiles returns a static directory with every page, including error.html.
func createTestFiles(t *testing.T) fstest.MapFS {
	t.Helper()
	return fstest.MapFS{
		"index.html":   {Data: []byte("<h1>index</h1>")},
		"message.html": {Data: []byte("<form action=\"/message\" method=\"post\"></form>")},
		"style.css":    {Data: []byte("body { color: #333; }")},
		"logo.png":     {Data: pngBytes},
		"error.html":   {Data: []byte("<h1>custom not found</h1>")},
	}
}

// createTestRouter builds the router with a disabled logger.
func createTestRouter(t *testing.T, sender *fakeSender, files fs.FS) stdhttp.Handler {
	t.Helper()
	disabledLogger := zerolog.New(nil)
	return NewRouter(sender, files, &disabledLogger)
}

func doRequest(handler stdhttp.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	var req *stdhttp.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}
