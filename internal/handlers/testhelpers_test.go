package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/upload"
)

type filePart struct {
	field    string
	filename string
	mimeType string
	content  string
}

func newMultipartRequest(t *testing.T, method, target string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		h.Set("Content-Type", f.mimeType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func newJSONRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var raw []byte
	if s, ok := body.(string); ok {
		raw = []byte(s)
	} else if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func newTestStorage(t *testing.T, naming upload.NamingFunc) *upload.Storage {
	t.Helper()

	storage := upload.NewStorage(upload.Options{
		Dir:         filepath.Join(t.TempDir(), "uploads"),
		MaxFileSize: 5000000,
		MaxFiles:    5,
		Naming:      naming,
		Filter:      upload.ImageFilter,
	})
	require.NoError(t, storage.EnsureDir())
	return storage
}

func uploadedFiles(t *testing.T, storage *upload.Storage) []string {
	t.Helper()

	entries, err := os.ReadDir(storage.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func passthrough(next http.Handler) http.Handler { return next }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}
