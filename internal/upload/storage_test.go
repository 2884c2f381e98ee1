package upload

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/apperrors"
)

type part struct {
	field    string
	filename string
	mimeType string
	content  []byte
}

func multipartRequest(t *testing.T, fields map[string]string, parts ...part) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, p.field, p.filename))
		h.Set("Content-Type", p.mimeType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func newTestStorage(t *testing.T, naming NamingFunc) *Storage {
	t.Helper()
	s := NewStorage(Options{
		Dir:         filepath.Join(t.TempDir(), "uploads"),
		MaxFileSize: 16,
		MaxFiles:    3,
		Naming:      naming,
		Filter:      ImageFilter,
	})
	require.NoError(t, s.EnsureDir())
	return s
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestNaming(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	assert.Equal(t, "1700000000123.png", TimestampExt("logo.png", now))
	assert.Equal(t, "1700000000123", TimestampExt("README", now))
	assert.Equal(t, "1700000000123-dish one.jpg", TimestampOriginal("dish one.jpg", now))
	assert.Equal(t, "1700000000123-passwd.png", TimestampOriginal(`..\..\etc\passwd.png`, now))
	assert.Equal(t, "1700000000123-x.webp", TimestampOriginal("../../x.webp", now))
}

func TestImageFilter(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		mimeType string
		ok       bool
	}{
		{"jpeg", "a.jpeg", "image/jpeg", true},
		{"jpg", "a.JPG", "image/jpeg", true},
		{"png", "a.png", "image/png", true},
		{"webp", "a.webp", "image/webp", true},
		{"gif", "a.gif", "image/gif", false},
		{"renamed executable", "a.png", "application/octet-stream", false},
		{"wrong extension", "a.txt", "image/png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ImageFilter(tt.filename, tt.mimeType)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnsupportedType)
			}
		})
	}
}

func TestSingle(t *testing.T) {
	s := newTestStorage(t, TimestampExt)
	req := multipartRequest(t, map[string]string{"note": "hello"},
		part{field: "image", filename: "front.png", mimeType: "image/png", content: []byte("png-bytes")},
	)

	file, values, err := s.Single(req, "image")
	require.NoError(t, err)
	require.NotNil(t, file)

	assert.Equal(t, "hello", values.Get("note"))
	assert.Equal(t, "front.png", file.OriginalName)
	assert.True(t, strings.HasSuffix(file.Filename, ".png"))
	assert.Equal(t, "/uploads/"+file.Filename, file.URL)
	assert.Equal(t, int64(9), file.Size)

	content, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
}

func TestSingle_NoFile(t *testing.T) {
	s := newTestStorage(t, TimestampExt)

	file, values, err := s.Single(multipartRequest(t, map[string]string{"name": "x"}), "image")
	require.NoError(t, err)
	assert.Nil(t, file)
	assert.Equal(t, "x", values.Get("name"))

	jsonReq := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	jsonReq.Header.Set("Content-Type", "application/json")
	file, _, err = s.Single(jsonReq, "image")
	require.NoError(t, err)
	assert.Nil(t, file)
}

func TestMultiple(t *testing.T) {
	s := newTestStorage(t, TimestampOriginal)
	req := multipartRequest(t, nil,
		part{field: "images", filename: "a.jpg", mimeType: "image/jpeg", content: []byte("a")},
		part{field: "images", filename: "a.jpg", mimeType: "image/jpeg", content: []byte("b")},
	)

	files, _, err := s.Multiple(req, "images", 5)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.NotEqual(t, files[0].Filename, files[1].Filename)
	assert.Len(t, dirEntries(t, s.Dir()), 2)
}

func TestMultiple_RejectionsRemoveWrittenFiles(t *testing.T) {
	good := part{field: "images", filename: "ok.png", mimeType: "image/png", content: []byte("fine")}

	tests := []struct {
		name    string
		parts   []part
		limit   int
		wantErr error
	}{
		{"too large", []part{good, {field: "images", filename: "big.png", mimeType: "image/png", content: bytes.Repeat([]byte("x"), 17)}}, 5, ErrFileTooLarge},
		{"unsupported type", []part{good, {field: "images", filename: "doc.pdf", mimeType: "application/pdf", content: []byte("pdf")}}, 5, ErrUnsupportedType},
		{"unexpected field", []part{good, {field: "avatar", filename: "b.png", mimeType: "image/png", content: []byte("b")}}, 5, ErrUnexpectedField},
		{"beyond caller limit", []part{good, good}, 1, ErrUnexpectedField},
		{"too many for storage limit", []part{good, good, good, good}, 10, ErrTooManyFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStorage(t, TimestampOriginal)

			files, _, err := s.Multiple(multipartRequest(t, nil, tt.parts...), "images", tt.limit)
			assert.Nil(t, files)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
			assert.Empty(t, dirEntries(t, s.Dir()))
		})
	}
}

func TestSingle_SecondFileIsUnexpected(t *testing.T) {
	s := newTestStorage(t, TimestampExt)
	req := multipartRequest(t, nil,
		part{field: "image", filename: "a.png", mimeType: "image/png", content: []byte("a")},
		part{field: "image", filename: "b.png", mimeType: "image/png", content: []byte("b")},
	)

	file, _, err := s.Single(req, "image")
	assert.Nil(t, file)
	require.ErrorIs(t, err, ErrUnexpectedField)
	assert.Equal(t, "Unexpected field", err.Error())
	assert.Empty(t, dirEntries(t, s.Dir()))
}

func TestCreate_AvoidsOverwritingOnCollision(t *testing.T) {
	s := newTestStorage(t, TimestampExt)
	fixed := time.UnixMilli(1700000000000)
	s.now = func() time.Time { return fixed }

	first, _, err := s.Single(multipartRequest(t, nil, part{field: "image", filename: "a.png", mimeType: "image/png", content: []byte("1")}), "image")
	require.NoError(t, err)
	second, _, err := s.Single(multipartRequest(t, nil, part{field: "image", filename: "b.png", mimeType: "image/png", content: []byte("2")}), "image")
	require.NoError(t, err)

	assert.Equal(t, "1700000000000.png", first.Filename)
	assert.NotEqual(t, first.Filename, second.Filename)
	assert.True(t, strings.HasPrefix(second.Filename, "1700000000000-"))

	content, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "1", string(content))
}

func TestRemove(t *testing.T) {
	s := newTestStorage(t, TimestampOriginal)
	files, _, err := s.Multiple(multipartRequest(t, nil,
		part{field: "images", filename: "a.png", mimeType: "image/png", content: []byte("a")},
	), "images", 5)
	require.NoError(t, err)

	s.Remove(files...)
	s.Remove(files...)
	assert.Empty(t, dirEntries(t, s.Dir()))
}

func TestFileServer(t *testing.T) {
	s := newTestStorage(t, TimestampExt)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "1.png"), []byte("img"), 0o644))

	handler := http.StripPrefix("/uploads", s.FileServer())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/1.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "img", w.Body.String())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
