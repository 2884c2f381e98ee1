// Package upload streams multipart file parts to a flat directory on disk
// and serves them back verbatim.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/apperrors"
	"github.com/Lixing-Zhang/shop-admin/backend/internal/metrics"
)

// URLPrefix is the path uploaded files are served under
const URLPrefix = "/uploads/"

// maxFieldSize caps a single non-file form value
const maxFieldSize = 1 << 20

// Error is an upload rejected because of client input
type Error struct {
	reason string
	msg    string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return apperrors.ErrValidation }

var (
	ErrFileTooLarge     = &Error{reason: "file_too_large", msg: "File too large"}
	ErrTooManyFiles     = &Error{reason: "too_many_files", msg: "Too many files"}
	ErrUnexpectedField  = &Error{reason: "unexpected_field", msg: "Unexpected field"}
	ErrUnsupportedType  = &Error{reason: "unsupported_type", msg: "Only image files are allowed!"}
	ErrFieldValueTooBig = &Error{reason: "field_too_large", msg: "Field value too long"}
	ErrMalformed        = &Error{reason: "malformed", msg: "Malformed multipart request"}
)

// File describes a file part written to disk
type File struct {
	FieldName    string
	OriginalName string
	Filename     string
	Path         string
	URL          string
	Size         int64
	MimeType     string
}

// NamingFunc chooses the stored filename for an uploaded file
type NamingFunc func(originalName string, now time.Time) string

// FilterFunc accepts or rejects a file part before it is written
type FilterFunc func(originalName, mimeType string) error

// TimestampExt names files "<unix millis><ext>"
func TimestampExt(originalName string, now time.Time) string {
	return fmt.Sprintf("%d%s", now.UnixMilli(), filepath.Ext(cleanName(originalName)))
}

// TimestampOriginal names files "<unix millis>-<original name>"
func TimestampOriginal(originalName string, now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), cleanName(originalName))
}

var imageTypes = regexp.MustCompile(`jpeg|jpg|png|webp`)

// ImageFilter accepts jpeg, jpg, png and webp files. Both the MIME type and
// the extension must match.
func ImageFilter(originalName, mimeType string) error {
	ext := strings.ToLower(filepath.Ext(originalName))
	if imageTypes.MatchString(mimeType) && imageTypes.MatchString(ext) {
		return nil
	}
	return ErrUnsupportedType
}

// Options configures a Storage
type Options struct {
	Dir         string
	MaxFileSize int64
	MaxFiles    int
	Naming      NamingFunc
	Filter      FilterFunc
	Logger      *slog.Logger
}

// Storage writes uploaded files into a single directory
type Storage struct {
	dir         string
	maxFileSize int64
	maxFiles    int
	naming      NamingFunc
	filter      FilterFunc
	log         *slog.Logger
	now         func() time.Time
}

// NewStorage creates a Storage. Naming defaults to TimestampOriginal.
func NewStorage(opts Options) *Storage {
	s := &Storage{
		dir:         opts.Dir,
		maxFileSize: opts.MaxFileSize,
		maxFiles:    opts.MaxFiles,
		naming:      opts.Naming,
		filter:      opts.Filter,
		log:         opts.Logger,
		now:         time.Now,
	}
	if s.naming == nil {
		s.naming = TimestampOriginal
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Dir returns the directory files are written to
func (s *Storage) Dir() string { return s.dir }

// EnsureDir creates the upload directory if it does not exist
func (s *Storage) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory %s: %w", s.dir, err)
	}
	return nil
}

// Single saves at most one file from field. The file is nil when the request
// carries none. Non-file form values are returned alongside.
func (s *Storage) Single(r *http.Request, field string) (*File, url.Values, error) {
	files, values, err := s.receive(r, field, 1)
	if err != nil {
		return nil, values, err
	}
	if len(files) == 0 {
		return nil, values, nil
	}
	return &files[0], values, nil
}

// Multiple saves up to limit files from field. A file beyond limit is an
// unexpected field; a file beyond the storage's own file limit is too many.
func (s *Storage) Multiple(r *http.Request, field string, limit int) ([]File, url.Values, error) {
	return s.receive(r, field, limit)
}

// receive streams every part of a multipart body. On any error the files
// already written for this request are removed.
func (s *Storage) receive(r *http.Request, field string, limit int) ([]File, url.Values, error) {
	values := url.Values{}

	reader, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, values, nil
	}
	if err != nil {
		return nil, values, s.reject(nil, ErrMalformed, err)
	}

	var files []File
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, values, s.reject(files, ErrMalformed, err)
		}

		if part.FileName() == "" {
			value, err := readField(part)
			part.Close()
			if err != nil {
				return nil, values, s.reject(files, err, nil)
			}
			values.Add(part.FormName(), value)
			continue
		}

		if part.FormName() != field {
			part.Close()
			return nil, values, s.reject(files, ErrUnexpectedField, nil)
		}
		if limit > 0 && len(files) >= limit {
			part.Close()
			return nil, values, s.reject(files, ErrUnexpectedField, nil)
		}
		if s.maxFiles > 0 && len(files) >= s.maxFiles {
			part.Close()
			return nil, values, s.reject(files, ErrTooManyFiles, nil)
		}

		file, err := s.save(part)
		part.Close()
		if err != nil {
			var uerr *Error
			if errors.As(err, &uerr) {
				return nil, values, s.reject(files, uerr, nil)
			}
			s.Remove(files...)
			return nil, values, err
		}
		files = append(files, *file)
	}

	return files, values, nil
}

func (s *Storage) save(part *multipart.Part) (*File, error) {
	original := cleanName(part.FileName())
	mimeType := part.Header.Get("Content-Type")

	if s.filter != nil {
		if err := s.filter(original, mimeType); err != nil {
			return nil, err
		}
	}

	f, name, err := s.create(s.naming(original, s.now()))
	if err != nil {
		return nil, err
	}

	src := io.Reader(part)
	if s.maxFileSize > 0 {
		src = io.LimitReader(part, s.maxFileSize+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	fullPath := filepath.Join(s.dir, name)

	switch {
	case copyErr != nil:
		s.removePath(fullPath)
		return nil, fmt.Errorf("failed to write upload %s: %w", name, copyErr)
	case closeErr != nil:
		s.removePath(fullPath)
		return nil, fmt.Errorf("failed to close upload %s: %w", name, closeErr)
	case s.maxFileSize > 0 && n > s.maxFileSize:
		s.removePath(fullPath)
		return nil, ErrFileTooLarge
	}

	metrics.UploadFilesSaved.Inc()

	return &File{
		FieldName:    part.FormName(),
		OriginalName: original,
		Filename:     name,
		Path:         fullPath,
		URL:          path.Join(URLPrefix, name),
		Size:         n,
		MimeType:     mimeType,
	}, nil
}

// create opens a new file exclusively. Timestamp names can collide within a
// millisecond; a short random suffix is inserted when they do.
func (s *Storage) create(name string) (*os.File, string, error) {
	candidate := name
	for attempt := 0; ; attempt++ {
		f, err := os.OpenFile(filepath.Join(s.dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) || attempt >= 3 {
			return nil, "", fmt.Errorf("failed to create upload %s: %w", candidate, err)
		}
		ext := filepath.Ext(name)
		candidate = fmt.Sprintf("%s-%s%s", strings.TrimSuffix(name, ext), uuid.NewString()[:8], ext)
	}
}

// Remove deletes files written for a request. Failures are logged, not returned.
func (s *Storage) Remove(files ...File) {
	for _, f := range files {
		s.removePath(f.Path)
	}
}

func (s *Storage) removePath(p string) {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("failed to remove uploaded file", "path", p, "error", err)
		return
	}
	metrics.UploadFilesRemoved.Inc()
}

func (s *Storage) reject(written []File, uerr *Error, cause error) error {
	s.Remove(written...)
	metrics.UploadRejected.WithLabelValues(uerr.reason).Inc()
	if cause != nil {
		s.log.Warn("upload rejected", "reason", uerr.reason, "error", cause)
	}
	return uerr
}

// FileServer serves stored files verbatim. Directory listings are not exposed.
func (s *Storage) FileServer() http.Handler {
	files := http.FileServer(http.Dir(s.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func readField(part *multipart.Part) (string, *Error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(part, maxFieldSize+1))
	if err != nil {
		return "", ErrMalformed
	}
	if n > maxFieldSize {
		return "", ErrFieldValueTooBig
	}
	return buf.String(), nil
}

// cleanName strips any directory components a client put in a filename
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
