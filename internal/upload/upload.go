// Package upload stores scan uploads on local disk for the duration of one
// request.
package upload

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/anime-shed/barcode-studio-go/internal/errors"
	"github.com/anime-shed/barcode-studio-go/internal/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FieldName is the multipart field carrying the image.
const FieldName = "image"

// DefaultMaxSize is used when a store is created with a non-positive limit.
const DefaultMaxSize = 10 * 1024 * 1024

var (
	ErrNoFile      = errors.New("no image file provided")
	ErrEmptyFile   = errors.New("empty file")
	ErrTooLarge    = errors.New("file exceeds upload limit")
	ErrUnsupported = errors.New("only image files are allowed")
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/webp": true,
	"image/tiff": true,
}

// Store writes uploads below dir and enforces the size and type filters.
type Store struct {
	dir     string
	maxSize int64
	log     logrus.FieldLogger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for cleanup failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates dir if needed.
func NewStore(dir string, maxSize int64, opts ...Option) (*Store, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	s := &Store{dir: dir, maxSize: maxSize, log: logger.Logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MaxSize is the per-file byte limit.
func (s *Store) MaxSize() int64 { return s.maxSize }

// Dir is the directory uploads are written to.
func (s *Store) Dir() string { return s.dir }

// Upload is a stored file. Callers must call Release when done with it.
type Upload struct {
	Path     string
	Filename string
	MIME     string
	Size     int64

	log logrus.FieldLogger
}

// Save persists a multipart file header.
func (s *Store) Save(fh *multipart.FileHeader) (*Upload, error) {
	if fh == nil {
		return nil, apperrors.NewValidationError("No image file provided", ErrNoFile)
	}
	if fh.Size > s.maxSize {
		return nil, tooLarge(s.maxSize)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("Could not read uploaded file", err)
	}
	defer f.Close()
	return s.SaveReader(fh.Filename, f)
}

// SaveReader persists r under a generated name keeping the extension of
// filename. The content type is sniffed, not taken from the client.
func (s *Store) SaveReader(filename string, r io.Reader) (*Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, apperrors.NewValidationError("Only image files are allowed", ErrUnsupported)
	}

	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, apperrors.NewInternalError("Could not store upload", err)
	}

	// One extra byte tells an exact fit apart from an overflow.
	written, err := io.Copy(out, io.LimitReader(r, s.maxSize+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		s.remove(path)
		return nil, apperrors.NewInternalError("Could not store upload", err)
	}
	if written > s.maxSize {
		s.remove(path)
		return nil, tooLarge(s.maxSize)
	}
	if written == 0 {
		s.remove(path)
		return nil, apperrors.NewValidationError("Uploaded file is empty", ErrEmptyFile)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil || !allowedMIME[mt.String()] {
		s.remove(path)
		return nil, apperrors.NewValidationError("Only image files are allowed", ErrUnsupported)
	}

	return &Upload{
		Path:     path,
		Filename: filename,
		MIME:     mt.String(),
		Size:     written,
		log:      s.log,
	}, nil
}

// Image decodes the stored file.
func (u *Upload) Image() (image.Image, error) {
	f, err := os.Open(u.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, apperrors.NewValidationError("Could not decode image", err)
	}
	return img, nil
}

// Release deletes the stored file. It is safe to call more than once.
func (u *Upload) Release() {
	if u == nil || u.Path == "" {
		return
	}
	if err := os.Remove(u.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		u.log.WithError(err).WithField("path", u.Path).Warn("Failed to delete upload")
	}
}

func (s *Store) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.WithError(err).WithField("path", path).Warn("Failed to delete rejected upload")
	}
}

func tooLarge(limit int64) error {
	return apperrors.NewPayloadTooLargeError(
		fmt.Sprintf("File too large (max %d bytes)", limit), ErrTooLarge)
}
