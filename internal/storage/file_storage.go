package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/anime-shed/barcode-studio-go/internal/errors"
)

// ErrOutsideRoot is returned for paths that escape the logo directory.
var ErrOutsideRoot = errors.New("path escapes logo directory")

// FileLogoSource reads logos from a directory on disk. Relative references
// resolve against root and may not climb out of it.
type FileLogoSource struct {
	root string
}

func NewFileLogoSource(root string) (*FileLogoSource, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("logo directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("logo directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("logo directory %s is not a directory", abs)
	}
	return &FileLogoSource{root: abs}, nil
}

// Resolve maps a reference onto an absolute path inside the root.
func (s *FileLogoSource) Resolve(ref string) (string, error) {
	p := filepath.Clean(ref)
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.root, p)
	}
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, ref)
	}
	return p, nil
}

func (s *FileLogoSource) Fetch(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.NewNotFoundError("Logo not found", err)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeImage(f)
}
