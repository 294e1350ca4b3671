package repository

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"
	"time"

	"github.com/anime-shed/barcode-studio-go/internal/storage"
	"github.com/anime-shed/barcode-studio-go/pkg/validation"
)

// logoRepository dispatches logo references to the matching storage source.
type logoRepository struct {
	http    storage.LogoSource
	azure   storage.LogoSource
	file    storage.LogoSource
	timeout time.Duration
}

// Option wires an optional source into the repository.
type Option func(*logoRepository)

func WithHTTPSource(s storage.LogoSource) Option  { return func(r *logoRepository) { r.http = s } }
func WithAzureSource(s storage.LogoSource) Option { return func(r *logoRepository) { r.azure = s } }
func WithFileSource(s storage.LogoSource) Option  { return func(r *logoRepository) { r.file = s } }

// WithTimeout bounds each Load call.
func WithTimeout(d time.Duration) Option {
	return func(r *logoRepository) { r.timeout = d }
}

// NewLogoRepository creates a repository. Sources left unset reject their
// references with ErrSourceUnavailable.
func NewLogoRepository(opts ...Option) LogoRepository {
	r := &logoRepository{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify reports which source kind serves a reference.
func Classify(source string) (SourceKind, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", ErrInvalidLogoSource
	}
	if !strings.Contains(source, "://") {
		return SourceFile, nil
	}
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLogoSource, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return SourceHTTP, nil
	case storage.AzureScheme:
		return SourceAzure, nil
	}
	return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLogoSource, u.Scheme)
}

func (r *logoRepository) Validate(source string) error {
	kind, err := Classify(source)
	if err != nil {
		return err
	}
	switch kind {
	case SourceHTTP:
		if err := validation.ValidateLogoURL(source); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLogoSource, err)
		}
	case SourceAzure:
		if _, _, err := storage.ParseBlobRef(source); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLogoSource, err)
		}
	}
	if r.sourceFor(kind) == nil {
		return fmt.Errorf("%w: %s", ErrSourceUnavailable, kind)
	}
	return nil
}

func (r *logoRepository) Load(ctx context.Context, source string) (image.Image, error) {
	if err := r.Validate(source); err != nil {
		return nil, err
	}
	kind, _ := Classify(source)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	img, err := r.sourceFor(kind).Fetch(ctx, strings.TrimSpace(source))
	if err != nil {
		return nil, fmt.Errorf("load %s logo: %w", kind, err)
	}
	return img, nil
}

func (r *logoRepository) sourceFor(kind SourceKind) storage.LogoSource {
	switch kind {
	case SourceHTTP:
		return r.http
	case SourceAzure:
		return r.azure
	case SourceFile:
		return r.file
	}
	return nil
}
