package repository

import (
	"context"
	"image"
)

// LogoRepository resolves logo references of any supported kind.
type LogoRepository interface {
	// Load fetches and decodes the logo named by source
	Load(ctx context.Context, source string) (image.Image, error)

	// Validate checks a reference without fetching it
	Validate(source string) error
}

// SourceKind classifies a logo reference.
type SourceKind string

const (
	SourceHTTP  SourceKind = "http"
	SourceAzure SourceKind = "azblob"
	SourceFile  SourceKind = "file"
)
