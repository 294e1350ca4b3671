package repository

import "errors"

var (
	// ErrInvalidLogoSource indicates a logo reference no source can serve
	ErrInvalidLogoSource = errors.New("invalid logo source")

	// ErrSourceUnavailable indicates the backing store for a reference is not configured
	ErrSourceUnavailable = errors.New("logo source unavailable")
)
