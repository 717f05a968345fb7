package engine

import (
	"context"
	"io"
)

// Encoder turns a result document into a specific format (JSON, YAML).
type Encoder interface {
	// Encode encodes v to a reader.
	Encode(ctx context.Context, v any) (io.Reader, error)

	// FileExtension returns the extension without dot (e.g., "json").
	FileExtension() string
}
