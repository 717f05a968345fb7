package encoders

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/infracollect/whichworkspace/internal/engine"
)

// YAMLEncoder implements engine.Encoder for YAML format. go-yaml falls back to json tags, so
// both formats share one shape.
type YAMLEncoder struct{}

func NewYAMLEncoder() engine.Encoder {
	return &YAMLEncoder{}
}

func (e *YAMLEncoder) Encode(ctx context.Context, v any) (io.Reader, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result as YAML: %w", err)
	}

	return bytes.NewReader(data), nil
}

func (e *YAMLEncoder) FileExtension() string {
	return "yaml"
}
