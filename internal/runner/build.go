package runner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	v1 "github.com/infracollect/whichworkspace/apis/v1"
	"github.com/infracollect/whichworkspace/internal/engine"
	"github.com/infracollect/whichworkspace/internal/engine/encoders"
	"github.com/infracollect/whichworkspace/internal/engine/sinks"
	"github.com/infracollect/whichworkspace/internal/tfe"
)

const cacheDirName = "whichworkspace"

func buildClient(logger *zap.Logger, settings v1.Settings, headers map[string]string, transport http.RoundTripper) (*tfe.Client, error) {
	cache, err := buildCache(settings.Cache)
	if err != nil {
		return nil, err
	}

	opts := []tfe.ClientOption{tfe.WithLogger(logger)}
	if transport != nil {
		opts = append(opts, tfe.WithTransport(transport))
	}

	return tfe.NewClient(tfe.Config{
		BaseURL:   settings.BaseURL,
		Token:     settings.Token,
		Headers:   headers,
		Timeout:   time.Duration(settings.Timeout) * time.Second,
		RateLimit: settings.RateLimit,
		Cache:     cache,
	}, opts...)
}

// buildCache returns nil when caching is disabled.
func buildCache(spec v1.CacheSpec) (httpcache.Cache, error) {
	if !spec.Enabled {
		return nil, nil
	}

	dir := spec.Dir
	if dir == "" {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate user cache directory: %w", err)
		}
		dir = filepath.Join(userCacheDir, cacheDirName)
	}

	return diskcache.New(dir), nil
}

// buildEncoder picks the encoder for the format setting. JSON is indented with two spaces.
func buildEncoder(format string) (engine.Encoder, error) {
	switch format {
	case "", "json":
		return encoders.NewJSONEncoder("  "), nil
	case "yaml":
		return encoders.NewYAMLEncoder(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// buildSinks returns, in write order, the filesystem sink rooted at the directory of the output
// path, the stdout echo when stdout is set, and the S3 sink when configured.
func buildSinks(ctx context.Context, fsys afero.Fs, stdout io.Writer, uploader sinks.S3Uploader, settings v1.Settings) ([]engine.Sink, error) {
	fsSink, err := sinks.NewFilesystemSinkFromPath(fsys, filepath.Dir(settings.Output))
	if err != nil {
		return nil, err
	}

	result := []engine.Sink{fsSink}

	if stdout != nil {
		result = append(result, sinks.NewStreamSink(stdout))
	}

	if settings.S3 != nil {
		s3Sink, err := buildS3Sink(ctx, uploader, *settings.S3)
		if err != nil {
			return nil, err
		}
		result = append(result, s3Sink)
	}

	return result, nil
}

func buildS3Sink(ctx context.Context, uploader sinks.S3Uploader, spec v1.S3Spec) (engine.Sink, error) {
	if uploader != nil {
		return sinks.NewS3SinkWithUploader(spec.Bucket, spec.Prefix, uploader), nil
	}

	cfg := sinks.S3Config{
		Bucket:         spec.Bucket,
		Region:         spec.Region,
		Endpoint:       spec.Endpoint,
		Prefix:         spec.Prefix,
		ForcePathStyle: spec.ForcePathStyle,
	}
	if spec.Credentials != nil {
		cfg.AccessKeyID = spec.Credentials.AccessKeyID
		cfg.SecretAccessKey = spec.Credentials.SecretAccessKey
	}

	return sinks.NewS3Sink(ctx, cfg)
}
