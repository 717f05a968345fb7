package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/infracollect/whichworkspace/internal/config"
	"github.com/infracollect/whichworkspace/internal/engine"
	"github.com/infracollect/whichworkspace/internal/engine/sinks"
	"github.com/infracollect/whichworkspace/internal/filter"
	"github.com/infracollect/whichworkspace/internal/tfe"
)

// LoadSettings loads settingsPath from fsys, expands the templated settings and resolves
// everything that must be valid before the first request. Any failure is a settings load
// PhaseError.
func LoadSettings(fsys afero.Fs, settingsPath string, allowedEnv []string, date time.Time) (config.Resolved, error) {
	resolved, err := loadSettings(fsys, settingsPath, allowedEnv, date)
	if err != nil {
		return config.Resolved{}, &PhaseError{Phase: PhaseSettingsLoad, Err: err}
	}
	return resolved, nil
}

func loadSettings(fsys afero.Fs, settingsPath string, allowedEnv []string, date time.Time) (config.Resolved, error) {
	settings, err := config.Load(fsys, settingsPath)
	if err != nil {
		return config.Resolved{}, err
	}

	variables, err := BuildVariables(settings.Org, date, allowedEnv)
	if err != nil {
		return config.Resolved{}, &config.ConfigError{Key: "allowed_env", Err: err}
	}

	if err := ExpandTemplates(&settings, variables); err != nil {
		return config.Resolved{}, &config.ConfigError{Err: fmt.Errorf("failed to expand templates: %w", err)}
	}

	return config.Resolve(settings)
}

type Runner struct {
	logger   *zap.Logger
	resolved config.Resolved
	client   *tfe.Client
	encoder  engine.Encoder
	sinks    []engine.Sink
}

type Option func(*options)

type options struct {
	fs        afero.Fs
	stdout    io.Writer
	transport http.RoundTripper
	headers   map[string]string
	uploader  sinks.S3Uploader
}

// WithFs sets the filesystem the output file is written to. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithStdout echoes the encoded result to w.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// WithTransport replaces the wire transport of the API client.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *options) {
		o.transport = transport
	}
}

// WithHeaders adds headers to every API request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithS3Uploader replaces the uploader of the S3 sink.
func WithS3Uploader(uploader sinks.S3Uploader) Option {
	return func(o *options) {
		o.uploader = uploader
	}
}

func New(ctx context.Context, logger *zap.Logger, resolved config.Resolved, opts ...Option) (*Runner, error) {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}

	settings := resolved.Settings
	logger.Info("creating runner", zap.String("org", settings.Org), zap.Int("rules", len(resolved.Rules)))

	client, err := buildClient(logger.Named("tfe"), settings, o.headers, o.transport)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	encoder, err := buildEncoder(settings.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to build encoder: %w", err)
	}

	outputSinks, err := buildSinks(ctx, o.fs, o.stdout, o.uploader, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to build sinks: %w", err)
	}

	return &Runner{
		logger:   logger,
		resolved: resolved,
		client:   client,
		encoder:  encoder,
		sinks:    outputSinks,
	}, nil
}

// Run fetches the workspaces, filters them on their variables when rules are set and writes
// the result to every sink. Nothing is written unless every earlier phase succeeded.
func (r *Runner) Run(ctx context.Context) (FilteredResult, error) {
	defer func() {
		// Sinks are closed even when ctx is already cancelled.
		cleanupCtx := context.Background()
		for _, sink := range r.sinks {
			if err := sink.Close(cleanupCtx); err != nil {
				r.logger.Error("failed to close sink", zap.String("sink", sink.Name()), zap.Error(err))
			}
		}
	}()

	workspaces, err := r.fetchWorkspaces(ctx)
	if err != nil {
		return FilteredResult{}, &PhaseError{Phase: PhaseWorkspaceFetch, Err: err}
	}

	if r.resolved.HasRules() {
		candidates, err := r.fetchVariables(ctx, workspaces)
		if err != nil {
			return FilteredResult{}, &PhaseError{Phase: PhaseVariableFetch, Err: err}
		}

		workspaces = filter.Entities(filter.Filter(candidates, r.resolved.Rules))
		r.logger.Info("filtered workspaces",
			zap.String("phase", PhaseFiltering),
			zap.Int("candidates", len(candidates)),
			zap.Int("kept", len(workspaces)),
			zap.Stringers("rules", r.resolved.Rules),
		)
	}

	result := NewFilteredResult(r.resolved.Settings.Query, workspaces)
	if err := r.write(ctx, result); err != nil {
		return FilteredResult{}, &PhaseError{Phase: PhaseOutputWrite, Err: err}
	}

	return result, nil
}

func (r *Runner) fetchWorkspaces(ctx context.Context) ([]tfe.Workspace, error) {
	settings := r.resolved.Settings
	pagination := r.resolved.Pagination

	workspaces, err := tfe.ListWorkspaces(ctx, r.client, settings.Org, tfe.ListWorkspacesOptions{
		Search: settings.Query.Name,
		PageOptions: tfe.PageOptions{
			StartPage: pagination.StartPage,
			PageSize:  pagination.PageSize,
			MaxDepth:  pagination.MaxDepth,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces of %s: %w", settings.Org, err)
	}

	r.logger.Info("fetched workspaces", zap.String("org", settings.Org), zap.Int("count", len(workspaces)))
	return workspaces, nil
}

func (r *Runner) fetchVariables(ctx context.Context, workspaces []tfe.Workspace) ([]filter.Candidate[tfe.Workspace], error) {
	candidates := make([]filter.Candidate[tfe.Workspace], 0, len(workspaces))

	for _, workspace := range workspaces {
		variables, err := tfe.ListVariables(ctx, r.client, workspace.ID, r.resolved.Pagination.PageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list variables of workspace %s (%s): %w", workspace.Name, workspace.ID, err)
		}

		r.logger.Debug("fetched variables", zap.String("workspace_id", workspace.ID), zap.Int("count", len(variables)))

		candidates = append(candidates, filter.Candidate[tfe.Workspace]{
			Entity: workspace,
			Attributes: lo.Map(variables, func(v tfe.Variable, _ int) filter.Attribute {
				return filter.Attribute{Key: v.Key, Value: v.Value}
			}),
		})
	}

	return candidates, nil
}

// write encodes result once and hands a copy to each sink, under the base name of the output
// path.
func (r *Runner) write(ctx context.Context, result FilteredResult) error {
	reader, err := r.encoder.Encode(ctx, result)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read encoded result: %w", err)
	}

	name := filepath.Base(r.resolved.Settings.Output)

	var errs error
	for _, sink := range r.sinks {
		if err := sink.Write(ctx, name, bytes.NewReader(data)); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to write result to %s: %w", sink.Name(), err))
			continue
		}
		r.logger.Debug("wrote result", zap.String("sink", sink.Name()), zap.String("path", name))
	}

	return errs
}
