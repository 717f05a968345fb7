package v1

// Settings is the full configuration of a run. It is assembled from defaults, an optional
// settings.toml file and the environment.
type Settings struct {
	// Log is the log level used when --log-level is not passed explicitly.
	Log string `mapstructure:"log" json:"log" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`

	// Token is the API token sent as a bearer token.
	Token string `mapstructure:"token" json:"-" validate:"required"`

	// Org is the organization whose workspaces are listed.
	Org string `mapstructure:"org" json:"org" validate:"required"`

	// Output is the path the filtered result is written to. Supports ${VAR} templates.
	Output string `mapstructure:"output" json:"output" validate:"required" template:""`

	// Format is the output encoding (json or yaml).
	Format string `mapstructure:"format" json:"format" validate:"oneof=json yaml"`

	// BaseURL is the API root, e.g. https://app.terraform.io/api/v2.
	BaseURL string `mapstructure:"base_url" json:"base_url" validate:"required,url"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `mapstructure:"timeout" json:"timeout" validate:"gte=0"`

	// RateLimit is the maximum number of requests per second sent on the wire.
	RateLimit int `mapstructure:"rate_limit" json:"rate_limit" validate:"gt=0"`

	Cache      CacheSpec      `mapstructure:"cache" json:"cache"`
	Query      Query          `mapstructure:"query" json:"query"`
	Pagination PaginationSpec `mapstructure:"pagination" json:"pagination"`

	// S3 optionally uploads the result to an S3 compatible bucket in addition to Output.
	S3 *S3Spec `mapstructure:"s3" json:"s3,omitempty"`
}

// CacheSpec configures the HTTP response cache.
type CacheSpec struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	// Dir is the cache directory. Empty means the user cache directory.
	Dir string `mapstructure:"dir" json:"dir"`
}

// Query selects workspaces. Name is matched server side, Variables client side.
type Query struct {
	Name      string         `mapstructure:"name" json:"name,omitempty"`
	Variables []VariableRule `mapstructure:"variables" json:"variables,omitempty" validate:"dive"`
}

// VariableRule is a single key/operator/value predicate on workspace variables.
type VariableRule struct {
	Key      string `mapstructure:"key" json:"key" validate:"required"`
	Operator string `mapstructure:"operator" json:"operator" validate:"required,oneof=Equals NotEquals Contains NotContains"`
	Value    string `mapstructure:"value" json:"value"`
}

// PaginationSpec holds the raw pagination settings. Values are kept as strings so that
// malformed numbers surface as configuration errors instead of being defaulted.
type PaginationSpec struct {
	StartPage string `mapstructure:"start_page" json:"start_page" validate:"required"`

	// MaxDepth caps the number of pages followed. "0" means unbounded.
	MaxDepth string `mapstructure:"max_depth" json:"max_depth" validate:"required"`

	PageSize string `mapstructure:"page_size" json:"page_size" validate:"required"`
}

// S3Spec configures the S3 upload of the result.
type S3Spec struct {
	Bucket         string         `mapstructure:"bucket" json:"bucket" validate:"required"`
	Region         string         `mapstructure:"region" json:"region,omitempty"`
	Endpoint       string         `mapstructure:"endpoint" json:"endpoint,omitempty" validate:"omitempty,url"`
	Prefix         string         `mapstructure:"prefix" json:"prefix,omitempty" template:""`
	ForcePathStyle bool           `mapstructure:"force_path_style" json:"force_path_style,omitempty"`
	Credentials    *S3Credentials `mapstructure:"credentials" json:"-"`
}

// S3Credentials are static credentials. When unset the default AWS chain is used.
type S3Credentials struct {
	AccessKeyID     string `mapstructure:"access_key_id" validate:"required"`
	SecretAccessKey string `mapstructure:"secret_access_key" validate:"required"`
}
