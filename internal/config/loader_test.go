package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/infracollect/whichworkspace/apis/v1"
	"github.com/infracollect/whichworkspace/internal/filter"
)

func newSettingsFs(t *testing.T, content string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, DefaultSettingsFile, []byte(content), 0644))
	return fs
}

const fullSettings = `
token = "file-token"
org = "acme"
output = "out/${ORG}.json"
format = "yaml"

[query]
name = "app"

[[query.variables]]
key = "env"
operator = "Equals"
value = "prod"

[[query.variables]]
key = "region"
operator = "NotContains"
value = "west"

[pagination]
start_page = "2"
max_depth = 0
page_size = "50"

[cache]
enabled = false

[s3]
bucket = "results"
prefix = "runs/${RUN_DATE_ISO8601}"
`

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOKEN", "env-token")
	t.Setenv("ORG", "env-org")

	settings, err := Load(afero.NewMemMapFs(), DefaultSettingsFile)
	require.NoError(t, err)

	assert.Equal(t, "warn", settings.Log)
	assert.Equal(t, "env-token", settings.Token)
	assert.Equal(t, "env-org", settings.Org)
	assert.Equal(t, "results.json", settings.Output)
	assert.Equal(t, "json", settings.Format)
	assert.Equal(t, "https://app.terraform.io/api/v2", settings.BaseURL)
	assert.Equal(t, 30, settings.Timeout)
	assert.Equal(t, 30, settings.RateLimit)
	assert.True(t, settings.Cache.Enabled)
	assert.Equal(t, v1.PaginationSpec{StartPage: "1", MaxDepth: "1", PageSize: "20"}, settings.Pagination)
	assert.Empty(t, settings.Query.Name)
	assert.Empty(t, settings.Query.Variables)
	assert.Nil(t, settings.S3)
}

func TestLoad_File(t *testing.T) {
	settings, err := Load(newSettingsFs(t, fullSettings), DefaultSettingsFile)
	require.NoError(t, err)

	assert.Equal(t, "file-token", settings.Token)
	assert.Equal(t, "acme", settings.Org)
	assert.Equal(t, "out/${ORG}.json", settings.Output)
	assert.Equal(t, "yaml", settings.Format)
	assert.False(t, settings.Cache.Enabled)
	assert.Equal(t, v1.Query{
		Name: "app",
		Variables: []v1.VariableRule{
			{Key: "env", Operator: "Equals", Value: "prod"},
			{Key: "region", Operator: "NotContains", Value: "west"},
		},
	}, settings.Query)
	assert.Equal(t, v1.PaginationSpec{StartPage: "2", MaxDepth: "0", PageSize: "50"}, settings.Pagination)
	require.NotNil(t, settings.S3)
	assert.Equal(t, "results", settings.S3.Bucket)
	assert.Equal(t, "runs/${RUN_DATE_ISO8601}", settings.S3.Prefix)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("ORG", "env-org")
	t.Setenv("PAGINATION_MAX_DEPTH", "7")
	t.Setenv("CACHE_ENABLED", "true")

	settings, err := Load(newSettingsFs(t, fullSettings), DefaultSettingsFile)
	require.NoError(t, err)

	assert.Equal(t, "env-org", settings.Org)
	assert.Equal(t, "file-token", settings.Token)
	assert.Equal(t, "7", settings.Pagination.MaxDepth)
	assert.True(t, settings.Cache.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
		validation  bool
	}{
		{
			name:        "missing token and org",
			content:     `output = "x.json"`,
			errContains: "Token",
			validation:  true,
		},
		{
			name: "unknown operator",
			content: `
token = "t"
org = "o"
[[query.variables]]
key = "env"
operator = "Matches"
value = "prod"
`,
			errContains: "Operator",
			validation:  true,
		},
		{
			name: "unknown format",
			content: `
token = "t"
org = "o"
format = "xml"
`,
			errContains: "Format",
			validation:  true,
		},
		{
			name:        "malformed file",
			content:     `token = `,
			errContains: "failed to read settings file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newSettingsFs(t, tt.content), DefaultSettingsFile)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.errContains)

			var configErr *ConfigError
			require.ErrorAs(t, err, &configErr)

			var validationErrs validator.ValidationErrors
			assert.Equal(t, tt.validation, errors.As(err, &validationErrs))
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("WHICHWORKSPACE_TEST_TOKEN=from-dotenv\n"), 0600))

	t.Setenv("WHICHWORKSPACE_TEST_TOKEN", "")
	require.NoError(t, os.Unsetenv("WHICHWORKSPACE_TEST_TOKEN"))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-dotenv", os.Getenv("WHICHWORKSPACE_TEST_TOKEN"))

	t.Run("missing file is ignored", func(t *testing.T) {
		require.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
	})

	t.Run("existing variables are not overridden", func(t *testing.T) {
		t.Setenv("WHICHWORKSPACE_TEST_TOKEN", "from-env")
		require.NoError(t, LoadEnvFile(path))
		assert.Equal(t, "from-env", os.Getenv("WHICHWORKSPACE_TEST_TOKEN"))
	})
}

func TestResolvePagination(t *testing.T) {
	tests := []struct {
		name   string
		spec   v1.PaginationSpec
		want   Pagination
		errKey string
	}{
		{
			name: "defaults",
			spec: v1.PaginationSpec{StartPage: "1", MaxDepth: "1", PageSize: "20"},
			want: Pagination{StartPage: 1, MaxDepth: 1, PageSize: 20},
		},
		{
			name: "unbounded depth",
			spec: v1.PaginationSpec{StartPage: "3", MaxDepth: "0", PageSize: "100"},
			want: Pagination{StartPage: 3, MaxDepth: 0, PageSize: 100},
		},
		{
			name: "surrounding whitespace",
			spec: v1.PaginationSpec{StartPage: " 1", MaxDepth: "2 ", PageSize: "20"},
			want: Pagination{StartPage: 1, MaxDepth: 2, PageSize: 20},
		},
		{
			name:   "non numeric depth",
			spec:   v1.PaginationSpec{StartPage: "1", MaxDepth: "all", PageSize: "20"},
			errKey: "pagination.max_depth",
		},
		{
			name:   "negative depth",
			spec:   v1.PaginationSpec{StartPage: "1", MaxDepth: "-1", PageSize: "20"},
			errKey: "pagination.max_depth",
		},
		{
			name:   "zero start page",
			spec:   v1.PaginationSpec{StartPage: "0", MaxDepth: "1", PageSize: "20"},
			errKey: "pagination.start_page",
		},
		{
			name:   "fractional page size",
			spec:   v1.PaginationSpec{StartPage: "1", MaxDepth: "1", PageSize: "2.5"},
			errKey: "pagination.page_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePagination(tt.spec)
			if tt.errKey != "" {
				var configErr *ConfigError
				require.ErrorAs(t, err, &configErr)
				assert.Equal(t, tt.errKey, configErr.Key)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	settings := v1.Settings{
		Query: v1.Query{
			Variables: []v1.VariableRule{
				{Key: "env", Operator: "Equals", Value: "prod"},
				{Key: "region", Operator: "Contains", Value: "us"},
			},
		},
		Pagination: v1.PaginationSpec{StartPage: "1", MaxDepth: "0", PageSize: "20"},
	}

	resolved, err := Resolve(settings)
	require.NoError(t, err)
	assert.True(t, resolved.HasRules())
	assert.Equal(t, []filter.Rule{
		{Key: "env", Operator: filter.Equals, Value: "prod"},
		{Key: "region", Operator: filter.Contains, Value: "us"},
	}, resolved.Rules)
	assert.Equal(t, Pagination{StartPage: 1, MaxDepth: 0, PageSize: 20}, resolved.Pagination)

	t.Run("no rules", func(t *testing.T) {
		resolved, err := Resolve(v1.Settings{Pagination: settings.Pagination})
		require.NoError(t, err)
		assert.False(t, resolved.HasRules())
	})

	t.Run("every unknown operator is reported", func(t *testing.T) {
		bad := settings
		bad.Query.Variables = []v1.VariableRule{
			{Key: "a", Operator: "Like"},
			{Key: "b", Operator: "Equals"},
			{Key: "c", Operator: "Regex"},
		}
		_, err := Resolve(bad)
		require.Error(t, err)
		assert.ErrorContains(t, err, "query.variables[0].operator")
		assert.ErrorContains(t, err, "query.variables[2].operator")
	})
}
