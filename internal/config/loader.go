// Package config loads settings from defaults, an optional settings file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	v1 "github.com/infracollect/whichworkspace/apis/v1"
	"github.com/infracollect/whichworkspace/internal/filter"
)

const (
	DefaultSettingsFile = "settings.toml"
	DefaultEnvFile      = ".env"
)

var (
	defaultValidator = validator.New(validator.WithRequiredStructEnabled())

	defaults = map[string]any{
		"log":                   "warn",
		"token":                 "",
		"org":                   "",
		"output":                "results.json",
		"format":                "json",
		"base_url":              "https://app.terraform.io/api/v2",
		"timeout":               30,
		"rate_limit":            30,
		"cache.enabled":         true,
		"cache.dir":             "",
		"query.name":            "",
		"pagination.start_page": "1",
		"pagination.max_depth":  "1",
		"pagination.page_size":  "20",
	}
)

// Load reads settings from path on fsys, overridden by environment variables, on top of the
// defaults. A missing settings file is not an error. The result is validated.
func Load(fsys afero.Fs, path string) (v1.Settings, error) {
	v := viper.New()
	v.SetFs(fsys)

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		exists, err := afero.Exists(fsys, path)
		if err != nil {
			return v1.Settings{}, &ConfigError{Err: fmt.Errorf("failed to stat settings file '%s': %w", path, err)}
		}

		if exists {
			v.SetConfigFile(path)
			if filepath.Ext(path) == "" {
				v.SetConfigType("toml")
			}
			if err := v.ReadInConfig(); err != nil {
				return v1.Settings{}, &ConfigError{Err: fmt.Errorf("failed to read settings file '%s': %w", path, err)}
			}
		}
	}

	var settings v1.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return v1.Settings{}, &ConfigError{Err: fmt.Errorf("failed to decode settings: %w", err)}
	}

	if err := defaultValidator.Struct(settings); err != nil {
		return v1.Settings{}, &ConfigError{Err: err}
	}

	return settings, nil
}

// LoadEnvFile loads variables from a dotenv file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &ConfigError{Err: fmt.Errorf("failed to load env file '%s': %w", path, err)}
	}

	return nil
}

// Pagination is the parsed form of v1.PaginationSpec.
type Pagination struct {
	StartPage int
	MaxDepth  int
	PageSize  int
}

// ResolvePagination parses the pagination settings. Values that are not integers, or that are
// out of range, are configuration errors.
func ResolvePagination(spec v1.PaginationSpec) (Pagination, error) {
	startPage, err := parseInt("pagination.start_page", spec.StartPage, 1)
	if err != nil {
		return Pagination{}, err
	}

	maxDepth, err := parseInt("pagination.max_depth", spec.MaxDepth, 0)
	if err != nil {
		return Pagination{}, err
	}

	pageSize, err := parseInt("pagination.page_size", spec.PageSize, 1)
	if err != nil {
		return Pagination{}, err
	}

	return Pagination{StartPage: startPage, MaxDepth: maxDepth, PageSize: pageSize}, nil
}

func parseInt(key, raw string, minimum int) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ConfigError{Key: key, Err: fmt.Errorf("%q is not an integer: %w", raw, err)}
	}

	if value < minimum {
		return 0, &ConfigError{Key: key, Err: fmt.Errorf("%d is below the minimum of %d", value, minimum)}
	}

	return value, nil
}

// ResolveRules converts the query variables into filter rules, in order.
func ResolveRules(query v1.Query) ([]filter.Rule, error) {
	var errs error
	rules := make([]filter.Rule, 0, len(query.Variables))

	for i, variable := range query.Variables {
		op, err := filter.ParseOperator(variable.Operator)
		if err != nil {
			errs = errors.Join(errs, &ConfigError{Key: fmt.Sprintf("query.variables[%d].operator", i), Err: err})
			continue
		}
		rules = append(rules, filter.Rule{Key: variable.Key, Operator: op, Value: variable.Value})
	}

	if errs != nil {
		return nil, errs
	}

	return rules, nil
}

// Resolved holds settings together with their parsed forms.
type Resolved struct {
	Settings   v1.Settings
	Pagination Pagination
	Rules      []filter.Rule
}

// HasRules reports whether the query filters on variables.
func (r Resolved) HasRules() bool {
	return len(r.Rules) > 0
}

// Resolve parses everything that must be valid before any network call is made.
func Resolve(settings v1.Settings) (Resolved, error) {
	pagination, err := ResolvePagination(settings.Pagination)
	if err != nil {
		return Resolved{}, err
	}

	rules, err := ResolveRules(settings.Query)
	if err != nil {
		return Resolved{}, err
	}

	return Resolved{
		Settings:   settings,
		Pagination: pagination,
		Rules:      rules,
	}, nil
}
