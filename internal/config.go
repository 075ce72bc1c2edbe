package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/halvorsen/muninn/internal/classify"
	"github.com/halvorsen/muninn/internal/search"
	"github.com/halvorsen/muninn/internal/store"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

var projectNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Store    StoreConfig       `yaml:"store"`
	Classify classify.Rules    `yaml:"classify"`
	Search   SearchConfig      `yaml:"search"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Classify,
		validation.Field(&c.Classify.TagsForLevel2, validation.Required, validation.Min(1)),
		validation.Field(&c.Classify.ContentLenForLevel4, validation.Required, validation.Min(1)),
		validation.Field(&c.Classify.TagsForLevel4, validation.Required, validation.Min(1)),
		validation.Field(&c.Classify.RelatedForLevel4, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig holds the memory store location and the name of the partition
// that receives memories stored without an explicit project.
type StoreConfig struct {
	Path           string `yaml:"path"`
	DefaultProject string `yaml:"default_project"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.DefaultProject, validation.Match(projectNameRe)),
	)
}

// SearchConfig holds the scoring model and the synonym table. A nil synonym
// table selects the built-in one; an explicitly empty table disables
// expansion.
type SearchConfig struct {
	Weights  search.Weights      `yaml:"weights"`
	Synonyms map[string][]string `yaml:"synonyms"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(&c.Weights,
		validation.Field(&c.Weights.MinTokenLen, validation.Required, validation.Min(1)),
		validation.Field(&c.Weights.MaxEditDistance, validation.Min(0), validation.Max(5)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// StoreOptions maps the file configuration onto the store's own Config.
func (c *Config) StoreOptions() store.Config {
	return store.Config{
		DefaultProject: c.Store.DefaultProject,
		Rules:          c.Classify,
		Weights:        c.Search.Weights,
		Synonyms:       c.Search.Synonyms,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Path:           "./memories",
			DefaultProject: store.DefaultProject,
		},
		Classify: classify.DefaultRules(),
		Search: SearchConfig{
			Weights: search.DefaultWeights(),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
