package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/docservice"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Vault    VaultConfig       `yaml:"vault"`
	Lists    ListsConfig       `yaml:"lists"`
	Headings HeadingsConfig    `yaml:"headings"`
	Defaults DefaultsConfig    `yaml:"defaults"`
	Spheres  SpheresConfig     `yaml:"spheres"`
	Watch    WatchConfig       `yaml:"watch"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Defaults.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ServiceOptions maps the vault-layout sections onto the document engine's
// options. Empty fields fall back to the engine's own defaults.
func (c *Config) ServiceOptions() docservice.Options {
	return docservice.Options{
		ProjectsFolder:    c.Vault.ProjectsFolder,
		TemplatesFolder:   c.Vault.TemplatesFolder,
		ProjectTemplate:   c.Vault.ProjectTemplate,
		NextActionsPath:   c.Lists.NextActions,
		SomedayPath:       c.Lists.Someday,
		ReferencePath:     c.Lists.Reference,
		ActionsHeading:    c.Headings.Actions,
		DiscussionHeading: c.Headings.Discussion,
		ReferencesHeading: c.Headings.References,
		DefaultPriority:   c.Defaults.Priority,
		DefaultStatus:     c.Defaults.Status,
		CategoryPrefix:    c.Spheres.Prefix,
		Spheres:           c.Spheres.Names,
	}
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

// VaultConfig holds the layout of the Markdown vault: its root directory,
// the folder project documents live in, and the template used for new ones.
type VaultConfig struct {
	Path            string `yaml:"path"`
	ProjectsFolder  string `yaml:"projects_folder"`
	TemplatesFolder string `yaml:"templates_folder"`
	ProjectTemplate string `yaml:"project_template"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ListsConfig names the shared flat-list documents that capture falls
// back to when no project target is given.
type ListsConfig struct {
	NextActions string `yaml:"next_actions"`
	Someday     string `yaml:"someday"`
	Reference   string `yaml:"reference"`
}

// HeadingsConfig names the section headings the engine splices under.
type HeadingsConfig struct {
	Actions    string `yaml:"actions"`
	Discussion string `yaml:"discussion"`
	References string `yaml:"references"`
}

// DefaultsConfig holds the values stamped into new project headers.
type DefaultsConfig struct {
	Priority string `yaml:"priority"`
	Status   string `yaml:"status"`
}

// Validate validates the defaults configuration.
func (c *DefaultsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Priority, validation.In("low", "medium", "high")),
	)
}

// SpheresConfig holds the sphere tag vocabulary. Prefix is the category
// marker (e.g. "sphere/"); Names lists the accepted sphere names. An
// empty Names list accepts any sphere tag.
type SpheresConfig struct {
	Prefix string   `yaml:"prefix"`
	Names  []string `yaml:"names"`
}

// WatchConfig controls the background pin revalidation sweep.
type WatchConfig struct {
	RevalidateSeconds int `yaml:"revalidate_seconds"`
}

// RevalidateInterval returns the sweep interval as a duration.
func (c *WatchConfig) RevalidateInterval() time.Duration {
	return time.Duration(c.RevalidateSeconds) * time.Second
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RevalidateSeconds, validation.Required, validation.Min(1)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
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

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path:            "./vault",
			ProjectsFolder:  "Projects",
			TemplatesFolder: "Templates",
			ProjectTemplate: "Project.md",
		},
		Lists: ListsConfig{
			NextActions: "Next Actions.md",
			Someday:     "Someday.md",
			Reference:   "Reference.md",
		},
		Headings: HeadingsConfig{
			Actions:    "## Next actions",
			Discussion: "## Discussion",
			References: "## References",
		},
		Defaults: DefaultsConfig{
			Priority: "medium",
			Status:   "active",
		},
		Spheres: SpheresConfig{
			Prefix: "sphere/",
		},
		Watch: WatchConfig{
			RevalidateSeconds: 30,
		},
		SQLite: SQLiteConfig{
			Path: "./raido.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
