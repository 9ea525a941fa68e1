// Package config loads the TOML configuration shared by the search commands.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch"
	"github.com/letmevibethatforyou/sitesearch/graphql"
	"github.com/letmevibethatforyou/sitesearch/render"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed config.toml.sample
var configTemplate string

type Config struct {
	Language  string            `toml:"language"`
	Endpoint  EndpointConfig    `toml:"endpoint"`
	Operation OperationConfig   `toml:"operation"`
	Widget    WidgetConfig      `toml:"widget"`
	Labels    map[string]string `toml:"labels,omitempty"`
}

type EndpointConfig struct {
	StagingURL     string   `toml:"staging_url"`
	NonProdMarkers []string `toml:"non_prod_markers"`
	ProductionURL  string   `toml:"production_url,omitempty"`
	Timeout        Duration `toml:"timeout"`
}

type OperationConfig struct {
	Name  string `toml:"name"`
	Field string `toml:"field"`
}

type WidgetConfig struct {
	ResetOffset bool     `toml:"reset_offset"`
	PushHistory bool     `toml:"push_history"`
	SortOptions []string `toml:"sort_options"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Language: "en",
		Endpoint: EndpointConfig{
			StagingURL:     graphql.DefaultStagingURL,
			NonProdMarkers: append([]string{}, graphql.DefaultNonProdMarkers...),
			Timeout:        Duration{10 * time.Second},
		},
		Operation: OperationConfig{
			Name:  graphql.DefaultOperationName,
			Field: graphql.DefaultResultField,
		},
		Widget: WidgetConfig{
			SortOptions: []string{
				string(sitesearch.SortBestMatch),
				string(sitesearch.SortLastModified),
				string(sitesearch.SortTitle),
			},
		},
	}
}

// Load reads path. A missing file yields Default; fields left out of the
// file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that cannot fall back to a default.
func (c *Config) Validate() error {
	if _, err := c.LanguageTag(); err != nil {
		return err
	}
	if c.Endpoint.StagingURL == "" {
		return errors.New("endpoint.staging_url is empty")
	}
	if c.Operation.Name == "" || c.Operation.Field == "" {
		return errors.New("operation.name and operation.field are required")
	}
	return nil
}

// Save writes c to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	return os.WriteFile(path, data, 0644)
}

// SaveTemplate writes the commented sample configuration to path.
func SaveTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}

// LanguageTag parses Language.
func (c *Config) LanguageTag() (language.Tag, error) {
	if c.Language == "" {
		return language.English, nil
	}
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Und, errors.Wrapf(err, "invalid language %q", c.Language)
	}
	return tag, nil
}

// Environment returns the endpoint selection rules.
func (c *Config) Environment() graphql.Environment {
	return graphql.Environment{
		StagingURL:     c.Endpoint.StagingURL,
		NonProdMarkers: c.Endpoint.NonProdMarkers,
		ProductionURL:  c.Endpoint.ProductionURL,
	}
}

// GraphQLOperation returns the configured operation.
func (c *Config) GraphQLOperation() graphql.Operation {
	return graphql.NewOperation(c.Operation.Name, c.Operation.Field)
}

// SortKeys returns the sort options offered to users, normalized.
func (c *Config) SortKeys() []sitesearch.SortKey {
	keys := make([]sitesearch.SortKey, 0, len(c.Widget.SortOptions))
	for _, raw := range c.Widget.SortOptions {
		keys = append(keys, sitesearch.ParseSortKey(raw))
	}
	return keys
}

// RenderLabels returns the default labels with the file's overrides applied.
func (c *Config) RenderLabels() render.LabelMap {
	return render.DefaultLabels().Merge(c.Labels)
}
