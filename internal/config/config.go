// Package config loads the vaultmark YAML configuration: environment files,
// variable expansion, defaults, normalization and validation.
package config

import (
	"time"

	"git.home.luguber.info/inful/vaultmark/internal/retry"
)

// Version is the only configuration version this build understands.
const Version = "1"

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "vaultmark.yaml"

// Config is the root of the configuration file.
type Config struct {
	Version    string           `yaml:"version"`
	Vault      VaultConfig      `yaml:"vault"`
	Features   FeaturesConfig   `yaml:"features"`
	Attributes AttributesConfig `yaml:"attributes,omitempty"`
	Callouts   CalloutsConfig   `yaml:"callouts,omitempty"`
	Markdown   MarkdownConfig   `yaml:"markdown"`
	Output     OutputConfig     `yaml:"output"`
	Build      BuildConfig      `yaml:"build"`
	Watch      WatchConfig      `yaml:"watch"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Events     EventsConfig     `yaml:"events,omitempty"`
}

// VaultConfig locates the notes.
type VaultConfig struct {
	Root      string `yaml:"root"`
	URLPrefix string `yaml:"url_prefix,omitempty"`
	// CachePath is the SQLite file holding image dimensions and output
	// fingerprints. Empty disables the cache.
	CachePath string `yaml:"cache_path,omitempty"`
}

// FeaturesConfig toggles the three transforms.
type FeaturesConfig struct {
	WikiLinks     bool `yaml:"wiki_links"`
	Embeds        bool `yaml:"embeds"`
	Callouts      bool `yaml:"callouts"`
	MaxEmbedDepth int  `yaml:"max_embed_depth"`
}

// AttributesConfig holds extra HTML attributes per generated node category.
type AttributesConfig struct {
	BrokenLinks map[string]string      `yaml:"broken_links,omitempty"`
	Links       map[string]string      `yaml:"links,omitempty"`
	ImageLinks  map[string]string      `yaml:"image_links,omitempty"`
	ImageEmbeds map[string]string      `yaml:"image_embeds,omitempty"`
	Callouts    CalloutAttributeConfig `yaml:"callouts,omitempty"`
}

// CalloutAttributeConfig holds the attribute bags of each callout part.
type CalloutAttributeConfig struct {
	Container map[string]string `yaml:"container,omitempty"`
	Icon      map[string]string `yaml:"icon,omitempty"`
	Title     map[string]string `yaml:"title,omitempty"`
	Collapse  map[string]string `yaml:"collapse,omitempty"`
}

// CalloutsConfig customizes callout rendering.
type CalloutsConfig struct {
	// Icons map a callout type to SVG markup, merged over the defaults.
	Icons map[string]string `yaml:"icons,omitempty"`
}

// MarkdownConfig configures the goldmark engine.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions"`
	UnsafeHTML bool     `yaml:"unsafe_html"`
	HardWraps  bool     `yaml:"hard_wraps"`
	// Highlight names a chroma style for fenced code blocks, e.g. "github".
	Highlight string `yaml:"highlight,omitempty"`
}

// OutputConfig controls the generated site.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
	// PageTemplate is an optional html/template file wrapping every page.
	PageTemplate string `yaml:"page_template,omitempty"`
}

// BuildConfig tunes batch runs.
type BuildConfig struct {
	Workers int `yaml:"workers"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce       time.Duration `yaml:"debounce"`
	RescanInterval time.Duration `yaml:"rescan_interval"`
}

// MonitoringConfig covers logging and metrics.
type MonitoringConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint served in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address,omitempty"`
}

// EventsConfig enables build event publishing over NATS.
type EventsConfig struct {
	NATSURL string      `yaml:"nats_url,omitempty"`
	Subject string      `yaml:"subject,omitempty"`
	Retry   RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig controls how failed event publishes are retried.
type RetryConfig struct {
	Backoff    retry.Mode    `yaml:"backoff"`
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
	MaxRetries int           `yaml:"max_retries"`
}

// Policy converts the settings into a retry policy.
func (r RetryConfig) Policy() retry.Policy {
	return retry.NewPolicy(r.Backoff, r.Initial, r.Max, r.MaxRetries)
}
