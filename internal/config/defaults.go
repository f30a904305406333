package config

import (
	"time"

	"git.home.luguber.info/inful/vaultmark/internal/embed"
	"git.home.luguber.info/inful/vaultmark/internal/retry"
)

const (
	defaultRoot           = "./vault"
	defaultOutput         = "./site"
	defaultWorkers        = 4
	defaultDebounce       = 300 * time.Millisecond
	defaultRescanInterval = 10 * time.Minute
	defaultMetricsAddress = ":9464"
	defaultEventSubject   = "vaultmark.builds"
)

// Default returns a configuration with every default applied. Parse decodes
// the file on top of it, so omitted keys keep these values.
func Default() *Config {
	return &Config{
		Version: Version,
		Vault:   VaultConfig{Root: defaultRoot},
		Features: FeaturesConfig{
			WikiLinks:     true,
			Embeds:        true,
			Callouts:      true,
			MaxEmbedDepth: embed.DefaultMaxDepth,
		},
		Markdown: MarkdownConfig{Extensions: []string{"gfm"}},
		Output:   OutputConfig{Directory: defaultOutput},
		Build:    BuildConfig{Workers: defaultWorkers},
		Watch: WatchConfig{
			Debounce:       defaultDebounce,
			RescanInterval: defaultRescanInterval,
		},
		Monitoring: MonitoringConfig{
			Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		},
		Events: EventsConfig{Retry: defaultRetry()},
	}
}

func defaultRetry() RetryConfig {
	p := retry.DefaultPolicy()
	return RetryConfig{Backoff: p.Mode, Initial: p.Initial, Max: p.Max, MaxRetries: p.MaxRetries}
}

// applyDefaults fills zero values an explicit file entry may have left.
func applyDefaults(cfg *Config) {
	if cfg.Vault.Root == "" {
		cfg.Vault.Root = defaultRoot
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = defaultOutput
	}
	if cfg.Features.MaxEmbedDepth == 0 {
		cfg.Features.MaxEmbedDepth = embed.DefaultMaxDepth
	}
	if cfg.Build.Workers == 0 {
		cfg.Build.Workers = defaultWorkers
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = defaultDebounce
	}
	if cfg.Monitoring.Metrics.Enabled && cfg.Monitoring.Metrics.Address == "" {
		cfg.Monitoring.Metrics.Address = defaultMetricsAddress
	}
	if cfg.Events.NATSURL != "" && cfg.Events.Subject == "" {
		cfg.Events.Subject = defaultEventSubject
	}
}
