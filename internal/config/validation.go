package config

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/vaultmark/internal/callout"
	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
	"git.home.luguber.info/inful/vaultmark/internal/markdown"
)

// Validate checks a normalized configuration with defaults applied.
func Validate(cfg *Config) error {
	checks := []func(*Config) error{
		validateFeatures,
		validateMarkdown,
		validateCallouts,
		validatePaths,
		validateRuntime,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateFeatures(cfg *Config) error {
	if cfg.Features.MaxEmbedDepth < 1 {
		return errors.ValidationError("features.max_embed_depth must be at least 1").
			WithContext("max_embed_depth", cfg.Features.MaxEmbedDepth).Build()
	}
	return nil
}

func validateMarkdown(cfg *Config) error {
	for _, ext := range cfg.Markdown.Extensions {
		if !markdown.KnownExtension(ext) {
			return errors.ValidationError("unknown markdown extension").
				WithContext("extension", ext).Build()
		}
	}
	if h := cfg.Markdown.Highlight; h != "" && !markdown.KnownStyle(h) {
		return errors.ValidationError("unknown markdown.highlight style").
			WithContext("style", h).Build()
	}
	return nil
}

func validateCallouts(cfg *Config) error {
	if strings.TrimSpace(callout.MergeIcons(cfg.Callouts.Icons)["note"]) == "" {
		return errors.ValidationError("callouts.icons must keep a non-empty note icon").Build()
	}
	return nil
}

func validatePaths(cfg *Config) error {
	root, err := filepath.Abs(cfg.Vault.Root)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid vault.root").Build()
	}
	out, err := filepath.Abs(cfg.Output.Directory)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid output.directory").Build()
	}
	if root == out {
		return errors.ValidationError("output.directory must differ from vault.root").
			WithContext("directory", cfg.Output.Directory).Build()
	}
	if cfg.Output.Clean {
		if rel, err := filepath.Rel(out, root); err == nil && !strings.HasPrefix(rel, "..") {
			return errors.ValidationError("output.clean would remove the vault").
				WithContext("directory", cfg.Output.Directory).Build()
		}
	}
	return nil
}

func validateRuntime(cfg *Config) error {
	if cfg.Build.Workers < 1 {
		return errors.ValidationError("build.workers must be at least 1").
			WithContext("workers", cfg.Build.Workers).Build()
	}
	if cfg.Watch.Debounce < 0 {
		return errors.ValidationError("watch.debounce must not be negative").Build()
	}
	if cfg.Watch.RescanInterval < 0 {
		return errors.ValidationError("watch.rescan_interval must not be negative").Build()
	}
	if r := cfg.Events.Retry; r.Backoff != "" && !r.Backoff.Valid() {
		return errors.ValidationError("unknown events.retry.backoff").
			WithContext("backoff", string(r.Backoff)).Build()
	}
	if cfg.Events.Retry.MaxRetries < 0 {
		return errors.ValidationError("events.retry.max_retries must not be negative").Build()
	}
	return nil
}
