package config

import (
	"fmt"
	"strings"
)

// Normalize canonicalizes enumerations and resolves contradictory toggles in
// place, returning a warning per coercion.
func Normalize(cfg *Config) []string {
	var warnings []string

	if cfg.Features.Embeds && !cfg.Features.WikiLinks {
		cfg.Features.Embeds = false
		warnings = append(warnings, "features.embeds requires features.wiki_links, disabling embeds")
	}

	if lvl, ok := logLevelNormalizer.Lookup(string(cfg.Monitoring.Logging.Level)); ok {
		if lvl != cfg.Monitoring.Logging.Level {
			warnings = append(warnings, warnChanged("monitoring.logging.level", cfg.Monitoring.Logging.Level, lvl))
		}
		cfg.Monitoring.Logging.Level = lvl
	} else {
		if cfg.Monitoring.Logging.Level != "" {
			warnings = append(warnings, warnUnknown("monitoring.logging.level", string(cfg.Monitoring.Logging.Level), string(LogLevelInfo)))
		}
		cfg.Monitoring.Logging.Level = LogLevelInfo
	}

	if f, ok := logFormatNormalizer.Lookup(string(cfg.Monitoring.Logging.Format)); ok {
		if f != cfg.Monitoring.Logging.Format {
			warnings = append(warnings, warnChanged("monitoring.logging.format", cfg.Monitoring.Logging.Format, f))
		}
		cfg.Monitoring.Logging.Format = f
	} else {
		if cfg.Monitoring.Logging.Format != "" {
			warnings = append(warnings, warnUnknown("monitoring.logging.format", string(cfg.Monitoring.Logging.Format), string(LogFormatText)))
		}
		cfg.Monitoring.Logging.Format = LogFormatText
	}

	exts := cfg.Markdown.Extensions[:0:0]
	for _, e := range cfg.Markdown.Extensions {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			exts = append(exts, e)
		}
	}
	if cfg.Markdown.Extensions != nil {
		cfg.Markdown.Extensions = exts
	}

	cfg.Vault.URLPrefix = strings.TrimSpace(cfg.Vault.URLPrefix)
	return warnings
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
