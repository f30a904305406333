package config

import (
	stderrors "errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
)

// Load reads the configuration file at path after loading .env files from the
// working directory. The returned warnings describe normalization coercions.
func Load(path string) (*Config, []string, error) {
	if _, err := loadEnvFiles(""); err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryConfig, "load env file").Build()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil, errors.WrapError(err, errors.CategoryConfig, "configuration file not found").
				Fatal().
				WithContext("path", path).
				Build()
		}
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "read config file").
			WithContext("path", path).Build()
	}
	cfg, warnings, err := Parse(data)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, nil, ce.WithContext("path", path)
		}
		return nil, nil, err
	}
	return cfg, warnings, nil
}

// Parse expands environment variables in data and decodes it into a Config
// with defaults applied, normalized and validated.
func Parse(data []byte) (*Config, []string, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	cfg.Version = ""
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryConfig, "invalid configuration YAML").Build()
	}
	if cfg.Version != Version {
		return nil, nil, errors.ConfigError("unsupported configuration version").
			WithContext("version", cfg.Version).
			WithContext("expected", Version).
			Build()
	}

	warnings := Normalize(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, warnings, err
	}
	return cfg, warnings, nil
}
