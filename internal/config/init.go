package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
)

const exampleHeader = `# vaultmark configuration
# Values may reference environment variables ($VAR or ${VAR}); .env and
# .env.local in the working directory are loaded first.
`

// Example returns the configuration written by Init.
func Example() *Config {
	cfg := Default()
	cfg.Vault.CachePath = ".vaultmark.db"
	cfg.Output.Clean = true
	cfg.Attributes.BrokenLinks = map[string]string{"class": "broken-link"}
	cfg.Attributes.Links = map[string]string{"class": "internal-link"}
	cfg.Markdown.Extensions = []string{"gfm", "footnote"}
	cfg.Markdown.Highlight = "github"
	return cfg
}

// Init writes an example configuration to path. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).Build()
	}

	var buf bytes.Buffer
	buf.WriteString(exampleHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Example()); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode example configuration").Build()
	}
	if err := enc.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode example configuration").Build()
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write configuration file").
			WithContext("path", path).Build()
	}
	return nil
}
