// Package project locates and loads f90norm.toml, the per-tree
// configuration. File values fill in whatever the command line leaves
// unset; a missing file just means defaults.
package project

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config mirrors f90norm.toml.
type Config struct {
	Normalize NormalizeConfig `toml:"normalize"`
	Files     FilesConfig     `toml:"files"`
}

// NormalizeConfig is the [normalize] section.
type NormalizeConfig struct {
	Width        int  `toml:"width"`
	ImplicitNone bool `toml:"implicit-none"`
	MergeDecls   bool `toml:"merge-decls"`
}

// FilesConfig is the [files] section.
type FilesConfig struct {
	Extensions []string `toml:"extensions"`
	Include    []string `toml:"include"`
	Exclude    []string `toml:"exclude"`
}

// Default returns the configuration used when no f90norm.toml exists.
func Default() Config {
	return Config{
		Normalize: NormalizeConfig{Width: 80},
		Files: FilesConfig{
			Extensions: []string{".f90", ".f95", ".f03", ".f08"},
		},
	}
}

// Load parses the config file at path over Default, so absent keys keep
// their default values. Unknown keys and out-of-range values are errors:
// a config that silently does nothing is worse than no config.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if und := meta.Undecoded(); len(und) > 0 {
		return Config{}, fmt.Errorf("%s: unknown config key %q", path, und[0].String())
	}
	if meta.IsDefined("normalize", "width") && cfg.Normalize.Width <= 0 {
		return Config{}, fmt.Errorf("%s: [normalize].width must be positive, got %d",
			path, cfg.Normalize.Width)
	}
	return cfg, nil
}

// LoadFromDir finds the config governing startDir and loads it. Without a
// config file it returns Default and an empty path.
func LoadFromDir(startDir string) (Config, string, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}
