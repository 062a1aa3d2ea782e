// Package config provides configuration loading and validation for autoimport.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrInvalidCommonStatement = errors.New("invalid common statement")
	ErrInvalidMaxFileSize     = errors.New("invalid max file size")
)

// Config file names and keys.
const (
	PyprojectFile = "pyproject.toml"
	EnvPrefix     = "AUTOIMPORT"

	keyCommonStatements  = "common_statements"
	keyDisableMoveToTop  = "disable_move_to_top"
	keyKeepUnusedImports = "keep_unused_imports"
	keyIgnoreInitModules = "ignore_init_modules"
	keyPythonPath        = "python_path"
	keyMaxFileSize       = "max_file_size"
)

var statementPattern = regexp.MustCompile(`^\s*(?:from\s+\S+\s+)?import\s+\S`)

// Settings is the serializable form of the configuration.
type Settings struct {
	CommonStatements  map[string]string `mapstructure:"common_statements"   json:"common_statements"   yaml:"common_statements"`
	PythonPath        []string          `mapstructure:"python_path"         json:"python_path"         yaml:"python_path"`
	MaxFileSize       string            `mapstructure:"max_file_size"       json:"max_file_size"       yaml:"max_file_size"       jsonschema:"string|integer"`
	DisableMoveToTop  bool              `mapstructure:"disable_move_to_top" json:"disable_move_to_top" yaml:"disable_move_to_top"`
	KeepUnusedImports bool              `mapstructure:"keep_unused_imports" json:"keep_unused_imports" yaml:"keep_unused_imports"`
	IgnoreInitModules bool              `mapstructure:"ignore_init_modules" json:"ignore_init_modules" yaml:"ignore_init_modules"`
}

// Config is the effective configuration. It is read-only once loaded.
type Config struct {
	settings    Settings
	path        string
	maxFileSize uint64
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		settings: Settings{
			CommonStatements: DefaultCommonStatements(),
			MaxFileSize:      DefaultMaxFileSize,
		},
		maxFileSize: defaultMaxFileSizeBytes,
	}
}

// Path returns the file the configuration was read from, or "".
func (c *Config) Path() string { return c.path }

// CommonStatements returns the defaults merged with the configured table.
func (c *Config) CommonStatements() map[string]string {
	return maps.Clone(c.settings.CommonStatements)
}

// MoveToTop reports whether body imports are relocated.
func (c *Config) MoveToTop() bool { return !c.settings.DisableMoveToTop }

// KeepUnused reports whether unused imports are kept.
func (c *Config) KeepUnused() bool { return c.settings.KeepUnusedImports }

// IgnoreInitModules reports whether __init__.py files are skipped.
func (c *Config) IgnoreInitModules() bool { return c.settings.IgnoreInitModules }

// PythonPath returns the extra module search directories.
func (c *Config) PythonPath() []string { return slices.Clone(c.settings.PythonPath) }

// MaxFileSize returns the size limit in bytes for processed files.
func (c *Config) MaxFileSize() uint64 { return c.maxFileSize }

// Settings returns a copy of the effective settings.
func (c *Config) Settings() Settings {
	out := c.settings
	out.CommonStatements = maps.Clone(c.settings.CommonStatements)
	out.PythonPath = slices.Clone(c.settings.PythonPath)

	return out
}

// FindPyproject returns the nearest pyproject.toml at or above start.
func FindPyproject(start string) (string, bool) {
	for dir := start; ; {
		candidate := filepath.Join(dir, PyprojectFile)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}

		dir = parent
	}
}

// LoadConfig loads the configuration. An explicit configPath must exist;
// otherwise the nearest pyproject.toml above startDir is used when present.
// Environment variables prefixed with AUTOIMPORT_ override file values.
func LoadConfig(configPath, startDir string) (*Config, error) {
	path := configPath
	if path == "" {
		path, _ = FindPyproject(startDir)
	}

	section := map[string]any{}

	if path != "" {
		var err error

		section, err = readSection(path)
		if err != nil {
			return nil, err
		}

		if err := validateSchema(section); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	viperCfg := viper.New()

	setDefaults(viperCfg)

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Viper folds map keys to lower case, so the statements table bypasses it.
	statements, _ := section[keyCommonStatements].(map[string]any)
	delete(section, keyCommonStatements)

	if err := viperCfg.MergeConfigMap(section); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	var settings Settings

	if err := viperCfg.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	settings.CommonStatements = DefaultCommonStatements()
	for name, statement := range statements {
		text, _ := statement.(string)
		settings.CommonStatements[name] = text
	}

	cfg := &Config{settings: settings, path: path}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// readSection decodes path and returns its autoimport table: tool.autoimport
// when present, otherwise the top level of a dedicated file.
func readSection(path string) (map[string]any, error) {
	var raw map[string]any

	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if tool, ok := raw["tool"].(map[string]any); ok {
		if section, found := tool["autoimport"].(map[string]any); found {
			return section, nil
		}
	}

	if filepath.Base(path) == PyprojectFile {
		return map[string]any{}, nil
	}

	delete(raw, "tool")

	return raw, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault(keyDisableMoveToTop, false)
	viperCfg.SetDefault(keyKeepUnusedImports, false)
	viperCfg.SetDefault(keyIgnoreInitModules, false)
	viperCfg.SetDefault(keyPythonPath, []string{})
	viperCfg.SetDefault(keyMaxFileSize, DefaultMaxFileSize)
}

func (c *Config) validate() error {
	size, err := humanize.ParseBytes(c.settings.MaxFileSize)
	if err != nil || size == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, c.settings.MaxFileSize)
	}

	c.maxFileSize = size

	for _, name := range slices.Sorted(maps.Keys(c.settings.CommonStatements)) {
		if !statementPattern.MatchString(c.settings.CommonStatements[name]) {
			return fmt.Errorf("%w: %s = %q", ErrInvalidCommonStatement, name, c.settings.CommonStatements[name])
		}
	}

	return nil
}
