package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/autoimport/pkg/config"
)

// Output formats of the config command.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

const yamlIndent = 2

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown format")

// NewConfigCommand creates the command that prints the effective
// configuration.
func NewConfigCommand() *cobra.Command {
	var (
		format     string
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "config [dir]",
		Short: "Print the effective configuration",
		Long: `Print the configuration autoimport would use for dir (default: the
working directory): built-in defaults, the nearest pyproject.toml or the
--config-file, and AUTOIMPORT_ environment overrides.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile, configStart(args))
			if err != nil {
				return err
			}

			return writeSettings(cmd.OutOrStdout(), cfg, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatYAML, "Output format: yaml, json")
	cmd.Flags().StringVar(&configFile, "config-file", "", "Config file (default: nearest pyproject.toml)")

	return cmd
}

func writeSettings(w io.Writer, cfg *config.Config, format string) error {
	settings := cfg.Settings()

	switch format {
	case FormatYAML:
		if cfg.Path() != "" {
			fmt.Fprintf(w, "# source: %s\n", cfg.Path())
		}

		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)

		if err := enc.Encode(settings); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(settings); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
