package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Davincible/meshfec/internal/validation"
	"github.com/Davincible/meshfec/pkg/chunk"
	"github.com/Davincible/meshfec/pkg/config"
	"github.com/Davincible/meshfec/pkg/reedsolomon"
	"github.com/Davincible/meshfec/pkg/storage"
)

// pipeline is the codec stack a command works with, built from the config
// file and the global flags.
type pipeline struct {
	cfg     *config.Config
	codec   *reedsolomon.Codec
	manager *chunk.Manager
}

// loadConfig reads the config file named by --config (or the default
// location), applies --profile and then the --n/--k overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	profile, _ := cmd.Flags().GetString("profile")

	var (
		cm  *config.ConfigManager
		err error
	)
	if configPath != "" {
		cm, err = config.NewConfigManagerAt(configPath)
	} else {
		cm, err = config.NewConfigManager()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := cm.GetConfig()
	if profile != "" {
		if cfg, err = cfg.WithProfile(profile); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("n") {
		cfg.Codec.N, _ = cmd.Flags().GetInt("n")
	}
	if cmd.Flags().Changed("k") {
		cfg.Codec.K, _ = cmd.Flags().GetInt("k")
	}
	if err := validation.ValidateCodeParams(cfg.Codec.N, cfg.Codec.K); err != nil {
		return nil, fmt.Errorf("invalid code parameters: %w", err)
	}

	if !cfg.Output.UseColor {
		color.NoColor = true
	}
	return cfg, nil
}

// newPipeline validates cfg and builds the codec and chunk manager.
func newPipeline(cfg *config.Config) (*pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, err := reedsolomon.New(cfg.CodecConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create codec: %w", err)
	}

	opts, err := cfg.ChunkOptions(slog.Default().With("component", "chunk"))
	if err != nil {
		return nil, err
	}
	manager, err := chunk.NewManager(codec, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunk manager: %w", err)
	}

	return &pipeline{cfg: cfg, codec: codec, manager: manager}, nil
}

// readInput returns the first positional argument, the contents of
// inputFile, or all of stdin, in that order of preference.
func readInput(cmd *cobra.Command, args []string, inputFile string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case len(args) > 0:
		data = []byte(strings.Join(args, " "))
	case inputFile != "":
		data, err = storage.NewFileStorage(inputFile, 0).Load()
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
	default:
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("input cannot be empty")
	}
	return data, nil
}

// writeOutput writes data to outputFile, or to the command's stdout
// followed by a newline when newline is set.
func writeOutput(cmd *cobra.Command, data []byte, outputFile string, newline bool) error {
	if outputFile != "" {
		if err := storage.NewFileStorage(outputFile, 0644).Save(data); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}

	out := cmd.OutOrStdout()
	if _, err := out.Write(data); err != nil {
		return err
	}
	if newline {
		_, err := io.WriteString(out, "\n")
		return err
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func jsonOutput(cmd *cobra.Command) bool {
	outputJSON, _ := cmd.Flags().GetBool("json")
	return outputJSON
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// status prints a colored progress line to stderr so stdout stays clean
// for payload data.
func status(cmd *cobra.Command, attr color.Attribute, format string, args ...any) {
	color.New(attr).Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
