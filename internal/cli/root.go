package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// LogLevel is the level of the process-wide slog handler. It starts at
// warn and is lowered to debug by --verbose.
var LogLevel = new(slog.LevelVar)

func init() {
	LogLevel.Set(slog.LevelWarn)
}

// NewRootCommand assembles the meshfec command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "meshfec",
		Short: "Reed-Solomon forward error correction for mesh radio payloads",
		Long: `meshfec protects payloads sent over lossy mesh radio links with a
systematic Reed-Solomon code over GF(2^8).

Payloads of any length are framed with a length header, split into
chunks of at most k bytes and encoded into n-byte blocks. Each block
repairs up to (n-k)/2 corrupted bytes; a payload is only returned when
every block decodes.

The default RS(255,223) code corrects 16 byte errors per block.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				LogLevel.Set(slog.LevelDebug)
			}
		},
	}

	rootCmd.AddCommand(
		NewEncodeCommand(),
		NewDecodeCommand(),
		NewInfoCommand(),
		NewSimulateCommand(),
		NewConfigCommand(),
	)

	rootCmd.PersistentFlags().String("config", "", "Config file (default $MESHFEC_CONFIG or ~/.config/meshfec/config.yaml)")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "Named codec profile from the config file")
	rootCmd.PersistentFlags().Int("n", 0, "Codeword length in bytes (overrides config)")
	rootCmd.PersistentFlags().Int("k", 0, "Message bytes per codeword (overrides config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")

	return rootCmd
}
