package cli

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Davincible/meshfec/internal/validation"
)

// DecodeResult is the --json output of the decode command.
type DecodeResult struct {
	Payload        string `json:"payload,omitempty"`
	PayloadBase64  string `json:"payload_base64"`
	PayloadBytes   int    `json:"payload_bytes"`
	Blocks         int    `json:"blocks"`
	CorrectedBytes int    `json:"corrected_bytes"`
}

func NewDecodeCommand() *cobra.Command {
	var (
		inputFile  string
		outputFile string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "decode [encoded]",
		Short: "Repair and reassemble an encoded payload",
		Long: `Decode a stream produced by 'meshfec encode', correcting up to
(n-k)/2 corrupted bytes in every block.

Decoding is all or nothing: if any block has more errors than the code
can repair, no payload is written and the command exits non-zero.`,
		Example: `  # Decode base64 from the arguments
  meshfec decode "AQAAAAAY..."

  # Decode a raw stream from a file
  meshfec decode -i report.fec --format raw -o report.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			input, err := readInput(cmd, args, inputFile)
			if err != nil {
				return err
			}
			encoded, err := validation.ParseEncoded(input, format)
			if err != nil {
				return err
			}

			payload, stats, err := p.manager.Decode(encoded)
			if err != nil {
				return fmt.Errorf("failed to decode payload: %w", err)
			}

			if jsonOutput(cmd) {
				result := DecodeResult{
					PayloadBase64:  base64.StdEncoding.EncodeToString(payload),
					PayloadBytes:   len(payload),
					Blocks:         stats.Chunks,
					CorrectedBytes: stats.CorrectedBytes,
				}
				if utf8.Valid(payload) {
					result.Payload = string(payload)
				}
				return writeJSON(cmd.OutOrStdout(), result)
			}

			if err := writeOutput(cmd, payload, outputFile, false); err != nil {
				return err
			}

			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose || outputFile != "" {
				attr := color.FgGreen
				if stats.CorrectedBytes > 0 {
					attr = color.FgYellow
				}
				status(cmd, attr, "Recovered %d bytes from %d blocks, corrected %d byte errors",
					len(payload), stats.Chunks, stats.CorrectedBytes)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read the encoded stream from a file")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the payload to a file")
	cmd.Flags().StringVarP(&format, "format", "f", "auto", "Input format: auto, base64, hex or raw")

	return cmd
}
