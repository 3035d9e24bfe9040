package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Davincible/meshfec/pkg/chunk"
	"github.com/Davincible/meshfec/pkg/gf256"
)

// CodeInfo is the --json output of the info command.
type CodeInfo struct {
	N                   int     `json:"n"`
	K                   int     `json:"k"`
	ErrorsPerBlock      int     `json:"errors_per_block"`
	PrimitivePolynomial string  `json:"primitive_polynomial"`
	GeneratorDegree     int     `json:"generator_degree"`
	ChunkSize           int     `json:"chunk_size"`
	Compression         string  `json:"compression"`
	HeaderBytes         int     `json:"header_bytes"`
	PayloadBytes        int     `json:"payload_bytes"`
	EncodedBytes        int     `json:"encoded_bytes"`
	ExpansionRatio      float64 `json:"expansion_ratio"`
}

func NewInfoCommand() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show code parameters and encoded size estimates",
		Example: `  # Parameters of the default RS(255,223) code
  meshfec info

  # Overhead of a 1 KiB payload with a stronger code
  meshfec info --size 1024 --n 255 --k 191`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size < 0 {
				return fmt.Errorf("size must not be negative (got %d)", size)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			info := CodeInfo{
				N:                   p.codec.N(),
				K:                   p.codec.K(),
				ErrorsPerBlock:      p.manager.ErrorCorrectionCapability(),
				PrimitivePolynomial: fmt.Sprintf("0x%X", p.codec.Field().Polynomial()),
				GeneratorDegree:     gf256.PolyDegree(p.codec.Generator()),
				ChunkSize:           p.manager.ChunkSize(),
				Compression:         cfg.Chunking.Compression,
				HeaderBytes:         chunk.HeaderSize,
				PayloadBytes:        size,
				EncodedBytes:        p.manager.EncodedSize(size),
				ExpansionRatio:      p.manager.ExpansionRatio(size),
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			outputInfoText(cmd, info)
			return nil
		},
	}

	cmd.Flags().IntVarP(&size, "size", "s", 500, "Payload size in bytes for the size estimate")

	return cmd
}

func outputInfoText(cmd *cobra.Command, info CodeInfo) {
	out := cmd.OutOrStdout()
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)

	cyan.Fprintf(out, "RS(%d,%d) over GF(2^8)\n", info.N, info.K)
	fmt.Fprintf(out, "  Primitive polynomial: %s\n", info.PrimitivePolynomial)
	fmt.Fprintf(out, "  Parity bytes:         %d\n", info.GeneratorDegree)
	green.Fprintf(out, "  Corrects:             %d byte errors per block\n", info.ErrorsPerBlock)
	fmt.Fprintln(out)

	cyan.Fprintln(out, "Framing")
	fmt.Fprintf(out, "  Chunk size:           %d bytes\n", info.ChunkSize)
	fmt.Fprintf(out, "  Header:               %d bytes\n", info.HeaderBytes)
	fmt.Fprintf(out, "  Compression:          %s\n", info.Compression)
	fmt.Fprintln(out)

	cyan.Fprintf(out, "Payload of %d bytes\n", info.PayloadBytes)
	fmt.Fprintf(out, "  Encoded size:         %d bytes\n", info.EncodedBytes)
	fmt.Fprintf(out, "  Expansion ratio:      %.3f\n", info.ExpansionRatio)
}
