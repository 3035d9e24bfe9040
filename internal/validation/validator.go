package validation

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Input formats recognised by DetectFormat.
const (
	FormatHex     = "hex"
	FormatBase64  = "base64"
	FormatRaw     = "raw"
	FormatUnknown = "unknown"
)

var (
	hexPattern    = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

func ValidateHex(input string) error {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return fmt.Errorf("hex string cannot be empty")
	}

	if len(input)%2 != 0 {
		return fmt.Errorf("hex string must have even length")
	}

	if !hexPattern.MatchString(input) {
		return fmt.Errorf("invalid hex characters")
	}

	return nil
}

func ValidateBase64(input string) error {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return fmt.Errorf("base64 string cannot be empty")
	}

	if len(input)%4 != 0 {
		return fmt.Errorf("base64 string length must be a multiple of 4")
	}

	if !base64Pattern.MatchString(input) {
		return fmt.Errorf("invalid base64 characters")
	}

	return nil
}

// SanitizeInput trims the input and removes the line breaks and spaces
// that copying an encoded block out of a terminal or chat tends to add.
func SanitizeInput(input string) string {
	return spacePattern.ReplaceAllString(strings.TrimSpace(input), "")
}

// DetectFormat reports whether text-encoded input is hex or base64. Hex is
// tried first: every hex string is also base64-shaped, while base64 of a
// codeword practically never consists of hex digits only.
func DetectFormat(input string) string {
	input = SanitizeInput(input)

	if ValidateHex(input) == nil {
		return FormatHex
	}
	if ValidateBase64(input) == nil {
		return FormatBase64
	}
	return FormatUnknown
}

// ParseEncoded turns encoded CLI input back into bytes. Format may be
// "auto" to detect hex or base64. Raw input is returned unchanged.
func ParseEncoded(input []byte, format string) ([]byte, error) {
	if format == FormatRaw {
		if len(input) == 0 {
			return nil, fmt.Errorf("input cannot be empty")
		}
		return input, nil
	}

	text := SanitizeInput(string(input))
	if format == "auto" || format == "" {
		format = DetectFormat(text)
	}

	switch format {
	case FormatHex:
		if err := ValidateHex(text); err != nil {
			return nil, fmt.Errorf("invalid hex input: %w", err)
		}
		return hex.DecodeString(text)
	case FormatBase64:
		if err := ValidateBase64(text); err != nil {
			return nil, fmt.Errorf("invalid base64 input: %w", err)
		}
		data, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 input: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unrecognised input format, expected hex or base64")
	}
}

// FormatEncoded is the inverse of ParseEncoded for the hex and base64
// formats; raw bytes pass through.
func FormatEncoded(data []byte, format string) ([]byte, error) {
	switch format {
	case FormatHex:
		return []byte(hex.EncodeToString(data)), nil
	case FormatBase64:
		return []byte(base64.StdEncoding.EncodeToString(data)), nil
	case FormatRaw:
		return data, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want base64, hex or raw)", format)
	}
}

// ValidateCodeParams checks (n, k) before a codec is built so the CLI can
// report flag mistakes in flag terms.
func ValidateCodeParams(n, k int) error {
	if n < 1 || n > 255 {
		return fmt.Errorf("n must be between 1 and 255 (got %d)", n)
	}

	if k < 1 || k > n {
		return fmt.Errorf("k must be between 1 and %d (got %d)", n, k)
	}

	if (n-k)%2 != 0 {
		return fmt.Errorf("n-k must be even (got %d)", n-k)
	}

	return nil
}

func ValidateSimulationParams(errorsPerBlock, trials, n int) error {
	if errorsPerBlock < 0 || errorsPerBlock > n {
		return fmt.Errorf("errors must be between 0 and %d (got %d)", n, errorsPerBlock)
	}

	if trials < 1 {
		return fmt.Errorf("trials must be positive (got %d)", trials)
	}

	return nil
}
