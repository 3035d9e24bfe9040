// Package chunk adapts the fixed-size Reed-Solomon codec to payloads of
// any length.
//
// A payload is prefixed with a small envelope header (version,
// compression, lengths, checksum), split into chunks of at most k bytes
// and each chunk is encoded into one n-byte codeword. Decoding is all or
// nothing: if any block cannot be repaired the whole payload is dropped,
// since a partial stream is useless to the record parser downstream.
package chunk

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Davincible/meshfec/pkg/reedsolomon"
)

var (
	ErrEmptyInput         = errors.New("chunk: empty input")
	ErrInvalidChunkSize   = errors.New("chunk: invalid chunk size")
	ErrPayloadTooLarge    = errors.New("chunk: payload too large")
	ErrUncorrectableChunk = errors.New("chunk: uncorrectable block")
	ErrMalformedHeader    = errors.New("chunk: malformed envelope header")
	ErrChecksumMismatch   = errors.New("chunk: payload checksum mismatch")
)

// Options tunes a Manager. The zero value selects chunks of k bytes and no
// compression.
type Options struct {
	// ChunkSize is the number of stream bytes placed in each codeword,
	// 1..k. Zero means k.
	ChunkSize int
	// Compression is applied to the payload before framing.
	Compression CompressionTag
	// Logger receives per-block diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Stats describes a successful decode.
type Stats struct {
	Chunks         int
	CorrectedBytes int
}

// Manager splits, encodes, decodes and reassembles payloads. It holds no
// mutable state and is safe for concurrent use.
type Manager struct {
	codec       *reedsolomon.Codec
	chunkSize   int
	compression CompressionTag
	logger      *slog.Logger
}

func NewManager(codec *reedsolomon.Codec, opts Options) (*Manager, error) {
	if codec == nil {
		return nil, errors.New("chunk: nil codec")
	}

	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = codec.K()
	}
	if chunkSize < 1 || chunkSize > codec.K() {
		return nil, fmt.Errorf("%w: %d, must be between 1 and %d", ErrInvalidChunkSize, chunkSize, codec.K())
	}
	if !opts.Compression.valid() {
		return nil, fmt.Errorf("unsupported compression tag: %d", opts.Compression)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Manager{
		codec:       codec,
		chunkSize:   chunkSize,
		compression: opts.Compression,
		logger:      logger,
	}, nil
}

func (m *Manager) Codec() *reedsolomon.Codec { return m.codec }

func (m *Manager) ChunkSize() int { return m.chunkSize }

// ErrorCorrectionCapability returns the number of byte errors each block
// can absorb.
func (m *Manager) ErrorCorrectionCapability() int {
	return m.codec.T()
}

// EncodedSize returns the encoded length of an originalSize-byte payload.
// It is exact without compression and an upper bound with it.
func (m *Manager) EncodedSize(originalSize int) int {
	return m.numChunks(originalSize+HeaderSize) * m.codec.N()
}

// ExpansionRatio returns EncodedSize(originalSize) / originalSize, or 1 for
// an empty payload.
func (m *Manager) ExpansionRatio(originalSize int) float64 {
	if originalSize <= 0 {
		return 1.0
	}
	return float64(m.EncodedSize(originalSize)) / float64(originalSize)
}

func (m *Manager) numChunks(streamLen int) int {
	return (streamLen + m.chunkSize - 1) / m.chunkSize
}

// EncodeWithErrorCorrection frames data and encodes it into a sequence of
// n-byte codewords.
func (m *Manager) EncodeWithErrorCorrection(data []byte) ([]byte, error) {
	if len(data) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d", ErrPayloadTooLarge, len(data), MaxPayloadSize)
	}

	body, tag, err := compress(data, m.compression)
	if err != nil {
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}

	hdr := header{
		version:     headerVersion,
		compression: tag,
		bodyLen:     uint32(len(body)),
		rawLen:      uint32(len(data)),
		checksum:    payloadChecksum(data),
	}

	stream := make([]byte, 0, HeaderSize+len(body))
	stream = append(stream, hdr.marshal()...)
	stream = append(stream, body...)

	chunks := m.numChunks(len(stream))
	out := make([]byte, 0, chunks*m.codec.N())
	for i := 0; i < chunks; i++ {
		start := i * m.chunkSize
		end := min(start+m.chunkSize, len(stream))

		codeword, err := m.codec.Encode(stream[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to encode chunk %d: %w", i, err)
		}
		out = append(out, codeword...)
	}

	m.logger.Debug("payload encoded",
		"payload_bytes", len(data),
		"compression", tag.String(),
		"chunks", chunks,
		"encoded_bytes", len(out))

	return out, nil
}

// DecodeWithErrorCorrection reverses EncodeWithErrorCorrection. On any
// failure it returns (nil, false); there is no partial result.
func (m *Manager) DecodeWithErrorCorrection(encoded []byte) ([]byte, bool) {
	data, _, err := m.Decode(encoded)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Decode is DecodeWithErrorCorrection reporting why decoding failed.
// A short trailing block is zero-padded to n bytes.
func (m *Manager) Decode(encoded []byte) ([]byte, Stats, error) {
	if len(encoded) == 0 {
		return nil, Stats{}, ErrEmptyInput
	}

	n := m.codec.N()
	blocks := (len(encoded) + n - 1) / n

	stats := Stats{Chunks: blocks}
	stream := make([]byte, 0, blocks*m.chunkSize)
	block := make([]byte, n)

	for i := 0; i < blocks; i++ {
		start := i * n
		end := min(start+n, len(encoded))
		clear(block)
		copy(block, encoded[start:end])

		res, err := m.codec.Decode(block)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("failed to decode chunk %d: %w", i, err)
		}
		if !res.OK {
			m.logger.Debug("block uncorrectable", "chunk", i, "chunks", blocks)
			return nil, Stats{}, fmt.Errorf("%w %d of %d: %w", ErrUncorrectableChunk, i, blocks, res.Err())
		}
		if len(res.Corrected) > 0 {
			m.logger.Debug("block repaired", "chunk", i, "positions", res.Corrected)
		}

		stats.CorrectedBytes += len(res.Corrected)
		stream = append(stream, res.Message[:m.chunkSize]...)
	}

	data, err := m.unframe(stream)
	if err != nil {
		return nil, Stats{}, err
	}
	return data, stats, nil
}

// unframe parses the envelope, strips padding and verifies the payload.
func (m *Manager) unframe(stream []byte) ([]byte, error) {
	hdr, err := parseHeader(stream)
	if err != nil {
		return nil, err
	}

	bodyEnd := HeaderSize + int(hdr.bodyLen)
	if bodyEnd > len(stream) {
		return nil, fmt.Errorf("%w: body length %d exceeds stream of %d bytes", ErrMalformedHeader, hdr.bodyLen, len(stream)-HeaderSize)
	}

	data, err := decompress(stream[HeaderSize:bodyEnd], hdr.compression, int(hdr.rawLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}

	if payloadChecksum(data) != hdr.checksum {
		return nil, ErrChecksumMismatch
	}
	return data, nil
}
