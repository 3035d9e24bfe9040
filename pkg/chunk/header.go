package chunk

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const (
	// HeaderSize is the number of envelope bytes in front of every payload.
	HeaderSize = 14

	headerVersion = 1
	checksumSize  = 4

	// MaxPayloadSize bounds the raw payload length an envelope may claim.
	MaxPayloadSize = 64 << 20
)

// header is the envelope written in front of the payload before it is
// split into chunks. It carries the real payload length, so zero padding
// in the last block is never mistaken for data.
//
//	offset 0  version
//	offset 1  compression tag
//	offset 2  body length (uint32, big endian)
//	offset 6  raw payload length (uint32, big endian)
//	offset 10 BLAKE2b-256(raw payload)[:4]
type header struct {
	version     uint8
	compression CompressionTag
	bodyLen     uint32
	rawLen      uint32
	checksum    [checksumSize]byte
}

func (h header) marshal() []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.version
	buf[1] = byte(h.compression)
	binary.BigEndian.PutUint32(buf[2:6], h.bodyLen)
	binary.BigEndian.PutUint32(buf[6:10], h.rawLen)
	copy(buf[10:], h.checksum[:])
	return buf
}

func parseHeader(buf []byte) (header, error) {
	if len(buf) < HeaderSize {
		return header{}, fmt.Errorf("%w: %d bytes, need %d", ErrMalformedHeader, len(buf), HeaderSize)
	}

	h := header{
		version:     buf[0],
		compression: CompressionTag(buf[1]),
		bodyLen:     binary.BigEndian.Uint32(buf[2:6]),
		rawLen:      binary.BigEndian.Uint32(buf[6:10]),
	}
	copy(h.checksum[:], buf[10:HeaderSize])

	if h.version != headerVersion {
		return header{}, fmt.Errorf("%w: unsupported version %d", ErrMalformedHeader, h.version)
	}
	if !h.compression.valid() {
		return header{}, fmt.Errorf("%w: unknown compression tag %d", ErrMalformedHeader, h.compression)
	}
	if h.rawLen > MaxPayloadSize {
		return header{}, fmt.Errorf("%w: payload length %d exceeds %d", ErrMalformedHeader, h.rawLen, MaxPayloadSize)
	}
	if h.compression == CompressionNone && h.bodyLen != h.rawLen {
		return header{}, fmt.Errorf("%w: body length %d differs from payload length %d", ErrMalformedHeader, h.bodyLen, h.rawLen)
	}
	return h, nil
}

func payloadChecksum(data []byte) [checksumSize]byte {
	sum := blake2b.Sum256(data)
	var out [checksumSize]byte
	copy(out[:], sum[:checksumSize])
	return out
}
