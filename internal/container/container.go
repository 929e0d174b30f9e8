package container

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrFormat marks a malformed or truncated container.
var ErrFormat = errors.New("container format error")

const (
	headerSize = 12
	// keyMask is the constant the header seed is XORed with before being
	// truncated to the single cipher byte. Bit-exact; do not change.
	keyMask = 0xFFFEA4C8
	// paddingSize is the undocumented region discarded from the front of
	// the inflated payload.
	paddingSize = 512
)

// Decode converts raw container bytes into plaintext script source.
func Decode(raw []byte) (string, error) {
	if len(raw) < headerSize {
		return "", fmt.Errorf("%w: header truncated (%d bytes)", ErrFormat, len(raw))
	}
	keySeed := binary.LittleEndian.Uint32(raw[0:4])
	payloadSize := binary.LittleEndian.Uint32(raw[4:8])
	// raw[8:12] is reserved and ignored.

	key := EffectiveKey(keySeed)

	body := raw[headerSize:]
	if uint64(len(body)) < uint64(payloadSize) {
		return "", fmt.Errorf("%w: payload declares %d bytes, %d available", ErrFormat, payloadSize, len(body))
	}
	cipher := body[:payloadSize]
	plain := make([]byte, len(cipher))
	for i, b := range cipher {
		plain[i] = b ^ key
	}

	zr, err := zlib.NewReader(bytes.NewReader(plain))
	if err != nil {
		return "", fmt.Errorf("%w: inflate: %v", ErrFormat, err)
	}
	defer zr.Close()
	inflated, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("%w: inflate: %v", ErrFormat, err)
	}
	if len(inflated) < paddingSize {
		return "", fmt.Errorf("%w: inflated payload shorter than padding (%d bytes)", ErrFormat, len(inflated))
	}
	text := inflated[paddingSize:]
	if !utf8.Valid(text) {
		return "", fmt.Errorf("%w: script text is not valid UTF-8", ErrFormat)
	}
	return string(text), nil
}

// EffectiveKey derives the single-byte stream cipher key from the header seed.
func EffectiveKey(seed uint32) byte {
	return byte((seed ^ keyMask) & 0xFF)
}
