package service

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
)

// noncePrefixSize is the random prefix of each segment nonce. The remaining
// four bytes hold the big-endian segment counter.
const noncePrefixSize = 8

// SegmentCodec seals and opens payloads as a sequence of independently
// authenticated segments.
//
// The payload is split into fixed-size plaintext segments. Each segment is
// sealed under the same DEK with a nonce formed from an 8-byte random prefix
// and a 4-byte big-endian segment counter, and with AAD that binds the
// document context, the segment index, and a final-segment marker. This gives
// three properties the preview pipeline relies on:
//
//   - segment i can be authenticated and consumed before segment i+1 is read,
//     so no complete plaintext buffer ever needs to exist;
//   - segments cannot be reordered or transplanted between documents (the AAD
//     pins index and context);
//   - the stream cannot be truncated undetected (the last segment must carry
//     the final marker).
//
// The authentication tag of the final segment is detached from the ciphertext
// and stored separately in the document record, so the record's AuthTag field
// covers the end of the stream.
//
// A zero-length payload is sealed as a single empty final segment, so every
// sealed stream has at least one segment.
type SegmentCodec struct {
	aead        AEAD
	segmentSize int
}

// NewSegmentCodec creates a SegmentCodec over the given cipher. A
// non-positive segmentSize falls back to DefaultSegmentSize.
func NewSegmentCodec(aead AEAD, segmentSize int) *SegmentCodec {
	if segmentSize <= 0 {
		segmentSize = cryptoDomain.DefaultSegmentSize
	}
	return &SegmentCodec{aead: aead, segmentSize: segmentSize}
}

// SegmentSize returns the plaintext segment size in bytes.
func (c *SegmentCodec) SegmentSize() int {
	return c.segmentSize
}

// SegmentCount returns the number of segments a payload of the given plaintext
// size seals into. Always at least one.
func (c *SegmentCodec) SegmentCount(plaintextSize int) int {
	if plaintextSize <= 0 {
		return 1
	}
	return (plaintextSize + c.segmentSize - 1) / c.segmentSize
}

// Seal encrypts plaintext as a segment stream bound to contextID.
//
// Returns the concatenated segment ciphertexts (with the final segment's tag
// stripped), the base nonce (random prefix, counter zeroed), and the detached
// final-segment authentication tag.
func (c *SegmentCodec) Seal(plaintext, contextID []byte) (ciphertext, baseNonce, finalTag []byte, err error) {
	return c.SealWithProgress(plaintext, contextID, nil)
}

// SealWithProgress is Seal with a per-segment callback, invoked after each
// segment is sealed with the one-based count of completed segments and the
// total. The callback never sees plaintext.
func (c *SegmentCodec) SealWithProgress(
	plaintext, contextID []byte,
	onSegment func(done, total int),
) (ciphertext, baseNonce, finalTag []byte, err error) {
	n := c.SegmentCount(len(plaintext))
	if int64(n) > int64(math.MaxUint32) {
		return nil, nil, nil, fmt.Errorf("payload requires %d segments, exceeding the counter space", n)
	}

	baseNonce = make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(baseNonce[:noncePrefixSize]); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate nonce prefix: %w", err)
	}

	ciphertext = make([]byte, 0, len(plaintext)+n*c.aead.Overhead())
	for i := 0; i < n; i++ {
		final := i == n-1
		chunk := c.segmentAt(plaintext, i)

		sealed, err := c.aead.EncryptWithNonce(chunk, c.segmentNonce(baseNonce, i), c.segmentAAD(contextID, i, final))
		if err != nil {
			return nil, nil, nil, err
		}

		if final {
			cut := len(sealed) - cryptoDomain.TagSize
			ciphertext = append(ciphertext, sealed[:cut]...)
			finalTag = append([]byte(nil), sealed[cut:]...)
		} else {
			ciphertext = append(ciphertext, sealed...)
		}

		if onSegment != nil {
			onSegment(i+1, n)
		}
	}

	return ciphertext, baseNonce, finalTag, nil
}

// Open decrypts a segment stream in strict index order.
//
// For each segment, the plaintext chunk is authenticated and handed to
// consume, then zeroed as soon as consume returns. The chunk slice is only
// valid for the duration of the call; consumers that need the bytes must copy
// them. Any authentication failure aborts the stream with
// ErrAuthenticationFailed and no further segments are touched. An error from
// consume also aborts the stream and is returned as-is.
func (c *SegmentCodec) Open(
	ciphertext, baseNonce, finalTag, contextID []byte,
	plaintextSize int,
	consume func(index int, chunk []byte) error,
) error {
	if len(baseNonce) != c.aead.NonceSize() || len(finalTag) != cryptoDomain.TagSize {
		return cryptoDomain.ErrAuthenticationFailed
	}

	n := c.SegmentCount(plaintextSize)
	expected := plaintextSize + n*c.aead.Overhead() - cryptoDomain.TagSize
	if len(ciphertext) != expected {
		return cryptoDomain.ErrAuthenticationFailed
	}

	offset := 0
	for i := 0; i < n; i++ {
		final := i == n-1

		segPlainLen := c.segmentSize
		if final {
			segPlainLen = plaintextSize - i*c.segmentSize
		}

		segLen := segPlainLen + c.aead.Overhead()
		storedLen := segLen
		if final {
			storedLen -= cryptoDomain.TagSize
		}

		var sealed []byte
		if final {
			// Reattach the detached tag to the final segment.
			sealed = make([]byte, 0, segLen)
			sealed = append(sealed, ciphertext[offset:offset+storedLen]...)
			sealed = append(sealed, finalTag...)
		} else {
			sealed = ciphertext[offset : offset+storedLen]
		}
		offset += storedLen

		chunk, err := c.aead.Decrypt(sealed, c.segmentNonce(baseNonce, i), c.segmentAAD(contextID, i, final))
		if err != nil {
			return cryptoDomain.ErrAuthenticationFailed
		}

		cerr := consume(i, chunk)
		cryptoDomain.Zero(chunk)
		if cerr != nil {
			return cerr
		}
	}

	return nil
}

// segmentAt returns the i-th plaintext segment.
func (c *SegmentCodec) segmentAt(plaintext []byte, i int) []byte {
	start := i * c.segmentSize
	end := start + c.segmentSize
	if end > len(plaintext) {
		end = len(plaintext)
	}
	if start > len(plaintext) {
		start = len(plaintext)
	}
	return plaintext[start:end]
}

// segmentNonce builds the nonce for segment i: random prefix plus counter.
func (c *SegmentCodec) segmentNonce(baseNonce []byte, i int) []byte {
	nonce := make([]byte, len(baseNonce))
	copy(nonce, baseNonce[:noncePrefixSize])
	binary.BigEndian.PutUint32(nonce[noncePrefixSize:], uint32(i))
	return nonce
}

// segmentAAD builds the AAD for segment i: context, index, final marker.
func (c *SegmentCodec) segmentAAD(contextID []byte, i int, final bool) []byte {
	aad := make([]byte, 0, len(contextID)+5)
	aad = append(aad, contextID...)
	aad = binary.BigEndian.AppendUint32(aad, uint32(i))
	if final {
		aad = append(aad, 1)
	} else {
		aad = append(aad, 0)
	}
	return aad
}
