package domain

// Algorithm represents the authenticated encryption algorithm used for a payload.
//
// All supported algorithms provide Authenticated Encryption with Associated Data
// (AEAD), ensuring both confidentiality and authenticity. AEAD prevents both
// unauthorized reading of and undetected tampering with encrypted data, which is
// the property the whole preview pipeline depends on: a segment that fails
// authentication is never rendered.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	//
	// Key features:
	//   - 256-bit key size
	//   - 12-byte nonce (96 bits)
	//   - 16-byte authentication tag
	//   - Hardware acceleration on CPUs with AES-NI
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	//
	// Key features:
	//   - 256-bit key size
	//   - 12-byte nonce (96 bits)
	//   - 16-byte authentication tag
	//   - Constant-time software implementation, no AES-NI required
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the required size in bytes for all symmetric keys (master keys and
// DEKs). Both supported algorithms use 256-bit keys.
const KeySize = 32

// TagSize is the authentication tag size in bytes for both supported algorithms.
const TagSize = 16

// DefaultSegmentSize is the plaintext segment size used for segmented payload
// encryption. Each segment is sealed and authenticated independently so that
// preview decryption can verify segment i before segment i+1 is touched.
const DefaultSegmentSize = 64 * 1024

// KDFAlgorithm identifies the password-based key derivation function used to
// derive a master key from a user secret.
type KDFAlgorithm string

const (
	// PBKDF2SHA256 is PBKDF2 with HMAC-SHA-256, followed by an HKDF expand step
	// that binds the derived key to its purpose label.
	PBKDF2SHA256 KDFAlgorithm = "pbkdf2-sha256-hkdf"
)

// MinPBKDF2Iterations is the floor for the server-advertised iteration count.
// A provider advertising fewer iterations is rejected rather than honored, so a
// compromised parameter service cannot weaken key derivation.
const MinPBKDF2Iterations = 300000

// DefaultPBKDF2Iterations is used when generating fresh key parameters.
const DefaultPBKDF2Iterations = 600000
