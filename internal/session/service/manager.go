package service

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/time/rate"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	"github.com/allisson/docvault/internal/keyparams"
	sessionDomain "github.com/allisson/docvault/internal/session/domain"
)

// snapshotKeyInfo is the HKDF label separating the snapshot wrapping key from
// the raw environment key.
const snapshotKeyInfo = "docvault:snapshot:v1"

// Default session policy values.
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultUnlockRate  = rate.Limit(1)
	DefaultUnlockBurst = 5
)

// ManagerConfig holds the session policy knobs for the Manager.
type ManagerConfig struct {
	// SessionTTL is the inactivity window after which the master key expires.
	SessionTTL time.Duration
	// UnlockRate and UnlockBurst throttle Initialize attempts, limiting how
	// fast secrets can be guessed through this component.
	UnlockRate  rate.Limit
	UnlockBurst int
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.UnlockRate <= 0 {
		c.UnlockRate = DefaultUnlockRate
	}
	if c.UnlockBurst <= 0 {
		c.UnlockBurst = DefaultUnlockBurst
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Manager owns the master key for a bounded unlock session.
//
// The manager is the single owner of the MasterKey: it is the only component
// that creates, extends, or destroys the key. Consumer services borrow the key
// through ActiveKey for the scope of one cryptographic call and report
// successful use back through Extend. Expiry is checked on every access rather
// than only by a timer, so clock or timer drift cannot keep a dead key alive.
type Manager struct {
	deriver      cryptoService.KeyDeriver
	aeadManager  cryptoService.AEADManager
	params       keyparams.Provider
	snapshots    SnapshotStore
	snapshotKeys SnapshotKeyProvider
	cfg          ManagerConfig
	limiter      *rate.Limiter

	mu        sync.Mutex
	current   *sessionDomain.MasterKey
	accountID string
}

// NewManager creates a session Manager with the given collaborators and policy.
func NewManager(
	deriver cryptoService.KeyDeriver,
	aeadManager cryptoService.AEADManager,
	params keyparams.Provider,
	snapshots SnapshotStore,
	snapshotKeys SnapshotKeyProvider,
	cfg ManagerConfig,
) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		deriver:      deriver,
		aeadManager:  aeadManager,
		params:       params,
		snapshots:    snapshots,
		snapshotKeys: snapshotKeys,
		cfg:          cfg,
		limiter:      rate.NewLimiter(cfg.UnlockRate, cfg.UnlockBurst),
	}
}

// Initialize derives a candidate master key from the user secret and verifies
// it against the account's validation payload.
//
// The derivation uses the provider-advertised salt and iteration count; the
// validation payload only decrypts under the correct key, so a successful
// decrypt proves the secret without the secret or key ever leaving the
// process. Every failure mode after parameter fetch collapses into
// ErrInvalidSecret: the caller cannot distinguish which part of validation
// failed. The secret slice is not retained.
func (m *Manager) Initialize(ctx context.Context, accountID string, secret []byte) (*sessionDomain.MasterKey, error) {
	if !m.limiter.Allow() {
		return nil, sessionDomain.ErrTooManyAttempts
	}

	params, err := m.params.Params(ctx, accountID)
	if err != nil {
		// Input unavailable, not a cryptographic failure.
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	key, err := m.deriver.DeriveKey(secret, params.Salt, params.Iterations)
	if err != nil {
		return nil, err
	}

	cipher, err := m.aeadManager.CreateCipher(key, params.Algorithm)
	if err != nil {
		cryptoDomain.Zero(key)
		return nil, err
	}

	plaintext, err := cipher.Decrypt(params.ValidationCiphertext, params.ValidationNonce, []byte(accountID))
	if err != nil {
		cryptoDomain.Zero(key)
		return nil, sessionDomain.ErrInvalidSecret
	}
	expected := keyparams.ValidationPlaintext(accountID)
	if subtle.ConstantTimeCompare(plaintext, expected) != 1 {
		cryptoDomain.Zero(key)
		return nil, sessionDomain.ErrInvalidSecret
	}

	now := m.cfg.Now()
	masterKey := sessionDomain.NewMasterKey(
		key,
		params.Salt,
		params.Iterations,
		params.KDFAlgorithm,
		params.Algorithm,
		now.Add(m.cfg.SessionTTL),
	)

	m.mu.Lock()
	if m.current != nil {
		m.current.Zeroize()
	}
	m.current = masterKey
	m.accountID = accountID
	m.mu.Unlock()

	// Snapshot write is best effort: a failed write only means the session
	// will not survive a reload.
	_ = m.writeSnapshot(ctx, masterKey)

	return masterKey, nil
}

// HasActiveKey reports whether a non-expired master key is currently held.
// An expired key found here is scrubbed immediately.
func (m *Manager) HasActiveKey() bool {
	_, err := m.ActiveKey()
	return err == nil
}

// ActiveKey returns the current master key after checking expiry.
//
// Returns ErrNoActiveSession when no key is held and ErrSessionExpired when
// the held key has passed its expiry; in the latter case the key material and
// snapshot are scrubbed before returning.
func (m *Manager) ActiveKey() (*sessionDomain.MasterKey, error) {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if current == nil {
		return nil, sessionDomain.ErrNoActiveSession
	}
	if current.Expired(m.cfg.Now()) {
		m.Clear()
		return nil, sessionDomain.ErrSessionExpired
	}
	return current, nil
}

// AccountID returns the account the current session belongs to, or empty.
func (m *Manager) AccountID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accountID
}

// Extend resets the inactivity clock on the current session. Called by every
// successful encrypt/decrypt as a side effect. A no-op without a live key.
func (m *Manager) Extend() {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if current == nil || current.Expired(m.cfg.Now()) {
		return
	}
	current.ExtendTo(m.cfg.Now().Add(m.cfg.SessionTTL))
	_ = m.writeSnapshot(context.Background(), current)
}

// Clear synchronously overwrites the key material and invalidates the
// snapshot. Guaranteed to run on logout and on detected expiry.
func (m *Manager) Clear() {
	m.mu.Lock()
	if m.current != nil {
		m.current.Zeroize()
		m.current = nil
	}
	m.accountID = ""
	m.mu.Unlock()

	_ = m.snapshots.Delete(context.Background())
}

// snapshotPayload is the encrypted body of a session snapshot.
type snapshotPayload struct {
	Key          string                    `json:"key"`
	Salt         string                    `json:"salt"`
	Iterations   int                       `json:"iterations"`
	KDFAlgorithm cryptoDomain.KDFAlgorithm `json:"kdf_algorithm"`
	AccountID    string                    `json:"account_id"`
}

// RestoreFromSnapshot attempts to reconstitute the master key from the
// volatile snapshot after a process reload.
//
// Fails closed: a missing snapshot yields ErrNoActiveSession, an expired one
// ErrSessionExpired, and any malformed or tampered snapshot
// ErrIntegrityCheckFailed. A key is never fabricated; rejected snapshots are
// deleted.
func (m *Manager) RestoreFromSnapshot(ctx context.Context) (*sessionDomain.MasterKey, error) {
	snapshot, err := m.snapshots.Load(ctx)
	if err != nil {
		return nil, sessionDomain.ErrNoActiveSession
	}

	if !m.cfg.Now().Before(snapshot.ExpiresAt) {
		_ = m.snapshots.Delete(ctx)
		return nil, sessionDomain.ErrSessionExpired
	}

	wrapKey, err := m.snapshotWrapKey(ctx)
	if err != nil {
		return nil, sessionDomain.ErrIntegrityCheckFailed
	}
	defer cryptoDomain.Zero(wrapKey)

	cipher, err := m.aeadManager.CreateCipher(wrapKey, snapshot.Algorithm)
	if err != nil {
		_ = m.snapshots.Delete(ctx)
		return nil, sessionDomain.ErrIntegrityCheckFailed
	}

	raw, err := cipher.Decrypt(snapshot.WrappedKeyMaterial, snapshot.Nonce, snapshotAAD(snapshot.ExpiresAt, snapshot.Algorithm))
	if err != nil {
		_ = m.snapshots.Delete(ctx)
		return nil, sessionDomain.ErrIntegrityCheckFailed
	}
	defer cryptoDomain.Zero(raw)

	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		_ = m.snapshots.Delete(ctx)
		return nil, sessionDomain.ErrIntegrityCheckFailed
	}

	key, err := base64.StdEncoding.DecodeString(payload.Key)
	if err != nil || len(key) != cryptoDomain.KeySize {
		_ = m.snapshots.Delete(ctx)
		return nil, sessionDomain.ErrIntegrityCheckFailed
	}
	salt, err := base64.StdEncoding.DecodeString(payload.Salt)
	if err != nil {
		cryptoDomain.Zero(key)
		_ = m.snapshots.Delete(ctx)
		return nil, sessionDomain.ErrIntegrityCheckFailed
	}

	masterKey := sessionDomain.NewMasterKey(
		key,
		salt,
		payload.Iterations,
		payload.KDFAlgorithm,
		snapshot.Algorithm,
		snapshot.ExpiresAt,
	)

	m.mu.Lock()
	if m.current != nil {
		m.current.Zeroize()
	}
	m.current = masterKey
	m.accountID = payload.AccountID
	m.mu.Unlock()

	return masterKey, nil
}

// writeSnapshot encrypts the current session under the snapshot wrapping key
// and stores it in the volatile store.
func (m *Manager) writeSnapshot(ctx context.Context, masterKey *sessionDomain.MasterKey) error {
	wrapKey, err := m.snapshotWrapKey(ctx)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(wrapKey)

	cipher, err := m.aeadManager.CreateCipher(wrapKey, masterKey.Algorithm())
	if err != nil {
		return err
	}

	m.mu.Lock()
	accountID := m.accountID
	m.mu.Unlock()

	payload := snapshotPayload{
		Key:          base64.StdEncoding.EncodeToString(masterKey.Bytes()),
		Salt:         base64.StdEncoding.EncodeToString(masterKey.Salt()),
		Iterations:   masterKey.Iterations(),
		KDFAlgorithm: masterKey.KDFAlgorithm(),
		AccountID:    accountID,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(raw)

	expiresAt := masterKey.ExpiresAt()
	wrapped, nonce, err := cipher.Encrypt(raw, snapshotAAD(expiresAt, masterKey.Algorithm()))
	if err != nil {
		return err
	}

	return m.snapshots.Save(ctx, &sessionDomain.SessionSnapshot{
		WrappedKeyMaterial: wrapped,
		Nonce:              nonce,
		Algorithm:          masterKey.Algorithm(),
		ExpiresAt:          expiresAt,
	})
}

// snapshotWrapKey derives the snapshot wrapping key from the environment key.
func (m *Manager) snapshotWrapKey(ctx context.Context) ([]byte, error) {
	envKey, err := m.snapshotKeys.Key(ctx)
	if err != nil {
		return nil, err
	}
	return m.deriver.ExpandKey(envKey, snapshotKeyInfo)
}

// snapshotAAD binds the snapshot's plaintext metadata into its AEAD tag.
func snapshotAAD(expiresAt time.Time, alg cryptoDomain.Algorithm) []byte {
	aad := binary.BigEndian.AppendUint64(nil, uint64(expiresAt.Unix()))
	return append(aad, []byte(alg)...)
}
