package service

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	documentDomain "github.com/allisson/docvault/internal/document/domain"
	documentService "github.com/allisson/docvault/internal/document/service"
	"github.com/allisson/docvault/internal/errors"
	previewDomain "github.com/allisson/docvault/internal/preview/domain"
)

// ErrInspectionDetected indicates the inspection monitor reported active
// tooling and the stream was aborted and scrubbed.
var ErrInspectionDetected = errors.New("inspection tooling detected")

// DefaultPreviewTTL bounds a single preview rendering.
const DefaultPreviewTTL = 10 * time.Minute

// DecryptorConfig holds the preview policy knobs.
type DecryptorConfig struct {
	// PreviewTTL is the lifetime of a preview session.
	PreviewTTL time.Duration
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

func (c DecryptorConfig) withDefaults() DecryptorConfig {
	if c.PreviewTTL <= 0 {
		c.PreviewTTL = DefaultPreviewTTL
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// StreamingDecryptor implements PreviewDecryptor.
//
// Each chunk is authenticated and consumed before the next is touched, so a
// later chunk is never rendered after an earlier one failed authentication.
// Any abort scrubs the processor and the chunk buffers decrypted so far.
type StreamingDecryptor struct {
	sessions    KeySource
	dekManager  documentService.DEKManager
	aeadManager cryptoService.AEADManager
	monitor     InspectionMonitor
	cfg         DecryptorConfig
}

// NewStreamingDecryptor creates a preview decryptor. A nil monitor falls back
// to NopMonitor.
func NewStreamingDecryptor(
	sessions KeySource,
	dekManager documentService.DEKManager,
	aeadManager cryptoService.AEADManager,
	monitor InspectionMonitor,
	cfg DecryptorConfig,
) *StreamingDecryptor {
	if monitor == nil {
		monitor = NopMonitor{}
	}
	return &StreamingDecryptor{
		sessions:    sessions,
		dekManager:  dekManager,
		aeadManager: aeadManager,
		monitor:     monitor,
		cfg:         cfg.withDefaults(),
	}
}

// NewSession creates an idle preview session with the configured TTL.
func (d *StreamingDecryptor) NewSession() *previewDomain.PreviewSession {
	return previewDomain.NewPreviewSession(d.cfg.Now(), d.cfg.PreviewTTL)
}

// DecryptForPreview runs the chunked decrypt stream into the processor.
func (d *StreamingDecryptor) DecryptForPreview(
	ctx context.Context,
	session *previewDomain.PreviewSession,
	record *documentDomain.EncryptedDocumentRecord,
	ciphertext []byte,
	processor ChunkProcessor,
) (*previewDomain.SecurePreviewPayload, error) {
	kind, err := previewDomain.KindForMIME(record.MIMEType)
	if err != nil {
		session.Fail()
		return nil, err
	}
	if err := record.Validate(); err != nil {
		session.Fail()
		return nil, err
	}
	if session.Expired(d.cfg.Now()) {
		session.Fail()
		return nil, previewDomain.ErrPreviewExpired
	}

	masterKey, err := d.sessions.ActiveKey()
	if err != nil {
		session.Fail()
		return nil, err
	}

	dekKey, err := d.dekManager.UnwrapDEK(record.WrappedDEK, masterKey)
	if err != nil {
		session.Fail()
		return nil, err
	}
	defer cryptoDomain.Zero(dekKey)

	cipher, err := d.aeadManager.CreateCipher(dekKey, record.Algorithm)
	if err != nil {
		session.Fail()
		return nil, err
	}
	codec := cryptoService.NewSegmentCodec(cipher, record.SegmentSize)

	if err := session.Start(); err != nil {
		return nil, err
	}

	err = codec.Open(ciphertext, record.IV, record.AuthTag, record.ID[:], record.OriginalSize,
		func(index int, chunk []byte) error {
			if err := d.checkLive(ctx, session); err != nil {
				return err
			}
			if err := session.Advance(index); err != nil {
				return err
			}
			return processor.ProcessChunk(index, chunk)
		})
	if err != nil {
		processor.Scrub()
		session.Fail()
		return nil, err
	}

	if err := session.Complete(); err != nil {
		processor.Scrub()
		return nil, err
	}

	d.sessions.Extend()
	return &previewDomain.SecurePreviewPayload{
		SessionID:     session.ID(),
		ExpiresAt:     session.ExpiresAt(),
		Kind:          kind,
		Chunks:        session.Cursor(),
		FullyRendered: processor.FullyRendered(),
	}, nil
}

// checkLive runs the per-chunk liveness gates: caller cancellation, session
// cancellation, inspection monitoring, preview expiry, and master key expiry.
func (d *StreamingDecryptor) checkLive(ctx context.Context, session *previewDomain.PreviewSession) error {
	if ctx.Err() != nil || session.Cancelled() {
		return previewDomain.ErrPreviewCancelled
	}
	if d.monitor.InspectionActive() {
		return ErrInspectionDetected
	}
	if session.Expired(d.cfg.Now()) {
		return previewDomain.ErrPreviewExpired
	}
	if _, err := d.sessions.ActiveKey(); err != nil {
		return err
	}
	return nil
}
