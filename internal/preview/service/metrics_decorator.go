package service

import (
	"context"
	"time"

	documentDomain "github.com/allisson/docvault/internal/document/domain"
	"github.com/allisson/docvault/internal/metrics"
	previewDomain "github.com/allisson/docvault/internal/preview/domain"
)

// previewDecryptorWithMetrics decorates PreviewDecryptor with metrics instrumentation.
type previewDecryptorWithMetrics struct {
	next    PreviewDecryptor
	metrics metrics.BusinessMetrics
}

// NewPreviewDecryptorWithMetrics wraps a PreviewDecryptor with metrics recording.
func NewPreviewDecryptorWithMetrics(decryptor PreviewDecryptor, m metrics.BusinessMetrics) PreviewDecryptor {
	return &previewDecryptorWithMetrics{
		next:    decryptor,
		metrics: m,
	}
}

// NewSession passes through to the decorated decryptor.
func (p *previewDecryptorWithMetrics) NewSession() *previewDomain.PreviewSession {
	return p.next.NewSession()
}

// DecryptForPreview records metrics for preview decryption streams.
func (p *previewDecryptorWithMetrics) DecryptForPreview(
	ctx context.Context,
	session *previewDomain.PreviewSession,
	record *documentDomain.EncryptedDocumentRecord,
	ciphertext []byte,
	processor ChunkProcessor,
) (*previewDomain.SecurePreviewPayload, error) {
	start := time.Now()
	payload, err := p.next.DecryptForPreview(ctx, session, record, ciphertext, processor)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "preview", "preview_decrypt", status)
	p.metrics.RecordDuration(ctx, "preview", "preview_decrypt", time.Since(start), status)

	return payload, err
}
