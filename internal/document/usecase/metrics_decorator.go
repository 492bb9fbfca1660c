package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	documentDomain "github.com/allisson/docvault/internal/document/domain"
	"github.com/allisson/docvault/internal/metrics"
	"github.com/allisson/docvault/internal/progress"
	sessionDomain "github.com/allisson/docvault/internal/session/domain"
)

// documentUseCaseWithMetrics decorates DocumentUseCase with metrics instrumentation.
type documentUseCaseWithMetrics struct {
	next    DocumentUseCase
	metrics metrics.BusinessMetrics
}

// NewDocumentUseCaseWithMetrics wraps a DocumentUseCase with metrics recording.
func NewDocumentUseCaseWithMetrics(useCase DocumentUseCase, m metrics.BusinessMetrics) DocumentUseCase {
	return &documentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the counter and duration for one document operation.
func (d *documentUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "document", operation, status)
	d.metrics.RecordDuration(ctx, "document", operation, time.Since(start), status)
}

// EncryptForUpload records metrics for standalone encryption operations.
func (d *documentUseCaseWithMetrics) EncryptForUpload(
	ctx context.Context,
	plaintext []byte,
	mimeType string,
	reporter progress.Reporter,
) (*documentDomain.EncryptedDocumentRecord, []byte, error) {
	start := time.Now()
	record, ciphertext, err := d.next.EncryptForUpload(ctx, plaintext, mimeType, reporter)
	d.record(ctx, "document_encrypt", start, err)
	return record, ciphertext, err
}

// DecryptDocument records metrics for standalone decryption operations.
func (d *documentUseCaseWithMetrics) DecryptDocument(
	ctx context.Context,
	record *documentDomain.EncryptedDocumentRecord,
	ciphertext []byte,
	reporter progress.Reporter,
) ([]byte, error) {
	start := time.Now()
	plaintext, err := d.next.DecryptDocument(ctx, record, ciphertext, reporter)
	d.record(ctx, "document_decrypt", start, err)
	return plaintext, err
}

// Upload records metrics for upload operations.
func (d *documentUseCaseWithMetrics) Upload(
	ctx context.Context,
	plaintext []byte,
	mimeType string,
	reporter progress.Reporter,
) (*documentDomain.EncryptedDocumentRecord, error) {
	start := time.Now()
	record, err := d.next.Upload(ctx, plaintext, mimeType, reporter)
	d.record(ctx, "document_upload", start, err)
	return record, err
}

// Download records metrics for download operations.
func (d *documentUseCaseWithMetrics) Download(
	ctx context.Context,
	id uuid.UUID,
	reporter progress.Reporter,
) (*documentDomain.EncryptedDocumentRecord, []byte, error) {
	start := time.Now()
	record, plaintext, err := d.next.Download(ctx, id, reporter)
	d.record(ctx, "document_download", start, err)
	return record, plaintext, err
}

// List records metrics for list operations.
func (d *documentUseCaseWithMetrics) List(ctx context.Context) ([]*documentDomain.EncryptedDocumentRecord, error) {
	start := time.Now()
	records, err := d.next.List(ctx)
	d.record(ctx, "document_list", start, err)
	return records, err
}

// Delete records metrics for delete operations.
func (d *documentUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := d.next.Delete(ctx, id)
	d.record(ctx, "document_delete", start, err)
	return err
}

// RewrapDocuments records metrics for key rotation operations.
func (d *documentUseCaseWithMetrics) RewrapDocuments(
	ctx context.Context,
	oldKey, newKey *sessionDomain.MasterKey,
) (int, error) {
	start := time.Now()
	updated, err := d.next.RewrapDocuments(ctx, oldKey, newKey)
	d.record(ctx, "document_rewrap", start, err)
	return updated, err
}
