package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	documentDomain "github.com/allisson/docvault/internal/document/domain"
	documentService "github.com/allisson/docvault/internal/document/service"
	"github.com/allisson/docvault/internal/document/storage"
	"github.com/allisson/docvault/internal/progress"
	sessionDomain "github.com/allisson/docvault/internal/session/domain"
)

// documentUseCase implements the DocumentUseCase interface.
type documentUseCase struct {
	sessions    SessionManager
	dekManager  documentService.DEKManager
	aeadManager cryptoService.AEADManager
	store       storage.DocumentStore
	algorithm   cryptoDomain.Algorithm
	segmentSize int
}

// NewDocumentUseCase creates a document use case. A non-positive segmentSize
// falls back to DefaultSegmentSize.
func NewDocumentUseCase(
	sessions SessionManager,
	dekManager documentService.DEKManager,
	aeadManager cryptoService.AEADManager,
	store storage.DocumentStore,
	algorithm cryptoDomain.Algorithm,
	segmentSize int,
) DocumentUseCase {
	if segmentSize <= 0 {
		segmentSize = cryptoDomain.DefaultSegmentSize
	}
	return &documentUseCase{
		sessions:    sessions,
		dekManager:  dekManager,
		aeadManager: aeadManager,
		store:       store,
		algorithm:   algorithm,
		segmentSize: segmentSize,
	}
}

// Progress percentages reserved for the key handling and storage stages; the
// bulk encrypt/decrypt work fills the range between them.
const (
	percentKeyStage = 5
	percentBulkEnd  = 95
)

// EncryptForUpload encrypts plaintext under a fresh DEK wrapped by the session
// master key.
func (u *documentUseCase) EncryptForUpload(
	ctx context.Context,
	plaintext []byte,
	mimeType string,
	reporter progress.Reporter,
) (*documentDomain.EncryptedDocumentRecord, []byte, error) {
	reporter = progress.Monotonic(reporter)

	record, ciphertext, err := u.encrypt(plaintext, mimeType, reporter)
	if err != nil {
		return nil, nil, err
	}

	u.sessions.Extend()
	reporter.Report(progress.Event{Stage: progress.StageComplete, Percent: 100, Message: "document encrypted"})
	return record, ciphertext, nil
}

// DecryptDocument authenticates and decrypts a stored payload.
func (u *documentUseCase) DecryptDocument(
	ctx context.Context,
	record *documentDomain.EncryptedDocumentRecord,
	ciphertext []byte,
	reporter progress.Reporter,
) ([]byte, error) {
	reporter = progress.Monotonic(reporter)

	plaintext, err := u.decrypt(record, ciphertext, reporter)
	if err != nil {
		return nil, err
	}

	u.sessions.Extend()
	reporter.Report(progress.Event{Stage: progress.StageComplete, Percent: 100, Message: "document decrypted"})
	return plaintext, nil
}

// Upload encrypts and stores a document.
func (u *documentUseCase) Upload(
	ctx context.Context,
	plaintext []byte,
	mimeType string,
	reporter progress.Reporter,
) (*documentDomain.EncryptedDocumentRecord, error) {
	reporter = progress.Monotonic(reporter)

	record, ciphertext, err := u.encrypt(plaintext, mimeType, reporter)
	if err != nil {
		return nil, err
	}

	reporter.Report(progress.Event{Stage: progress.StageStore, Percent: percentBulkEnd, Message: "storing document"})
	if err := u.store.Put(ctx, record, ciphertext); err != nil {
		return nil, err
	}

	u.sessions.Extend()
	reporter.Report(progress.Event{Stage: progress.StageComplete, Percent: 100, Message: "document stored"})
	return record, nil
}

// Download fetches and decrypts a stored document.
func (u *documentUseCase) Download(
	ctx context.Context,
	id uuid.UUID,
	reporter progress.Reporter,
) (*documentDomain.EncryptedDocumentRecord, []byte, error) {
	reporter = progress.Monotonic(reporter)

	record, ciphertext, err := u.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	plaintext, err := u.decrypt(record, ciphertext, reporter)
	if err != nil {
		return nil, nil, err
	}

	u.sessions.Extend()
	reporter.Report(progress.Event{Stage: progress.StageComplete, Percent: 100, Message: "document decrypted"})
	return record, plaintext, nil
}

// List returns all stored document records.
func (u *documentUseCase) List(ctx context.Context) ([]*documentDomain.EncryptedDocumentRecord, error) {
	return u.store.List(ctx)
}

// Delete removes a stored document.
func (u *documentUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return u.store.Delete(ctx, id)
}

// RewrapDocuments re-wraps every stored DEK under the new master key.
func (u *documentUseCase) RewrapDocuments(
	ctx context.Context,
	oldKey, newKey *sessionDomain.MasterKey,
) (int, error) {
	records, err := u.store.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, record := range records {
		rewrapped, err := u.dekManager.RewrapDEK(record.WrappedDEK, oldKey, newKey)
		if err != nil {
			return updated, fmt.Errorf("failed to rewrap document %s: %w", record.ID, err)
		}

		record.WrappedDEK = rewrapped
		if err := u.store.UpdateRecord(ctx, record); err != nil {
			return updated, err
		}
		updated++
	}

	return updated, nil
}

// encrypt runs the upload pipeline up to (not including) storage: fresh DEK,
// wrap, segment seal. The returned record is complete except for CiphertextRef,
// which storage assigns.
func (u *documentUseCase) encrypt(
	plaintext []byte,
	mimeType string,
	reporter progress.Reporter,
) (*documentDomain.EncryptedDocumentRecord, []byte, error) {
	masterKey, err := u.sessions.ActiveKey()
	if err != nil {
		return nil, nil, err
	}

	id := uuid.Must(uuid.NewV7())
	reporter.Report(progress.Event{Stage: progress.StageWrapKey, Percent: percentKeyStage, Message: "wrapping document key"})

	wrapped, dekKey, err := u.dekManager.CreateWrappedDEK(masterKey, id, u.algorithm)
	if err != nil {
		return nil, nil, err
	}
	defer cryptoDomain.Zero(dekKey)

	cipher, err := u.aeadManager.CreateCipher(dekKey, u.algorithm)
	if err != nil {
		return nil, nil, err
	}

	codec := cryptoService.NewSegmentCodec(cipher, u.segmentSize)
	ciphertext, baseNonce, finalTag, err := codec.SealWithProgress(plaintext, id[:], func(done, total int) {
		reporter.Report(progress.Event{
			Stage:   progress.StageEncrypt,
			Percent: bulkPercent(done, total),
			Message: fmt.Sprintf("encrypted segment %d of %d", done, total),
		})
	})
	if err != nil {
		return nil, nil, err
	}

	record := &documentDomain.EncryptedDocumentRecord{
		ID:           id,
		IV:           baseNonce,
		AuthTag:      finalTag,
		WrappedDEK:   wrapped,
		Algorithm:    u.algorithm,
		MIMEType:     mimeType,
		OriginalSize: len(plaintext),
		SegmentSize:  codec.SegmentSize(),
		CreatedAt:    time.Now().UTC(),
	}

	return record, ciphertext, nil
}

// decrypt runs the download pipeline after storage: unwrap, segment open,
// plaintext assembly. Any authentication failure is terminal.
func (u *documentUseCase) decrypt(
	record *documentDomain.EncryptedDocumentRecord,
	ciphertext []byte,
	reporter progress.Reporter,
) ([]byte, error) {
	masterKey, err := u.sessions.ActiveKey()
	if err != nil {
		return nil, err
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	reporter.Report(progress.Event{Stage: progress.StageUnwrapKey, Percent: percentKeyStage, Message: "unwrapping document key"})
	dekKey, err := u.dekManager.UnwrapDEK(record.WrappedDEK, masterKey)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(dekKey)

	cipher, err := u.aeadManager.CreateCipher(dekKey, record.Algorithm)
	if err != nil {
		return nil, err
	}

	codec := cryptoService.NewSegmentCodec(cipher, record.SegmentSize)
	total := codec.SegmentCount(record.OriginalSize)

	plaintext := make([]byte, 0, record.OriginalSize)
	err = codec.Open(ciphertext, record.IV, record.AuthTag, record.ID[:], record.OriginalSize,
		func(index int, chunk []byte) error {
			plaintext = append(plaintext, chunk...)
			reporter.Report(progress.Event{
				Stage:   progress.StageDecrypt,
				Percent: bulkPercent(index+1, total),
				Message: fmt.Sprintf("decrypted segment %d of %d", index+1, total),
			})
			return nil
		})
	if err != nil {
		cryptoDomain.Zero(plaintext)
		return nil, err
	}

	return plaintext, nil
}

// bulkPercent maps segment progress onto the bulk range of the progress bar.
func bulkPercent(done, total int) int {
	if total <= 0 {
		return percentBulkEnd
	}
	span := percentBulkEnd - percentKeyStage
	return percentKeyStage + span*done/total
}
