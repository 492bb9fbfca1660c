package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Register blob drivers for local and in-memory buckets.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	documentDomain "github.com/allisson/docvault/internal/document/domain"
	apperrors "github.com/allisson/docvault/internal/errors"
)

const (
	recordSuffix  = ".json"
	payloadSuffix = ".bin"
	keyPrefix     = "documents/"
)

// BlobStore implements DocumentStore on top of a gocloud.dev blob bucket.
//
// Each document occupies two keys: documents/<id>.json for the record and
// documents/<id>.bin for the ciphertext. Supported bucket URLs include
// mem:// for tests and file:// for local development.
type BlobStore struct {
	bucket *blob.Bucket
}

// NewBlobStore creates a BlobStore over an already opened bucket.
func NewBlobStore(bucket *blob.Bucket) *BlobStore {
	return &BlobStore{bucket: bucket}
}

// OpenBlobStore opens the bucket URL and wraps it in a BlobStore.
func OpenBlobStore(ctx context.Context, bucketURL string) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %q: %w", bucketURL, err)
	}
	return NewBlobStore(bucket), nil
}

// Close releases the underlying bucket.
func (s *BlobStore) Close() error {
	return s.bucket.Close()
}

// Put stores a new document. Returns ErrConflict when the document ID exists.
func (s *BlobStore) Put(ctx context.Context, record *documentDomain.EncryptedDocumentRecord, ciphertext []byte) error {
	if err := record.Validate(); err != nil {
		return err
	}

	exists, err := s.bucket.Exists(ctx, recordKey(record.ID))
	if err != nil {
		return fmt.Errorf("failed to check document existence: %w", err)
	}
	if exists {
		return apperrors.Wrapf(apperrors.ErrConflict, "document %s already stored", record.ID)
	}

	record.CiphertextRef = payloadKey(record.ID)
	if err := s.bucket.WriteAll(ctx, record.CiphertextRef, ciphertext, nil); err != nil {
		return fmt.Errorf("failed to write ciphertext: %w", err)
	}
	return s.writeRecord(ctx, record)
}

// Get returns the record and ciphertext for a document.
func (s *BlobStore) Get(ctx context.Context, id uuid.UUID) (*documentDomain.EncryptedDocumentRecord, []byte, error) {
	record, err := s.readRecord(ctx, recordKey(id))
	if err != nil {
		return nil, nil, err
	}

	ciphertext, err := s.bucket.ReadAll(ctx, record.CiphertextRef)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, nil, apperrors.Wrapf(apperrors.ErrNotFound, "ciphertext for document %s", id)
		}
		return nil, nil, fmt.Errorf("failed to read ciphertext: %w", err)
	}

	return record, ciphertext, nil
}

// List returns all stored records ordered by key.
func (s *BlobStore) List(ctx context.Context) ([]*documentDomain.EncryptedDocumentRecord, error) {
	var records []*documentDomain.EncryptedDocumentRecord

	iter := s.bucket.List(&blob.ListOptions{Prefix: keyPrefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		if !strings.HasSuffix(obj.Key, recordSuffix) {
			continue
		}

		record, err := s.readRecord(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// UpdateRecord replaces an existing document's record.
func (s *BlobStore) UpdateRecord(ctx context.Context, record *documentDomain.EncryptedDocumentRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	exists, err := s.bucket.Exists(ctx, recordKey(record.ID))
	if err != nil {
		return fmt.Errorf("failed to check document existence: %w", err)
	}
	if !exists {
		return apperrors.Wrapf(apperrors.ErrNotFound, "document %s", record.ID)
	}

	return s.writeRecord(ctx, record)
}

// Delete removes a document's record and ciphertext.
func (s *BlobStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.bucket.Delete(ctx, recordKey(id)); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return apperrors.Wrapf(apperrors.ErrNotFound, "document %s", id)
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if err := s.bucket.Delete(ctx, payloadKey(id)); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("failed to delete ciphertext: %w", err)
	}
	return nil
}

func (s *BlobStore) writeRecord(ctx context.Context, record *documentDomain.EncryptedDocumentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := s.bucket.WriteAll(ctx, recordKey(record.ID), data, nil); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func (s *BlobStore) readRecord(ctx context.Context, key string) (*documentDomain.EncryptedDocumentRecord, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, apperrors.Wrapf(apperrors.ErrNotFound, "document record %s", key)
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var record documentDomain.EncryptedDocumentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &record, nil
}

func recordKey(id uuid.UUID) string {
	return keyPrefix + id.String() + recordSuffix
}

func payloadKey(id uuid.UUID) string {
	return keyPrefix + id.String() + payloadSuffix
}
