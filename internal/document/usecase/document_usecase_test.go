package usecase

import (
	"bytes"
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	documentService "github.com/allisson/docvault/internal/document/service"
	"github.com/allisson/docvault/internal/document/storage"
	apperrors "github.com/allisson/docvault/internal/errors"
	"github.com/allisson/docvault/internal/progress"
	sessionDomain "github.com/allisson/docvault/internal/session/domain"
)

// fakeSessions hands out a fixed master key and counts Extend calls.
type fakeSessions struct {
	key     *sessionDomain.MasterKey
	err     error
	extends int
}

func (f *fakeSessions) ActiveKey() (*sessionDomain.MasterKey, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.key, nil
}

func (f *fakeSessions) Extend() {
	f.extends++
}

func testMasterKey(t *testing.T) *sessionDomain.MasterKey {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return sessionDomain.NewMasterKey(
		key,
		[]byte("0123456789abcdef"),
		cryptoDomain.MinPBKDF2Iterations,
		cryptoDomain.PBKDF2SHA256,
		cryptoDomain.AESGCM,
		time.Now().Add(time.Hour),
	)
}

type fixture struct {
	useCase  DocumentUseCase
	sessions *fakeSessions
	store    *storage.BlobStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := storage.OpenBlobStore(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	sessions := &fakeSessions{key: testMasterKey(t)}
	aeadManager := cryptoService.NewAEADManager()
	useCase := NewDocumentUseCase(
		sessions,
		documentService.NewDEKManager(aeadManager),
		aeadManager,
		store,
		cryptoDomain.AESGCM,
		cryptoDomain.DefaultSegmentSize,
	)

	return &fixture{useCase: useCase, sessions: sessions, store: store}
}

func randomPlaintext(t *testing.T, size int) []byte {
	t.Helper()
	plaintext := make([]byte, size)
	_, err := rand.Read(plaintext)
	require.NoError(t, err)
	return plaintext
}

func TestDocumentUseCase_UploadDownload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Multiple segments plus a ragged tail.
	plaintext := randomPlaintext(t, 4*cryptoDomain.DefaultSegmentSize+13)

	var events []progress.Event
	reporter := progress.ReporterFunc(func(event progress.Event) {
		events = append(events, event)
	})

	record, err := f.useCase.Upload(ctx, plaintext, "application/pdf", reporter)
	require.NoError(t, err)
	assert.Equal(t, len(plaintext), record.OriginalSize)
	assert.Equal(t, 1, f.sessions.extends)

	t.Run("progress is monotonic and ends complete", func(t *testing.T) {
		require.NotEmpty(t, events)
		last := 0
		for _, event := range events {
			assert.GreaterOrEqual(t, event.Percent, last)
			last = event.Percent
		}
		assert.Equal(t, progress.StageComplete, events[len(events)-1].Stage)
		assert.Equal(t, 100, events[len(events)-1].Percent)
	})

	t.Run("download recovers the plaintext", func(t *testing.T) {
		got, downloaded, err := f.useCase.Download(ctx, record.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, record.ID, got.ID)
		assert.Equal(t, plaintext, downloaded)
		assert.Equal(t, 2, f.sessions.extends)
	})

	t.Run("ciphertext does not contain the plaintext", func(t *testing.T) {
		_, ciphertext, err := f.store.Get(ctx, record.ID)
		require.NoError(t, err)
		assert.False(t, bytes.Contains(ciphertext, plaintext[:64]))
	})

	t.Run("unknown document id", func(t *testing.T) {
		_, _, err := f.useCase.Download(ctx, uuid.Must(uuid.NewV7()), nil)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestDocumentUseCase_EmptyDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	record, err := f.useCase.Upload(ctx, nil, "text/plain", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, record.OriginalSize)

	_, plaintext, err := f.useCase.Download(ctx, record.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, plaintext)
}

func TestDocumentUseCase_FreshKeyMaterialPerUpload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	plaintext := randomPlaintext(t, 1024)

	first, firstCiphertext, err := f.useCase.EncryptForUpload(ctx, plaintext, "text/plain", nil)
	require.NoError(t, err)
	second, secondCiphertext, err := f.useCase.EncryptForUpload(ctx, plaintext, "text/plain", nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.IV, second.IV)
	assert.NotEqual(t, firstCiphertext, secondCiphertext)
	assert.NotEqual(t, first.WrappedDEK.Ciphertext, second.WrappedDEK.Ciphertext)
}

func TestDocumentUseCase_TamperedPayload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	plaintext := randomPlaintext(t, 2*cryptoDomain.DefaultSegmentSize)

	record, ciphertext, err := f.useCase.EncryptForUpload(ctx, plaintext, "application/pdf", nil)
	require.NoError(t, err)

	t.Run("flipped ciphertext bit", func(t *testing.T) {
		tampered := append([]byte(nil), ciphertext...)
		tampered[len(tampered)/2] ^= 0x01
		_, err := f.useCase.DecryptDocument(ctx, record, tampered, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("flipped auth tag bit", func(t *testing.T) {
		tampered := *record
		tampered.AuthTag = append([]byte(nil), record.AuthTag...)
		tampered.AuthTag[0] ^= 0x01
		_, err := f.useCase.DecryptDocument(ctx, &tampered, ciphertext, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("flipped iv bit", func(t *testing.T) {
		tampered := *record
		tampered.IV = append([]byte(nil), record.IV...)
		tampered.IV[0] ^= 0x01
		_, err := f.useCase.DecryptDocument(ctx, &tampered, ciphertext, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("truncated ciphertext", func(t *testing.T) {
		_, err := f.useCase.DecryptDocument(ctx, record, ciphertext[:len(ciphertext)-1], nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("failed decrypts do not extend the session", func(t *testing.T) {
		assert.Equal(t, 1, f.sessions.extends)
	})
}

func TestDocumentUseCase_SessionErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	record, ciphertext, err := f.useCase.EncryptForUpload(ctx, []byte("payload"), "text/plain", nil)
	require.NoError(t, err)

	t.Run("no active session", func(t *testing.T) {
		f.sessions.err = sessionDomain.ErrNoActiveSession
		_, err := f.useCase.Upload(ctx, []byte("payload"), "text/plain", nil)
		assert.ErrorIs(t, err, sessionDomain.ErrNoActiveSession)
		_, err = f.useCase.DecryptDocument(ctx, record, ciphertext, nil)
		assert.ErrorIs(t, err, sessionDomain.ErrNoActiveSession)
	})

	t.Run("expired session", func(t *testing.T) {
		f.sessions.err = sessionDomain.ErrSessionExpired
		_, err := f.useCase.Upload(ctx, []byte("payload"), "text/plain", nil)
		assert.ErrorIs(t, err, sessionDomain.ErrSessionExpired)
	})
}

func TestDocumentUseCase_RewrapDocuments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	oldKey := f.sessions.key
	plaintext := randomPlaintext(t, cryptoDomain.DefaultSegmentSize+100)

	first, err := f.useCase.Upload(ctx, plaintext, "application/pdf", nil)
	require.NoError(t, err)
	_, err = f.useCase.Upload(ctx, []byte("second"), "text/plain", nil)
	require.NoError(t, err)

	newKey := testMasterKey(t)
	updated, err := f.useCase.RewrapDocuments(ctx, oldKey, newKey)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	t.Run("documents decrypt under the new key", func(t *testing.T) {
		f.sessions.key = newKey
		_, downloaded, err := f.useCase.Download(ctx, first.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, plaintext, downloaded)
	})

	t.Run("old key no longer unwraps the DEKs", func(t *testing.T) {
		f.sessions.key = oldKey
		_, _, err := f.useCase.Download(ctx, first.ID, nil)
		assert.Error(t, err)
	})

	t.Run("rewrap with the wrong old key fails", func(t *testing.T) {
		_, err := f.useCase.RewrapDocuments(ctx, oldKey, newKey)
		assert.Error(t, err)
	})
}

func TestDocumentUseCase_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	record, err := f.useCase.Upload(ctx, []byte("payload"), "text/plain", nil)
	require.NoError(t, err)

	records, err := f.useCase.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.NoError(t, f.useCase.Delete(ctx, record.ID))

	records, err = f.useCase.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
