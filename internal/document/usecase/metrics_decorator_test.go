package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionDomain "github.com/allisson/docvault/internal/session/domain"
)

// recordingMetrics captures metric calls for assertions.
type recordingMetrics struct {
	mu         sync.Mutex
	operations []string
	statuses   []string
}

func (r *recordingMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, domain+"/"+operation)
	r.statuses = append(r.statuses, status)
}

func (r *recordingMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, domain+"/"+operation)
	r.statuses = append(r.statuses, status)
}

func TestDocumentUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	recorder := &recordingMetrics{}
	decorated := NewDocumentUseCaseWithMetrics(f.useCase, recorder)

	record, err := decorated.Upload(ctx, []byte("payload"), "text/plain", nil)
	require.NoError(t, err)

	_, _, err = decorated.Download(ctx, record.ID, nil)
	require.NoError(t, err)

	f.sessions.err = sessionDomain.ErrNoActiveSession
	_, err = decorated.Upload(ctx, []byte("payload"), "text/plain", nil)
	require.Error(t, err)

	assert.Equal(t, []string{
		"document/document_upload", "document/document_upload",
		"document/document_download", "document/document_download",
		"document/document_upload", "document/document_upload",
	}, recorder.operations)
	assert.Equal(t, []string{
		"success", "success",
		"success", "success",
		"error", "error",
	}, recorder.statuses)
}
