package keyparams

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	apperrors "github.com/allisson/docvault/internal/errors"
)

// MemoryProvider is an in-memory Provider implementation for tests and
// development wiring.
type MemoryProvider struct {
	mu     sync.RWMutex
	params map[string]*Params
}

// NewMemoryProvider creates an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{params: make(map[string]*Params)}
}

// Register stores a parameter set, replacing any existing one for the account.
func (m *MemoryProvider) Register(params *Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[params.AccountID] = params
	return nil
}

// Params returns the parameter set for the account or ErrNotFound.
func (m *MemoryProvider) Params(_ context.Context, accountID string) (*Params, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	params, ok := m.params[accountID]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "key parameters for account %q", accountID)
	}
	return params, nil
}

// FileProvider reads parameter sets from a JSON file written by the
// keyparams-init command. The file maps account IDs to Params.
type FileProvider struct {
	path string

	once   sync.Once
	loaded map[string]*Params
	err    error
}

// NewFileProvider creates a FileProvider for the given path. The file is read
// lazily on first use.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Params returns the parameter set for the account or ErrNotFound.
func (f *FileProvider) Params(_ context.Context, accountID string) (*Params, error) {
	f.once.Do(f.load)
	if f.err != nil {
		return nil, f.err
	}
	params, ok := f.loaded[accountID]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "key parameters for account %q", accountID)
	}
	return params, nil
}

// WriteFile persists a set of parameter sets as JSON, keyed by account ID.
func WriteFile(path string, sets ...*Params) error {
	byAccount := make(map[string]*Params, len(sets))
	for _, p := range sets {
		if err := p.Validate(); err != nil {
			return err
		}
		byAccount[p.AccountID] = p
	}

	data, err := json.MarshalIndent(byAccount, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (f *FileProvider) load() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		f.err = apperrors.Wrapf(apperrors.ErrNotFound, "read key parameters file %q: %v", f.path, err)
		return
	}

	var byAccount map[string]*Params
	if err := json.Unmarshal(data, &byAccount); err != nil {
		f.err = apperrors.Wrapf(apperrors.ErrInvalidInput, "parse key parameters file %q: %v", f.path, err)
		return
	}
	f.loaded = byAccount
}
