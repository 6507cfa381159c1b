package memory

import (
	"context"

	"lastcity/internal/app/ports"
)

type CredentialRepo struct {
	store *Store
}

func NewCredentialRepo(store *Store) CredentialRepo {
	return CredentialRepo{store: store}
}

func (r CredentialRepo) Create(_ context.Context, credential ports.CredentialRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.credentials[credential.Email]; ok {
		return ports.ErrConflict
	}
	r.store.credentials[credential.Email] = credential
	return nil
}

func (r CredentialRepo) GetByEmail(_ context.Context, email string) (ports.CredentialRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	credential, ok := r.store.credentials[email]
	if !ok {
		return ports.CredentialRecord{}, ports.ErrNotFound
	}
	return credential, nil
}

var _ ports.CredentialRepository = CredentialRepo{}
