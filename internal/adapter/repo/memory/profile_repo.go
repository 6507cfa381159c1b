package memory

import (
	"context"

	"lastcity/internal/app/ports"
)

type ProfileRepo struct {
	store *Store
}

func NewProfileRepo(store *Store) ProfileRepo {
	return ProfileRepo{store: store}
}

func (r ProfileRepo) Create(_ context.Context, profile ports.ProfileRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.profiles[profile.ID]; ok {
		return ports.ErrConflict
	}
	r.store.profiles[profile.ID] = profile
	return nil
}

func (r ProfileRepo) GetByID(_ context.Context, id string) (ports.ProfileRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	profile, ok := r.store.profiles[id]
	if !ok {
		return ports.ProfileRecord{}, ports.ErrNotFound
	}
	return profile, nil
}

var _ ports.ProfileRepository = ProfileRepo{}
