package store

import "context"

func (s *Store) SignIn(ctx context.Context, email, password string) error {
	if err := s.requireConfigured(); err != nil {
		return err
	}
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	identity, err := s.cfg.Auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.session != nil {
		return ErrSuperseded
	}
	s.session = &Session{UserID: identity.UserID, Name: identity.Name}
	s.notifyLocked()
	return nil
}

func (s *Store) SignUp(ctx context.Context, email, password, name string) error {
	if err := s.requireConfigured(); err != nil {
		return err
	}
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	identity, err := s.cfg.Auth.SignUp(ctx, email, password, name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.session != nil {
		return ErrSuperseded
	}
	s.session = &Session{UserID: identity.UserID, Name: identity.Name}
	s.notifyLocked()
	return nil
}

// SignOut leaves any occupied lobby, clears the session and resets the
// world. Idempotent when already signed out.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.LeaveLobby(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.generation++
	s.resetWorldLocked()
	s.notifyLocked()
	return nil
}
