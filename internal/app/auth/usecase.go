package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lastcity/internal/app/ports"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidRequest     = errors.New("invalid auth request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

type SignInRequest struct {
	Email    string
	Password string
}

type SignUpRequest struct {
	Email    string
	Password string
	Name     string
}

type Identity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type SignInUseCase struct {
	Credentials ports.CredentialRepository
	Profiles    ports.ProfileRepository
}

type SignUpUseCase struct {
	Credentials ports.CredentialRepository
	Profiles    ports.ProfileRepository
	Now         func() time.Time
}

func (u SignInUseCase) Execute(ctx context.Context, req SignInRequest) (Identity, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return Identity{}, ErrInvalidRequest
	}
	if u.Credentials == nil || u.Profiles == nil {
		return Identity{}, ports.ErrNotConfigured
	}

	cred, err := u.Credentials.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}
	if bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(req.Password)) != nil {
		return Identity{}, ErrInvalidCredentials
	}

	profile, err := u.Profiles.GetByID(ctx, cred.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			// Profile insert may have failed at sign-up; fall back to a
			// nameless identity rather than locking the account out.
			return Identity{UserID: cred.UserID}, nil
		}
		return Identity{}, err
	}
	return Identity{UserID: cred.UserID, Name: profile.Name}, nil
}

// Execute creates the credential, then the profile. The two steps are
// deliberately not one transaction: a failed profile insert surfaces the
// error but leaves the credential in place, and sign-in tolerates the
// missing profile.
func (u SignUpUseCase) Execute(ctx context.Context, req SignUpRequest) (Identity, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		return Identity{}, ErrInvalidRequest
	}
	if u.Credentials == nil || u.Profiles == nil {
		return Identity{}, ports.ErrNotConfigured
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn().UTC()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	userID := uuid.NewString()
	err = u.Credentials.Create(ctx, ports.CredentialRecord{
		UserID:       userID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return Identity{}, ErrEmailTaken
		}
		return Identity{}, err
	}

	if err := u.Profiles.Create(ctx, ports.ProfileRecord{ID: userID, Name: name, CreatedAt: now}); err != nil {
		return Identity{}, fmt.Errorf("credential created but profile insert failed: %w", err)
	}
	return Identity{UserID: userID, Name: name}, nil
}
