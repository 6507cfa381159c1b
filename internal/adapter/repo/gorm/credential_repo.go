package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lastcity/internal/adapter/repo/gorm/model"
	"lastcity/internal/app/ports"
)

type CredentialRepo struct {
	db *gorm.DB
}

func NewCredentialRepo(db *gorm.DB) CredentialRepo {
	return CredentialRepo{db: db}
}

var _ ports.CredentialRepository = CredentialRepo{}

func (r CredentialRepo) Create(ctx context.Context, credential ports.CredentialRecord) error {
	row := model.Credential{
		UserID:       credential.UserID,
		Email:        credential.Email,
		PasswordHash: credential.PasswordHash,
		CreatedAt:    credential.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r CredentialRepo) GetByEmail(ctx context.Context, email string) (ports.CredentialRecord, error) {
	var row model.Credential
	if err := r.db.WithContext(ctx).Where(&model.Credential{Email: email}).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CredentialRecord{}, ports.ErrNotFound
		}
		return ports.CredentialRecord{}, err
	}
	return ports.CredentialRecord{
		UserID:       row.UserID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}, nil
}
