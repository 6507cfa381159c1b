package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lastcity/internal/adapter/repo/gorm/model"
	"lastcity/internal/app/ports"
)

type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepo {
	return ProfileRepo{db: db}
}

var _ ports.ProfileRepository = ProfileRepo{}

func (r ProfileRepo) Create(ctx context.Context, profile ports.ProfileRecord) error {
	row := model.Profile{
		ID:        profile.ID,
		Name:      profile.Name,
		CreatedAt: profile.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r ProfileRepo) GetByID(ctx context.Context, id string) (ports.ProfileRecord, error) {
	var row model.Profile
	if err := r.db.WithContext(ctx).Where(&model.Profile{ID: id}).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ProfileRecord{}, ports.ErrNotFound
		}
		return ports.ProfileRecord{}, err
	}
	return ports.ProfileRecord{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
	}, nil
}
