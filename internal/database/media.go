package database

import (
	"accordee/internal/types"
	"context"
	"gorm.io/gorm"
)

type (
	mediaRepository struct {
		db *gorm.DB
	}
)

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (m *mediaRepository) Save(ctx context.Context, media *types.Media) error {
	return m.db.WithContext(ctx).Save(media).Error
}

func (m *mediaRepository) FindByID(ctx context.Context, id uint) (*types.Media, error) {
	media := &types.Media{}
	err := m.db.WithContext(ctx).Where("id = ?", id).First(media).Error
	if err != nil {
		return nil, err
	}
	return media, nil
}

func (m *mediaRepository) FindByKey(ctx context.Context, key string) (*types.Media, error) {
	media := &types.Media{}
	err := m.db.WithContext(ctx).Where(&types.Media{Key: key}).First(media).Error
	if err != nil {
		return nil, err
	}
	return media, nil
}

func (m *mediaRepository) FindByUserID(ctx context.Context, userID uint) ([]*types.Media, error) {
	result := make([]*types.Media, 0)
	err := m.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&result).Error
	return result, err
}

func (m *mediaRepository) Delete(ctx context.Context, id uint) error {
	res := m.db.WithContext(ctx).Where("id = ?", id).Delete(&types.Media{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
