package service

import (
	"accordee/internal/database"
	"accordee/internal/storage"
	"accordee/internal/types"
	"accordee/logger"
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"path"
	"strings"
)

type (
	MediaService interface {
		Upload(ctx context.Context, owner *types.User, file types.File) (*types.Media, error)
		List(ctx context.Context, owner *types.User) ([]*types.Media, error)
		Delete(ctx context.Context, owner *types.User, id uint) error
	}

	mediaService struct {
		mediaRepository database.MediaRepository
		store           storage.Storage
	}
)

// NewMediaService accepts a nil store, in which case every operation fails with a configuration error.
func NewMediaService(mediaRepo database.MediaRepository, store storage.Storage) MediaService {
	return &mediaService{mediaRepository: mediaRepo, store: store}
}

func (m *mediaService) Upload(ctx context.Context, owner *types.User, file types.File) (*types.Media, error) {
	if m.store == nil {
		return nil, types.NewError(types.KindConfiguration, storage.ErrNotConfigured.Error(), nil)
	}

	name := path.Base(strings.ReplaceAll(file.Stat.Name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return nil, types.ErrInvalidInput("file name is required", nil)
	}

	key := fmt.Sprintf("%s/%s-%s", owner.Username, uuid.NewString(), name)
	if err := m.store.Save(ctx, key, file); err != nil {
		return nil, types.ErrInternal(err)
	}

	media := &types.Media{
		UserID:      owner.ID,
		Key:         key,
		URL:         m.store.URL(key),
		ContentType: file.GetContentType(),
		Size:        file.Stat.Size,
	}
	if err := m.mediaRepository.Save(ctx, media); err != nil {
		if derr := m.store.Delete(ctx, key); derr != nil {
			logger.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(derr))
		}
		return nil, types.ErrInternal(err)
	}

	logger.Info("media uploaded",
		zap.Uint("user_id", owner.ID),
		zap.String("key", key),
		zap.Int64("size", media.Size))
	return media, nil
}

func (m *mediaService) List(ctx context.Context, owner *types.User) ([]*types.Media, error) {
	result, err := m.mediaRepository.FindByUserID(ctx, owner.ID)
	if err != nil {
		return nil, types.ErrInternal(err)
	}
	return result, nil
}

func (m *mediaService) Delete(ctx context.Context, owner *types.User, id uint) error {
	if m.store == nil {
		return types.NewError(types.KindConfiguration, storage.ErrNotConfigured.Error(), nil)
	}

	media, err := m.mediaRepository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.ErrNotFound("media not found")
		}
		return types.ErrInternal(err)
	}
	if media.UserID != owner.ID {
		return types.ErrForbidden("you do not own this media")
	}

	if err := m.store.Delete(ctx, media.Key); err != nil {
		return types.ErrInternal(err)
	}
	if err := m.mediaRepository.Delete(ctx, id); err != nil {
		return types.ErrInternal(err)
	}
	return nil
}
