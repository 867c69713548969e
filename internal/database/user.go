package database

import (
	"accordee/internal/types"
	"context"
	"gorm.io/gorm"
)

type (
	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and, when given, the user's first dashboard in a single transaction.
func (u *userRepository) Create(ctx context.Context, user *types.User, firstDashboard *types.Dashboard) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if firstDashboard == nil {
			return nil
		}

		firstDashboard.UserID = user.ID
		return tx.Create(firstDashboard).Error
	})
}

func (u *userRepository) FindByID(ctx context.Context, id uint) (*types.User, error) {
	user := &types.User{}
	err := u.db.WithContext(ctx).Where("id = ?", id).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userRepository) FindByEmail(ctx context.Context, email string) (*types.User, error) {
	user := &types.User{}
	err := u.db.WithContext(ctx).Where("email = ?", email).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userRepository) FindByUsername(ctx context.Context, username string) (*types.User, error) {
	user := &types.User{}
	err := u.db.WithContext(ctx).Where("username = ?", username).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}
