package database

import (
	"accordee/internal/types"
	"context"
	"encoding/json"
)

type UserRepository interface {
	Create(ctx context.Context, user *types.User, firstDashboard *types.Dashboard) error
	FindByID(ctx context.Context, id uint) (*types.User, error)
	FindByEmail(ctx context.Context, email string) (*types.User, error)
	FindByUsername(ctx context.Context, username string) (*types.User, error)
}

type DashboardRepository interface {
	Save(ctx context.Context, dashboard *types.Dashboard) error
	FindByID(ctx context.Context, id uint) (*types.Dashboard, error)
	FindByURL(ctx context.Context, url string) (*types.Dashboard, error)
	FindByUserID(ctx context.Context, userID uint) ([]*types.Dashboard, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	ReplaceSections(ctx context.Context, dashboardID uint, sections []*types.Section) ([]*types.Section, error)

	VerificationRepository
}

// VerificationRepository persists the per-dashboard verification record.
type VerificationRepository interface {
	GetVerification(ctx context.Context, dashboardID uint) (*types.VerificationRecord, error)
	SetToken(ctx context.Context, dashboardID uint, token, domain string) error
	SetVerified(ctx context.Context, dashboardID uint, expect types.VerificationPair, verified bool) error
	SetProvisioned(ctx context.Context, dashboardID uint, domain string, response json.RawMessage) error
	FindAwaitingVerification(ctx context.Context) ([]*types.VerificationRecord, error)
}

type MediaRepository interface {
	Save(ctx context.Context, media *types.Media) error
	FindByID(ctx context.Context, id uint) (*types.Media, error)
	FindByKey(ctx context.Context, key string) (*types.Media, error)
	FindByUserID(ctx context.Context, userID uint) ([]*types.Media, error)
	Delete(ctx context.Context, id uint) error
}
