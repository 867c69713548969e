package service

import (
	"accordee/internal/database"
	"accordee/internal/misc"
	"accordee/internal/types"
	"accordee/logger"
	"context"
	"errors"
	"fmt"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type (
	DashboardService interface {
		Create(ctx context.Context, owner *types.User, params types.CreateDashboardParams) (*types.Dashboard, error)
		ListByUsername(ctx context.Context, username string) ([]*types.Dashboard, error)
		GetByURL(ctx context.Context, url string) (*types.Dashboard, error)
		// GetOwned returns the dashboard if owner may modify it.
		GetOwned(ctx context.Context, owner *types.User, id uint) (*types.Dashboard, error)
		Update(ctx context.Context, owner *types.User, id uint, params types.UpdateDashboardParams) (*types.Dashboard, error)
		Delete(ctx context.Context, owner *types.User, id uint) error
		ReplaceSections(ctx context.Context, owner *types.User, id uint, params types.ReplaceSectionsParams) ([]*types.Section, error)
	}

	dashboardService struct {
		dashboardRepository database.DashboardRepository
		userRepository      database.UserRepository
		maxDashboards       int
		maxSections         int
	}
)

func NewDashboardService(
	dashboardRepo database.DashboardRepository,
	userRepo database.UserRepository,
	maxDashboards, maxSections int) DashboardService {
	return &dashboardService{
		dashboardRepository: dashboardRepo,
		userRepository:      userRepo,
		maxDashboards:       maxDashboards,
		maxSections:         maxSections,
	}
}

func (d *dashboardService) Create(ctx context.Context, owner *types.User, params types.CreateDashboardParams) (*types.Dashboard, error) {
	if err := misc.Validator.Struct(params); err != nil {
		return nil, types.ErrInvalidInput("dashboard url must be a lowercase slug of 2 to 64 characters", err)
	}

	count, err := d.dashboardRepository.CountByUserID(ctx, owner.ID)
	if err != nil {
		return nil, types.ErrInternal(err)
	}
	if count >= int64(d.maxDashboards) {
		return nil, types.ErrConflict(fmt.Sprintf("you can only create up to %d dashboards", d.maxDashboards))
	}

	if err := d.ensureURLAvailable(ctx, params.URL, 0); err != nil {
		return nil, err
	}

	dashboard := &types.Dashboard{
		UserID:          owner.ID,
		URL:             params.URL,
		Title:           lo.Ternary(params.Title != "", params.Title, params.URL),
		Layout:          lo.Ternary(params.Layout != "", params.Layout, types.DefaultLayout),
		BackgroundStyle: types.DefaultBackgroundStyle,
	}
	if err := d.dashboardRepository.Save(ctx, dashboard); err != nil {
		return nil, dashboardError(err)
	}

	logger.Info("dashboard created",
		zap.Uint("dashboard_id", dashboard.ID),
		zap.Uint("user_id", owner.ID),
		zap.String("url", dashboard.URL))
	return dashboard, nil
}

func (d *dashboardService) ListByUsername(ctx context.Context, username string) ([]*types.Dashboard, error) {
	user, err := d.userRepository.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound("user not found")
		}
		return nil, types.ErrInternal(err)
	}

	dashboards, err := d.dashboardRepository.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, types.ErrInternal(err)
	}
	return dashboards, nil
}

func (d *dashboardService) GetByURL(ctx context.Context, url string) (*types.Dashboard, error) {
	dashboard, err := d.dashboardRepository.FindByURL(ctx, url)
	if err != nil {
		return nil, dashboardError(err)
	}
	return dashboard, nil
}

func (d *dashboardService) GetOwned(ctx context.Context, owner *types.User, id uint) (*types.Dashboard, error) {
	dashboard, err := d.dashboardRepository.FindByID(ctx, id)
	if err != nil {
		return nil, dashboardError(err)
	}
	if dashboard.UserID != owner.ID {
		return nil, types.ErrForbidden("you do not own this dashboard")
	}
	return dashboard, nil
}

func (d *dashboardService) Update(ctx context.Context, owner *types.User, id uint, params types.UpdateDashboardParams) (*types.Dashboard, error) {
	if err := misc.Validator.Struct(params); err != nil {
		return nil, types.ErrInvalidInput("invalid dashboard fields", err)
	}

	dashboard, err := d.GetOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if params.URL != nil && *params.URL != dashboard.URL {
		if err := d.ensureURLAvailable(ctx, *params.URL, dashboard.ID); err != nil {
			return nil, err
		}
		fields["url"] = *params.URL
	}
	if params.Title != nil {
		fields["title"] = *params.Title
	}
	if params.ThumbnailURL != nil {
		fields["thumbnail_url"] = *params.ThumbnailURL
	}
	if params.Layout != nil {
		fields["layout"] = *params.Layout
	}
	if params.BackgroundStyle != nil {
		fields["background_style"] = *params.BackgroundStyle
	}

	if len(fields) > 0 {
		if err := d.dashboardRepository.Update(ctx, id, fields); err != nil {
			return nil, dashboardError(err)
		}
	}
	return d.GetOwned(ctx, owner, id)
}

func (d *dashboardService) Delete(ctx context.Context, owner *types.User, id uint) error {
	dashboard, err := d.GetOwned(ctx, owner, id)
	if err != nil {
		return err
	}

	if err := d.dashboardRepository.Delete(ctx, id); err != nil {
		return dashboardError(err)
	}

	if dashboard.ProvisionedDomain != "" {
		logger.Warn("deleted dashboard still has a proxy host registered",
			zap.Uint("dashboard_id", id),
			zap.String("domain", dashboard.ProvisionedDomain))
	}
	return nil
}

func (d *dashboardService) ReplaceSections(ctx context.Context, owner *types.User, id uint, params types.ReplaceSectionsParams) ([]*types.Section, error) {
	if err := misc.Validator.Struct(params); err != nil {
		return nil, types.ErrInvalidInput("invalid sections", err)
	}
	if len(params.Sections) > d.maxSections {
		return nil, types.ErrConflict(fmt.Sprintf("you can only add up to %d sections per dashboard", d.maxSections))
	}

	if _, err := d.GetOwned(ctx, owner, id); err != nil {
		return nil, err
	}

	sections := lo.Map(params.Sections, func(item types.SectionParams, _ int) *types.Section {
		return &types.Section{
			Title:        item.Title,
			Color:        item.Color,
			Content:      item.Content,
			OrderNum:     item.OrderNum,
			ThumbnailURL: item.ThumbnailURL,
		}
	})
	result, err := d.dashboardRepository.ReplaceSections(ctx, id, sections)
	if err != nil {
		return nil, types.ErrInternal(err)
	}
	return result, nil
}

func (d *dashboardService) ensureURLAvailable(ctx context.Context, url string, self uint) error {
	existing, err := d.dashboardRepository.FindByURL(ctx, url)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return types.ErrInternal(err)
	}
	if existing.ID != self {
		return types.ErrConflict("dashboard url already exists")
	}
	return nil
}

func dashboardError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.ErrNotFound("dashboard not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return types.ErrConflict("dashboard url is already taken")
	default:
		return types.ErrInternal(err)
	}
}
