package database

import (
	"accordee/internal/types"
	"context"
	"encoding/json"
	"errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

// ErrStaleVerification is returned when the token or domain a verification outcome was computed
// against no longer matches the stored record.
var ErrStaleVerification = errors.New("verification record changed since it was read")

type (
	dashboardRepository struct {
		db *gorm.DB
	}
)

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (d *dashboardRepository) Save(ctx context.Context, dashboard *types.Dashboard) error {
	return d.db.
		WithContext(ctx).
		Save(dashboard).
		Error
}

func (d *dashboardRepository) FindByID(ctx context.Context, id uint) (*types.Dashboard, error) {
	dashboard := &types.Dashboard{}
	err := d.db.
		WithContext(ctx).
		Preload("Sections", orderedSections).
		Where("id = ?", id).
		First(dashboard).Error
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (d *dashboardRepository) FindByURL(ctx context.Context, url string) (*types.Dashboard, error) {
	dashboard := &types.Dashboard{}
	err := d.db.
		WithContext(ctx).
		Preload("Sections", orderedSections).
		Where("url = ?", url).
		First(dashboard).Error
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (d *dashboardRepository) FindByUserID(ctx context.Context, userID uint) ([]*types.Dashboard, error) {
	result := make([]*types.Dashboard, 0)
	err := d.db.
		WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&result).Error
	return result, err
}

func (d *dashboardRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := d.db.
		WithContext(ctx).
		Model(&types.Dashboard{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (d *dashboardRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := d.db.
		WithContext(ctx).
		Model(&types.Dashboard{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the dashboard together with its sections. The verification record is part of
// the dashboard row and goes with it.
func (d *dashboardRepository) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dashboard_id = ?", id).Delete(&types.Section{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&types.Dashboard{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (d *dashboardRepository) ReplaceSections(ctx context.Context, dashboardID uint, sections []*types.Section) ([]*types.Section, error) {
	result := make([]*types.Section, 0, len(sections))
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dashboard_id = ?", dashboardID).Delete(&types.Section{}).Error; err != nil {
			return err
		}

		if len(sections) > 0 {
			for _, s := range sections {
				s.ID = 0
				s.DashboardID = dashboardID
			}
			if err := tx.Create(&sections).Error; err != nil {
				return err
			}
		}

		return orderedSections(tx.Where("dashboard_id = ?", dashboardID)).Find(&result).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *dashboardRepository) GetVerification(ctx context.Context, dashboardID uint) (*types.VerificationRecord, error) {
	dashboard := &types.Dashboard{}
	err := d.db.
		WithContext(ctx).
		Select("id", "custom_domain", "verification_token", "is_domain_verified",
			"provisioned_domain", "proxy_host_response", "verified_at").
		Where("id = ?", dashboardID).
		First(dashboard).Error
	if err != nil {
		return nil, err
	}
	return dashboard.VerificationRecord(), nil
}

// SetToken stores a new token and domain and clears the verified flag in one statement.
func (d *dashboardRepository) SetToken(ctx context.Context, dashboardID uint, token, domain string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&types.Dashboard{}).
			Where("id = ?", dashboardID).
			Updates(map[string]interface{}{
				"verification_token": token,
				"custom_domain":      domain,
				"is_domain_verified": false,
				"verified_at":        nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// SetVerified persists a DNS outcome only if the record still holds the token/domain pair the
// check ran against.
func (d *dashboardRepository) SetVerified(ctx context.Context, dashboardID uint, expect types.VerificationPair, verified bool) error {
	updates := map[string]interface{}{"is_domain_verified": verified}
	if verified {
		updates["verified_at"] = time.Now().UTC()
	}

	res := d.db.
		WithContext(ctx).
		Model(&types.Dashboard{}).
		Where("id = ? AND verification_token = ? AND custom_domain = ?", dashboardID, expect.Token, expect.Domain).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return d.missingOrStale(ctx, dashboardID)
	}
	return nil
}

func (d *dashboardRepository) SetProvisioned(ctx context.Context, dashboardID uint, domain string, response json.RawMessage) error {
	res := d.db.
		WithContext(ctx).
		Model(&types.Dashboard{}).
		Where("id = ? AND custom_domain = ?", dashboardID, domain).
		Updates(map[string]interface{}{
			"provisioned_domain":  domain,
			"proxy_host_response": datatypes.JSON(response),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return d.missingOrStale(ctx, dashboardID)
	}
	return nil
}

// FindAwaitingVerification returns records with a domain and token set that are either unverified
// or verified without a registered proxy host.
func (d *dashboardRepository) FindAwaitingVerification(ctx context.Context) ([]*types.VerificationRecord, error) {
	dashboards := make([]*types.Dashboard, 0)
	err := d.db.
		WithContext(ctx).
		Where("custom_domain <> '' AND verification_token <> ''").
		Where("is_domain_verified = ? OR COALESCE(provisioned_domain, '') <> custom_domain", false).
		Order("id ASC").
		Find(&dashboards).Error
	if err != nil {
		return nil, err
	}

	result := make([]*types.VerificationRecord, 0, len(dashboards))
	for _, next := range dashboards {
		result = append(result, next.VerificationRecord())
	}
	return result, nil
}

func (d *dashboardRepository) missingOrStale(ctx context.Context, dashboardID uint) error {
	var count int64
	err := d.db.
		WithContext(ctx).
		Model(&types.Dashboard{}).
		Where("id = ?", dashboardID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrStaleVerification
}

func orderedSections(db *gorm.DB) *gorm.DB {
	return db.Order("order_num ASC").Order("id ASC")
}
