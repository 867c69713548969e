package types

import (
	"encoding/json"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

const (
	DefaultLayout          = "basic"
	DefaultBackgroundStyle = "style1"
)

type (
	User struct {
		ID        uint           `gorm:"primaryKey" json:"id"`
		Username  string         `gorm:"uniqueIndex;not null" json:"username"`
		Email     string         `gorm:"uniqueIndex;not null" json:"email"`
		Password  string         `gorm:"not null" json:"-"`
		CreatedAt time.Time      `json:"created_at"`
		UpdatedAt time.Time      `json:"-"`
		DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	}

	// Dashboard is a published page. The custom domain columns double as the verification record
	// for the dashboard, so they live and die with the row.
	Dashboard struct {
		ID              uint      `gorm:"primaryKey" json:"id"`
		UserID          uint      `gorm:"not null;index" json:"user_id"`
		URL             string    `gorm:"uniqueIndex;not null" json:"url"`
		Title           string    `json:"title"`
		ThumbnailURL    string    `json:"thumbnail_url"`
		Layout          string    `gorm:"default:basic" json:"layout"`
		BackgroundStyle string    `gorm:"default:style1" json:"background_style"`
		Sections        []Section `gorm:"foreignKey:DashboardID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`

		CustomDomain      string         `json:"-"`
		VerificationToken string         `json:"-"`
		IsDomainVerified  bool           `gorm:"not null;default:false" json:"-"`
		ProvisionedDomain string         `json:"-"`
		ProxyHostResponse datatypes.JSON `json:"-"`
		VerifiedAt        *time.Time     `json:"-"`

		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"-"`
	}

	Section struct {
		ID           uint   `gorm:"primaryKey" json:"id"`
		DashboardID  uint   `gorm:"not null;index" json:"dashboard_id"`
		Title        string `json:"title"`
		Color        string `json:"color"`
		Content      string `json:"content"`
		OrderNum     int    `json:"order_num"`
		ThumbnailURL string `json:"thumbnail_url"`
	}

	Media struct {
		ID          uint      `gorm:"primaryKey" json:"id"`
		UserID      uint      `gorm:"not null;index" json:"user_id"`
		Key         string    `gorm:"uniqueIndex;not null" json:"key"`
		URL         string    `json:"url"`
		ContentType string    `json:"content_type"`
		Size        int64     `json:"size"`
		CreatedAt   time.Time `json:"created_at"`
	}
)

func (d *Dashboard) VerificationRecord() *VerificationRecord {
	var response json.RawMessage
	if len(d.ProxyHostResponse) > 0 && string(d.ProxyHostResponse) != "null" {
		response = json.RawMessage(d.ProxyHostResponse)
	}

	return &VerificationRecord{
		DashboardID:       d.ID,
		CustomDomain:      d.CustomDomain,
		VerificationToken: d.VerificationToken,
		IsVerified:        d.IsDomainVerified,
		ProvisionedDomain: d.ProvisionedDomain,
		ProxyHostResponse: response,
		VerifiedAt:        d.VerifiedAt,
	}
}
