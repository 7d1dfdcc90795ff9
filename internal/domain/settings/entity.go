// internal/domain/settings/entity.go
package settings

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/pkg/validation"
)

var (
	ErrSettingsNotFound = errors.New("page settings not found")
	ErrInvalidSettings  = errors.New("invalid page settings")
)

// Platform is a supported social network
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformYouTube   Platform = "youtube"
	PlatformZalo      Platform = "zalo"
	PlatformTikTok    Platform = "tiktok"
)

type Theme struct {
	PrimaryColor     string `json:"primaryColor" binding:"required,hexcolor"`
	HeaderBackground string `json:"headerBackground" binding:"required,hexcolor"`
	FooterBackground string `json:"footerBackground" binding:"required,hexcolor"`
}

type Branding struct {
	LogoURL      string `json:"logoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Contact holds the store's contact block. Coordinates are kept as strings
// the way the admin panel edits them.
type Contact struct {
	Phone     string `json:"phone"`
	Email     string `json:"email" binding:"omitempty,email"`
	Address   string `json:"address"`
	Latitude  string `json:"latitude" binding:"omitempty,latitude"`
	Longitude string `json:"longitude" binding:"omitempty,longitude"`
}

type SocialLink struct {
	ID       string   `json:"id" binding:"required"`
	Platform Platform `json:"platform" binding:"required,oneof=facebook twitter instagram linkedin youtube zalo tiktok"`
	URL      string   `json:"url" binding:"required,url"`
}

type Social struct {
	Links []SocialLink `json:"links" binding:"unique=ID,dive"`
}

// AdminSettings is the document edited from the admin panel
type AdminSettings struct {
	Theme    Theme    `json:"theme"`
	Branding Branding `json:"branding"`
	Contact  Contact  `json:"contact"`
	Social   Social   `json:"social"`
}

// PageSetting is one row of site settings
type PageSetting struct {
	ID        uuid.UUID     `gorm:"column:page_setting_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Data      AdminSettings `gorm:"column:data;type:jsonb;serializer:json;not null" json:"data"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (PageSetting) TableName() string { return "t_page_setting" }

// DefaultAdminSettings returns the settings used before an admin saves any
func DefaultAdminSettings() AdminSettings {
	return AdminSettings{
		Theme: Theme{
			PrimaryColor:     "#1f5d59",
			HeaderBackground: "#ffffff",
			FooterBackground: "#f8f9fa",
		},
		Branding: Branding{
			LogoURL:      "/placeholder.svg?height=40&width=120",
			ThumbnailURL: "/placeholder.svg?height=200&width=200",
		},
		Contact: Contact{
			Phone:     "+1 (555) 123-4567",
			Email:     "contact@example.com",
			Address:   "123 Main St, City, State 12345",
			Latitude:  "40.7128",
			Longitude: "-74.0060",
		},
		Social: Social{
			Links: []SocialLink{
				{ID: "1", Platform: PlatformFacebook, URL: "https://facebook.com/example"},
				{ID: "2", Platform: PlatformTwitter, URL: "https://twitter.com/example"},
			},
		},
	}
}

// Validate checks colours, contact fields and social links
func (s AdminSettings) Validate() error {
	if err := validation.Struct(s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, validation.Message(err))
	}
	return nil
}
