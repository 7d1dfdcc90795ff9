package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAdminSettings_AreValid(t *testing.T) {
	assert.NoError(t, DefaultAdminSettings().Validate())
}

func TestAdminSettings_JSONShape(t *testing.T) {
	raw, err := json.Marshal(DefaultAdminSettings())
	require.NoError(t, err)

	var doc map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "#1f5d59", doc["theme"]["primaryColor"])
	assert.Equal(t, "/placeholder.svg?height=40&width=120", doc["branding"]["logoUrl"])
	assert.Equal(t, "-74.0060", doc["contact"]["longitude"])
	assert.Len(t, doc["social"]["links"], 2)
}

func TestAdminSettings_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(s *AdminSettings)
		field string
	}{
		{"bad colour", func(s *AdminSettings) { s.Theme.PrimaryColor = "teal" }, "theme.primaryColor"},
		{"missing colour", func(s *AdminSettings) { s.Theme.FooterBackground = "" }, "theme.footerBackground"},
		{"bad email", func(s *AdminSettings) { s.Contact.Email = "not-an-email" }, "contact.email"},
		{"latitude out of range", func(s *AdminSettings) { s.Contact.Latitude = "91" }, "contact.latitude"},
		{"longitude not a number", func(s *AdminSettings) { s.Contact.Longitude = "west" }, "contact.longitude"},
		{"unknown platform", func(s *AdminSettings) {
			s.Social.Links = append(s.Social.Links, SocialLink{ID: "3", Platform: "myspace", URL: "https://myspace.com/x"})
		}, "social.links[2].platform"},
		{"duplicate link id", func(s *AdminSettings) {
			s.Social.Links = append(s.Social.Links, SocialLink{ID: "1", Platform: PlatformZalo, URL: "https://zalo.me/x"})
		}, "social.links"},
		{"link without url", func(s *AdminSettings) {
			s.Social.Links = append(s.Social.Links, SocialLink{ID: "9", Platform: PlatformTikTok})
		}, "social.links[2].url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAdminSettings()
			tt.mut(&s)
			err := s.Validate()
			require.ErrorIs(t, err, ErrInvalidSettings)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestAdminSettings_AcceptsVietnamesePlatforms(t *testing.T) {
	s := DefaultAdminSettings()
	s.Social.Links = append(s.Social.Links,
		SocialLink{ID: "3", Platform: PlatformZalo, URL: "https://zalo.me/storefront"},
		SocialLink{ID: "4", Platform: PlatformTikTok, URL: "https://tiktok.com/@storefront"},
	)
	s.Theme.HeaderBackground = "#FFF"
	s.Contact.Latitude = "10.7769"
	s.Contact.Longitude = "106.7009"

	assert.NoError(t, s.Validate())
}
