// internal/domain/settings/service.go
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service handles page settings persistence
type Service struct {
	db *gorm.DB
}

// NewService creates a new page settings service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SaveRequest is the body of create and update calls
type SaveRequest struct {
	Data AdminSettings `json:"data" binding:"required"`
}

// Get returns the first settings row, or an unsaved row with the defaults
// when none exists yet
func (s *Service) Get(ctx context.Context) (*PageSetting, error) {
	var setting PageSetting
	err := s.db.WithContext(ctx).Order("created_at ASC").Limit(1).Find(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve page settings: %w", err)
	}
	if setting.ID == uuid.Nil {
		return &PageSetting{Data: DefaultAdminSettings()}, nil
	}
	return &setting, nil
}

// Create inserts a new settings row
func (s *Service) Create(ctx context.Context, data AdminSettings) (*PageSetting, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	setting := &PageSetting{ID: uuid.New(), Data: data}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(setting).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create page settings: %w", err)
	}
	return setting, nil
}

// Update replaces the data of an existing settings row
func (s *Service) Update(ctx context.Context, id uuid.UUID, data AdminSettings) (*PageSetting, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	var setting PageSetting
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_setting_id = ?", id).First(&setting).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSettingsNotFound
			}
			return err
		}

		setting.Data = data
		return tx.Save(&setting).Error
	})
	if errors.Is(err, ErrSettingsNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update page settings: %w", err)
	}
	return &setting, nil
}
