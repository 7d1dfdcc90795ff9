// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/settings"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log logrus.FieldLogger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	// gen_random_uuid() lives in pgcrypto before PostgreSQL 13
	if err := m.db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		m.log.WithError(err).Warn("Could not ensure pgcrypto extension")
	}

	models := []interface{}{
		&product.Product{},
		&settings.PageSetting{},
	}

	for _, model := range models {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for the catalog queries
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_category_created ON products(category, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_rating ON products(rating DESC, review_count DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_availability ON products(availability)",
		"CREATE INDEX IF NOT EXISTS idx_page_setting_created_at ON t_page_setting(created_at)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("Failed to create index")
			failed++
		}
	}

	m.log.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Database indexes ensured")
	return nil
}

// SeedInitialData inserts demo catalog data and the default page settings
func (m *Migration) SeedInitialData() error {
	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := m.seedPageSettings(); err != nil {
		return fmt.Errorf("failed to seed page settings: %w", err)
	}
	return nil
}

type seedProduct struct {
	name          string
	category      string
	description   string
	price         int64
	originalPrice int64
	inventory     int
	rating        string
	reviews       int
	badges        string
	availability  product.Availability
}

var demoProducts = []seedProduct{
	{"Cà phê Trung Nguyên Sáng Tạo 8", "coffee", "Cà phê rang xay hạt Culi và Robusta từ Buôn Ma Thuột.", 189000, 215000, 40, "4.80", 128, "Bán chạy", product.AvailabilityInStock},
	{"Cà phê phin nhôm", "coffee", "Phin nhôm truyền thống pha một ly.", 45000, 0, 120, "4.50", 64, "", product.AvailabilityInStock},
	{"Nước mắm Phú Quốc 40 độ đạm", "pantry", "Nước mắm cá cơm ủ chượp 12 tháng.", 95000, 110000, 60, "4.90", 212, "Đặc sản", product.AvailabilityInStock},
	{"Bánh tráng Trảng Bàng", "snacks", "Bánh tráng phơi sương Tây Ninh, gói 500g.", 55000, 0, 0, "4.60", 87, "", product.AvailabilityOutOfStock},
	{"Trà Shan Tuyết Hà Giang", "tea", "Trà cổ thụ hái tay, hộp 200g.", 320000, 380000, 15, "4.70", 41, "Mới,Giới hạn", product.AvailabilityInStock},
	{"Nón lá Huế", "crafts", "Nón bài thơ đan tay từ làng Tây Hồ.", 150000, 0, 0, "4.40", 19, "Thủ công", product.AvailabilityPreOrder},
}

func (m *Migration) seedProducts() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.log.Debug("Products already seeded")
		return nil
	}

	for _, seed := range demoProducts {
		p := product.Product{
			ID:           uuid.New(),
			Name:         seed.name,
			Slug:         slug.Make(seed.name),
			Description:  seed.description,
			Category:     seed.category,
			Price:        decimal.NewFromInt(seed.price),
			Rating:       decimal.RequireFromString(seed.rating),
			ReviewCount:  seed.reviews,
			Availability: seed.availability,
			Inventory:    seed.inventory,
			Badges:       seed.badges,
			ImageURL:     "/placeholder.svg?height=400&width=400",
		}
		if seed.originalPrice > 0 {
			p.OriginalPrice = decimal.NewNullDecimal(decimal.NewFromInt(seed.originalPrice))
		}

		if err := m.db.Create(&p).Error; err != nil {
			m.log.WithError(err).WithField("slug", p.Slug).Warn("Failed to seed product")
			continue
		}
		m.log.WithField("slug", p.Slug).Debug("Seeded product")
	}

	return nil
}

func (m *Migration) seedPageSettings() error {
	var count int64
	if err := m.db.Model(&settings.PageSetting{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return m.db.Create(&settings.PageSetting{
		ID:   uuid.New(),
		Data: settings.DefaultAdminSettings(),
	}).Error
}
