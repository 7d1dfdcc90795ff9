// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/pkg/validation"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product data")
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// Service handles catalog business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Page         int    `form:"page,default=1"`
	Limit        int    `form:"limit,default=12"`
	Category     string `form:"category"`
	Search       string `form:"search"`
	Sort         string `form:"sort,default=newest"`
	Availability string `form:"availability"`
}

// CreateRequest represents product creation data
type CreateRequest struct {
	Name          string           `json:"name" binding:"required,max=255"`
	Description   string           `json:"description"`
	Category      string           `json:"category" binding:"required,max=100"`
	Price         decimal.Decimal  `json:"price" binding:"gt=0"`
	OriginalPrice *decimal.Decimal `json:"originalPrice" binding:"omitempty,gt=0"`
	ImageURL      string           `json:"imageUrl" binding:"omitempty,max=500"`
	Inventory     int              `json:"inventory" binding:"min=0"`
	Availability  Availability     `json:"availability" binding:"omitempty,oneof=in-stock out-of-stock pre-order discontinued"`
	Badges        []string         `json:"badges" binding:"omitempty,dive,required"`
}

// Summary is the list and detail representation of a product
type Summary struct {
	Product
	BadgeList []string `json:"badges"`
	Discount  int      `json:"discount,omitempty"`
}

// ListResponse represents product list with pagination
type ListResponse struct {
	Products   []Summary  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// List retrieves products with filtering and pagination
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	req.normalize()

	var products []Product
	var total int64

	query := s.db.WithContext(ctx).Model(&Product{})

	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}

	if Availability(req.Availability).Valid() {
		query = query.Where("availability = ?", req.Availability)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	err := query.Order(orderClause(req.Sort)).Offset(offset).Limit(req.Limit).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	summaries := make([]Summary, 0, len(products))
	for i := range products {
		summaries = append(summaries, summarize(products[i]))
	}

	return &ListResponse{
		Products:   summaries,
		Pagination: paginate(req.Page, req.Limit, total),
	}, nil
}

// GetBySlug retrieves a single product by slug
func (s *Service) GetBySlug(ctx context.Context, productSlug string) (*Summary, error) {
	var p Product
	err := s.db.WithContext(ctx).Where("slug = ?", productSlug).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	summary := summarize(p)
	return &summary, nil
}

// Create creates a new product with a unique slug derived from its name
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	availability := req.Availability
	if availability == "" {
		availability = AvailabilityInStock
	}

	p := &Product{
		ID:           uuid.New(),
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		Inventory:    req.Inventory,
		Availability: availability.ForStock(req.Inventory),
		Badges:       strings.Join(req.Badges, ","),
	}
	if req.OriginalPrice != nil {
		p.OriginalPrice = decimal.NewNullDecimal(*req.OriginalPrice)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productSlug, err := uniqueSlug(tx, req.Name)
		if err != nil {
			return err
		}
		p.Slug = productSlug
		return tx.Create(p).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return p, nil
}

func (r *CreateRequest) validate() error {
	if err := validation.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProduct, validation.Message(err))
	}
	return nil
}

func (r *ListRequest) normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = defaultPageSize
	}
	if r.Limit > maxPageSize {
		r.Limit = maxPageSize
	}
	r.Search = strings.TrimSpace(r.Search)
}

// uniqueSlug slugifies name and appends a counter until no product, deleted
// or not, holds it
func uniqueSlug(tx *gorm.DB, name string) (string, error) {
	base := slug.Make(name)
	candidate := base

	for i := 2; ; i++ {
		var count int64
		if err := tx.Unscoped().Model(&Product{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func orderClause(sort string) string {
	switch sort {
	case "price-asc":
		return "price ASC"
	case "price-desc":
		return "price DESC"
	case "rating":
		return "rating DESC, review_count DESC"
	case "name":
		return "name ASC"
	default:
		return "created_at DESC"
	}
}

func paginate(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

func summarize(p Product) Summary {
	return Summary{
		Product:   p,
		BadgeList: p.BadgeList(),
		Discount:  p.Discount(),
	}
}
