package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kalaconnect/kalaconnect-backend/pkg/db"
	"github.com/kalaconnect/kalaconnect-backend/pkg/db/models"
	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
)

// Service exposes marketplace listing operations.
type Service interface {
	CreateProduct(ctx context.Context, artisanID uuid.UUID, artisanName string, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a listing.
type CreateProductInput struct {
	Title           string
	Description     string
	Price           decimal.Decimal
	Category        enums.ProductCategory
	Images          []string
	Tags            []string
	CulturalContext map[string]any
	StockQuantity   *int
	Status          enums.ProductStatus
}

// ListProductsInput captures the public listing query.
type ListProductsInput struct {
	Search     string
	Category   string
	PriceRange string
	Limit      int
}

// service implements the product service.
type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// CreateProduct validates and persists a new listing for the artisan.
func (s *service) CreateProduct(ctx context.Context, artisanID uuid.UUID, artisanName string, input CreateProductInput) (*ProductDTO, error) {
	if artisanID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artisan id required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", input.Category))
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.StockQuantity != nil && *input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
	}

	status := input.Status
	if status == "" {
		status = enums.ProductStatusActive
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}

	model := &models.Product{
		ID:              uuid.New(),
		ArtisanID:       artisanID,
		ArtisanName:     artisanName,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		Price:           input.Price,
		Category:        input.Category,
		Images:          input.Images,
		Tags:            input.Tags,
		CulturalContext: input.CulturalContext,
		StockQuantity:   input.StockQuantity,
		Status:          status,
	}

	created, err := s.repo.CreateProduct(ctx, model)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

// GetProduct loads a single listing.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return NewProductDTO(row), nil
}

// ListProducts returns active listings filtered by the public query.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error) {
	filters := ListFilters{Search: input.Search, Limit: input.Limit}

	if input.Category != "" {
		category, err := enums.ParseProductCategory(input.Category)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		filters.Category = &category
	}

	if input.PriceRange != "" {
		minPrice, maxPrice, err := parsePriceRange(input.PriceRange)
		if err != nil {
			return nil, err
		}
		filters.PriceMin = minPrice
		filters.PriceMax = maxPrice
	}

	rows, err := s.repo.ListProducts(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewProductDTO(&rows[i]))
	}
	return dtos, nil
}

// parsePriceRange maps the fixed public buckets to decimal bounds.
func parsePriceRange(value string) (*decimal.Decimal, *decimal.Decimal, error) {
	bounds := func(minVal, maxVal int64) (*decimal.Decimal, *decimal.Decimal) {
		lo := decimal.NewFromInt(minVal)
		hi := decimal.NewFromInt(maxVal)
		return &lo, &hi
	}

	switch value {
	case "0-500":
		lo, hi := bounds(0, 500)
		return lo, hi, nil
	case "500-2000":
		lo, hi := bounds(500, 2000)
		return lo, hi, nil
	case "2000-5000":
		lo, hi := bounds(2000, 5000)
		return lo, hi, nil
	case "5000+":
		lo := decimal.NewFromInt(5000)
		return &lo, nil, nil
	default:
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priceRange %q", value))
	}
}
