package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kalaconnect/kalaconnect-backend/pkg/db/models"
)

// ProductDTO represents the listing payload returned to clients.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	ArtisanID       uuid.UUID       `json:"artisan_id"`
	ArtisanName     string          `json:"artisan_name"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category"`
	Images          []string        `json:"images"`
	Tags            []string        `json:"tags,omitempty"`
	CulturalContext map[string]any  `json:"cultural_context,omitempty"`
	StockQuantity   *int            `json:"stock_quantity,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:              product.ID,
		ArtisanID:       product.ArtisanID,
		ArtisanName:     product.ArtisanName,
		Title:           product.Title,
		Description:     product.Description,
		Price:           product.Price,
		Category:        string(product.Category),
		Images:          append([]string{}, product.Images...),
		Tags:            append([]string{}, product.Tags...),
		CulturalContext: product.CulturalContext,
		StockQuantity:   product.StockQuantity,
		Status:          string(product.Status),
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
}
