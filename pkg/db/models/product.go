package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
)

// Product represents an artisan listing. Images, tags and cultural context
// are stored as JSON so the schema works on both postgres and sqlite.
type Product struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	ArtisanID       uuid.UUID             `gorm:"column:artisan_id;type:uuid;not null;index"`
	ArtisanName     string                `gorm:"column:artisan_name;not null"`
	Title           string                `gorm:"column:title;not null"`
	Description     string                `gorm:"column:description;not null"`
	Price           decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Category        enums.ProductCategory `gorm:"column:category;not null;index"`
	Images          []string              `gorm:"column:images;serializer:json"`
	Tags            []string              `gorm:"column:tags;serializer:json"`
	CulturalContext map[string]any        `gorm:"column:cultural_context;serializer:json"`
	StockQuantity   *int                  `gorm:"column:stock_quantity"`
	Status          enums.ProductStatus   `gorm:"column:status;not null;default:active"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
