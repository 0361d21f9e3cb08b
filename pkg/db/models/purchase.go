package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
)

// Purchase records an initiated purchase. Settlement happens off-platform.
type Purchase struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index"`
	BuyerID   uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID  uuid.UUID            `gorm:"column:seller_id;type:uuid;not null"`
	Quantity  int                  `gorm:"column:quantity;not null;default:1"`
	Amount    decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	Status    enums.PurchaseStatus `gorm:"column:status;not null;default:initiated"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}
