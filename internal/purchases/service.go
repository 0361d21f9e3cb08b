package purchase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kalaconnect/kalaconnect-backend/pkg/db"
	"github.com/kalaconnect/kalaconnect-backend/pkg/db/models"
	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
)

// Service exposes purchase operations. Settlement happens off-platform,
// so a purchase only ever records intent.
type Service interface {
	CreatePurchase(ctx context.Context, buyerID uuid.UUID, input CreatePurchaseInput) (*PurchaseDTO, error)
	ListPurchases(ctx context.Context, buyerID uuid.UUID) ([]PurchaseDTO, error)
}

// CreatePurchaseInput holds the validated payload to initiate a purchase.
type CreatePurchaseInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// PurchaseDTO confirms an initiated purchase.
type PurchaseDTO struct {
	PurchaseID uuid.UUID       `json:"purchase_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	BuyerID    uuid.UUID       `json:"buyer_id"`
	SellerID   uuid.UUID       `json:"seller_id"`
	Quantity   int             `json:"quantity"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	Message    string          `json:"message,omitempty"`
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// service implements the purchase service.
type service struct {
	repo        *Repository
	productRepo productLoader
}

// NewService constructs a purchase service instance.
func NewService(repo *Repository, productRepo productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, productRepo: productRepo}, nil
}

// CreatePurchase looks up the product and records an initiated purchase
// with amount = price * quantity.
func (s *service) CreatePurchase(ctx context.Context, buyerID uuid.UUID, input CreatePurchaseInput) (*PurchaseDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	purchase := &models.Purchase{
		ID:        uuid.New(),
		ProductID: product.ID,
		BuyerID:   buyerID,
		SellerID:  product.ArtisanID,
		Quantity:  quantity,
		Amount:    product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Status:    enums.PurchaseStatusInitiated,
	}

	created, err := s.repo.CreatePurchase(ctx, purchase)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert purchase")
	}

	return &PurchaseDTO{
		PurchaseID: created.ID,
		ProductID:  created.ProductID,
		BuyerID:    created.BuyerID,
		SellerID:   created.SellerID,
		Quantity:   created.Quantity,
		Amount:     created.Amount,
		Status:     string(created.Status),
		Message:    "Purchase initiated successfully",
	}, nil
}

// ListPurchases returns the buyer's purchase history.
func (s *service) ListPurchases(ctx context.Context, buyerID uuid.UUID) ([]PurchaseDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}

	rows, err := s.repo.ListPurchasesByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list purchases")
	}

	dtos := make([]PurchaseDTO, 0, len(rows))
	for i := range rows {
		row := rows[i]
		dtos = append(dtos, PurchaseDTO{
			PurchaseID: row.ID,
			ProductID:  row.ProductID,
			BuyerID:    row.BuyerID,
			SellerID:   row.SellerID,
			Quantity:   row.Quantity,
			Amount:     row.Amount,
			Status:     string(row.Status),
		})
	}
	return dtos, nil
}
