package purchase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kalaconnect/kalaconnect-backend/pkg/db/models"
	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"

	product "github.com/kalaconnect/kalaconnect-backend/internal/products"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	svc, err := NewService(NewRepository(conn), product.NewRepository(conn))
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, price int64) *models.Product {
	t.Helper()
	row := &models.Product{
		ID:          uuid.New(),
		ArtisanID:   uuid.New(),
		ArtisanName: "Meera Devi",
		Title:       "Terracotta Bowl",
		Description: "Hand-thrown terracotta bowl.",
		Price:       decimal.NewFromInt(price),
		Category:    enums.ProductCategoryPottery,
		Status:      enums.ProductStatusActive,
	}
	if err := conn.Create(row).Error; err != nil {
		t.Fatalf("seeding product: %v", err)
	}
	return row
}

func TestService_CreatePurchase(t *testing.T) {
	svc, conn := newTestService(t)
	listing := seedProduct(t, conn, 850)
	buyer := uuid.New()

	dto, err := svc.CreatePurchase(context.Background(), buyer, CreatePurchaseInput{
		ProductID: listing.ID,
		Quantity:  3,
	})
	if err != nil {
		t.Fatalf("CreatePurchase returned error: %v", err)
	}
	if !dto.Amount.Equal(decimal.NewFromInt(2550)) {
		t.Fatalf("expected amount 2550, got %s", dto.Amount)
	}
	if dto.SellerID != listing.ArtisanID {
		t.Fatalf("seller must be the listing artisan, got %s", dto.SellerID)
	}
	if dto.Status != string(enums.PurchaseStatusInitiated) {
		t.Fatalf("expected initiated status, got %s", dto.Status)
	}
	if dto.Message != "Purchase initiated successfully" {
		t.Fatalf("unexpected confirmation %q", dto.Message)
	}
}

func TestService_CreatePurchaseDefaultsQuantity(t *testing.T) {
	svc, conn := newTestService(t)
	listing := seedProduct(t, conn, 400)

	dto, err := svc.CreatePurchase(context.Background(), uuid.New(), CreatePurchaseInput{ProductID: listing.ID})
	if err != nil {
		t.Fatalf("CreatePurchase returned error: %v", err)
	}
	if dto.Quantity != 1 || !dto.Amount.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected single-unit purchase, got %+v", dto)
	}
}

func TestService_CreatePurchaseMissingProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreatePurchase(context.Background(), uuid.New(), CreatePurchaseInput{ProductID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_ListPurchases(t *testing.T) {
	svc, conn := newTestService(t)
	listing := seedProduct(t, conn, 100)
	buyer := uuid.New()

	for range 2 {
		if _, err := svc.CreatePurchase(context.Background(), buyer, CreatePurchaseInput{ProductID: listing.ID}); err != nil {
			t.Fatalf("CreatePurchase returned error: %v", err)
		}
	}

	rows, err := svc.ListPurchases(context.Background(), buyer)
	if err != nil {
		t.Fatalf("ListPurchases returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two purchases, got %d", len(rows))
	}
	if _, err := svc.ListPurchases(context.Background(), uuid.New()); err != nil {
		t.Fatalf("empty history must not error: %v", err)
	}
}
