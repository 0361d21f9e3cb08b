package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(openTestDB(t)))
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func listingInput(title string, price int64) CreateProductInput {
	return CreateProductInput{
		Title:       title,
		Description: "Hand-thrown terracotta bowl fired in a wood kiln.",
		Price:       decimal.NewFromInt(price),
		Category:    enums.ProductCategoryPottery,
		Images:      []string{"gs://media/bowl.jpg"},
		Tags:        []string{"terracotta", "handmade"},
	}
}

func TestService_CreateAndGetProduct(t *testing.T) {
	svc := newTestService(t)
	artisanID := uuid.New()

	created, err := svc.CreateProduct(context.Background(), artisanID, "Meera Devi", listingInput("Terracotta Bowl", 850))
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if created.Status != string(enums.ProductStatusActive) {
		t.Fatalf("expected active status by default, got %s", created.Status)
	}
	if created.ArtisanName != "Meera Devi" {
		t.Fatalf("unexpected artisan name %q", created.ArtisanName)
	}

	got, err := svc.GetProduct(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}
	if got.Title != "Terracotta Bowl" || !got.Price.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("unexpected product %+v", got)
	}
}

func TestService_GetProductNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetProduct(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestService_CreateProductValidation(t *testing.T) {
	svc := newTestService(t)
	artisanID := uuid.New()

	cases := map[string]CreateProductInput{
		"emptyTitle": func() CreateProductInput {
			in := listingInput("  ", 100)
			return in
		}(),
		"badCategory": func() CreateProductInput {
			in := listingInput("Bowl", 100)
			in.Category = enums.ProductCategory("gadgets")
			return in
		}(),
		"negativePrice": func() CreateProductInput {
			in := listingInput("Bowl", 100)
			in.Price = decimal.NewFromInt(-1)
			return in
		}(),
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), artisanID, "Meera Devi", input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}

func TestService_ListProductsFilters(t *testing.T) {
	svc := newTestService(t)
	artisanID := uuid.New()

	seed := []struct {
		title    string
		price    int64
		category enums.ProductCategory
	}{
		{"Terracotta Bowl", 450, enums.ProductCategoryPottery},
		{"Silk Saree", 3200, enums.ProductCategoryTextiles},
		{"Silver Anklet", 6200, enums.ProductCategoryJewelry},
	}
	for _, row := range seed {
		in := listingInput(row.title, row.price)
		in.Category = row.category
		if _, err := svc.CreateProduct(context.Background(), artisanID, "Meera Devi", in); err != nil {
			t.Fatalf("seeding %q: %v", row.title, err)
		}
	}

	t.Run("category", func(t *testing.T) {
		rows, err := svc.ListProducts(context.Background(), ListProductsInput{Category: "textiles"})
		if err != nil {
			t.Fatalf("ListProducts returned error: %v", err)
		}
		if len(rows) != 1 || rows[0].Title != "Silk Saree" {
			t.Fatalf("unexpected rows %+v", rows)
		}
	})

	t.Run("priceRangeLow", func(t *testing.T) {
		rows, err := svc.ListProducts(context.Background(), ListProductsInput{PriceRange: "0-500"})
		if err != nil {
			t.Fatalf("ListProducts returned error: %v", err)
		}
		if len(rows) != 1 || rows[0].Title != "Terracotta Bowl" {
			t.Fatalf("unexpected rows %+v", rows)
		}
	})

	t.Run("priceRangeOpenEnded", func(t *testing.T) {
		rows, err := svc.ListProducts(context.Background(), ListProductsInput{PriceRange: "5000+"})
		if err != nil {
			t.Fatalf("ListProducts returned error: %v", err)
		}
		if len(rows) != 1 || rows[0].Title != "Silver Anklet" {
			t.Fatalf("unexpected rows %+v", rows)
		}
	})

	t.Run("search", func(t *testing.T) {
		rows, err := svc.ListProducts(context.Background(), ListProductsInput{Search: "saree"})
		if err != nil {
			t.Fatalf("ListProducts returned error: %v", err)
		}
		if len(rows) != 1 || rows[0].Title != "Silk Saree" {
			t.Fatalf("unexpected rows %+v", rows)
		}
	})

	t.Run("invalidPriceRange", func(t *testing.T) {
		_, err := svc.ListProducts(context.Background(), ListProductsInput{PriceRange: "100-200"})
		if err == nil {
			t.Fatal("expected validation error for unknown bucket")
		}
	})
}

func TestService_ListProductsExcludesDrafts(t *testing.T) {
	svc := newTestService(t)
	artisanID := uuid.New()

	in := listingInput("Draft Bowl", 300)
	in.Status = enums.ProductStatusDraft
	if _, err := svc.CreateProduct(context.Background(), artisanID, "Meera Devi", in); err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}

	rows, err := svc.ListProducts(context.Background(), ListProductsInput{})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("draft listings must not be public, got %+v", rows)
	}
}
