package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalaconnect/kalaconnect-backend/pkg/db/models"
	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
)

func insertListing(t *testing.T, repo *Repository, title string, price int64, category enums.ProductCategory, status enums.ProductStatus, createdAt time.Time) *models.Product {
	t.Helper()

	row, err := repo.CreateProduct(context.Background(), &models.Product{
		ID:          uuid.New(),
		ArtisanID:   uuid.New(),
		ArtisanName: "Meera Devi",
		Title:       title,
		Description: "Handmade.",
		Price:       decimal.NewFromInt(price),
		Category:    category,
		Status:      status,
		CreatedAt:   createdAt,
	})
	require.NoError(t, err)
	return row
}

func TestListProducts_Filters(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	insertListing(t, repo, "Terracotta Bowl", 850, enums.ProductCategoryPottery, enums.ProductStatusActive, base)
	insertListing(t, repo, "Banarasi Silk Saree", 4200, enums.ProductCategoryTextiles, enums.ProductStatusActive, base.Add(time.Hour))
	insertListing(t, repo, "Blue Pottery Vase", 1800, enums.ProductCategoryPottery, enums.ProductStatusActive, base.Add(2*time.Hour))
	insertListing(t, repo, "Unfinished Bowl", 300, enums.ProductCategoryPottery, enums.ProductStatusDraft, base.Add(3*time.Hour))

	t.Run("activeOnlyNewestFirst", func(t *testing.T) {
		rows, err := repo.ListProducts(context.Background(), ListFilters{})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Blue Pottery Vase", rows[0].Title)
		assert.Equal(t, "Terracotta Bowl", rows[2].Title)
	})

	t.Run("byCategory", func(t *testing.T) {
		category := enums.ProductCategoryTextiles
		rows, err := repo.ListProducts(context.Background(), ListFilters{Category: &category})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Banarasi Silk Saree", rows[0].Title)
	})

	t.Run("byPriceBand", func(t *testing.T) {
		low := decimal.NewFromInt(500)
		high := decimal.NewFromInt(2000)
		rows, err := repo.ListProducts(context.Background(), ListFilters{PriceMin: &low, PriceMax: &high})
		require.NoError(t, err)
		require.Len(t, rows, 2)
	})

	t.Run("searchIsCaseInsensitive", func(t *testing.T) {
		rows, err := repo.ListProducts(context.Background(), ListFilters{Search: "TERRACOTTA"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Terracotta Bowl", rows[0].Title)
	})

	t.Run("limitApplied", func(t *testing.T) {
		rows, err := repo.ListProducts(context.Background(), ListFilters{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
}
