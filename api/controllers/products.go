package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kalaconnect/kalaconnect-backend/api/middleware"
	"github.com/kalaconnect/kalaconnect-backend/api/responses"
	"github.com/kalaconnect/kalaconnect-backend/api/validators"
	productsvc "github.com/kalaconnect/kalaconnect-backend/internal/products"
	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
)

// ListProducts serves the public marketplace listing.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		rows, err := svc.ListProducts(r.Context(), productsvc.ListProductsInput{
			Search:     strings.TrimSpace(query.Get("search")),
			Category:   strings.TrimSpace(query.Get("category")),
			PriceRange: strings.TrimSpace(query.Get("priceRange")),
			Limit:      limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// GetProduct serves a single listing by id.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		row, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, row)
	}
}

// CreateProduct creates a listing for the authenticated artisan.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artisanID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateProduct(r.Context(), artisanID, middleware.UserNameFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

type createProductRequest struct {
	Title           string         `json:"title" validate:"required"`
	Description     string         `json:"description" validate:"required"`
	Price           string         `json:"price" validate:"required"`
	Category        string         `json:"category" validate:"required"`
	Images          []string       `json:"images,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
	CulturalContext map[string]any `json:"cultural_context,omitempty"`
	StockQuantity   *int           `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
}

func (r createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	category, err := enums.ParseProductCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}

	return productsvc.CreateProductInput{
		Title:           r.Title,
		Description:     r.Description,
		Price:           price,
		Category:        category,
		Images:          r.Images,
		Tags:            r.Tags,
		CulturalContext: r.CulturalContext,
		StockQuantity:   r.StockQuantity,
	}, nil
}
