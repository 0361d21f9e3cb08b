package enums

import "fmt"

// ProductCategory represents the canonical craft categories in the catalog.
type ProductCategory string

const (
	ProductCategoryTextiles    ProductCategory = "textiles"
	ProductCategoryPottery     ProductCategory = "pottery"
	ProductCategoryJewelry     ProductCategory = "jewelry"
	ProductCategoryWoodwork    ProductCategory = "woodwork"
	ProductCategoryMetalwork   ProductCategory = "metalwork"
	ProductCategoryPainting    ProductCategory = "painting"
	ProductCategorySculpture   ProductCategory = "sculpture"
	ProductCategoryBasketry    ProductCategory = "basketry"
	ProductCategoryLeatherwork ProductCategory = "leatherwork"
	ProductCategoryHomeDecor   ProductCategory = "home_decor"
	ProductCategoryArt         ProductCategory = "art"
	ProductCategoryOther       ProductCategory = "other"
)

var validProductCategories = []ProductCategory{
	ProductCategoryTextiles,
	ProductCategoryPottery,
	ProductCategoryJewelry,
	ProductCategoryWoodwork,
	ProductCategoryMetalwork,
	ProductCategoryPainting,
	ProductCategorySculpture,
	ProductCategoryBasketry,
	ProductCategoryLeatherwork,
	ProductCategoryHomeDecor,
	ProductCategoryArt,
	ProductCategoryOther,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductStatus tracks the listing lifecycle.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusSoldOut  ProductStatus = "sold_out"
	ProductStatusDraft    ProductStatus = "draft"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusInactive,
	ProductStatusSoldOut,
	ProductStatusDraft,
}

// String implements fmt.Stringer.
func (s ProductStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductStatus.
func (s ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}
