package domain

import (
	"github.com/shopspring/decimal"
)

// Store defaults applied when a seller opens a store without customizing
// shipping.
const (
	DefaultShippingService = "International Delivery"
	DefaultReturnPolicy    = "Return in 30 days."
	DefaultDeliveryTimeMin = 7
	DefaultDeliveryTimeMax = 31
)

var (
	DefaultShippingFeePerItem           = decimal.NewFromInt(5)
	DefaultShippingFeeForAdditionalItem = decimal.NewFromInt(2)
	DefaultShippingFeePerKg             = decimal.NewFromInt(10)
	DefaultShippingFeeFixed             = decimal.NewFromInt(15)
)

// Store is a seller's shop. Its default shipping fields are the fallback
// tier for every destination without a ShippingRate.
type Store struct {
	ID                                  string          `json:"id"`
	UserID                              string          `json:"userId"`
	Name                                string          `json:"name"`
	URL                                 string          `json:"url"`
	DefaultShippingService              string          `json:"defaultShippingService"`
	DefaultShippingFeePerItem           decimal.Decimal `json:"defaultShippingFeePerItem"`
	DefaultShippingFeeForAdditionalItem decimal.Decimal `json:"defaultShippingFeeForAdditionalItem"`
	DefaultShippingFeePerKg             decimal.Decimal `json:"defaultShippingFeePerKg"`
	DefaultShippingFeeFixed             decimal.Decimal `json:"defaultShippingFeeFixed"`
	DefaultDeliveryTimeMin              int             `json:"defaultDeliveryTimeMin"`
	DefaultDeliveryTimeMax              int             `json:"defaultDeliveryTimeMax"`
	ReturnPolicy                        string          `json:"returnPolicy"`
}

// NewStore returns a store carrying the documented shipping defaults.
func NewStore(id, userID, name, url string) Store {
	return Store{
		ID:                                  id,
		UserID:                              userID,
		Name:                                name,
		URL:                                 url,
		DefaultShippingService:              DefaultShippingService,
		DefaultShippingFeePerItem:           DefaultShippingFeePerItem,
		DefaultShippingFeeForAdditionalItem: DefaultShippingFeeForAdditionalItem,
		DefaultShippingFeePerKg:             DefaultShippingFeePerKg,
		DefaultShippingFeeFixed:             DefaultShippingFeeFixed,
		DefaultDeliveryTimeMin:              DefaultDeliveryTimeMin,
		DefaultDeliveryTimeMax:              DefaultDeliveryTimeMax,
		ReturnPolicy:                        DefaultReturnPolicy,
	}
}

// Country is a shipping destination, unique by name and code.
type Country struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// ShippingRate overrides any subset of a store's shipping defaults for one
// destination country. Nil fields defer to the store.
type ShippingRate struct {
	ID                           string              `json:"id"`
	StoreID                      string              `json:"storeId"`
	CountryID                    string              `json:"countryId"`
	ShippingService              *string             `json:"shippingService"`
	ShippingFeePerItem           decimal.NullDecimal `json:"shippingFeePerItem"`
	ShippingFeeForAdditionalItem decimal.NullDecimal `json:"shippingFeeForAdditionalItem"`
	ShippingFeePerKg             decimal.NullDecimal `json:"shippingFeePerKg"`
	ShippingFeeFixed             decimal.NullDecimal `json:"shippingFeeFixed"`
	DeliveryTimeMin              *int                `json:"deliveryTimeMin"`
	DeliveryTimeMax              *int                `json:"deliveryTimeMax"`
	ReturnPolicy                 *string             `json:"returnPolicy"`
}

// CountryRate pairs a destination with the store's rate for it, if any.
type CountryRate struct {
	Country Country       `json:"country"`
	Rate    *ShippingRate `json:"shippingRate"`
}

// FreeShipping lists the countries a product ships to for free.
type FreeShipping struct {
	ID                string   `json:"id"`
	ProductID         string   `json:"productId"`
	EligibleCountries []string `json:"eligibleCountries"`
}
