package domain

import (
	"github.com/shopspring/decimal"
)

// ShippingParams is the fully resolved shipping configuration for one
// (store, country) pair.
type ShippingParams struct {
	Service              string          `json:"service"`
	FeePerItem           decimal.Decimal `json:"feePerItem"`
	FeePerAdditionalItem decimal.Decimal `json:"feePerAdditionalItem"`
	FeePerKg             decimal.Decimal `json:"feePerKg"`
	FeeFixed             decimal.Decimal `json:"feeFixed"`
	DeliveryTimeMin      int             `json:"deliveryTimeMin"`
	DeliveryTimeMax      int             `json:"deliveryTimeMax"`
	ReturnPolicy         string          `json:"returnPolicy"`
}

// ResolveShippingParams takes each field from rate when it is set and from
// the store defaults otherwise. A rate that belongs to another store is
// ignored.
func ResolveShippingParams(store Store, rate *ShippingRate) ShippingParams {
	params := ShippingParams{
		Service:              store.DefaultShippingService,
		FeePerItem:           store.DefaultShippingFeePerItem,
		FeePerAdditionalItem: store.DefaultShippingFeeForAdditionalItem,
		FeePerKg:             store.DefaultShippingFeePerKg,
		FeeFixed:             store.DefaultShippingFeeFixed,
		DeliveryTimeMin:      store.DefaultDeliveryTimeMin,
		DeliveryTimeMax:      store.DefaultDeliveryTimeMax,
		ReturnPolicy:         store.ReturnPolicy,
	}
	if rate == nil || rate.StoreID != store.ID {
		return params
	}

	if rate.ShippingService != nil {
		params.Service = *rate.ShippingService
	}
	params.FeePerItem = orDefault(rate.ShippingFeePerItem, params.FeePerItem)
	params.FeePerAdditionalItem = orDefault(rate.ShippingFeeForAdditionalItem, params.FeePerAdditionalItem)
	params.FeePerKg = orDefault(rate.ShippingFeePerKg, params.FeePerKg)
	params.FeeFixed = orDefault(rate.ShippingFeeFixed, params.FeeFixed)
	if rate.DeliveryTimeMin != nil {
		params.DeliveryTimeMin = *rate.DeliveryTimeMin
	}
	if rate.DeliveryTimeMax != nil {
		params.DeliveryTimeMax = *rate.DeliveryTimeMax
	}
	if rate.ReturnPolicy != nil {
		params.ReturnPolicy = *rate.ReturnPolicy
	}
	return params
}

func orDefault(v decimal.NullDecimal, def decimal.Decimal) decimal.Decimal {
	if v.Valid {
		return v.Decimal
	}
	return def
}

// FreeShippingConfig is the product-level free-shipping decision input.
type FreeShippingConfig struct {
	AllCountries bool
	Override     *FreeShipping
}

// FreeShippingConfig returns the product's free-shipping settings.
func (p *Product) FreeShippingConfig() FreeShippingConfig {
	return FreeShippingConfig{AllCountries: p.FreeShippingForAllCountries, Override: p.FreeShipping}
}

// IsFreeShipping reports whether shipping to countryID is free. A missing
// override is an empty eligible-country set.
func IsFreeShipping(cfg FreeShippingConfig, countryID string) bool {
	if cfg.AllCountries {
		return true
	}
	if cfg.Override == nil {
		return false
	}
	for _, id := range cfg.Override.EligibleCountries {
		if id == countryID {
			return true
		}
	}
	return false
}

// ComputeFee applies the method's formula:
//
//	ITEM:   feePerItem + feePerAdditionalItem * max(quantity-1, 0)
//	WEIGHT: feePerKg * weight * quantity
//	FIXED:  feeFixed
//
// Every formula yields zero when isFree is set. An unknown method is an
// error, never a zero fee.
func ComputeFee(method ShippingFeeMethod, params ShippingParams, isFree bool, weight decimal.Decimal, quantity int) (decimal.Decimal, error) {
	if !method.Valid() {
		return decimal.Zero, ErrInvalidShippingMethod
	}
	if quantity < 1 {
		return decimal.Zero, ErrInvalidQuantity
	}
	if weight.IsNegative() {
		return decimal.Zero, ErrInvalidWeight
	}
	if isFree {
		return decimal.Zero, nil
	}

	qty := decimal.NewFromInt(int64(quantity))
	switch method {
	case ShippingFeeMethodItem:
		extra := decimal.NewFromInt(int64(quantity - 1))
		return params.FeePerItem.Add(params.FeePerAdditionalItem.Mul(extra)), nil
	case ShippingFeeMethodWeight:
		return params.FeePerKg.Mul(weight).Mul(qty), nil
	default:
		return params.FeeFixed, nil
	}
}
