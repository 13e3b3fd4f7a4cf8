package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EffectivePrice applies a percentage discount to price:
// price * (1 - discount/100).
func EffectivePrice(price, discount decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Sub(discount)).Div(hundred)
}

// EffectivePrice returns the discounted unit price of the size.
func (s Size) EffectivePrice() decimal.Decimal {
	return EffectivePrice(s.Price, s.Discount)
}

// RankingPrice is the minimum effective price across every size of every
// variant. ok is false when the product has no sizes; such a product ranks
// after all priced products in either sort direction.
func RankingPrice(p *Product) (price decimal.Decimal, ok bool) {
	for _, v := range p.Variants {
		for _, s := range v.Sizes {
			ep := s.EffectivePrice()
			if !ok || ep.LessThan(price) {
				price = ep
				ok = true
			}
		}
	}
	return price, ok
}

// SortByRankingPrice reorders products by ranking price, ascending unless
// desc is set. Ties keep their relative order and products without sizes go
// last in both directions.
func SortByRankingPrice(products []Product, desc bool) {
	type ranked struct {
		price decimal.Decimal
		ok    bool
	}
	keys := make(map[string]ranked, len(products))
	for i := range products {
		p, ok := RankingPrice(&products[i])
		keys[products[i].ID] = ranked{price: p, ok: ok}
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, b := keys[products[i].ID], keys[products[j].ID]
		switch {
		case !a.ok:
			return false
		case !b.ok:
			return true
		case desc:
			return a.price.GreaterThan(b.price)
		default:
			return a.price.LessThan(b.price)
		}
	})
}
