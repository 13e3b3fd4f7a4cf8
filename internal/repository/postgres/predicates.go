package postgres

import (
	"fmt"
	"strings"

	"github.com/utafrali/marketplace/internal/domain"
	"github.com/utafrali/marketplace/internal/repository"
)

// predicates accumulates AND-ed SQL conditions and their positional args.
type predicates struct {
	conds []string
	args  []any
}

// bind appends v to the argument list and returns its placeholder.
func (p *predicates) bind(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

func (p *predicates) add(cond string) {
	p.conds = append(p.conds, cond)
}

func (p *predicates) where() string {
	if len(p.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(p.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildProductPredicates translates a resolved catalog query into a WHERE
// clause over products aliased as p.
func buildProductPredicates(q repository.ProductQuery) *predicates {
	p := &predicates{}

	if q.Search != "" {
		ph := p.bind("%" + likeEscaper.Replace(q.Search) + "%")
		p.add(fmt.Sprintf(`(p.name ILIKE %[1]s OR p.description ILIKE %[1]s OR EXISTS (
			SELECT 1 FROM product_variants sv
			WHERE sv.product_id = p.id AND (sv.variant_name ILIKE %[1]s OR sv.variant_description ILIKE %[1]s)))`, ph))
	}
	if q.CategoryID != "" {
		p.add("p.category_id = " + p.bind(q.CategoryID))
	}
	if q.SubCategoryID != "" {
		p.add("p.sub_category_id = " + p.bind(q.SubCategoryID))
	}
	if q.OfferTagID != "" {
		p.add("p.offer_tag_id = " + p.bind(q.OfferTagID))
	}
	if q.StoreID != "" {
		p.add("p.store_id = " + p.bind(q.StoreID))
	}
	if q.ExcludeProductID != "" {
		p.add("p.id <> " + p.bind(q.ExcludeProductID))
	}
	if q.Variant.Active() {
		p.add(variantPredicate(p, q.Variant))
	}

	return p
}

// variantPredicate requires a single variant to satisfy every
// variant-scoped criterion. The size label and the price bounds are
// separate EXISTS checks, so they may hold on different size rows.
func variantPredicate(p *predicates, c domain.VariantCriteria) string {
	var inner []string

	if len(c.Colors) > 0 {
		inner = append(inner, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM colors c WHERE c.variant_id = v.id AND c.name = ANY(%s))", p.bind(c.Colors)))
	}

	if len(c.Sizes) > 0 {
		inner = append(inner, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM sizes s WHERE s.variant_id = v.id AND s.size = ANY(%s))", p.bind(c.Sizes)))
	}

	if c.PriceBounded() {
		var priceConds []string
		if c.MinPrice.IsPositive() {
			priceConds = append(priceConds, "sp.price >= "+p.bind(c.MinPrice))
		}
		if c.MaxPrice.Valid {
			priceConds = append(priceConds, "sp.price <= "+p.bind(c.MaxPrice.Decimal))
		}
		inner = append(inner, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM sizes sp WHERE sp.variant_id = v.id AND %s)", strings.Join(priceConds, " AND ")))
	}

	return fmt.Sprintf("EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND %s)",
		strings.Join(inner, " AND "))
}

// minEffectivePrice is NULL for products without sizes.
const minEffectivePrice = `(SELECT MIN(s.price * (100 - s.discount) / 100)
			FROM sizes s JOIN product_variants v ON v.id = s.variant_id
			WHERE v.product_id = p.id)`

// orderBy maps a sort key to an ORDER BY clause. Every ordering ends with
// the default newest-first order so ties are deterministic, and price
// orderings put products without sizes last in both directions.
func orderBy(sort domain.SortKey) string {
	const tiebreak = "p.created_at DESC, p.id ASC"

	switch sort {
	case domain.SortMostPopular:
		return "ORDER BY p.views DESC, " + tiebreak
	case domain.SortTopRated:
		return "ORDER BY p.rating DESC, " + tiebreak
	case domain.SortPriceLowToHigh:
		return "ORDER BY " + minEffectivePrice + " ASC NULLS LAST, " + tiebreak
	case domain.SortPriceHighToLow:
		return "ORDER BY " + minEffectivePrice + " DESC NULLS LAST, " + tiebreak
	default:
		return "ORDER BY " + tiebreak
	}
}
