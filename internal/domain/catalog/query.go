package catalog

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortRating    SortOrder = "rating_desc"
	SortTitle     SortOrder = "title_asc"
	SortNewest    SortOrder = "newest"
)

func ParseSortOrder(s string) (SortOrder, bool) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortNone, SortPriceAsc, SortPriceDesc, SortRating, SortTitle, SortNewest:
		return o, true
	default:
		return SortNone, false
	}
}

// Query narrows and orders a product listing. Zero values mean "no filter".
type Query struct {
	StoreID    string
	OwnerID    string
	Categories []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Text       string
	Sort       SortOrder
}

func (q Query) Matches(p *Product) bool {
	if q.StoreID != "" && p.StoreID != q.StoreID {
		return false
	}
	if q.OwnerID != "" && p.OwnerID != q.OwnerID {
		return false
	}
	if len(q.Categories) > 0 && !slices.ContainsFunc(q.Categories, func(c string) bool {
		return strings.EqualFold(strings.TrimSpace(c), p.Category)
	}) {
		return false
	}
	if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
		return false
	}
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		haystack := strings.ToLower(p.Title + " " + p.Description + " " + p.Brand + " " + strings.Join(p.Tags, " "))
		if !strings.Contains(haystack, text) {
			return false
		}
	}
	return true
}

// Apply filters products by q and sorts the result. The input is not modified.
func Apply(products []*Product, q Query) []*Product {
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if p != nil && q.Matches(p) {
			out = append(out, p)
		}
	}
	sortProducts(out, q.Sort)
	return out
}

func sortProducts(products []*Product, order SortOrder) {
	var cmp func(a, b *Product) int
	switch order {
	case SortPriceAsc:
		cmp = func(a, b *Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceDesc:
		cmp = func(a, b *Product) int { return b.Price.Cmp(a.Price) }
	case SortRating:
		cmp = func(a, b *Product) int { return compareFloat(b.Rating, a.Rating) }
	case SortTitle:
		cmp = func(a, b *Product) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) }
	case SortNewest:
		cmp = func(a, b *Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	default:
		return
	}
	slices.SortStableFunc(products, cmp)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Categories returns the distinct categories of products, capitalized and sorted.
func Categories(products []*Product) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range products {
		c := Capitalize(p.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Capitalize upper-cases the first letter of s and lower-cases the rest.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
