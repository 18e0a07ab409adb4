package catalog

import (
	"strconv"
	"strings"
)

// UniqueSize labels the single stock entry of size-less categories.
const UniqueSize = "unique"

var categorySizes = map[Category][]string{
	CategoryShoes:       {"36", "37", "38", "39", "40", "41", "42", "43", "44", "45", "46", "47"},
	CategoryApparel:     {"XS", "S", "M", "L", "XL", "XXL"},
	CategoryBalls:       {"Taille 3", "Taille 4", "Taille 5"},
	CategoryAccessories: {},
}

// SizesFor returns the size table for a category. Accessories have none and
// carry their stock under UniqueSize.
func SizesFor(c Category) []string {
	return append([]string{}, categorySizes[c]...)
}

// AvailableSizes returns the sizes offered for a filter category value. All
// (or empty) yields every size of every category.
func AvailableSizes(category string) []string {
	if constrained(category) {
		return SizesFor(Category(category))
	}
	var out []string
	for _, c := range Categories {
		out = append(out, categorySizes[c]...)
	}
	return out
}

// QuickStockResult is the outcome of parsing a quick stock entry.
type QuickStockResult struct {
	Entries  []SizeStock `json:"entries"`
	Rejected []string    `json:"rejected"`
}

// ParseQuickStock parses entries of the form "45*3, 42*7". Blank tokens are
// skipped; tokens without a size, without a stock or with a stock that is not
// a non-negative integer are reported in Rejected. A size repeated in the
// input keeps its last value.
func ParseQuickStock(input string) QuickStockResult {
	res := QuickStockResult{Entries: []SizeStock{}, Rejected: []string{}}
	for _, raw := range strings.Split(input, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		size, stockText, ok := strings.Cut(token, "*")
		size = strings.TrimSpace(size)
		stockText = strings.TrimSpace(stockText)
		if !ok || size == "" || stockText == "" {
			res.Rejected = append(res.Rejected, token)
			continue
		}
		stock, err := strconv.Atoi(stockText)
		if err != nil || stock < 0 {
			res.Rejected = append(res.Rejected, token)
			continue
		}
		res.Entries = upsertSize(res.Entries, SizeStock{Size: size, Stock: stock})
	}
	return res
}

// MergeSizes applies entries over existing sizes: a known label is replaced
// in place, a new label is appended.
func MergeSizes(existing, entries []SizeStock) []SizeStock {
	out := append([]SizeStock{}, existing...)
	for _, e := range entries {
		out = upsertSize(out, e)
	}
	return out
}

// SetSizeStock removes the size and, when stock is positive, appends it with
// the new value.
func SetSizeStock(sizes []SizeStock, size string, stock int) []SizeStock {
	out := make([]SizeStock, 0, len(sizes)+1)
	for _, s := range sizes {
		if s.Size != size {
			out = append(out, s)
		}
	}
	if stock > 0 {
		out = append(out, SizeStock{Size: size, Stock: stock})
	}
	return out
}

func upsertSize(sizes []SizeStock, entry SizeStock) []SizeStock {
	for i := range sizes {
		if sizes[i].Size == entry.Size {
			sizes[i] = entry
			return sizes
		}
	}
	return append(sizes, entry)
}
