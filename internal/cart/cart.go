// Package cart implements the visitor cart: a list of lines keyed by
// (product id, size) with a derived total, its Redis persistence and the
// order hand-off message.
package cart

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 999

// Item describes a product variant being added to the cart. Price is the
// unit price snapshot taken at add time.
type Item struct {
	ProductID int64
	Name      string
	Price     int64
	Image     string
	Size      string
}

// Line is one cart entry.
type Line struct {
	ProductID int64  `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

func (l Line) matches(productID int64, size string) bool {
	return l.ProductID == productID && l.Size == size
}

// Cart holds lines in insertion order. Total always equals the sum of line
// subtotals; every mutation recomputes it.
type Cart struct {
	Items []Line `json:"items"`
	Total int64  `json:"total"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{Items: []Line{}}
}

// Add increments the quantity of the (product, size) line, or appends a new
// line with quantity 1. An existing line keeps its original price snapshot.
func (c *Cart) Add(item Item) {
	for i := range c.Items {
		if c.Items[i].matches(item.ProductID, item.Size) {
			c.Items[i].Quantity++
			c.recompute()
			return
		}
	}
	c.Items = append(c.Items, Line{
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price,
		Image:     item.Image,
		Size:      item.Size,
		Quantity:  1,
	})
	c.recompute()
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes it; an unknown line is ignored.
func (c *Cart) UpdateQuantity(productID int64, size string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID, size)
		return
	}
	for i := range c.Items {
		if c.Items[i].matches(productID, size) {
			c.Items[i].Quantity = quantity
			break
		}
	}
	c.recompute()
}

// RemoveItem deletes a line; an unknown line is ignored.
func (c *Cart) RemoveItem(productID int64, size string) {
	kept := c.Items[:0]
	for _, l := range c.Items {
		if !l.matches(productID, size) {
			kept = append(kept, l)
		}
	}
	c.Items = kept
	c.recompute()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []Line{}
	c.Total = 0
}

// Quantity returns the quantity of a line, 0 when absent.
func (c *Cart) Quantity(productID int64, size string) int {
	for _, l := range c.Items {
		if l.matches(productID, size) {
			return l.Quantity
		}
	}
	return 0
}

// ItemCount sums quantities across lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Normalize repairs a snapshot read from storage: lines with a non-positive
// quantity are dropped, duplicate keys are merged into the first occurrence
// and the total is recomputed.
func (c *Cart) Normalize() {
	merged := make([]Line, 0, len(c.Items))
	for _, l := range c.Items {
		if l.Quantity <= 0 {
			continue
		}
		found := false
		for i := range merged {
			if merged[i].matches(l.ProductID, l.Size) {
				merged[i].Quantity += l.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, l)
		}
	}
	c.Items = merged
	c.recompute()
}

func (c *Cart) recompute() {
	var total int64
	for _, l := range c.Items {
		total += l.Subtotal()
	}
	c.Total = total
}
