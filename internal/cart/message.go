package cart

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sneakerstore/sneakerstore/internal/catalog"
)

// Currency is appended to every formatted amount.
const Currency = "FCFA"

// FormatPrice renders an amount with French digit grouping, e.g. "45 000 FCFA".
func FormatPrice(amount int64) string {
	return message.NewPrinter(language.French).Sprintf("%d", amount) + " " + Currency
}

// OrderMessage renders the itemised order request sent to the shop.
func OrderMessage(c *Cart) string {
	var b strings.Builder
	b.WriteString("Bonjour! Je souhaite commander:\n\n")
	for i, item := range c.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Name)
		fmt.Fprintf(&b, "   Pointure: %s\n", item.Size)
		fmt.Fprintf(&b, "   Quantité: %d\n", item.Quantity)
		fmt.Fprintf(&b, "   Prix unitaire: %s\n", FormatPrice(item.Price))
		fmt.Fprintf(&b, "   Sous-total: %s\n\n", FormatPrice(item.Subtotal()))
	}
	fmt.Fprintf(&b, "💰 TOTAL: %s\n\n", FormatPrice(c.Total))
	b.WriteString("Merci de me confirmer la disponibilité et les détails de livraison.")
	return b.String()
}

// ProductMessage renders the single product "order now" request.
func ProductMessage(name, size string, price int64) string {
	return "Bonjour! Je souhaite commander:\n\n" +
		"📦 Produit: " + name + "\n" +
		"👟 Pointure: " + size + "\n" +
		"💰 Prix: " + FormatPrice(price) + "\n\n" +
		"Merci de me confirmer la disponibilité."
}

// DeepLink builds the wa.me link for phone with text as the prefilled
// message. Everything but digits is dropped from phone.
func DeepLink(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	// wa.me expects %20 rather than '+' for spaces.
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + encoded
}

// Linker builds order links for a fixed shop phone number.
type Linker struct {
	Phone string
}

// CartLink returns the deep link for the whole cart.
func (l Linker) CartLink(c *Cart) string {
	return DeepLink(l.Phone, OrderMessage(c))
}

// ProductLink returns the deep link for a single product and size.
func (l Linker) ProductLink(p catalog.Product, size string) string {
	return DeepLink(l.Phone, ProductMessage(p.Name, size, p.Price))
}

var _ catalog.OrderLinker = Linker{}
