package cart

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneakerstore/sneakerstore/internal/catalog"
)

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestFormatPriceGroupsDigits(t *testing.T) {
	formatted := FormatPrice(45000)
	assert.True(t, strings.HasSuffix(formatted, " FCFA"))
	assert.Equal(t, "45000", digitsOf(formatted))
	// French grouping inserts a separator between thousands.
	assert.NotEqual(t, "45000 FCFA", formatted)

	assert.Equal(t, "500 FCFA", FormatPrice(500))
}

func TestOrderMessageListsLines(t *testing.T) {
	c := New()
	c.Add(airMax)
	c.Add(airMax)
	c.Add(jordan)

	msg := OrderMessage(c)
	assert.True(t, strings.HasPrefix(msg, "Bonjour! Je souhaite commander:\n\n"))
	assert.Contains(t, msg, "1. Nike Air Max 270\n   Pointure: 42\n   Quantité: 2\n")
	assert.Contains(t, msg, "2. Jordan 1 Retro High\n   Pointure: 44\n   Quantité: 1\n")
	assert.Contains(t, msg, "   Prix unitaire: "+FormatPrice(45000)+"\n")
	assert.Contains(t, msg, "   Sous-total: "+FormatPrice(90000)+"\n\n")
	assert.Contains(t, msg, "💰 TOTAL: "+FormatPrice(158000)+"\n\n")
	assert.True(t, strings.HasSuffix(msg, "Merci de me confirmer la disponibilité et les détails de livraison."))
}

func TestProductMessage(t *testing.T) {
	msg := ProductMessage("Puma RS-X", "41", 38000)
	assert.Equal(t, "Bonjour! Je souhaite commander:\n\n"+
		"📦 Produit: Puma RS-X\n"+
		"👟 Pointure: 41\n"+
		"💰 Prix: "+FormatPrice(38000)+"\n\n"+
		"Merci de me confirmer la disponibilité.", msg)
}

func TestDeepLinkEncodesText(t *testing.T) {
	link := DeepLink("+237 656 533 960", "Bonjour! 2 x Air & co")
	require.True(t, strings.HasPrefix(link, "https://wa.me/237656533960?text="))
	assert.NotContains(t, link, "+")
	assert.Contains(t, link, "%20")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour! 2 x Air & co", parsed.Query().Get("text"))
}

func TestLinkerProductLink(t *testing.T) {
	linker := Linker{Phone: "+237656533960"}
	product := catalog.Product{ID: 4, Name: "Puma RS-X", Price: 38000}

	link := linker.ProductLink(product, "41")
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, ProductMessage("Puma RS-X", "41", 38000), parsed.Query().Get("text"))
}
