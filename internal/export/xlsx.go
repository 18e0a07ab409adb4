// Package export writes back-office spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sneakerstore/sneakerstore/internal/catalog"
	"github.com/sneakerstore/sneakerstore/internal/orders"
)

const (
	productsSheet = "Produits"
	ordersSheet   = "Commandes"
	itemsSheet    = "Articles"
	dateLayout    = "02/01/2006 15:04"
)

var (
	productHeader = []any{"ID", "Nom", "Marque", "Catégorie", "Prix (FCFA)", "Stock total", "Tailles", "Statut", "Ventes", "Mis à jour"}
	orderHeader   = []any{"Commande", "Date", "Client", "Téléphone", "Email", "Articles", "Total (FCFA)", "Statut", "Paiement", "Adresse"}
	itemHeader    = []any{"Commande", "Produit", "Taille", "Quantité", "Prix unitaire", "Sous-total"}
)

// XLSX renders catalog and order exports as Excel workbooks.
type XLSX struct{}

// NewXLSX returns an exporter.
func NewXLSX() *XLSX { return &XLSX{} }

// Products writes one row per product.
func (x *XLSX) Products(w io.Writer, products []catalog.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", productsSheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	if err := writeHeader(f, productsSheet, productHeader); err != nil {
		return err
	}
	for i, p := range products {
		row := []any{
			p.ID,
			p.Name,
			p.Brand.Name(),
			string(p.Category),
			p.Price,
			p.TotalStock(),
			formatSizes(p.Sizes),
			string(p.Status),
			p.Sales,
			p.UpdatedAt.Format(dateLayout),
		}
		if err := setRow(f, productsSheet, i+2, row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(productsSheet, "B", "B", 32)
	_ = f.SetColWidth(productsSheet, "G", "G", 40)
	return write(f, w)
}

// Orders writes an order sheet and an item sheet.
func (x *XLSX) Orders(w io.Writer, list []orders.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return fmt.Errorf("export: new sheet: %w", err)
	}
	if err := writeHeader(f, ordersSheet, orderHeader); err != nil {
		return err
	}
	if err := writeHeader(f, itemsSheet, itemHeader); err != nil {
		return err
	}

	itemRow := 2
	for i, o := range list {
		row := []any{
			o.ID,
			o.Date.Format(dateLayout),
			o.Customer.Name,
			o.Customer.Phone,
			o.Customer.Email,
			o.ItemCount(),
			o.Total,
			string(o.Status),
			o.PaymentMethod,
			o.ShippingAddress,
		}
		if err := setRow(f, ordersSheet, i+2, row); err != nil {
			return err
		}
		for _, item := range o.Items {
			line := []any{o.ID, item.ProductName, item.Size, item.Quantity, item.Price, item.Subtotal()}
			if err := setRow(f, itemsSheet, itemRow, line); err != nil {
				return err
			}
			itemRow++
		}
	}
	_ = f.SetColWidth(ordersSheet, "C", "C", 24)
	_ = f.SetColWidth(ordersSheet, "J", "J", 40)
	_ = f.SetColWidth(itemsSheet, "B", "B", 32)
	return write(f, w)
}

func writeHeader(f *excelize.File, sheet string, header []any) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("export: header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("export: cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("export: %s row %d: %w", sheet, row, err)
	}
	return nil
}

func write(f *excelize.File, w io.Writer) error {
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// formatSizes renders sizes as "42:4, 43:0".
func formatSizes(sizes []catalog.SizeStock) string {
	parts := make([]string, 0, len(sizes))
	for _, s := range sizes {
		parts = append(parts, fmt.Sprintf("%s:%d", s.Size, s.Stock))
	}
	return strings.Join(parts, ", ")
}

var (
	_ catalog.Exporter = (*XLSX)(nil)
	_ orders.Exporter  = (*XLSX)(nil)
)
