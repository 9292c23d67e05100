package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
)

// CatalogReport genera el listado de productos en PDF
type CatalogReport struct {
	products *ProductService
	logger   *logrus.Logger
	now      func() time.Time
}

// NewCatalogReport crea una nueva instancia del generador de reportes
func NewCatalogReport(products *ProductService, logger *logrus.Logger) *CatalogReport {
	return &CatalogReport{
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate lista los productos con los mismos filtros del listado y los renderiza
func (r *CatalogReport) Generate(ctx context.Context, filter models.ProductFilter) ([]byte, error) {
	products, err := r.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	data, err := r.Render(products)
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"products": len(products),
		"size":     len(data),
	}).Info("Catalog report generated successfully")

	return data, nil
}

// Render dibuja la tabla de productos
func (r *CatalogReport) Render(products []models.ProductRead) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)

	colWidths := []float64{15, 40, 75, 45, 55, 25, 22}
	colHeaders := []string{"ID", "Barcode", "Name", "Brand", "Categories", "Measure", "Status"}

	header := func() {
		pdf.SetFillColor(236, 240, 241)
		pdf.SetTextColor(44, 62, 80)
		pdf.SetFont("Arial", "B", 10)
		for i, h := range colHeaders {
			pdf.CellFormat(colWidths[i], 9, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(9)
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFillColor(41, 128, 185)
		pdf.Rect(0, 0, 297, 22, "F")
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 18)
		pdf.SetXY(10, 6)
		pdf.Cell(200, 10, "Product catalog")
		pdf.SetFont("Arial", "", 10)
		pdf.SetXY(200, 8)
		pdf.Cell(87, 8, fmt.Sprintf("Generated: %s", r.now().Format("02/01/2006 15:04")))
		pdf.SetY(28)
		header()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetTextColor(149, 165, 166)
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d products - page %d", len(products), pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)
	rowHeight := 7.0

	for i, p := range products {
		// Alternar colores de fila
		if i%2 == 0 {
			pdf.SetFillColor(248, 249, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetTextColor(44, 62, 80)

		cells := []string{
			fmt.Sprintf("%d", p.ID),
			deref(p.Barcode),
			p.Name,
			brandName(p.Brand),
			categoryNames(p.Categories),
			measure(p.Product),
			statusLabel(p.Status),
		}
		for c, text := range cells {
			align := "L"
			if c == 0 || c == len(cells)-1 {
				align = "C"
			}
			pdf.CellFormat(colWidths[c], rowHeight, tr(truncate(text, colWidths[c])), "1", 0, align, true, 0, "")
		}
		pdf.Ln(rowHeight)
	}

	if len(products) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 10, "No products match the given filters", "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func brandName(b *models.Brand) string {
	if b == nil {
		return "-"
	}
	return b.Name
}

func categoryNames(categories []models.Category) string {
	if len(categories) == 0 {
		return "-"
	}
	names := ""
	for i, c := range categories {
		if i > 0 {
			names += ", "
		}
		names += c.Name
	}
	return names
}

func measure(p models.Product) string {
	if p.MeasureValue == nil || p.MeasureType == nil {
		return "-"
	}
	return p.MeasureValue.String() + " " + string(*p.MeasureType)
}

func statusLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

// truncate recorta el texto para que entre aproximadamente en la celda
func truncate(text string, width float64) string {
	limit := int(width / 1.9)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "."
}
