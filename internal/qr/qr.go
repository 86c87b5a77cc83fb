// Package qr produces the per-table deep links customers scan, and the
// staff-facing exports: single PNGs, a ZIP of every table's code, and a
// printable A4 sheet.
package qr

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const defaultPNGSize = 512

// DeepLink is the URL encoded into a table's QR code. The customer page
// reads the table query parameter to pre-select the table.
func DeepLink(baseURL string, table int) string {
	return fmt.Sprintf("%s/menu?table=%d", strings.TrimRight(baseURL, "/"), table)
}

// TablePNG renders one table's QR code. size <= 0 falls back to the default.
func TablePNG(baseURL string, table, size int) ([]byte, error) {
	if size <= 0 {
		size = defaultPNGSize
	}
	return qrcode.Encode(DeepLink(baseURL, table), qrcode.Medium, size)
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns the shop name into a filename-safe prefix.
func Slug(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "shop"
	}
	return slug
}

// ArchiveZip bundles codes for tables 1..tables into a ZIP, one PNG per
// table under a folder named after the shop.
func ArchiveZip(shopName, baseURL string, tables int) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	folder := Slug(shopName) + "-qr-codes"

	for table := 1; table <= tables; table++ {
		png, err := TablePNG(baseURL, table, defaultPNGSize)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", table, err)
		}
		entry, err := w.Create(fmt.Sprintf("%s/table-%d-qr.png", folder, table))
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write(png); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SheetPDF lays codes for tables 1..tables out on labeled A4 pages, three
// per row, ready to print and cut.
func SheetPDF(shopName, baseURL string, tables int) ([]byte, error) {
	const (
		marginX  = 15.0
		marginY  = 15.0
		cellW    = 60.0
		cellH    = 75.0
		qrSide   = 50.0
		pageFold = 270.0
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, shopName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, "Scan the code at your table to order", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	startY := pdf.GetY()
	col := 0
	y := startY

	for table := 1; table <= tables; table++ {
		png, err := TablePNG(baseURL, table, defaultPNGSize)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", table, err)
		}

		name := fmt.Sprintf("table-%d", table)
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))

		x := marginX + float64(col)*cellW
		pdf.ImageOptions(name, x+(cellW-qrSide)/2, y, qrSide, qrSide, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.SetXY(x, y+qrSide+2)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(cellW, 6, fmt.Sprintf("Table %d", table), "", 0, "C", false, 0, "")

		col++
		if col == 3 {
			col = 0
			y += cellH
			if y+cellH > pageFold && table < tables {
				pdf.AddPage()
				y = marginY
			}
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
