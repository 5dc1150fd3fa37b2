package loadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"

	"ltlcleaner/models"
)

const ContentType = "application/pdf"

var ErrNoOrders = errors.New("no orders to render")

var summaryColumns = []struct {
	title string
	width float64
	align string
}{
	{"Purchase order no.", 44, "L"},
	{"Sales document", 36, "L"},
	{"Material", 36, "L"},
	{"Order Quantity", 34, "R"},
	{"Gross weight (lb)", 36, "R"},
	{"Case_Pallet", 28, "R"},
	{"DN", 30, "L"},
	{"Pallet_qty", 29, "R"},
}

// Render builds the pallet load sheet: a summary table of every order
// followed by one label page per purchase order.
func Render(orders []models.OutputOrder, printedAt time.Time) ([]byte, error) {
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("LTL Pallet Load Sheet", false)
	pdf.SetAutoPageBreak(true, 12)

	addSummaryPages(pdf, orders, printedAt)
	for i, o := range orders {
		if err := addOrderLabelPage(pdf, o, i, printedAt); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func addSummaryPages(pdf *gofpdf.Fpdf, orders []models.OutputOrder, printedAt time.Time) {
	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range summaryColumns {
			pdf.CellFormat(col.width, 8, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "LTL Pallet Load Sheet", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Printed: %s    Orders: %d    Pallets: %d",
		printedAt.Format("02/01/2006 15:04"), len(orders), TotalPallets(orders)), "", 1, "L", false, 0, "")
	pdf.Ln(3)
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, o := range orders {
		if pdf.GetY()+7 > pageH-bottom-12 {
			pdf.AddPage()
			header()
		}
		cells := []string{
			o.PurchaseOrderNo,
			o.SalesDocument,
			o.MaterialCode,
			o.OrderQuantity.String(),
			o.GrossWeightLb.StringFixed(2),
			o.UnitsPerPallet.String(),
			o.DN,
			strconv.FormatInt(o.PalletQty, 10),
		}
		for i, col := range summaryColumns {
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func addOrderLabelPage(pdf *gofpdf.Fpdf, o models.OutputOrder, pageIndex int, printedAt time.Time) error {
	po := strings.TrimSpace(o.PurchaseOrderNo)
	if po == "" {
		po = "-"
	}

	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, "PURCHASE ORDER", "", 1, "C", false, 0, "")
	poFont := fitFontSizeForWidth(pdf, "Helvetica", "B", 56, 24, po, pageW-40)
	pdf.SetFont("Helvetica", "B", poFont)
	pdf.CellFormat(0, 24, po, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 9, "Sales document: "+orDash(o.SalesDocument), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 9, "Material: "+orDash(o.MaterialCode), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 9, fmt.Sprintf("Quantity: %s    Gross weight: %s lb", o.OrderQuantity.String(), o.GrossWeightLb.StringFixed(2)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 9, "Printed: "+printedAt.Format("02/01/2006"), "", 1, "C", false, 0, "")

	y := 100.0
	if po != "-" {
		barcodePNG, err := renderCode128PNG(po, 1200, 260)
		if err != nil {
			return fmt.Errorf("barcode for %q: %w", po, err)
		}
		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		imageName := "po-barcode-" + strconv.Itoa(pageIndex)
		pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
		imgW := 200.0
		imgH := 44.0
		pdf.ImageOptions(imageName, (pageW-imgW)/2, y, imgW, imgH, false, opt, 0, "")
		y += imgH + 6
	}

	pdf.SetY(y)
	pdf.SetFont("Helvetica", "B", 40)
	pdf.CellFormat(0, 20, fmt.Sprintf("PALLETS: %d", o.PalletQty), "", 1, "C", false, 0, "")
	return nil
}

// TotalPallets sums Pallet_qty over orders.
func TotalPallets(orders []models.OutputOrder) int64 {
	var n int64
	for _, o := range orders {
		n += o.PalletQty
	}
	return n
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func fitFontSizeForWidth(pdf *gofpdf.Fpdf, family, style string, base, min float64, text string, maxWidth float64) float64 {
	if maxWidth <= 0 {
		return min
	}
	size := base
	pdf.SetFont(family, style, size)
	for size > min && pdf.GetStringWidth(text) > maxWidth {
		size -= 0.5
		pdf.SetFont(family, style, size)
	}
	return size
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
