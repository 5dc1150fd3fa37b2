package ltl

import (
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"ltlcleaner/infrastructure/sheet"
	"ltlcleaner/models"
)

const (
	OutputSheetName = "LTL_Output"
	OutputFileName  = "LTL_Cleaned.xlsx"
)

// OutputColumns is the column order of the cleaned sheet.
var OutputColumns = []string{
	ColPurchaseOrder,
	ColSalesDocument,
	ColMaterial,
	ColOrderQuantity,
	ColGrossWeight,
	ColCasePallet,
	ColDN,
	ColPalletQty,
}

// WriteWorkbook writes the cleaned orders as a one-sheet xlsx workbook.
func WriteWorkbook(w io.Writer, orders []models.OutputOrder) error {
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []any{
			keyCell(o.PurchaseOrderNo),
			keyCell(o.SalesDocument),
			keyCell(o.MaterialCode),
			numberCell(o.OrderQuantity),
			o.GrossWeightLb.InexactFloat64(),
			numberCell(o.UnitsPerPallet),
			o.DN,
			o.PalletQty,
		})
	}
	return sheet.WriteXLSX(w, OutputSheetName, OutputColumns, rows)
}

// keyCell keeps codes that were numbers in the export as numbers. Codes
// too long for a spreadsheet number to hold exactly stay text.
func keyCell(key string) any {
	if !IsNumericKey(key) || len(key) > maxExactDigits {
		return key
	}
	n, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return key
	}
	return n
}

// maxExactDigits is the longest integer a float64 cell stores without loss.
const maxExactDigits = 15

func numberCell(d decimal.Decimal) any {
	if d.IsInteger() && d.Abs().LessThan(decimal.New(1, 15)) {
		return d.IntPart()
	}
	return d.InexactFloat64()
}
