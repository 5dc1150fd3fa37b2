package ltl

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"ltlcleaner/infrastructure/sheet"
	"ltlcleaner/models"
)

// Order export columns.
const (
	ColPurchaseOrder = "Purchase order no."
	ColSalesDocument = "Sales document"
	ColMaterial      = "Material"
	ColOrderQuantity = "Order Quantity"
	ColGrossWeight   = "Gross weight"
)

// Reference file columns.
const (
	ColSAPCode    = "SAP Code"
	ColLTLQty     = "LTL Qty"
	ColCasePallet = "Case_Pallet"
)

// Output-only columns.
const (
	ColDN        = "DN"
	ColPalletQty = "Pallet_qty"
)

// RequiredOrderColumns must be present in every uploaded order export.
var RequiredOrderColumns = []string{ColPurchaseOrder, ColSalesDocument, ColMaterial, ColOrderQuantity, ColGrossWeight}

// RequiredReferenceColumns must be present in the reference file.
var RequiredReferenceColumns = []string{ColSAPCode, ColLTLQty, ColCasePallet}

// ParseOrderTable maps an order export sheet onto order lines. Blank rows
// are skipped and blank quantities or weights count as zero.
func ParseOrderTable(t *sheet.Table) ([]models.OrderLine, error) {
	if missing := t.MissingColumns(RequiredOrderColumns...); len(missing) > 0 {
		return nil, malformedInput(t.Name, "missing required column(s): %s", strings.Join(missing, ", "))
	}
	poCol := t.Column(ColPurchaseOrder)
	sdCol := t.Column(ColSalesDocument)
	matCol := t.Column(ColMaterial)
	qtyCol := t.Column(ColOrderQuantity)
	wtCol := t.Column(ColGrossWeight)

	lines := make([]models.OrderLine, 0, len(t.Rows))
	for i, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		rowNo := i + 2
		qty, err := parseNumber(row[qtyCol])
		if err != nil {
			return nil, malformedInput(t.Name, "row %d: %s: invalid number %q", rowNo, ColOrderQuantity, row[qtyCol])
		}
		kg, err := parseNumber(row[wtCol])
		if err != nil {
			return nil, malformedInput(t.Name, "row %d: %s: invalid number %q", rowNo, ColGrossWeight, row[wtCol])
		}
		lines = append(lines, models.OrderLine{
			Source:          t.Name,
			Row:             rowNo,
			PurchaseOrderNo: NormalizeKey(row[poCol]),
			SalesDocument:   NormalizeKey(row[sdCol]),
			MaterialCode:    NormalizeKey(row[matCol]),
			OrderQuantity:   qty.Decimal,
			GrossWeightKg:   kg.Decimal,
		})
	}
	return lines, nil
}

// ParseReferenceTable maps the reference sheet onto reference rows. Rows
// without a material code are skipped; a repeated code is an error.
func ParseReferenceTable(t *sheet.Table) ([]models.ReferenceRow, error) {
	if missing := t.MissingColumns(RequiredReferenceColumns...); len(missing) > 0 {
		return nil, referenceError(t.Name, "missing required column(s): %s", strings.Join(missing, ", "))
	}
	codeCol := t.Column(ColSAPCode)
	minCol := t.Column(ColLTLQty)
	palletCol := t.Column(ColCasePallet)

	seen := make(map[string]int, len(t.Rows))
	rows := make([]models.ReferenceRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		rowNo := i + 2
		code := NormalizeKey(row[codeCol])
		if code == "" {
			continue
		}
		if first, ok := seen[code]; ok {
			return nil, referenceError(t.Name, "duplicate %s %q on rows %d and %d", ColSAPCode, code, first, rowNo)
		}
		seen[code] = rowNo

		minQty, err := parseNumber(row[minCol])
		if err != nil {
			return nil, referenceError(t.Name, "row %d: %s: invalid number %q", rowNo, ColLTLQty, row[minCol])
		}
		perPallet, err := parseNumber(row[palletCol])
		if err != nil {
			return nil, referenceError(t.Name, "row %d: %s: invalid number %q", rowNo, ColCasePallet, row[palletCol])
		}
		rows = append(rows, models.ReferenceRow{
			MaterialCode:   code,
			MinShipmentQty: minQty,
			UnitsPerPallet: perPallet,
		})
	}
	return rows, nil
}

// NormalizeKey trims a code and rewrites plain integer text to its
// canonical form, so a material stored as the number 1000123 and as the
// text "1000123.0" compare equal. Zero-padded codes, fractions and
// exponent forms are left as text.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if zeroPadded(s) {
		return s
	}
	m := integerKey.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return m[1]
}

// IsNumericKey reports whether a normalized key is a canonical integer.
func IsNumericKey(s string) bool {
	if zeroPadded(s) {
		return false
	}
	m := integerKey.FindStringSubmatch(s)
	return m != nil && m[1] == s
}

var integerKey = regexp.MustCompile(`^(\d+)(?:\.0+)?$`)

func zeroPadded(s string) bool {
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}

func parseNumber(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
