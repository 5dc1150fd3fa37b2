package ltl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ltlcleaner/models"
)

// PoundsPerKilogram converts export gross weights to pounds. The value is
// fixed for compatibility with previously issued sheets.
var PoundsPerKilogram = decimal.RequireFromString("2.20462")

// Stats counts what each stage of a run kept and dropped.
type Stats struct {
	Files          int `json:"files"`
	InputLines     int `json:"input_lines"`
	UnmatchedLines int `json:"unmatched_lines"`
	BlankPOLines   int `json:"blank_po_lines"`
	JoinedLines    int `json:"joined_lines"`
	Groups         int `json:"groups"`
	BelowThreshold int `json:"below_threshold"`
	Orders         int `json:"orders"`
}

// Result is the output of a successful transform.
type Result struct {
	Orders []models.OutputOrder `json:"orders"`
	Stats  Stats                `json:"stats"`
	// Warning is set when the join or the threshold filter removed every
	// order.
	Warning *Error `json:"warning,omitempty"`
}

type joinedLine struct {
	models.OrderLine
	GrossWeightLb  decimal.Decimal
	MinShipmentQty decimal.NullDecimal
	UnitsPerPallet decimal.NullDecimal
}

// Transform runs the LTL pipeline over already parsed order tables:
// concatenate, inner join on material, convert kg to lb, group by purchase
// order, apply the LTL threshold and derive pallet counts.
//
// Transform does not mutate its arguments and keeps no state, so concurrent
// runs may share the reference rows.
func Transform(tables [][]models.OrderLine, reference []models.ReferenceRow) (Result, error) {
	var res Result
	res.Stats.Files = len(tables)

	index, err := indexReference(reference)
	if err != nil {
		return res, err
	}

	lines := concatenate(tables)
	res.Stats.InputLines = len(lines)

	joined := make([]joinedLine, 0, len(lines))
	for _, line := range lines {
		ref, ok := index[line.MaterialCode]
		if !ok {
			res.Stats.UnmatchedLines++
			continue
		}
		joined = append(joined, joinedLine{
			OrderLine:      line,
			MinShipmentQty: ref.MinShipmentQty,
			UnitsPerPallet: ref.UnitsPerPallet,
		})
	}
	res.Stats.JoinedLines = len(joined)

	for i := range joined {
		joined[i].GrossWeightLb = joined[i].GrossWeightKg.Mul(PoundsPerKilogram)
	}

	groups, blank := groupByPurchaseOrder(joined)
	res.Stats.BlankPOLines = blank
	res.Stats.Groups = len(groups)

	eligible := make([]models.GroupedOrder, 0, len(groups))
	for _, g := range groups {
		if meetsThreshold(g) {
			eligible = append(eligible, g)
			continue
		}
		res.Stats.BelowThreshold++
	}

	orders, err := derivePallets(eligible)
	if err != nil {
		return res, err
	}
	res.Orders = orders
	res.Stats.Orders = len(orders)

	if len(orders) == 0 {
		res.Warning = emptyResultWarning(res.Stats)
	}
	return res, nil
}

func indexReference(reference []models.ReferenceRow) (map[string]models.ReferenceRow, error) {
	index := make(map[string]models.ReferenceRow, len(reference))
	for _, r := range reference {
		code := NormalizeKey(r.MaterialCode)
		if _, dup := index[code]; dup {
			return nil, referenceError("", "duplicate material code %q in reference table", code)
		}
		index[code] = r
	}
	return index, nil
}

func concatenate(tables [][]models.OrderLine) []models.OrderLine {
	n := 0
	for _, t := range tables {
		n += len(t)
	}
	out := make([]models.OrderLine, 0, n)
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}

// groupByPurchaseOrder aggregates joined lines per purchase order. Sums and
// minimums span the group; every other field comes from the group's first
// line in input order. Lines without a purchase order are not grouped.
func groupByPurchaseOrder(lines []joinedLine) ([]models.GroupedOrder, int) {
	blank := 0
	pos := make(map[string]int)
	groups := make([]models.GroupedOrder, 0)
	for _, l := range lines {
		key := l.PurchaseOrderNo
		if key == "" {
			blank++
			continue
		}
		i, ok := pos[key]
		if !ok {
			pos[key] = len(groups)
			groups = append(groups, models.GroupedOrder{
				PurchaseOrderNo: key,
				SalesDocument:   l.SalesDocument,
				MaterialCode:    l.MaterialCode,
				OrderQuantity:   l.OrderQuantity,
				GrossWeightLb:   l.GrossWeightLb,
				UnitsPerPallet:  l.UnitsPerPallet,
				MinShipmentQty:  l.MinShipmentQty,
				LineCount:       1,
			})
			continue
		}
		g := &groups[i]
		g.OrderQuantity = g.OrderQuantity.Add(l.OrderQuantity)
		g.GrossWeightLb = g.GrossWeightLb.Add(l.GrossWeightLb)
		g.UnitsPerPallet = minNull(g.UnitsPerPallet, l.UnitsPerPallet)
		g.MinShipmentQty = minNull(g.MinShipmentQty, l.MinShipmentQty)
		g.LineCount++
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return lessKey(groups[i].PurchaseOrderNo, groups[j].PurchaseOrderNo)
	})
	return groups, blank
}

// minNull ignores nulls; the result is null only when both are.
func minNull(a, b decimal.NullDecimal) decimal.NullDecimal {
	switch {
	case !a.Valid:
		return b
	case !b.Valid:
		return a
	case b.Decimal.LessThan(a.Decimal):
		return b
	default:
		return a
	}
}

// lessKey orders numbers numerically and before text, text lexically.
func lessKey(a, b string) bool {
	an, bn := IsNumericKey(a), IsNumericKey(b)
	switch {
	case an && bn:
		return decimal.RequireFromString(a).LessThan(decimal.RequireFromString(b))
	case an != bn:
		return an
	default:
		return a < b
	}
}

// meetsThreshold compares the purchase order total, not single lines,
// against the LTL minimum. A missing minimum means always eligible.
func meetsThreshold(g models.GroupedOrder) bool {
	if !g.MinShipmentQty.Valid {
		return true
	}
	return g.OrderQuantity.GreaterThanOrEqual(g.MinShipmentQty.Decimal)
}

func derivePallets(groups []models.GroupedOrder) ([]models.OutputOrder, error) {
	orders := make([]models.OutputOrder, 0, len(groups))
	bad := make([]string, 0)
	for _, g := range groups {
		if !g.UnitsPerPallet.Valid || !g.UnitsPerPallet.Decimal.IsPositive() {
			bad = append(bad, g.PurchaseOrderNo)
			continue
		}
		pallets, rem := g.OrderQuantity.QuoRem(g.UnitsPerPallet.Decimal, 0)
		if rem.IsPositive() {
			pallets = pallets.Add(decimal.NewFromInt(1))
		}
		orders = append(orders, models.OutputOrder{
			PurchaseOrderNo: g.PurchaseOrderNo,
			SalesDocument:   g.SalesDocument,
			MaterialCode:    g.MaterialCode,
			OrderQuantity:   g.OrderQuantity,
			GrossWeightLb:   g.GrossWeightLb,
			UnitsPerPallet:  g.UnitsPerPallet.Decimal,
			DN:              g.DN,
			PalletQty:       pallets.IntPart(),
			LineCount:       g.LineCount,
		})
	}
	if len(bad) > 0 {
		return nil, &Error{
			Kind:           KindComputation,
			Message:        fmt.Sprintf("%s is missing, zero or negative for purchase order(s): %s", ColCasePallet, strings.Join(bad, ", ")),
			PurchaseOrders: bad,
		}
	}
	return orders, nil
}

func emptyResultWarning(s Stats) *Error {
	msg := "no purchase order qualified for LTL shipment"
	switch {
	case s.InputLines == 0:
		msg = "the uploaded files contain no order lines"
	case s.JoinedLines == 0:
		msg = "no order line matched a material in the LTL reference table"
	case s.Groups == 0:
		msg = "no matched order line has a purchase order number"
	}
	return &Error{Kind: KindEmptyResult, Message: msg}
}
