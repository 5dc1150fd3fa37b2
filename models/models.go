package models

import (
	"github.com/shopspring/decimal"
)

// ReferenceRow holds the per-material LTL shipping constants.
type ReferenceRow struct {
	MaterialCode   string
	MinShipmentQty decimal.NullDecimal
	UnitsPerPallet decimal.NullDecimal
}

// OrderLine is one line item of an uploaded order export.
type OrderLine struct {
	Source          string
	Row             int
	PurchaseOrderNo string
	SalesDocument   string
	MaterialCode    string
	OrderQuantity   decimal.Decimal
	GrossWeightKg   decimal.Decimal
}

// GroupedOrder aggregates every joined line of one purchase order.
type GroupedOrder struct {
	PurchaseOrderNo string
	SalesDocument   string
	MaterialCode    string
	OrderQuantity   decimal.Decimal
	GrossWeightLb   decimal.Decimal
	UnitsPerPallet  decimal.NullDecimal
	MinShipmentQty  decimal.NullDecimal
	DN              string
	LineCount       int
}

// OutputOrder is a grouped order that qualified for LTL shipment.
type OutputOrder struct {
	PurchaseOrderNo string          `json:"purchase_order_no"`
	SalesDocument   string          `json:"sales_document"`
	MaterialCode    string          `json:"material"`
	OrderQuantity   decimal.Decimal `json:"order_quantity"`
	GrossWeightLb   decimal.Decimal `json:"gross_weight_lb"`
	UnitsPerPallet  decimal.Decimal `json:"case_pallet"`
	DN              string          `json:"dn"`
	PalletQty       int64           `json:"pallet_qty"`
	LineCount       int             `json:"line_count"`
}
