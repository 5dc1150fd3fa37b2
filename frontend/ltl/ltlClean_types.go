package ltl

import (
	ltlcore "ltlcleaner/infrastructure/ltl"
)

// Banner is a one-line message shown above the upload form.
type Banner struct {
	Kind string // success, info, warning, error
	Text string
}

type PageData struct {
	ReferencePath  string
	ReferenceRows  int
	ReferenceError string
	Accept         string
	Banners        []Banner
	Run            *RunView
}

type RunView struct {
	ID           string
	Files        []string
	Stats        ltlcore.Stats
	TotalPallets int64
	PreviewLimit int
	Preview      []PreviewRow
}

// PreviewRow is an output order formatted for display.
type PreviewRow struct {
	PurchaseOrderNo string
	SalesDocument   string
	Material        string
	OrderQuantity   string
	GrossWeight     string
	CasePallet      string
	DN              string
	PalletQty       string
}

// RunSummary is the JSON body of the run API.
type RunSummary struct {
	ID     string            `json:"id"`
	Files  []string          `json:"files"`
	Result ltlcore.Result    `json:"result"`
	Links  map[string]string `json:"links"`
}

type HelpData struct {
	ReferencePath    string
	Extensions       string
	OrderColumns     []string
	ReferenceColumns []string
	OutputColumns    []string
	PoundsPerKg      string
}
