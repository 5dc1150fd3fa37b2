package ltl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"ltlcleaner/frontend/shared/html"
)

// LTLCleanPage renders the upload form and, when a run is attached, its
// preview and download links.
func LTLCleanPage(data PageData) templ.Component {
	return html.Layout("LTL Order Cleaner", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<h1>LTL Order Cleaning Tool</h1>`)
		b.WriteString(`<p class="lead">Upload SAP Order Export file(s) and generate the cleaned LTL grouping sheet. <a href="/ltl/help">How it works</a></p>`)

		writeReferenceStatus(&b, data)
		for _, banner := range data.Banners {
			fmt.Fprintf(&b, `<div class="alert alert-%s" role="status">%s</div>`, templ.EscapeString(banner.Kind), templ.EscapeString(banner.Text))
		}
		writeUploadForm(&b, data)
		if data.Run != nil {
			writeRun(&b, data.Run)
		}

		_, err := io.WriteString(w, b.String())
		return err
	}))
}

func writeReferenceStatus(b *strings.Builder, data PageData) {
	if data.ReferenceError != "" {
		fmt.Fprintf(b, `<div class="alert alert-error">Error loading %s: %s</div>`,
			templ.EscapeString(data.ReferencePath), templ.EscapeString(data.ReferenceError))
		return
	}
	fmt.Fprintf(b, `<p class="muted">LTL reference: %s (%d materials)</p>`,
		templ.EscapeString(data.ReferencePath), data.ReferenceRows)
}

func writeUploadForm(b *strings.Builder, data PageData) {
	disabled := ""
	if data.ReferenceError != "" {
		disabled = " disabled"
	}
	fmt.Fprintf(b, `<form class="card" method="post" action="/ltl/process" enctype="multipart/form-data">
<label for="files">Upload SAP Order Export Excel file(s)</label>
<input id="files" name="files" type="file" accept="%s" multiple required>
<button class="btn" type="submit"%s>Process Files</button>
</form>`, templ.EscapeString(data.Accept), disabled)
}

func writeRun(b *strings.Builder, run *RunView) {
	id := templ.EscapeString(run.ID)
	b.WriteString(`<section class="card">`)
	fmt.Fprintf(b, `<h2>Result</h2><p>Files: %s</p>`, templ.EscapeString(strings.Join(run.Files, ", ")))
	fmt.Fprintf(b, `<ul class="stats"><li>%d order lines read</li><li>%d without LTL reference</li><li>%d purchase orders</li><li>%d below LTL quantity</li><li><strong>%d LTL orders, %d pallets</strong></li></ul>`,
		run.Stats.InputLines, run.Stats.UnmatchedLines, run.Stats.Groups, run.Stats.BelowThreshold, run.Stats.Orders, run.TotalPallets)

	if run.Stats.Orders > 0 {
		fmt.Fprintf(b, `<p class="actions"><a class="btn" href="/ltl/runs/%s/download.xlsx">Download Cleaned LTL File</a> <a class="btn btn-ghost" href="/ltl/runs/%s/download.csv">CSV</a> <a class="btn btn-ghost" href="/ltl/runs/%s/load-sheet.pdf">Pallet Load Sheet (PDF)</a></p>`, id, id, id)
	}

	if len(run.Preview) > 0 {
		if run.Stats.Orders > len(run.Preview) {
			fmt.Fprintf(b, `<p class="muted">Showing the first %d of %d rows.</p>`, len(run.Preview), run.Stats.Orders)
		}
		b.WriteString(`<table class="preview"><thead><tr>`)
		for _, col := range previewColumns {
			fmt.Fprintf(b, `<th>%s</th>`, templ.EscapeString(col))
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, row := range run.Preview {
			b.WriteString(`<tr>`)
			for _, cell := range []string{row.PurchaseOrderNo, row.SalesDocument, row.Material, row.OrderQuantity, row.GrossWeight, row.CasePallet, row.DN, row.PalletQty} {
				fmt.Fprintf(b, `<td>%s</td>`, templ.EscapeString(cell))
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)
	}
	b.WriteString(`</section>`)
}
