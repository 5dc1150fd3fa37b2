package ltl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"ltlcleaner/frontend/shared/html"
)

func HelpPage(data HelpData) templ.Component {
	return html.Layout("LTL Order Cleaner - Help", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<h1>How the LTL sheet is built</h1><section class="card">`)
		fmt.Fprintf(&b, `<p>Upload one or more SAP order exports (%s). Every file needs the columns %s.</p>`,
			templ.EscapeString(data.Extensions), codeList(data.OrderColumns))
		fmt.Fprintf(&b, `<p>Materials are looked up in <code>%s</code> by %s.</p>`,
			templ.EscapeString(data.ReferencePath), codeList(data.ReferenceColumns))
		b.WriteString(`<ol>`)
		b.WriteString(`<li>Lines whose material is not in the reference are dropped.</li>`)
		fmt.Fprintf(&b, `<li>Gross weight is converted from kg to lb (x %s).</li>`, templ.EscapeString(data.PoundsPerKg))
		b.WriteString(`<li>Lines are grouped by purchase order: quantity and weight are summed, the first line supplies sales document and material.</li>`)
		b.WriteString(`<li>Orders below the material's LTL quantity are removed; materials without one always qualify.</li>`)
		b.WriteString(`<li>Pallet_qty is the order quantity divided by Case_Pallet, rounded up.</li>`)
		b.WriteString(`</ol>`)
		fmt.Fprintf(&b, `<p>The cleaned sheet has the columns %s. DN is left blank for you to fill in.</p>`, codeList(data.OutputColumns))
		b.WriteString(`<p><a class="btn btn-ghost" href="/ltl">Back to upload</a></p></section>`)
		_, err := io.WriteString(w, b.String())
		return err
	}))
}

func codeList(items []string) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, "<code>"+templ.EscapeString(it)+"</code>")
	}
	return strings.Join(parts, ", ")
}
