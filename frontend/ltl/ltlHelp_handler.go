package ltl

import (
	"net/http"
	"strings"

	ltlcore "ltlcleaner/infrastructure/ltl"
	"ltlcleaner/infrastructure/sheet"
)

// HelpPageQueryHandler explains what the uploads must contain and how the
// cleaned sheet is derived.
func HelpPageQueryHandler(ref ReferenceSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := HelpData{
			ReferencePath:    ref.Path(),
			Extensions:       strings.Join(sheet.SupportedExtensions, ", "),
			OrderColumns:     ltlcore.RequiredOrderColumns,
			ReferenceColumns: ltlcore.RequiredReferenceColumns,
			OutputColumns:    ltlcore.OutputColumns,
			PoundsPerKg:      ltlcore.PoundsPerKilogram.String(),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := HelpPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render help page", http.StatusInternalServerError)
			return
		}
	}
}
