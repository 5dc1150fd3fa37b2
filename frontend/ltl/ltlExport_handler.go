package ltl

import (
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ltlcleaner/infrastructure/cache"
	ltlcore "ltlcleaner/infrastructure/ltl"
	"ltlcleaner/models"
)

// RunCSVHandler exports the cleaned orders of a run as CSV, in the same
// column order as the workbook.
func RunCSVHandler(runs *cache.RunCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runs.FindRunByID(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		name := strings.TrimSuffix(ltlcore.OutputFileName, ".xlsx") + ".csv"
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+name)
		if err := writeOrdersCSV(w, run.Result.Orders); err != nil {
			slog.Error("ltl csv export failed", slog.String("run_id", run.ID), slog.Any("err", err))
			http.Error(w, "failed to export csv", http.StatusInternalServerError)
			return
		}
	}
}

func writeOrdersCSV(w io.Writer, orders []models.OutputOrder) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ltlcore.OutputColumns); err != nil {
		return err
	}
	for _, o := range orders {
		if err := writer.Write([]string{
			o.PurchaseOrderNo,
			o.SalesDocument,
			o.MaterialCode,
			o.OrderQuantity.String(),
			o.GrossWeightLb.String(),
			o.UnitsPerPallet.String(),
			o.DN,
			strconv.FormatInt(o.PalletQty, 10),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
