package ltl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ltlcleaner/infrastructure/cache"
	ltlcore "ltlcleaner/infrastructure/ltl"
	"ltlcleaner/infrastructure/loadsheet"
	"ltlcleaner/infrastructure/sheet"
	"ltlcleaner/models"
)

// ReferenceSource is the memoized reference table.
type ReferenceSource interface {
	Load() ([]models.ReferenceRow, error)
	Path() string
}

const uploadMemory = 8 << 20

var previewColumns = ltlcore.OutputColumns

// LTLPageQueryHandler renders the upload page.
func LTLPageQueryHandler(ref ReferenceSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := basePageData(ref)
		q := r.URL.Query()
		if msg := strings.TrimSpace(q.Get("error")); msg != "" {
			data.Banners = append(data.Banners, Banner{Kind: bannerKind(ltlcore.Kind(q.Get("kind"))), Text: msg})
		}
		if msg := strings.TrimSpace(q.Get("status")); msg != "" {
			data.Banners = append(data.Banners, Banner{Kind: "info", Text: msg})
		}
		if len(data.Banners) == 0 && data.ReferenceError == "" {
			data.Banners = append(data.Banners, Banner{Kind: "info", Text: "Please upload one or more SAP order export files."})
		}
		renderPage(w, r, data)
	}
}

// ProcessCommandHandler runs the pipeline over the uploaded files and
// redirects to the run page.
func ProcessCommandHandler(ref ReferenceSource, runs *cache.RunCache, maxUpload int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if maxUpload > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
		}
		if err := r.ParseMultipartForm(uploadMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				redirectWithError(w, r, &ltlcore.Error{Kind: ltlcore.KindMalformedInput, Message: fmt.Sprintf("upload exceeds %d MB", maxUpload>>20)})
				return
			}
			redirectWithError(w, r, &ltlcore.Error{Kind: ltlcore.KindMalformedInput, Message: "invalid upload form", Err: err})
			return
		}
		defer r.MultipartForm.RemoveAll()

		reference, err := ref.Load()
		if err != nil {
			slog.Error("ltl reference unavailable", slog.String("path", ref.Path()), slog.Any("err", err))
			redirectWithError(w, r, ltlcore.AsError(err))
			return
		}

		headers := r.MultipartForm.File["files"]
		uploads, names, closeAll, err := openUploads(headers)
		defer closeAll()
		if err != nil {
			redirectWithError(w, r, &ltlcore.Error{Kind: ltlcore.KindMalformedInput, Message: "cannot open upload", Err: err})
			return
		}

		out := ltlcore.Process(uploads, reference)
		if !out.OK() {
			slog.Warn("ltl run failed", slog.Any("files", names), slog.String("kind", string(out.Err.Kind)), slog.Any("err", out.Err))
			redirectWithError(w, r, out.Err)
			return
		}

		var workbook bytes.Buffer
		if err := ltlcore.WriteWorkbook(&workbook, out.Orders); err != nil {
			slog.Error("ltl workbook write failed", slog.Any("err", err))
			redirectWithError(w, r, ltlcore.AsError(err))
			return
		}

		run := cache.Run{
			ID:       uuid.NewString(),
			Files:    names,
			Result:   out.Result,
			Workbook: workbook.Bytes(),
		}
		runs.AddRun(run)
		slog.Info("ltl run complete",
			slog.String("run_id", run.ID),
			slog.Any("files", names),
			slog.Int("input_lines", out.Stats.InputLines),
			slog.Int("orders", out.Stats.Orders))

		status := fmt.Sprintf("Processed %d file(s)", len(names))
		http.Redirect(w, r, "/ltl/runs/"+run.ID+"?status="+url.QueryEscape(status), http.StatusSeeOther)
	}
}

// RunPageQueryHandler renders a finished run with its preview.
func RunPageQueryHandler(ref ReferenceSource, runs *cache.RunCache, previewRows int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runs.FindRunByID(chi.URLParam(r, "id"))
		if !ok {
			http.Redirect(w, r, "/ltl?status="+url.QueryEscape("That result has expired; please process the files again"), http.StatusSeeOther)
			return
		}

		data := basePageData(ref)
		if msg := strings.TrimSpace(r.URL.Query().Get("status")); msg != "" {
			data.Banners = append(data.Banners, Banner{Kind: "success", Text: msg})
		}
		if run.Result.Warning != nil {
			data.Banners = append(data.Banners, Banner{Kind: "warning", Text: run.Result.Warning.Message})
		}
		data.Run = newRunView(run, previewRows)
		renderPage(w, r, data)
	}
}

// RunWorkbookHandler streams the cleaned workbook of a run.
func RunWorkbookHandler(runs *cache.RunCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runs.FindRunByID(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", sheet.ContentTypeXLSX)
		w.Header().Set("Content-Disposition", "attachment; filename="+ltlcore.OutputFileName)
		_, _ = w.Write(run.Workbook)
	}
}

// RunLoadSheetHandler renders the pallet load sheet of a run.
func RunLoadSheetHandler(runs *cache.RunCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := runs.FindRunByID(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		if len(run.Result.Orders) == 0 {
			http.Error(w, "run has no LTL orders", http.StatusConflict)
			return
		}
		pdfBytes, err := loadsheet.Render(run.Result.Orders, time.Now())
		if err != nil {
			slog.Error("load sheet render failed", slog.String("run_id", run.ID), slog.Any("err", err))
			http.Error(w, "failed to build load sheet pdf", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", loadsheet.ContentType)
		w.Header().Set("Content-Disposition", "inline; filename=LTL_Load_Sheet.pdf")
		_, _ = w.Write(pdfBytes)
	}
}

// RunSummaryQueryHandler returns a run as JSON.
func RunSummaryQueryHandler(runs *cache.RunCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		run, ok := runs.FindRunByID(chi.URLParam(r, "id"))
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "run not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(RunSummary{
			ID:     run.ID,
			Files:  run.Files,
			Result: run.Result,
			Links: map[string]string{
				"page":       "/ltl/runs/" + run.ID,
				"workbook":   "/ltl/runs/" + run.ID + "/download.xlsx",
				"csv":        "/ltl/runs/" + run.ID + "/download.csv",
				"load_sheet": "/ltl/runs/" + run.ID + "/load-sheet.pdf",
			},
		})
	}
}

func basePageData(ref ReferenceSource) PageData {
	data := PageData{
		ReferencePath: ref.Path(),
		Accept:        strings.Join(sheet.SupportedExtensions, ","),
	}
	rows, err := ref.Load()
	if err != nil {
		data.ReferenceError = err.Error()
		return data
	}
	data.ReferenceRows = len(rows)
	return data
}

func renderPage(w http.ResponseWriter, r *http.Request, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := LTLCleanPage(data).Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render ltl page", http.StatusInternalServerError)
	}
}

func redirectWithError(w http.ResponseWriter, r *http.Request, e *ltlcore.Error) {
	q := url.Values{}
	q.Set("kind", string(e.Kind))
	q.Set("error", e.Error())
	http.Redirect(w, r, "/ltl?"+q.Encode(), http.StatusSeeOther)
}

func bannerKind(k ltlcore.Kind) string {
	if k == ltlcore.KindEmptyResult {
		return "warning"
	}
	return "error"
}

// openUploads opens every uploaded part. The returned close func is always
// safe to call.
func openUploads(headers []*multipart.FileHeader) ([]ltlcore.Upload, []string, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	uploads := make([]ltlcore.Upload, 0, len(headers))
	names := make([]string, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, nil, closeAll, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		files = append(files, f)
		uploads = append(uploads, ltlcore.Upload{Name: fh.Filename, Body: f})
		names = append(names, fh.Filename)
	}
	return uploads, names, closeAll, nil
}

func newRunView(run cache.Run, previewRows int) *RunView {
	orders := run.Result.Orders
	limit := len(orders)
	if previewRows > 0 && limit > previewRows {
		limit = previewRows
	}
	view := &RunView{
		ID:           run.ID,
		Files:        run.Files,
		Stats:        run.Result.Stats,
		TotalPallets: loadsheet.TotalPallets(orders),
		PreviewLimit: previewRows,
		Preview:      make([]PreviewRow, 0, limit),
	}
	for _, o := range orders[:limit] {
		view.Preview = append(view.Preview, PreviewRow{
			PurchaseOrderNo: o.PurchaseOrderNo,
			SalesDocument:   o.SalesDocument,
			Material:        o.MaterialCode,
			OrderQuantity:   o.OrderQuantity.String(),
			GrossWeight:     o.GrossWeightLb.StringFixed(2),
			CasePallet:      o.UnitsPerPallet.String(),
			DN:              o.DN,
			PalletQty:       fmt.Sprintf("%d", o.PalletQty),
		})
	}
	return view
}
