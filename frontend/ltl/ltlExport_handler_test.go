package ltl

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ltlcleaner/infrastructure/cache"
)

func TestRunCSVHandler_ExportsOrders(t *testing.T) {
	runs := cache.NewRunCache(time.Hour, 4)
	seededRun(t, runs, 2)
	handler := RunCSVHandler(runs)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, withRunID(httptest.NewRequest(http.MethodGet, "/ltl/runs/run-1/download.csv", nil), "run-1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "LTL_Cleaned.csv") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "Purchase order no." || records[0][7] != "Pallet_qty" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if records[1][4] != "33.0693" || records[1][7] != "6" || records[1][6] != "" {
		t.Fatalf("unexpected row %v", records[1])
	}
}

func TestRunCSVHandler_UnknownRunNotFound(t *testing.T) {
	rr := httptest.NewRecorder()
	RunCSVHandler(cache.NewRunCache(time.Hour, 4)).ServeHTTP(rr,
		withRunID(httptest.NewRequest(http.MethodGet, "/ltl/runs/x/download.csv", nil), "x"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHelpPageQueryHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	HelpPageQueryHandler(testReference()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ltl/help", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"<code>Gross weight</code>", "<code>Case_Pallet</code>", "2.20462", "LTL_qty.xlsx"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q on help page", want)
		}
	}
}
