package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ltlcleaner/infrastructure/cache"
	"ltlcleaner/infrastructure/reference"
	"ltlcleaner/infrastructure/sheet"
)

var exportHeader = []string{"Sales document", "Purchase order no.", "Material", "Order Quantity", "Gross weight"}

type integrationEnv struct {
	server *httptest.Server
	runs   *cache.RunCache
}

func writeWorkbook(t *testing.T, path string, header []string, rows ...[]any) {
	t.Helper()
	var buf bytes.Buffer
	if err := sheet.WriteXLSX(&buf, "Sheet1", header, rows); err != nil {
		t.Fatalf("build %s: %v", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func setupIntegrationServer(t *testing.T, maxUpload int64) (*integrationEnv, *http.Client) {
	t.Helper()
	refPath := filepath.Join(t.TempDir(), "LTL_qty.xlsx")
	writeWorkbook(t, refPath, []string{"SAP Code", "LTL Qty", "Case_Pallet"},
		[]any{1000123, 50, 10},
		[]any{1000456, 20, 25},
	)

	loader := reference.NewLoader(refPath)
	if _, err := loader.Load(); err != nil {
		t.Fatalf("load reference: %v", err)
	}
	runs := cache.NewRunCache(time.Hour, 8)

	s := NewServer("127.0.0.1:0", loader, runs, Options{MaxUploadBytes: maxUpload, PreviewRows: 50})
	ts := httptest.NewServer(s.Handler())
	env := &integrationEnv{server: ts, runs: runs}
	t.Cleanup(env.server.Close)
	return env, newHTTPClient(t)
}

func newHTTPClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, client *http.Client, baseURL, path string) *http.Response {
	t.Helper()
	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return body
}

func csrfToken(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()
	u, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == "X-CSRF-Token" {
			return c.Value
		}
	}
	return ""
}

type namedFile struct {
	name string
	body []byte
}

func exportFile(t *testing.T, name string, rows ...[]any) namedFile {
	t.Helper()
	var buf bytes.Buffer
	if err := sheet.WriteXLSX(&buf, "Sheet1", exportHeader, rows); err != nil {
		t.Fatalf("build %s: %v", name, err)
	}
	return namedFile{name: name, body: buf.Bytes()}
}

func postUploads(t *testing.T, client *http.Client, baseURL string, withToken bool, files ...namedFile) *http.Response {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if token := csrfToken(t, client, baseURL); withToken && token != "" {
		if err := writer.WriteField("_csrf", token); err != nil {
			t.Fatalf("write csrf multipart field: %v", err)
		}
	}
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.name)
		if err != nil {
			t.Fatalf("create multipart file field: %v", err)
		}
		if _, err := part.Write(f.body); err != nil {
			t.Fatalf("write multipart file content: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/ltl/process", &body)
	if err != nil {
		t.Fatalf("build multipart request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST /ltl/process failed: %v", err)
	}
	return resp
}

func TestHealthAndRootRedirect(t *testing.T) {
	env, client := setupIntegrationServer(t, 1<<20)

	resp := get(t, client, env.server.URL, "/health")
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health response %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Fatalf("expected secure headers on response")
	}

	resp = get(t, client, env.server.URL, "/")
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/ltl" {
		t.Fatalf("expected redirect to /ltl, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestAssetsServed(t *testing.T) {
	env, client := setupIntegrationServer(t, 1<<20)

	resp := get(t, client, env.server.URL, "/assets/app.css")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), ".alert-error") {
		t.Fatalf("expected stylesheet, got %d", resp.StatusCode)
	}
}

func TestCSRFPostWithoutTokenRejected(t *testing.T) {
	env, client := setupIntegrationServer(t, 1<<20)

	// No GET first: no CSRF token available in cookie or form.
	resp := postUploads(t, client, env.server.URL, false, exportFile(t, "export.xlsx", []any{1, 2, 1000123, 60, 1}))
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for missing csrf, got %d", resp.StatusCode)
	}
	if env.runs.Len() != 0 {
		t.Fatalf("expected no run created")
	}
}

func TestCSRFPostWithoutToken_CrossOriginRejected(t *testing.T) {
	env, client := setupIntegrationServer(t, 1<<20)
	_ = readBody(t, get(t, client, env.server.URL, "/ltl"))

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/ltl/process", strings.NewReader(""))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://evil.example")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("post cross-origin request: %v", err)
	}
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-origin missing csrf token, got %d", resp.StatusCode)
	}
}

func TestUploadProcessAndDownload(t *testing.T) {
	env, client := setupIntegrationServer(t, 1<<20)

	resp := get(t, client, env.server.URL, "/ltl")
	page := string(readBody(t, resp))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ltl page 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(page, "(2 materials)") || !strings.Contains(page, `enctype="multipart/form-data"`) {
		t.Fatalf("expected reference status and upload form")
	}

	resp = postUploads(t, client, env.server.URL, true,
		exportFile(t, "export-1.xlsx",
			[]any{80001, 4500000001, 1000123, 40, 10},
			[]any{80003, 4500000003, 1000123, 30, 4},
			[]any{80009, 4500000009, 77777, 900, 50},
		),
		exportFile(t, "export-2.xlsx",
			[]any{80002, 4500000001, 1000123, 20, 5},
			[]any{80004, 4500000004, 1000456, 101, 12},
		),
	)
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after processing, got %d", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/ltl/runs/") {
		t.Fatalf("unexpected process redirect: %s", location)
	}
	runPath := strings.SplitN(location, "?", 2)[0]

	resp = get(t, client, env.server.URL, location)
	page = string(readBody(t, resp))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected run page 200, got %d", resp.StatusCode)
	}
	for _, want := range []string{"Processed 2 file(s)", "4500000001", "4500000004", "33.07"} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q on run page", want)
		}
	}
	if strings.Contains(page, "4500000003") || strings.Contains(page, "4500000009") {
		t.Fatalf("expected below-threshold and unmatched orders to be absent")
	}

	resp = get(t, client, env.server.URL, runPath+"/download.xlsx")
	workbook := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != sheet.ContentTypeXLSX {
		t.Fatalf("unexpected download response %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	tbl, err := sheet.Read("LTL_Cleaned.xlsx", bytes.NewReader(workbook))
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 output rows, got %v", tbl.Rows)
	}
	palletCol := tbl.Column("Pallet_qty")
	if tbl.Rows[0][palletCol] != "6" || tbl.Rows[1][palletCol] != "5" {
		t.Fatalf("unexpected pallet counts %v", tbl.Rows)
	}

	resp = get(t, client, env.server.URL, runPath+"/load-sheet.pdf")
	pdf := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("expected load sheet pdf, got %d", resp.StatusCode)
	}

	id := strings.TrimPrefix(runPath, "/ltl/runs/")
	resp = get(t, client, env.server.URL, "/api/ltl/runs/"+id)
	var summary struct {
		Files  []string `json:"files"`
		Result struct {
			Stats struct {
				InputLines     int `json:"input_lines"`
				UnmatchedLines int `json:"unmatched_lines"`
				Orders         int `json:"orders"`
			} `json:"stats"`
		} `json:"result"`
	}
	if err := json.Unmarshal(readBody(t, resp), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(summary.Files) != 2 || summary.Result.Stats.InputLines != 5 || summary.Result.Stats.UnmatchedLines != 1 || summary.Result.Stats.Orders != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestUploadUnsupportedFileRedirectsWithError(t *testing.T) {
	env, client := setupIntegrationServer(t, 1<<20)
	_ = readBody(t, get(t, client, env.server.URL, "/ltl"))

	resp := postUploads(t, client, env.server.URL, true, namedFile{name: "notes.txt", body: []byte("hello")})
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/ltl?") || !strings.Contains(location, "kind=malformed_input") {
		t.Fatalf("unexpected redirect %s", location)
	}

	resp = get(t, client, env.server.URL, location)
	page := string(readBody(t, resp))
	if !strings.Contains(page, "alert-error") || !strings.Contains(page, "notes.txt") {
		t.Fatalf("expected error banner naming the file")
	}
}

func TestUploadTooLargeRejected(t *testing.T) {
	env, client := setupIntegrationServer(t, 512)
	_ = readBody(t, get(t, client, env.server.URL, "/ltl"))

	resp := postUploads(t, client, env.server.URL, true, namedFile{name: "big.csv", body: bytes.Repeat([]byte("x"), 4096)})
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}

func TestUnknownRunDownloadNotFound(t *testing.T) {
	env, client := setupIntegrationServer(t, 1<<20)

	resp := get(t, client, env.server.URL, "/ltl/runs/does-not-exist/download.xlsx")
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
