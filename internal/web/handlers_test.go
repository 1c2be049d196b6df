package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/payroll-import/internal/config"
	"github.com/JonMunkholm/payroll-import/internal/core"
	"github.com/JonMunkholm/payroll-import/internal/importer"
	"github.com/JonMunkholm/payroll-import/internal/store"
	"github.com/JonMunkholm/payroll-import/internal/store/localstore"
)

// downStore is a store that never becomes ready.
type downStore struct{ name string }

func (d downStore) Name() string { return d.name }

func (d downStore) Initialize(ctx context.Context) bool { return false }

func (d downStore) WriteBatch(ctx context.Context, key string, b *core.Batch) error { return nil }

func (d downStore) WriteRecord(ctx context.Context, rec core.Record) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 10 * time.Second},
		Import: config.ImportConfig{MaxFileSize: 1 << 20},
		Payslip: config.PayslipConfig{
			Title:    "Salary Slip",
			Currency: "Rs.",
		},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

type testEnv struct {
	server  *Server
	limiter *importer.Limiter
}

func newTestEnv(t *testing.T, primary store.Adapter, cfg *config.Config) *testEnv {
	t.Helper()
	local, err := localstore.New(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("localstore.New() error = %v", err)
	}
	t.Cleanup(func() { local.Close() })

	return newTestEnvWith(t, primary, local, cfg)
}

func newTestEnvWith(t *testing.T, primary, secondary store.Adapter, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	limiter := importer.NewLimiter(2, 50*time.Millisecond)
	router := store.NewRouter(primary, secondary, store.WithInitTimeout(time.Second))
	svc := importer.New(router, importer.WithLimiter(limiter), importer.WithMaxFileSize(cfg.Import.MaxFileSize))
	return &testEnv{server: NewServer(svc, cfg), limiter: limiter}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, path, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() error = %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		fw.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var period = map[string]string{"month": "January", "year": "2025"}

const sampleCSV = "ID,Name,Basic,Net Pay\nT001,Dr. Smith,50000,45000\nT002,Ms. Iyer,40000,36000"

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) importer.Result {
	t.Helper()
	var res importer.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode result: %v (body %q)", err, rec.Body.String())
	}
	return res
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&er); err != nil {
		t.Fatalf("decode error response: %v (body %q)", err, rec.Body.String())
	}
	return er
}

func TestHandleImport_Success(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(uploadRequest(t, "/api/import", "january.csv", []byte(sampleCSV), period))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	res := decodeResult(t, rec)
	if !res.Success || res.RecordCount != 2 {
		t.Errorf("Success/RecordCount = %v/%d, want true/2", res.Success, res.RecordCount)
	}
	if res.BatchID == nil {
		t.Error("batchId = null on success")
	}
	if res.Store != store.RoleSecondary {
		t.Errorf("store = %q, want secondary (no primary configured)", res.Store)
	}
}

func TestHandleImport_Statuses(t *testing.T) {
	tests := []struct {
		name     string
		bothDown bool
		filename string
		content  []byte
		fields   map[string]string
		status   int
		code     string
	}{
		{
			name:     "unreadable workbook",
			filename: "january.xlsx",
			content:  []byte("not a workbook"),
			fields:   period,
			status:   http.StatusUnprocessableEntity,
			code:     "FILE002",
		},
		{
			name:     "missing year",
			filename: "january.csv",
			content:  []byte(sampleCSV),
			fields:   map[string]string{"month": "January"},
			status:   http.StatusUnprocessableEntity,
			code:     "VAL008",
		},
		{
			name:     "header only",
			filename: "january.csv",
			content:  []byte("ID,Name,Basic\n"),
			fields:   period,
			status:   http.StatusUnprocessableEntity,
			code:     "VAL007",
		},
		{
			name:     "every store down",
			bothDown: true,
			filename: "january.csv",
			content:  []byte(sampleCSV),
			fields:   period,
			status:   http.StatusServiceUnavailable,
			code:     "STORE001",
		},
		{
			name:     "explicit kind overrides extension",
			filename: "january.dat",
			content:  []byte(strings.ReplaceAll(sampleCSV, ",", "\t")),
			fields:   map[string]string{"month": "January", "year": "2025", "kind": "tsv"},
			status:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env *testEnv
			if tt.bothDown {
				env = newTestEnvWith(t, downStore{"remote"}, downStore{"local"}, nil)
			} else {
				env = newTestEnv(t, nil, nil)
			}

			rec := env.do(uploadRequest(t, "/api/import", tt.filename, tt.content, tt.fields))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			res := decodeResult(t, rec)
			if tt.status != http.StatusOK {
				if res.Success || res.BatchID != nil {
					t.Errorf("Success/BatchID = %v/%v, want false/nil", res.Success, res.BatchID)
				}
				if !strings.Contains(res.Message, tt.code) {
					t.Errorf("message = %q, want code %s", res.Message, tt.code)
				}
			}
		})
	}
}

func TestHandleImport_NullBatchIDOnFailure(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(uploadRequest(t, "/api/import", "x.xlsx", []byte("junk"), period))

	var raw map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, ok := raw["batchId"]
	if !ok || v != nil {
		t.Errorf("batchId = %v (present %v), want JSON null", v, ok)
	}
}

func TestHandleImport_Busy(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	for i := 0; i < 2; i++ {
		if !env.limiter.TryAcquire() {
			t.Fatal("TryAcquire() = false")
		}
	}
	defer env.limiter.Release()
	defer env.limiter.Release()

	rec := env.do(uploadRequest(t, "/api/import", "january.csv", []byte(sampleCSV), period))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
	if res := decodeResult(t, rec); !strings.Contains(res.Message, "UPL002") {
		t.Errorf("message = %q, want UPL002", res.Message)
	}
}

func TestHandleImport_BadForms(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	tests := []struct {
		name   string
		req    *http.Request
		status int
		code   string
	}{
		{
			name:   "no file field",
			req:    uploadRequest(t, "/api/import", "", nil, period),
			status: http.StatusBadRequest,
			code:   "FILE004",
		},
		{
			name:   "not multipart",
			req:    httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("ID,Name")),
			status: http.StatusBadRequest,
			code:   "FILE004",
		},
		{
			name:   "unsupported extension",
			req:    uploadRequest(t, "/api/import", "payroll.pdf", []byte("%PDF"), period),
			status: http.StatusUnsupportedMediaType,
			code:   "FILE006",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if er := decodeError(t, rec); er.Code != tt.code {
				t.Errorf("code = %q, want %q", er.Code, tt.code)
			}
		})
	}
}

func TestHandleImport_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Import.MaxFileSize = 64
	env := newTestEnv(t, nil, cfg)

	big := []byte(sampleCSV + strings.Repeat("\nT9,X,1", 50))
	rec := env.do(uploadRequest(t, "/api/import", "big.csv", big, period))

	if rec.Code == http.StatusOK {
		t.Fatalf("status = 200, want rejection")
	}
	var body struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "FILE001" && !strings.Contains(body.Message, "FILE001") {
		t.Errorf("body = %+v, want FILE001", body)
	}
}

func TestHandlePreview(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(uploadRequest(t, "/api/preview", "january.csv", []byte(sampleCSV), period))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var p importer.Preview
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.RecordCount != 2 {
		t.Errorf("recordCount = %d, want 2", p.RecordCount)
	}
	if p.Mapping[core.FieldNetPay] != "Net Pay" {
		t.Errorf("mapping[netPay] = %q, want Net Pay", p.Mapping[core.FieldNetPay])
	}

	// Preview writes nothing.
	if rec := env.do(httptest.NewRequest(http.MethodGet, "/api/batches/January_2025", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("batch after preview status = %d, want 404", rec.Code)
	}
}

func TestHandlePreview_ParseError(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(uploadRequest(t, "/api/preview", "january.xls", []byte("junk"), period))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if er := decodeError(t, rec); er.Code != "FILE002" {
		t.Errorf("code = %q, want FILE002", er.Code)
	}
}

func TestHandleBatchAndSlip(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	if rec := env.do(uploadRequest(t, "/api/import", "january.csv", []byte(sampleCSV), period)); rec.Code != http.StatusOK {
		t.Fatalf("import status = %d (body %s)", rec.Code, rec.Body.String())
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/batches/January_2025", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("batch status = %d, want 200", rec.Code)
	}
	var br batchResponse
	if err := json.NewDecoder(rec.Body).Decode(&br); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if br.Store != store.RoleSecondary {
		t.Errorf("store = %q, want secondary", br.Store)
	}
	if br.Batch.Summary.Count != 2 || br.Batch.Summary.TotalNet != 81000 {
		t.Errorf("summary = %+v, want 2 records, net 81000", br.Batch.Summary)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/batches/January_2025/slips/T001_January_2025.pdf", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("slip status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("slip body is not a PDF")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "payslip_T001_January_2025.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestHandleBatch_NotFound(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	for _, path := range []string{
		"/api/batches/March_1999",
		"/api/batches/March_1999/slips/T1_March_1999.pdf",
	} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
			continue
		}
		if er := decodeError(t, rec); er.Code != "STORE003" {
			t.Errorf("GET %s code = %q, want STORE003", path, er.Code)
		}
	}
}

func TestHandleSample(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/sample", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	firstLine, _, _ := strings.Cut(rec.Body.String(), "\n")
	if want := strings.Join(core.SampleHeader(), ","); strings.TrimSpace(firstLine) != want {
		t.Errorf("header line = %q, want %q", firstLine, want)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/sample.xlsx", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx status = %d, want 200", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("xlsx body is not a zip container")
	}
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var h healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Status != "ok" || h.Imports == nil || h.Imports.Capacity != 2 {
		t.Errorf("health = %+v, want ok with capacity 2", h)
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("%s header missing", h)
		}
	}
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"k-123"}
	env := newTestEnv(t, nil, cfg)

	tests := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong", "X-API-Key", "nope", http.StatusForbidden},
		{"header", "X-API-Key", "k-123", http.StatusOK},
		{"bearer", "Authorization", "Bearer k-123", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/sample", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			if rec := env.do(req); rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}

	if rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)); rec.Code != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200 without a key", rec.Code)
	}
}
