package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/payroll-import/internal/core"
	"github.com/JonMunkholm/payroll-import/internal/importer"
	"github.com/JonMunkholm/payroll-import/internal/logging"
	"github.com/JonMunkholm/payroll-import/internal/payslip"
	"github.com/JonMunkholm/payroll-import/internal/store"
)

var errNoFile = errors.New("no file provided")

// upload is a decoded import form.
type upload struct {
	raw      []byte
	filename string
	kind     core.SourceKind
	period   core.Period
}

// readUpload decodes a multipart form with fields file, month, year and an
// optional kind. Without kind the file extension decides.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, int, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file too large: %w", err)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, http.StatusBadRequest, errNoFile
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("read upload: %w", err)
	}

	var kind core.SourceKind
	if k := r.FormValue("kind"); k != "" {
		kind, err = core.ParseKind(k)
	} else {
		kind, err = core.KindFromFilename(header.Filename)
	}
	if err != nil {
		return nil, http.StatusUnsupportedMediaType, err
	}

	return &upload{
		raw:      raw,
		filename: header.Filename,
		kind:     kind,
		period: core.Period{
			Month: r.FormValue("month"),
			Year:  r.FormValue("year"),
		},
	}, 0, nil
}

// handleImport imports an uploaded file and returns the import result.
//
// Status: 200 persisted, 429 import slots busy, 503 no store accepted the
// batch, 422 anything wrong with the input.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	up, status, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, status)
		return
	}

	logging.FromContext(r.Context()).Debug("import upload received",
		"file", up.filename, "kind", up.kind, "bytes", len(up.raw))

	res := s.service.ImportFile(r.Context(), up.raw, up.kind, up.period)
	status = importStatus(res)
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "5")
	}
	writeJSONStatus(w, status, res)
}

func importStatus(res importer.Result) int {
	switch {
	case res.Success:
		return http.StatusOK
	case errors.Is(res.Err, importer.ErrTooManyImports):
		return http.StatusTooManyRequests
	case res.Batch != nil:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}

// handlePreview reports how an uploaded file would be imported.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	up, status, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, status)
		return
	}

	p, err := s.service.Preview(r.Context(), up.raw, up.kind, up.period)
	if err != nil {
		respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, p)
}

// batchResponse is a stored batch and the store role it came from.
type batchResponse struct {
	Store        store.Role  `json:"store"`
	DuplicateIDs []string    `json:"duplicateIds,omitempty"`
	Batch        *core.Batch `json:"batch"`
}

// handleBatch returns the stored batch for a period key.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "periodKey")

	b, role, err := s.service.Batch(r.Context(), key)
	if err != nil {
		respondError(w, r, err, lookupStatus(err))
		return
	}
	writeJSON(w, batchResponse{Store: role, DuplicateIDs: b.DuplicateIDs(), Batch: b})
}

// handleSlip renders one stored record as a PDF salary slip. The record id
// may carry a ".pdf" suffix.
func (s *Server) handleSlip(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "periodKey")
	id := strings.TrimSuffix(chi.URLParam(r, "slip"), ".pdf")

	rec, err := s.service.Slip(r.Context(), key, id)
	if err != nil {
		respondError(w, r, err, lookupStatus(err))
		return
	}

	var buf bytes.Buffer
	opts := payslip.Options{
		Title:        s.cfg.Payslip.Title,
		Organization: s.cfg.Payslip.Organization,
		Currency:     s.cfg.Payslip.Currency,
	}
	if err := payslip.Render(&buf, rec, opts); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", payslip.Filename(rec)))
	_, _ = w.Write(buf.Bytes())
}

func lookupStatus(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusServiceUnavailable
}

// handleSampleCSV serves the sample import file as CSV.
func (s *Server) handleSampleCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := core.WriteSampleCSV(&buf); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="payroll_sample.csv"`)
	_, _ = w.Write(buf.Bytes())
}

// handleSampleXLSX serves the sample import file as a workbook.
func (s *Server) handleSampleXLSX(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := core.WriteSampleXLSX(&buf); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="payroll_sample.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

// healthResponse reports liveness and import slot usage.
type healthResponse struct {
	Status  string                  `json:"status"`
	Imports *importer.LimiterStatus `json:"imports,omitempty"`
}

// handleHealth reports liveness. It never touches the stores.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if l := s.service.Limiter(); l != nil {
		st := l.Status()
		resp.Imports = &st
	}
	writeJSON(w, resp)
}
