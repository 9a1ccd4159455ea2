package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/importer"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/web/templates"
	"github.com/a-h/templ"
)

// multipartMemory is the in-memory limit for ParseMultipartForm; larger
// parts spill to temporary files.
const multipartMemory = 32 << 20

var errNoFile = errors.New("no file provided")

// importRequest is the body of POST /api/products/import.
type importRequest struct {
	Data json.RawMessage `json:"data"`
}

// handleImportAPI imports a batch of mapped records sent as JSON.
func (s *Server) handleImportAPI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, err, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrMalformedBody, err), http.StatusBadRequest)
		return
	}

	if len(req.Data) == 0 || string(req.Data) == "null" {
		respondError(w, r, core.ErrNoRecords, http.StatusBadRequest)
		return
	}

	var records []core.ImportRecord
	dec := json.NewDecoder(bytes.NewReader(req.Data))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		respondError(w, r, fmt.Errorf("%w: data must be a list of objects", core.ErrMalformedBody), http.StatusBadRequest)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r, core.SourceAPI)
	result, err := s.service.ImportProducts(ctx, records)
	switch {
	case errors.Is(err, core.ErrNoValidRecords):
		respondErrorDetails(w, r, err, http.StatusBadRequest, result.Rejected)
		return
	case err != nil:
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleImportForm renders the file selection step of the web wizard.
func (s *Server) handleImportForm(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, r, http.StatusOK, templates.ImportUpload(nil))
}

// handleImportMapping parses the uploaded file and renders the mapping step.
// The file travels with the form, so no wizard state is kept on the server.
func (s *Server) handleImportMapping(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+multipartMemory/32)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.renderUploadError(w, r, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = errNoFile
		}
		s.renderUploadError(w, r, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(importer.NewLimitedReader(file, s.cfg.Import.MaxFileSize))
	if err != nil {
		s.renderUploadError(w, r, err)
		return
	}

	switch st := (importer.FileSelect{}).Load(header.Filename, bytes.NewReader(data)).(type) {
	case importer.Mapping:
		renderHTML(w, r, http.StatusOK, templates.ImportMapping(templates.MappingForm{
			Mapping: st,
			File:    base64.StdEncoding.EncodeToString(data),
		}))
	case importer.FileSelect:
		s.renderUploadError(w, r, st.Err)
	}
}

// handleImportSubmit re-parses the posted file, applies the posted mapping
// and imports the transformed rows.
func (s *Server) handleImportSubmit(w http.ResponseWriter, r *http.Request) {
	// base64 inflates the file by a third.
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.Import.MaxFileSize)
	if err := r.ParseForm(); err != nil {
		s.renderUploadError(w, r, err)
		return
	}

	name := r.PostFormValue("filename")
	data, err := base64.StdEncoding.DecodeString(r.PostFormValue("file"))
	if err != nil || len(data) == 0 {
		s.renderUploadError(w, r, errNoFile)
		return
	}

	table, err := importer.Parse(name, bytes.NewReader(data))
	if err != nil {
		s.renderUploadError(w, r, err)
		return
	}

	m := importer.NewMapping(name, table)
	m.Columns = importer.ColumnMapping{}
	for i, h := range m.Headers {
		field := core.Field(r.PostFormValue(templates.FieldInputName(i)))
		if m, err = m.Map(h, field); err != nil {
			s.renderMappingError(w, r, m, data, err, nil)
			return
		}
	}

	var rejected []core.Rejection
	ctx := WithRequestMetadata(r.Context(), r, core.SourceWeb)
	submit := importer.SubmitterFunc(func(ctx context.Context, records []importer.MappedRecord) (core.ImportResult, error) {
		result, err := s.service.ImportProducts(ctx, importer.ToImportRecords(records))
		rejected = result.Rejected
		return result, err
	})

	switch st := m.Submit(ctx, submit).(type) {
	case importer.Done:
		logging.FromContext(r.Context()).Info("web import finished",
			"file", st.FileName,
			"inserted", st.Result.Inserted,
			"skipped", st.Result.Skipped,
			"rejected", len(st.Result.Rejected),
		)
		http.Redirect(w, r, "/products", http.StatusSeeOther)
	case importer.Mapping:
		s.renderMappingError(w, r, st, data, st.Err, rejected)
	}
}

// renderUploadError re-renders the file selection step with err.
func (s *Server) renderUploadError(w http.ResponseWriter, r *http.Request, err error) {
	// Anything that is not a size or capacity problem is a bad upload.
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		status = http.StatusBadRequest
	}
	logging.FromContext(r.Context()).Warn("import upload failed", "error", err, "status", status)
	renderHTML(w, r, status, templates.ImportUpload(alertFor(err)))
}

// renderMappingError re-renders the mapping step with err and any rejected rows.
func (s *Server) renderMappingError(w http.ResponseWriter, r *http.Request, m importer.Mapping, data []byte, err error, rejected []core.Rejection) {
	status := statusFor(err)
	logging.FromContext(r.Context()).Warn("import submit failed", "error", err, "status", status)
	renderHTML(w, r, status, templates.ImportMapping(templates.MappingForm{
		Mapping:  m,
		File:     base64.StdEncoding.EncodeToString(data),
		Alert:    alertFor(err),
		Rejected: rejected,
	}))
}

func alertFor(err error) templ.Component {
	msg := core.MapError(err)
	return templates.ErrorAlert(msg.Message, msg.Action, msg.Code)
}

// renderHTML writes c as an HTML page with status.
func renderHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}
