package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/tabinspect/internal/export"
	"github.com/JonMunkholm/tabinspect/internal/ingest"
	"github.com/JonMunkholm/tabinspect/internal/summary"
)

// InspectRequest asks for the summary of a file on the server.
type InspectRequest struct {
	Path string `json:"path" validate:"required"`
	Kind string `json:"kind" validate:"omitempty,oneof=auto csv delimited excel xls xlsx spreadsheet"`
}

// ExportRequest asks for a cleaned copy of a file on the server.
type ExportRequest struct {
	Path   string `json:"path" validate:"required"`
	Kind   string `json:"kind" validate:"omitempty,oneof=auto csv delimited excel xls xlsx spreadsheet"`
	Format string `json:"format" validate:"required"`
	Output string `json:"output" validate:"required,excludesall=/\\"`
}

// ExportResponse reports where the cleaned copy was written.
type ExportResponse struct {
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
	Encoding string `json:"encoding,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	var req InspectRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondInvalid(w, r, err)
		return
	}

	res, err := s.load(r, req.Path, req.Kind)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	sum := summary.Describe(res.Table, s.opts.PreviewRows)
	sum.Encoding = res.Encoding
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondInvalid(w, r, err)
		return
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	res, err := s.load(r, req.Path, req.Kind)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	dest, err := s.writer.Write(r.Context(), res.Table, format, req.Output)
	if err != nil {
		status := http.StatusInternalServerError
		if format == export.Postgres && !s.writer.HasSink() {
			status = http.StatusBadRequest
		}
		s.respondError(w, r, err, status)
		return
	}

	writeJSON(w, http.StatusOK, ExportResponse{
		Path:     dest,
		Rows:     res.Table.DropEmptyRows().NumRows(),
		Encoding: res.Encoding,
	})
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return s.validate.Struct(v)
}

// load runs the loader and turns a failed Result into its *ingest.Failure.
func (s *Server) load(r *http.Request, path, kindToken string) (ingest.Result, error) {
	kind, err := ingest.ParseKind(kindToken, path)
	if err != nil {
		return ingest.Result{}, err
	}
	res := s.loader.Load(r.Context(), path, kind)
	if err := res.Err(); err != nil {
		return res, err
	}
	return res, nil
}
