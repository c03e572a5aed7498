package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/synapse/internal/extract"
	"github.com/lazypower/synapse/internal/graph"
)

const maxUploadBytes = 64 << 20 // 64MB per ingest request

// handleIngest accepts either a multipart upload of raw source files
// (markdown_files, pdf_files, links_file) or a JSON body of pre-normalized
// records. Extraction failures are reported per item alongside the builder's
// own per-record errors; a bad file never fails the batch.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var records []graph.Record
	var extractErrs []graph.ItemError

	switch {
	case isMultipart(r):
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
			return
		}
		records, extractErrs = extractUploads(r.MultipartForm)
	default:
		var req struct {
			Records []graph.Record `json:"records"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		records = req.Records
	}

	sum, err := s.builder.Ingest(r.Context(), records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sum.Errors = append(extractErrs, sum.Errors...)
	sum.ItemsProcessed += len(extractErrs)

	s.persist()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "success",
		"batch_id":        sum.BatchID,
		"items_processed": sum.ItemsProcessed,
		"nodes_created":   sum.NodesCreated,
		"nodes_updated":   sum.NodesUpdated,
		"edges_created":   sum.EdgesCreated,
		"errors":          sum.Errors,
	})
}

func isMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return len(ct) >= 19 && ct[:19] == "multipart/form-data"
}

// extractUploads runs the extraction layer over every uploaded file.
func extractUploads(form *multipart.Form) ([]graph.Record, []graph.ItemError) {
	var records []graph.Record
	var errs []graph.ItemError

	for _, fh := range form.File["markdown_files"] {
		data, err := readUpload(fh)
		if err != nil {
			errs = append(errs, graph.ItemError{SourceReference: fh.Filename, Error: err.Error()})
			continue
		}
		records = append(records, extract.Markdown(fh.Filename, string(data)))
	}

	for _, fh := range form.File["pdf_files"] {
		data, err := readUpload(fh)
		if err != nil {
			errs = append(errs, graph.ItemError{SourceReference: fh.Filename, Error: err.Error()})
			continue
		}
		rec, err := extract.PDF(fh.Filename, data)
		if err != nil {
			errs = append(errs, graph.ItemError{SourceReference: fh.Filename, Error: err.Error()})
			continue
		}
		records = append(records, rec)
	}

	for _, fh := range form.File["links_file"] {
		data, err := readUpload(fh)
		if err != nil {
			errs = append(errs, graph.ItemError{SourceReference: fh.Filename, Error: err.Error()})
			continue
		}
		linkRecords, err := extract.Links(fh.Filename, data)
		if err != nil {
			errs = append(errs, graph.ItemError{SourceReference: fh.Filename, Error: err.Error()})
			continue
		}
		records = append(records, linkRecords...)
	}

	return records, errs
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap := s.graph.Export()
	if snap.TotalNodes == 0 {
		writeError(w, http.StatusNotFound, "no graph data found, ingest data first")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.graph.Clear()
	s.persist()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "knowledge graph cleared",
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var ev graph.Feedback
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := s.graph.ApplyFeedback(ev, s.cfg.Graph.BoostFactor)
	if err != nil {
		var verr *graph.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, graph.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.persist()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.graph.Stats(s.cfg.Graph.TopConnected))
}

func (s *Server) handleSurprising(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	conns := s.graph.SurprisingConnections(s.cfg.Graph.SurpriseThreshold, limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"count":       len(conns),
		"connections": conns,
	})
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	conns, err := s.graph.Connections(nodeID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"node_id":     nodeID,
		"connections": conns,
	})
}
