// internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"

	apperrors "csv-chat/internal/common/errors"
	"csv-chat/internal/dataset"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// datasetPreview is the dataset summary returned by the API. Only the
// first previewRows rows travel to the browser.
type datasetPreview struct {
	Name     string           `json:"name"`
	Columns  []dataset.Column `json:"columns"`
	RowCount int              `json:"rowCount"`
	Rows     [][]string       `json:"rows"`
}

const defaultPreviewRows = 50

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.frontend.CreateSession(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (s *Server) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if err := r.ParseMultipartForm(int64(s.cfg.MaxUploadMB) << 20); err != nil {
		s.writeError(w, apperrors.NewMalformedCSVError("upload", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, apperrors.NewMalformedCSVError("upload", err))
		return
	}
	defer file.Close()

	ds, err := s.frontend.LoadDataset(r.Context(), sessionID, datasetName(header.Filename), file)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.preview(ds))
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.frontend.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sess.Dataset == nil {
		s.writeError(w, apperrors.NewNoDatasetError(sess.ID))
		return
	}

	writeJSON(w, http.StatusOK, s.preview(sess.Dataset))
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewInvalidRequestError(err))
		return
	}

	result, err := s.frontend.Ask(r.Context(), sessionID, req.Question)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps error codes to HTTP statuses and writes the JSON body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	se := apperrors.AsStandard(err)
	if se == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{
			Code:    "INTERNAL",
			Message: "internal error",
		}})
		return
	}

	status := http.StatusInternalServerError
	switch se.Code {
	case apperrors.ErrCodeFileNotFound,
		apperrors.ErrCodeFileUnreadable,
		apperrors.ErrCodeEmptyInput,
		apperrors.ErrCodeMalformedCSV,
		apperrors.ErrCodeEmptyQuery,
		apperrors.ErrCodeInvalidRequest,
		apperrors.ErrCodeNoDataset:
		status = http.StatusBadRequest
	case apperrors.ErrCodeSessionNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeEngineAuthFailed,
		apperrors.ErrCodeEngineRateLimited,
		apperrors.ErrCodeEngineUnavailable,
		apperrors.ErrCodeEngineTimeout,
		apperrors.ErrCodeEngineBadAnswer:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(se.Code),
		Kind:    string(se.Kind),
		Message: se.Message,
		Details: se.Details,
	}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) preview(ds *dataset.Dataset) datasetPreview {
	return datasetPreview{
		Name:     ds.Name,
		Columns:  ds.Columns,
		RowCount: ds.RowCount(),
		Rows:     ds.SampleRows(s.previewRows),
	}
}

// datasetName strips the extension from an uploaded filename.
func datasetName(filename string) string {
	if filename == "" {
		return "upload"
	}
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i]
		}
	}
	return filename
}
