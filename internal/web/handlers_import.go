package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tahfidz-import/internal/core"
	"github.com/JonMunkholm/tahfidz-import/internal/web/templates"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type fieldResponse struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

type entityResponse struct {
	Entity core.Entity     `json:"entity"`
	Fields []fieldResponse `json:"fields"`
}

type kindResponse struct {
	Key      string           `json:"key"`
	Label    string           `json:"label"`
	Path     string           `json:"path"`
	Entities []entityResponse `json:"entities"`
}

type detectRequest struct {
	Headers []string `json:"headers" validate:"required,min=1,dive,max=256"`
}

type detectResponse struct {
	Kind    string             `json:"kind"`
	Mapping core.ColumnMapping `json:"mapping"`
}

type remapRequest struct {
	Mapping map[string]string `json:"mapping" validate:"required,dive,keys,mappingkey,endkeys,required"`
}

type submitRequest struct {
	AutoCreateAccount *bool `json:"autoCreateAccount"`
}

type sessionResponse struct {
	Session core.SessionSnapshot `json:"session"`
	Preview *core.Preview        `json:"preview,omitempty"`
}

type statusResponse struct {
	Sessions int                      `json:"sessions"`
	Limiter  core.SubmitLimiterStatus `json:"limiter"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports open sessions and submit slots.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Sessions: s.service.SessionCount(),
		Limiter:  s.service.LimiterStatus(),
	})
}

// handleListKinds returns the import kinds with their pattern tables.
func (s *Server) handleListKinds(w http.ResponseWriter, r *http.Request) {
	kinds := s.service.Kinds()
	resp := make([]kindResponse, 0, len(kinds))
	for _, k := range kinds {
		kr := kindResponse{Key: k.Key, Label: k.Label, Path: k.Path}
		for _, table := range k.Tables {
			er := entityResponse{Entity: table.Entity}
			for _, f := range table.Fields {
				er.Fields = append(er.Fields, fieldResponse{Name: f.Name, Aliases: f.Aliases})
			}
			kr.Entities = append(kr.Entities, er)
		}
		resp = append(resp, kr)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDetect runs column detection on a header list without a session.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	var req detectRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}

	mapping, err := s.service.Detect(kind, req.Headers)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detectResponse{Kind: kind, Mapping: mapping})
}

// handleCreateSession starts a session from an uploaded file.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if _, err := core.Lookup(kind); err != nil {
		respondError(w, r, err)
		return
	}

	data, header, err := readUpload(w, r, s.cfg.Import.MaxFileSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	snap, preview, err := s.service.StartSession(r.Context(), kind, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/import/sessions/"+snap.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{Session: snap, Preview: &preview})
}

// handleGetSession returns the session snapshot.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Session(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess.Snapshot()})
}

// handlePreview returns the first rows with the current mapping.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", s.service.PreviewRows())

	preview, err := s.service.Preview(chi.URLParam(r, "id"), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleRemap replaces the detected mapping with an operator override.
func (s *Server) handleRemap(w http.ResponseWriter, r *http.Request) {
	var req remapRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}

	snap, err := s.service.Remap(r.Context(), chi.URLParam(r, "id"), core.ColumnMapping(req.Mapping))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: snap})
}

// handleLoadFile loads a new file into an idle session.
func (s *Server) handleLoadFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.service.Session(id); err != nil {
		respondError(w, r, err)
		return
	}

	data, header, err := readUpload(w, r, s.cfg.Import.MaxFileSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	snap, err := s.service.LoadFile(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: snap})
}

// handleSubmit sends the normalized rows to the portal.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req submitRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.Submit(r.Context(), id, req.AutoCreateAccount)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.ImportSummary(id, result).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCredentials downloads the generated accounts as a workbook.
func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.service.ExportCredentials(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleReset returns the session to Idle.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Reset(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: snap})
}

// handleDeleteSession drops the session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Close(chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHistory lists recent audit entries.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context(), parseIntParam(r, "limit", 50))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
