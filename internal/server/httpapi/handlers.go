package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pmorel/cv-backend/internal/common"
	"github.com/pmorel/cv-backend/internal/server/blob"
	"github.com/pmorel/cv-backend/internal/server/diplomas"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the shared error taxonomy onto HTTP statuses.
// Validation messages are safe to echo; everything else stays generic.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Diploma not found")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
	if msg == "" {
		return common.ErrorValidation.Error()
	}
	return msg
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleListDiplomas(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch diplomas")
		return
	}
	if items == nil {
		items = []*diplomas.Diploma{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetDiploma(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Diploma not found")
		return
	}

	d, err := s.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// optionalFormValue maps an absent or empty multipart field to nil.
func optionalFormValue(r *http.Request, name string) *string {
	v := r.FormValue(name)
	if v == "" {
		return nil
	}
	return &v
}

func (s *Server) handleCreateDiploma(w http.ResponseWriter, r *http.Request) {
	// The file part tops out at MaxFileSize; the slack covers text fields.
	r.Body = http.MaxBytesReader(w, r.Body, blob.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(blob.MaxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	in := diplomas.CreateInput{
		Title:         r.FormValue("title"),
		TitleFr:       optionalFormValue(r, "title_fr"),
		Institution:   r.FormValue("institution"),
		InstitutionFr: optionalFormValue(r, "institution_fr"),
		Year:          r.FormValue("year"),
		Category:      r.FormValue("category"),
	}

	var upload *diplomas.Upload
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		upload = &diplomas.Upload{
			Reader:      file,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Name:        header.Filename,
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeError(w, http.StatusBadRequest, "Invalid file upload")
		return
	}

	d, err := s.service.Create(r.Context(), sessionFromRequest(r), in, upload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

type updateRequest struct {
	Title         *string `json:"title"`
	TitleFr       *string `json:"title_fr"`
	Institution   *string `json:"institution"`
	InstitutionFr *string `json:"institution_fr"`
	Year          *string `json:"year"`
	Category      *string `json:"category"`
}

func (s *Server) handleUpdateDiploma(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Diploma not found")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := diplomas.UpdateInput{
		Title:         req.Title,
		TitleFr:       req.TitleFr,
		Institution:   req.Institution,
		InstitutionFr: req.InstitutionFr,
		Year:          req.Year,
		Category:      req.Category,
	}

	d, err := s.service.Update(r.Context(), sessionFromRequest(r), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDiploma(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Diploma not found")
		return
	}

	if err := s.service.Delete(r.Context(), sessionFromRequest(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password is required")
		return
	}

	if !s.verifier.Verify(req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := s.sessions.Issue()
	if err != nil {
		s.logger.Error(r.Context(), "issue session", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
