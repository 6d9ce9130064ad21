package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/skinalyze/internal/domain/types"
)

const patientsPrefix = "/patients/"

// PatientsHandler serves patient list, page and tab requests.
type PatientsHandler struct {
	deps Dependencies
}

// NewPatientsHandler creates a new patients handler.
func NewPatientsHandler(deps Dependencies) *PatientsHandler {
	return &PatientsHandler{deps: deps}
}

// HandleList handles GET /patients?limit=N requests.
func (h *PatientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.patients.list"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	cards, err := h.deps.Patients(r.Context(), limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// HandlePatient routes /patients/{id}, /patients/{id}/diagnoses and
// /patients/{id}/progress.
func (h *PatientsHandler) HandlePatient(w http.ResponseWriter, r *http.Request) {
	id, section, ok := splitPatientPath(r.URL.Path)
	if !ok {
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusBadRequest, "bad_request", NewKind("api.patients", ErrBadRequest))
		}, "patient")(w, r)
		return
	}

	switch section {
	case "":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) { h.handlePage(w, r, id) }, "patient")(w, r)
	case "diagnoses":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) { h.handleDiagnoses(w, r, id) }, "patient_diagnoses")(w, r)
	case "progress":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) { h.handleProgress(w, r, id) }, "patient_progress")(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *PatientsHandler) handlePage(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	page := h.deps.PatientPage(r.Context(), id, types.ParseTab(r.URL.Query().Get("tab")))
	if !page.Found {
		writeJSON(w, http.StatusNotFound, page)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PatientsHandler) handleDiagnoses(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.patients.diagnoses"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := h.deps.DiagnosisHistory(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, r, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *PatientsHandler) handleProgress(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.patients.progress"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := h.deps.TreatmentProgress(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, r, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// splitPatientPath extracts the id and optional section from a patient path.
func splitPatientPath(path string) (id, section string, ok bool) {
	rest := strings.Trim(strings.TrimPrefix(path, patientsPrefix), "/")
	if rest == "" {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	switch len(parts) {
	case 1:
		return parts[0], "", true
	case 2:
		return parts[0], parts[1], true
	default:
		return "", "", false
	}
}
