package cases

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"athlete-clinical-history/internal/domain/users"
	"athlete-clinical-history/internal/middleware"
	"athlete-clinical-history/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/cases", func(cr chi.Router) {
		cr.Post("/", createCaseHandler(svc))
		cr.Get("/{caseID}", getCaseHandler(svc))
		cr.Patch("/{caseID}/status", updateCaseStatusHandler(svc))
	})

	// Casos de un atleta (el propio atleta o staff clínico).
	r.Get("/athletes/{athleteID}/cases", listAthleteCasesHandler(svc))
}

type createCaseRequest struct {
	AthleteID int64  `json:"athlete_id"`
	Title     string `json:"title"`
	Diagnosis string `json:"diagnosis"`
}

type updateStatusRequest struct {
	Status Status `json:"status"`
}

type caseResponse struct {
	ID          int64     `json:"id"`
	AthleteID   int64     `json:"athlete_id"`
	ClinicianID int64     `json:"clinician_id"`
	Title       string    `json:"title"`
	Diagnosis   string    `json:"diagnosis,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func createCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClinician(w, r)
		if !ok {
			return
		}

		var req createCaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			AthleteID: req.AthleteID,
			Title:     req.Title,
			Diagnosis: req.Diagnosis,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toCaseResponse(c))
	}
}

func getCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID <= 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := parseID(chi.URLParam(r, "caseID"))
		if err != nil {
			http.Error(w, "invalid case id", http.StatusBadRequest)
			return
		}

		c, err := svc.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "case not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// El atleta solo ve sus propios casos; el staff ve todo.
		if !isClinicalStaff(claims.Role) && c.AthleteID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toCaseResponse(c))
	}
}

func updateCaseStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireClinician(w, r); !ok {
			return
		}

		id, err := parseID(chi.URLParam(r, "caseID"))
		if err != nil {
			http.Error(w, "invalid case id", http.StatusBadRequest)
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "case not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toCaseResponse(c))
	}
}

func listAthleteCasesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID <= 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		athleteID, err := parseID(chi.URLParam(r, "athleteID"))
		if err != nil {
			http.Error(w, "invalid athlete id", http.StatusBadRequest)
			return
		}

		if !isClinicalStaff(claims.Role) && athleteID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByAthlete(r.Context(), athleteID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]caseResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCaseResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toCaseResponse(c Case) caseResponse {
	return caseResponse{
		ID:          c.ID,
		AthleteID:   c.AthleteID,
		ClinicianID: c.ClinicianID,
		Title:       c.Title,
		Diagnosis:   c.Diagnosis,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func isClinicalStaff(role string) bool {
	return role == string(users.RoleClinician) || role == string(users.RoleAdmin)
}

func requireClinician(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || claims.UserID <= 0 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return claims, false
	}
	if !isClinicalStaff(claims.Role) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return claims, false
	}
	return claims, true
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidInput
	}
	return id, nil
}

// writeJSON está duplicado a propósito en los handlers de cada módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
