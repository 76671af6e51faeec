package labs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"athlete-clinical-history/internal/domain/cases"
	"athlete-clinical-history/internal/domain/users"
	"athlete-clinical-history/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, casesSvc *cases.Service) {
	r.Route("/cases/{caseID}/labs", func(lr chi.Router) {
		lr.Post("/", createLabHandler(svc, casesSvc))
		lr.Get("/", listLabsHandler(svc, casesSvc))
	})
}

type createLabRequest struct {
	TestName       string `json:"test_name"`
	Result         string `json:"result"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
	CollectedAt    string `json:"collected_at"` // RFC3339 opcional
}

type labResponse struct {
	ID             int64      `json:"id"`
	CaseID         int64      `json:"case_id"`
	TestName       string     `json:"test_name"`
	Result         string     `json:"result,omitempty"`
	Unit           string     `json:"unit,omitempty"`
	ReferenceRange string     `json:"reference_range,omitempty"`
	CollectedAt    *time.Time `json:"collected_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func createLabHandler(svc *Service, casesSvc *cases.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID <= 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !isClinicalStaff(claims.Role) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		caseID, err := parseID(chi.URLParam(r, "caseID"))
		if err != nil {
			http.Error(w, "invalid case id", http.StatusBadRequest)
			return
		}
		if _, err := casesSvc.GetByID(r.Context(), caseID); err != nil {
			http.Error(w, "case not found", http.StatusNotFound)
			return
		}

		var req createLabRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var collectedAt *time.Time
		if strings.TrimSpace(req.CollectedAt) != "" {
			t, err := time.Parse(time.RFC3339, req.CollectedAt)
			if err != nil {
				http.Error(w, "collected_at must be RFC3339", http.StatusBadRequest)
				return
			}
			collectedAt = &t
		}

		l, err := svc.Create(r.Context(), caseID, CreateInput{
			TestName:       req.TestName,
			Result:         req.Result,
			Unit:           req.Unit,
			ReferenceRange: req.ReferenceRange,
			CollectedAt:    collectedAt,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toLabResponse(l))
	}
}

func listLabsHandler(svc *Service, casesSvc *cases.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID <= 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		caseID, err := parseID(chi.URLParam(r, "caseID"))
		if err != nil {
			http.Error(w, "invalid case id", http.StatusBadRequest)
			return
		}

		c, err := casesSvc.GetByID(r.Context(), caseID)
		if err != nil {
			http.Error(w, "case not found", http.StatusNotFound)
			return
		}
		if !isClinicalStaff(claims.Role) && c.AthleteID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByCase(r.Context(), caseID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]labResponse, 0, len(items))
		for _, l := range items {
			out = append(out, toLabResponse(l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toLabResponse(l Lab) labResponse {
	return labResponse{
		ID:             l.ID,
		CaseID:         l.CaseID,
		TestName:       l.TestName,
		Result:         l.Result,
		Unit:           l.Unit,
		ReferenceRange: l.ReferenceRange,
		CollectedAt:    l.CollectedAt,
		CreatedAt:      l.CreatedAt,
	}
}

func isClinicalStaff(role string) bool {
	return role == string(users.RoleClinician) || role == string(users.RoleAdmin)
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
