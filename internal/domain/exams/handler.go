package exams

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"athlete-clinical-history/internal/domain/cases"
	"athlete-clinical-history/internal/domain/users"
	"athlete-clinical-history/internal/middleware"
	"athlete-clinical-history/internal/ports/analysis"

	"github.com/go-chi/chi/v5"
)

// AthleteLookup evita importar el service de users completo.
type AthleteLookup interface {
	GetByID(ctx context.Context, id int64) (users.User, error)
}

func RegisterRoutes(r chi.Router, svc *Service, casesSvc *cases.Service, athletes AthleteLookup, analyzer analysis.Analyzer) {
	r.Route("/cases/{caseID}/exams", func(er chi.Router) {
		er.Post("/", createExamHandler(svc, casesSvc))
		er.Get("/", listExamsHandler(svc, casesSvc))

		// Análisis CDSS de hallazgos (colaborador externo; opcional).
		er.Post("/{examID}/analyze", analyzeExamHandler(svc, casesSvc, athletes, analyzer))
	})
}

type createExamRequest struct {
	Type        Type   `json:"type" enums:"XRAY,MRI,CT,ULTRASOUND"`
	BodyPart    string `json:"body_part"`
	PerformedAt string `json:"performed_at"` // RFC3339 opcional
	ReportNotes string `json:"report_notes"`
}

type examResponse struct {
	ID          int64      `json:"id"`
	CaseID      int64      `json:"case_id"`
	Type        Type       `json:"type"`
	BodyPart    string     `json:"body_part"`
	Status      Status     `json:"status"`
	PerformedAt *time.Time `json:"performed_at,omitempty"`
	ReportNotes string     `json:"report_notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type analyzeExamRequest struct {
	Category string `json:"category" enums:"cardiac,musculoskeletal,neurological"`
	Findings string `json:"findings"`
	Sport    string `json:"sport"`
}

type analyzeExamResponse struct {
	Alerts []alertResponse `json:"alerts"`
	Risk   riskResponse    `json:"risk"`
}

type alertResponse struct {
	Severity          string `json:"severity"`
	Finding           string `json:"finding"`
	Recommendation    string `json:"recommendation"`
	ReturnToPlayWeeks int    `json:"return_to_play_weeks,omitempty"`
}

type riskResponse struct {
	Score    float64 `json:"score"`
	Category string  `json:"category"`
	CanPlay  bool    `json:"can_play"`
}

func createExamHandler(svc *Service, casesSvc *cases.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := requireStaffAndCase(w, r, casesSvc); !ok {
			return
		}

		caseID, _ := parseID(chi.URLParam(r, "caseID"))

		var req createExamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var performedAt *time.Time
		if strings.TrimSpace(req.PerformedAt) != "" {
			t, err := time.Parse(time.RFC3339, req.PerformedAt)
			if err != nil {
				http.Error(w, "performed_at must be RFC3339", http.StatusBadRequest)
				return
			}
			performedAt = &t
		}

		e, err := svc.Create(r.Context(), caseID, CreateInput{
			Type:        req.Type,
			BodyPart:    req.BodyPart,
			PerformedAt: performedAt,
			ReportNotes: req.ReportNotes,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toExamResponse(e))
	}
}

func listExamsHandler(svc *Service, casesSvc *cases.Service) http.HandlerFunc {
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

		out := make([]examResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toExamResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// analyzeExamHandler godoc
// @Summary Analizar hallazgos de un examen
// @Description Envía los hallazgos del examen al motor CDSS externo y devuelve alertas y score de riesgo. Requiere staff clínico.
// @Tags exams
// @Accept json
// @Produce json
// @Param caseID path int true "ID del caso"
// @Param examID path int true "ID del examen"
// @Param payload body analyzeExamRequest true "Categoría, hallazgos y deporte"
// @Success 200 {object} analyzeExamResponse
// @Failure 503 {string} string "cdss not configured"
// @Router /cases/{caseID}/exams/{examID}/analyze [post]
func analyzeExamHandler(svc *Service, casesSvc *cases.Service, athletes AthleteLookup, analyzer analysis.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, c, ok := requireStaffAndCase(w, r, casesSvc)
		if !ok {
			return
		}

		if analyzer == nil {
			http.Error(w, "cdss not configured", http.StatusServiceUnavailable)
			return
		}

		examID, err := parseID(chi.URLParam(r, "examID"))
		if err != nil {
			http.Error(w, "invalid exam id", http.StatusBadRequest)
			return
		}

		e, err := svc.GetByID(r.Context(), examID)
		if err != nil || e.CaseID != c.ID {
			http.Error(w, "exam not found", http.StatusNotFound)
			return
		}

		var req analyzeExamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Findings) == "" {
			http.Error(w, "findings required", http.StatusBadRequest)
			return
		}

		athlete, err := athletes.GetByID(r.Context(), c.AthleteID)
		if err != nil {
			http.Error(w, "athlete not found", http.StatusNotFound)
			return
		}

		result, err := analyzer.AnalyzeExam(r.Context(), analysis.AnalysisRequest{
			AthleteName: athlete.FullName,
			AthleteAge:  ageOf(athlete.DateOfBirth),
			Sport:       strings.TrimSpace(req.Sport),
			ExamType:    strings.TrimSpace(req.Category),
			BodyPart:    e.BodyPart,
			Findings:    strings.TrimSpace(req.Findings),
		})
		if err != nil {
			http.Error(w, "cdss upstream error", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, toAnalyzeResponse(result))
	}
}

func requireStaffAndCase(w http.ResponseWriter, r *http.Request, casesSvc *cases.Service) (int64, cases.Case, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || claims.UserID <= 0 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, cases.Case{}, false
	}
	if !isClinicalStaff(claims.Role) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return 0, cases.Case{}, false
	}

	caseID, err := parseID(chi.URLParam(r, "caseID"))
	if err != nil {
		http.Error(w, "invalid case id", http.StatusBadRequest)
		return 0, cases.Case{}, false
	}

	c, err := casesSvc.GetByID(r.Context(), caseID)
	if err != nil {
		http.Error(w, "case not found", http.StatusNotFound)
		return 0, cases.Case{}, false
	}

	return claims.UserID, c, true
}

func toExamResponse(e Exam) examResponse {
	return examResponse{
		ID:          e.ID,
		CaseID:      e.CaseID,
		Type:        e.Type,
		BodyPart:    e.BodyPart,
		Status:      e.Status,
		PerformedAt: e.PerformedAt,
		ReportNotes: e.ReportNotes,
		CreatedAt:   e.CreatedAt,
	}
}

func toAnalyzeResponse(res analysis.AnalysisResult) analyzeExamResponse {
	out := analyzeExamResponse{
		Alerts: make([]alertResponse, 0, len(res.Alerts)),
		Risk: riskResponse{
			Score:    res.Risk.Score,
			Category: res.Risk.Category,
			CanPlay:  res.Risk.CanPlay,
		},
	}
	for _, a := range res.Alerts {
		out.Alerts = append(out.Alerts, alertResponse{
			Severity:          a.Severity,
			Finding:           a.Finding,
			Recommendation:    a.Recommendation,
			ReturnToPlayWeeks: a.ReturnToPlayWeeks,
		})
	}
	return out
}

func ageOf(dob *time.Time) int {
	if dob == nil {
		return 0
	}
	now := time.Now()
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	return years
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
