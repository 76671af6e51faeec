package consults

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"athlete-clinical-history/internal/domain/users"
	"athlete-clinical-history/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, frontendURL string) {
	r.Route("/consults", func(cr chi.Router) {
		// Solo staff clínico emite shares.
		cr.Post("/share", createShareHandler(svc, frontendURL))

		// Público: el par token+accessCode ES la autorización.
		cr.Get("/view/{token}", viewSharedHandler(svc))
	})
}

// El wire de consults usa camelCase: es la superficie que consume el
// visor externo, heredada del contrato original.

type createShareRequest struct {
	AthleteID   int64       `json:"athleteId"`
	Permissions Permissions `json:"permissions"`
	ExpiryHours *float64    `json:"expiryHours"`
}

type createShareResponse struct {
	ShareToken string    `json:"shareToken"`
	AccessCode string    `json:"accessCode"`
	FullLink   string    `json:"fullLink"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type shareMetaResponse struct {
	SharedBy    string    `json:"sharedBy"`
	PatientName string    `json:"patientName"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Notes       string    `json:"notes,omitempty"`
}

type sharedCaseResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Diagnosis string    `json:"diagnosis,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type sharedExamResponse struct {
	ID          int64      `json:"id"`
	CaseID      int64      `json:"caseId"`
	Type        string     `json:"type"`
	BodyPart    string     `json:"bodyPart,omitempty"`
	Status      string     `json:"status"`
	PerformedAt *time.Time `json:"performedAt,omitempty"`
	ReportNotes string     `json:"reportNotes,omitempty"`
}

type sharedLabResponse struct {
	ID             int64      `json:"id"`
	CaseID         int64      `json:"caseId"`
	TestName       string     `json:"testName"`
	Result         string     `json:"result,omitempty"`
	Unit           string     `json:"unit,omitempty"`
	ReferenceRange string     `json:"referenceRange,omitempty"`
	CollectedAt    *time.Time `json:"collectedAt,omitempty"`
}

type sharedDataResponse struct {
	Cases []sharedCaseResponse `json:"cases"`
	Exams []sharedExamResponse `json:"exams"`
	Labs  []sharedLabResponse  `json:"labs"`
}

type viewSharedResponse struct {
	Meta shareMetaResponse  `json:"meta"`
	Data sharedDataResponse `json:"data"`
}

// createShareHandler godoc
// @Summary Generar link de consulta compartida
// @Description Emite un ShareGrant: token + código de acceso de 6 dígitos que exponen un subconjunto acotado (casos/exámenes/labs) de la historia del atleta, con expiración. Token y código se devuelven UNA sola vez. Requiere staff clínico.
// @Tags consults
// @Accept json
// @Produce json
// @Param payload body createShareRequest true "Atleta, permisos y expiración en horas (default 48, máx 168)"
// @Success 201 {object} createShareResponse
// @Failure 400 {string} string "input inválido"
// @Failure 403 {string} string "IDs que no pertenecen al atleta"
// @Failure 404 {string} string "atleta inexistente"
// @Router /consults/share [post]
func createShareHandler(svc *Service, frontendURL string) http.HandlerFunc {
	frontendURL = strings.TrimRight(strings.TrimSpace(frontendURL), "/")

	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID <= 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.Role != string(users.RoleClinician) && claims.Role != string(users.RoleAdmin) {
			http.Error(w, "only clinicians can share medical records", http.StatusForbidden)
			return
		}

		var req createShareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		g, err := svc.CreateShareLink(r.Context(), claims.UserID, CreateShareInput{
			AthleteID:   req.AthleteID,
			Permissions: req.Permissions,
			ExpiryHours: req.ExpiryHours,
		})
		if err != nil {
			writeShareError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, createShareResponse{
			ShareToken: g.Token,
			AccessCode: g.AccessCode,
			FullLink:   frontendURL + "/external/view/" + g.Token,
			ExpiresAt:  g.ExpiresAt,
		})
	}
}

// viewSharedHandler godoc
// @Summary Ver datos compartidos
// @Description Resuelve un link de consulta. Sin auth primaria: el token en la URL más ?accessCode= son la autorización completa. Resolver no consume el link; sigue siendo válido hasta expirar.
// @Tags consults
// @Produce json
// @Param token path string true "Token del share"
// @Param accessCode query string true "Código de acceso de 6 dígitos"
// @Success 200 {object} viewSharedResponse
// @Failure 400 {string} string "token malformado"
// @Failure 403 {string} string "código inválido o link expirado"
// @Failure 404 {string} string "link inválido"
// @Router /consults/view/{token} [get]
func viewSharedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		accessCode := strings.TrimSpace(r.URL.Query().Get("accessCode"))

		view, err := svc.Resolve(r.Context(), token, accessCode)
		if err != nil {
			writeShareError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toViewResponse(view))
	}
}

func writeShareError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toViewResponse(v SharedView) viewSharedResponse {
	out := viewSharedResponse{
		Meta: shareMetaResponse{
			SharedBy:    v.Meta.SharedBy,
			PatientName: v.Meta.PatientName,
			ExpiresAt:   v.Meta.ExpiresAt,
			Notes:       v.Meta.Notes,
		},
		Data: sharedDataResponse{
			Cases: make([]sharedCaseResponse, 0, len(v.Data.Cases)),
			Exams: make([]sharedExamResponse, 0, len(v.Data.Exams)),
			Labs:  make([]sharedLabResponse, 0, len(v.Data.Labs)),
		},
	}

	for _, c := range v.Data.Cases {
		out.Data.Cases = append(out.Data.Cases, sharedCaseResponse{
			ID:        c.ID,
			Title:     c.Title,
			Diagnosis: c.Diagnosis,
			Status:    string(c.Status),
			CreatedAt: c.CreatedAt,
		})
	}
	for _, e := range v.Data.Exams {
		out.Data.Exams = append(out.Data.Exams, sharedExamResponse{
			ID:          e.ID,
			CaseID:      e.CaseID,
			Type:        string(e.Type),
			BodyPart:    e.BodyPart,
			Status:      string(e.Status),
			PerformedAt: e.PerformedAt,
			ReportNotes: e.ReportNotes,
		})
	}
	for _, l := range v.Data.Labs {
		out.Data.Labs = append(out.Data.Labs, sharedLabResponse{
			ID:             l.ID,
			CaseID:         l.CaseID,
			TestName:       l.TestName,
			Result:         l.Result,
			Unit:           l.Unit,
			ReferenceRange: l.ReferenceRange,
			CollectedAt:    l.CollectedAt,
		})
	}

	return out
}

// writeJSON está duplicado a propósito en los handlers de cada módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
