package consults

import "time"

// Permissions es el allow-list explícito de lo que expone un share.
// Se valida de forma estricta en vez de confiar en el JSON del caller.
type Permissions struct {
	CaseIDs []int64 `json:"caseIds,omitempty"`
	ExamIDs []int64 `json:"examIds,omitempty"`
	LabIDs  []int64 `json:"labIds,omitempty"`
	Notes   string  `json:"notes,omitempty"`
}

// Empty indica que ninguna categoría tiene IDs (share inválido).
func (p Permissions) Empty() bool {
	return len(p.CaseIDs) == 0 && len(p.ExamIDs) == 0 && len(p.LabIDs) == 0
}

// ShareGrant es la capability que habilita a un externo a ver un
// subconjunto acotado de la historia clínica de un atleta.
//
// El par (Token, AccessCode) es el artefacto de autorización completo:
// el endpoint de resolución no exige credencial primaria. Token y
// AccessCode se devuelven una sola vez, al emitir el share.
type ShareGrant struct {
	ID string

	ClinicianID int64
	AthleteID   int64

	// Token es el bearer secret del link; único, nunca se reusa.
	Token string
	// AccessCode es el segundo secreto: 6 dígitos que viajan por un
	// canal distinto al link (defensa contra URLs filtradas).
	AccessCode string

	Permissions Permissions

	// El share deja de resolver en ExpiresAt; es la única vía de
	// desactivación (no hay delete).
	ExpiresAt time.Time

	// Último acceso exitoso (slot único, se sobreescribe).
	AccessedAt *time.Time

	CreatedAt time.Time
}
