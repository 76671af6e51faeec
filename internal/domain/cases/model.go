package cases

import "time"

// Status define el estado del caso clínico.
// @Enum OPEN, RECOVERING, CLOSED
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusRecovering Status = "RECOVERING"
	StatusClosed     Status = "CLOSED"
)

// Case representa un caso médico de un atleta.
// AthleteID es el camino de ownership: todo examen o laboratorio
// cuelga de un caso, y el caso cuelga del atleta.
type Case struct {
	ID int64

	AthleteID   int64
	ClinicianID int64

	Title     string
	Diagnosis string
	Status    Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
