package exams

import "time"

// Type define las modalidades de imagen soportadas.
// @Enum XRAY, MRI, CT, ULTRASOUND
type Type string

const (
	TypeXRay       Type = "XRAY"
	TypeMRI        Type = "MRI"
	TypeCT         Type = "CT"
	TypeUltrasound Type = "ULTRASOUND"
)

type Status string

const (
	StatusOrdered   Status = "ORDERED"
	StatusCompleted Status = "COMPLETED"
)

// Exam representa un examen de imagen. El ownership llega al atleta
// vía el caso (Exam -> Case -> Athlete).
type Exam struct {
	ID     int64
	CaseID int64

	Type     Type
	BodyPart string
	Status   Status

	PerformedAt *time.Time
	ReportNotes string

	CreatedAt time.Time
}
