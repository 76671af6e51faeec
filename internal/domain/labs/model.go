package labs

import "time"

// Lab representa un resultado de laboratorio asociado a un caso.
// Igual que en exams, el ownership llega al atleta vía el caso.
type Lab struct {
	ID     int64
	CaseID int64

	TestName       string
	Result         string
	Unit           string
	ReferenceRange string

	CollectedAt *time.Time
	CreatedAt   time.Time
}
