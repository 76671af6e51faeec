package users

import "time"

// Role define los roles soportados.
// @Enum ADMIN, CLINICIAN, ATHLETE
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleClinician Role = "CLINICIAN"
	RoleAthlete   Role = "ATHLETE"
)

// User representa un principal del sistema: staff clínico o atleta.
type User struct {
	ID int64

	Email        string
	PasswordHash string

	FullName string
	Role     Role

	// Solo relevantes para atletas.
	DateOfBirth *time.Time
	Gender      string

	CreatedAt time.Time
}
