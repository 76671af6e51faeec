package auth

// Claims representa la identidad extraída del token.
// Role viaja como string plano para no acoplar este port al paquete users.
type Claims struct {
	UserID int64
	Email  string
	Role   string
}
