package auth

// Claims es la identidad extraída del token de sesión.
type Claims struct {
	UserID string
	Email  string
	OrgID  string
}
