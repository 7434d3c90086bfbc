package shares

import "time"

// Permission define qué puede hacer quien presenta el token.
// No hay escalamiento: para cambiar el permiso se crea otro grant.
// @Enum view, edit
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

// Grant es el registro de capacidad que liga un token con una
// inspección, un permiso y una ventana de validez.
type Grant struct {
	ID           string
	InspectionID string

	// Token es el único factor de autenticación del acceso anónimo.
	// Inmutable una vez emitido.
	Token string

	Permission Permission
	CreatedBy  string

	// ExpiresAt nil significa "sin expiración" a nivel de esquema,
	// pero el servicio siempre setea un default en la creación.
	ExpiresAt *time.Time

	// IsActive solo lo muta la revocación, y es terminal:
	// una vez en false nunca vuelve a true.
	IsActive bool

	AccessCount int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Usable se recalcula en cada acceso, nunca se almacena ni se
// cachea en proceso. Expirar en el instante exacto cuenta como
// expirado (now < expires).
func (g Grant) Usable(now time.Time) bool {
	if !g.IsActive {
		return false
	}
	if g.ExpiresAt == nil {
		return true
	}
	return now.Before(*g.ExpiresAt)
}
