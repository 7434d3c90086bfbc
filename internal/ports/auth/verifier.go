package auth

import "context"

// AuthVerifier valida un token de sesión contra el identity provider
// y devuelve claims o error. El login con cookies/IdP vive fuera de
// este servicio; acá solo se consume.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
