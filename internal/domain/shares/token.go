package shares

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes = 32 => 256 bits de entropía, bien por encima del
// mínimo para que adivinar el token sea inviable durante la vida
// del grant.
const tokenBytes = 32

// NewToken genera el identificador URL-safe del grant.
// Si la fuente aleatoria del sistema falla, el error se propaga y la
// creación del grant aborta: nunca degradamos a una fuente débil.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("share token: random source unavailable: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
