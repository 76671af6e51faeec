package consults

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	// 32 bytes de entropía (64 chars hex). Un token adivinable
	// sería una fuga de datos directa, así que siempre crypto/rand.
	tokenBytes = 32

	// Largo mínimo aceptado al resolver, antes de tocar storage.
	minTokenLen = 10
)

func newShareToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// newAccessCode genera un código de 6 dígitos uniforme en [100000, 999999].
func newAccessCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate access code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
