package upbit

import (
	"crypto/sha512"
	"encoding/hex"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Signer builds the JWT bearer tokens Upbit requires on private endpoints.
// Keys are held as []byte so they can be wiped.
type Signer struct {
	accessKey []byte
	secretKey []byte
}

// NewSigner creates a new signer.
func NewSigner(accessKey, secretKey string) *Signer {
	return &Signer{
		accessKey: []byte(accessKey),
		secretKey: []byte(secretKey),
	}
}

// Wipe clears the keys from memory.
func (s *Signer) Wipe() {
	if s == nil {
		return
	}
	wipeSlice(s.accessKey)
	wipeSlice(s.secretKey)
}

func wipeSlice(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Token signs a JWT for a request. For requests with parameters, query is the
// urlencoded parameter string and is bound into the token as a SHA512 hash.
func (s *Signer) Token(query string) (string, error) {
	claims := jwt.MapClaims{
		"access_key": string(s.accessKey),
		"nonce":      uuid.NewString(),
	}

	if query != "" {
		sum := sha512.Sum512([]byte(query))
		claims["query_hash"] = hex.EncodeToString(sum[:])
		claims["query_hash_alg"] = "SHA512"
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}
