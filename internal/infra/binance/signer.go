package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer handles Binance USDT-M futures request signing.
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

// APIKey returns the access key for the X-MBX-APIKEY header.
func (s *Signer) APIKey() string {
	return string(s.accessKey)
}

// Sign returns the hex HMAC-SHA256 signature of the query string.
func (s *Signer) Sign(query string) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}
