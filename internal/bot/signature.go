package bot

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
)

// Signature headers set by Discord on every interaction request.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// ErrInvalidPublicKey is returned when the application public key is not a
// hex encoded ed25519 key.
var ErrInvalidPublicKey = errors.New("invalid public key")

// Verifier checks interaction signatures against one application key.
type Verifier struct {
	key ed25519.PublicKey
}

// NewVerifier parses the hex encoded application public key.
func NewVerifier(publicKeyHex string) (*Verifier, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, ed25519.PublicKeySize, len(key))
	}
	return &Verifier{key: ed25519.PublicKey(key)}, nil
}

// Verify reports whether signatureHex is a valid signature of
// timestamp||body. It never panics on malformed input.
func (v *Verifier) Verify(body []byte, timestamp, signatureHex string) bool {
	if v == nil || timestamp == "" || signatureHex == "" {
		return false
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)

	return ed25519.Verify(v.key, msg, sig)
}

// Verify is a one-shot form of (*Verifier).Verify.
func Verify(body []byte, timestamp, signatureHex, publicKeyHex string) bool {
	v, err := NewVerifier(publicKeyHex)
	if err != nil {
		return false
	}
	return v.Verify(body, timestamp, signatureHex)
}
