package bot

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func newTestKey(t *testing.T) (ed25519.PrivateKey, string) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return priv, hex.EncodeToString(pub)
}

func sign(priv ed25519.PrivateKey, timestamp string, body []byte) string {
	return hex.EncodeToString(ed25519.Sign(priv, append([]byte(timestamp), body...)))
}

func flipHexByte(s string, i int) string {
	b, _ := hex.DecodeString(s)
	b[i] ^= 0x01
	return hex.EncodeToString(b)
}

func TestVerify(t *testing.T) {
	priv, pub := newTestKey(t)
	_, otherPub := newTestKey(t)

	body := []byte(`{"type":1}`)
	ts := "1700000000"
	sig := sign(priv, ts, body)

	tests := []struct {
		name      string
		body      []byte
		timestamp string
		signature string
		publicKey string
		want      bool
	}{
		{name: "valid", body: body, timestamp: ts, signature: sig, publicKey: pub, want: true},
		{name: "uppercase hex", body: body, timestamp: ts, signature: strings.ToUpper(sig), publicKey: strings.ToUpper(pub), want: true},
		{name: "body altered", body: []byte(`{"type":2}`), timestamp: ts, signature: sig, publicKey: pub},
		{name: "timestamp altered", body: body, timestamp: "1700000001", signature: sig, publicKey: pub},
		{name: "signature altered", body: body, timestamp: ts, signature: flipHexByte(sig, 10), publicKey: pub},
		{name: "wrong key", body: body, timestamp: ts, signature: sig, publicKey: otherPub},
		{name: "missing timestamp", body: body, timestamp: "", signature: sig, publicKey: pub},
		{name: "missing signature", body: body, timestamp: ts, signature: "", publicKey: pub},
		{name: "non hex signature", body: body, timestamp: ts, signature: "zz" + sig[2:], publicKey: pub},
		{name: "short signature", body: body, timestamp: ts, signature: sig[:64], publicKey: pub},
		{name: "odd length signature", body: body, timestamp: ts, signature: sig[:127], publicKey: pub},
		{name: "non hex key", body: body, timestamp: ts, signature: sig, publicKey: "xyz"},
		{name: "short key", body: body, timestamp: ts, signature: sig, publicKey: pub[:32]},
		{name: "empty key", body: body, timestamp: ts, signature: sig, publicKey: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verify(tt.body, tt.timestamp, tt.signature, tt.publicKey); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestVerify_EmptyBody(t *testing.T) {
	priv, pub := newTestKey(t)
	ts := "1700000000"

	if !Verify(nil, ts, sign(priv, ts, nil), pub) {
		t.Error("expected signature over an empty body to verify")
	}
}

func TestNewVerifier_InvalidKey(t *testing.T) {
	for _, key := range []string{"", "abc", "zz", strings.Repeat("ab", 31)} {
		if _, err := NewVerifier(key); !errors.Is(err, ErrInvalidPublicKey) {
			t.Errorf("key %q: expected ErrInvalidPublicKey, got %v", key, err)
		}
	}
}

func TestVerifier_NilIsSafe(t *testing.T) {
	var v *Verifier
	if v.Verify([]byte("x"), "1", "00") {
		t.Error("expected nil verifier to reject")
	}
}
