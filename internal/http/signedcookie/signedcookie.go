// Package signedcookie signs cookie values with HMAC-SHA256 so the shop can
// keep small state (cart id, flash, saved address) on the client.
package signedcookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalid = errors.New("invalid signed cookie")

type Signer struct {
	secret []byte
}

func New(secret []byte) Signer { return Signer{secret: secret} }

// Sign returns "value.sig". value must not contain a dot.
func (s Signer) Sign(value string) string {
	return value + "." + s.mac(value)
}

// Verify returns the value of a Sign output.
func (s Signer) Verify(signed string) (string, error) {
	value, sig, ok := strings.Cut(signed, ".")
	if !ok || value == "" || strings.Contains(sig, ".") {
		return "", ErrInvalid
	}
	if !hmac.Equal([]byte(s.mac(value)), []byte(sig)) {
		return "", ErrInvalid
	}
	return value, nil
}

// Seal JSON-encodes v and signs it: base64(json).sig
func (s Signer) Seal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return s.Sign(base64.RawURLEncoding.EncodeToString(b)), nil
}

// Open reverses Seal into v.
func (s Signer) Open(signed string, v any) error {
	payload, err := s.Verify(signed)
	if err != nil {
		return err
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return ErrInvalid
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrInvalid
	}
	return nil
}

func (s Signer) mac(value string) string {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}
