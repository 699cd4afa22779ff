// Package session implements the signed-cookie codec shared by the session
// and OTP cookies. A cookie value is base64url(JSON payload) + "." + tag,
// where tag = hex(HMAC-SHA256(secret, serialized payload)). The payload is
// trusted only when the re-derived tag matches; any parse or tag failure is
// a hard reject.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvalid is returned for any cookie that cannot be decoded and verified.
// Callers never learn whether the payload or the tag was at fault.
var ErrInvalid = errors.New("invalid signed cookie")

// Payload is the session cookie body.
type Payload struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	IssuedAt int64  `json:"iat"` // unix milliseconds
}

// OTPClaims is the OTP cookie body. The code itself is never stored, only
// its keyed hash.
type OTPClaims struct {
	Email     string `json:"email"`
	CodeHash  string `json:"codeHash"`
	ExpiresAt int64  `json:"exp"` // unix milliseconds
}

// Sign computes the keyed tag over the UTF-8 bytes of data. Deterministic:
// the same (secret, data) pair always yields the same tag.
func Sign(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Encode serializes v, tags it and bundles both into a cookie-safe value.
func Encode(secret string, v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	body := base64.RawURLEncoding.EncodeToString(raw)
	return body + "." + Sign(secret, string(raw)), nil
}

// Decode verifies the tag embedded in value and unmarshals the payload into
// v. Returns ErrInvalid on any malformed input or tag mismatch.
func Decode(secret, value string, v interface{}) error {
	i := strings.LastIndexByte(value, '.')
	if i < 0 {
		return ErrInvalid
	}
	raw, err := base64.RawURLEncoding.DecodeString(value[:i])
	if err != nil {
		return ErrInvalid
	}
	want := Sign(secret, string(raw))
	if !hmac.Equal([]byte(want), []byte(value[i+1:])) {
		return ErrInvalid
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrInvalid
	}
	return nil
}
