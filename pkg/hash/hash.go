package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// ShortHash returns the first n characters of SHA256(input).
// Used for log correlation without writing raw identifiers to logs.
func ShortHash(input string, n int) string {
	full := SHA256Hex(input)
	if n > len(full) {
		return full
	}
	return full[:n]
}

// SignState produces an OAuth state parameter binding the flow to a user:
// base64url(userID) + "." + HMAC-SHA256(userID, secret). The callback verifies
// it to recover the user without server-side state.
func SignState(userID, secret string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(userID))
	return payload + "." + sign(userID, secret)
}

// VerifyState checks a state parameter's signature and returns the user id it
// was issued for.
func VerifyState(state, secret string) (string, bool) {
	payload, sig, ok := strings.Cut(state, ".")
	if !ok {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	userID := string(raw)
	if !hmac.Equal([]byte(sign(userID, secret)), []byte(sig)) {
		return "", false
	}
	return userID, true
}

func sign(userID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))
}
