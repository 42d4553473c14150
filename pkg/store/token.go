package store

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// secretLen is the number of random bytes behind each API key.
const secretLen = 32

// newSecret draws a fresh key secret from a cryptographically secure
// source and returns its printable encoding.
func newSecret() (string, error) {
	buf := make([]byte, secretLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// encodeToken builds the bearer token presented to clients:
//
//	base64(username + ":" + base64(secret bytes))
//
// The double base64 encoding and the colon separator are the wire
// contract; clients present the result verbatim in the Authorization
// header.
func encodeToken(username, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + secret))
}

// decodeToken splits a presented bearer token into username and encoded
// secret. ok is false for any malformed token: bad base64, invalid
// UTF-8, or a shape other than exactly two colon-separated parts.
func decodeToken(token string) (username, secret string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil || !utf8.Valid(raw) {
		return "", "", false
	}
	parts := strings.Split(string(raw), ":")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
