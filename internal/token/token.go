// Package token implements the stateless signed credential protecting report
// downloads. A token proves possession of a valid, non-expired grant for one
// named file; it never encodes who may hold it — site-scope authorization is
// enforced by the JWT middleware on top.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const minTTL = 60 * time.Second

// Issuer mints and verifies download tokens with a shared HMAC-SHA256 secret.
// Tokens are never persisted: validity is re-derived at verification time.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

// Generate returns a token of the form <payload_b64>.<signature_b64> where
// payload is "<filename>:<nonce>:<unix_expiry>" and both parts are padless
// base64url. TTLs under 60s are raised to 60s.
func (i *Issuer) Generate(filename string, ttl time.Duration) (string, error) {
	if ttl < minTTL {
		ttl = minTTL
	}

	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	expiresAt := i.now().Add(ttl).Unix()
	payload := filename + ":" + hex.EncodeToString(nonce) + ":" + strconv.FormatInt(expiresAt, 10)

	sig := i.sign([]byte(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + sig, nil
}

// Verify reports whether tok grants access to filename right now. Every
// malformed input — wrong segment count, bad base64, bad payload shape —
// is simply an invalid token, never an error.
func (i *Issuer) Verify(tok, filename string) bool {
	dot := strings.Index(tok, ".")
	if dot < 0 {
		return false
	}
	payloadB64, sigB64 := tok[:dot], tok[dot+1:]

	payload, err := decodeB64(payloadB64)
	if err != nil {
		return false
	}

	expected := i.sign(payload)
	if !hmac.Equal([]byte(sigB64), []byte(expected)) {
		return false
	}

	// Split from the right: filenames may legitimately contain colons.
	s := string(payload)
	expIdx := strings.LastIndex(s, ":")
	if expIdx < 0 {
		return false
	}
	nonceIdx := strings.LastIndex(s[:expIdx], ":")
	if nonceIdx < 0 {
		return false
	}

	if s[:nonceIdx] != filename {
		return false
	}

	expiresAt, err := strconv.ParseInt(s[expIdx+1:], 10, 64)
	if err != nil {
		return false
	}
	return i.now().Unix() < expiresAt
}

func (i *Issuer) sign(payload []byte) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// decodeB64 accepts padless base64url, re-padding as needed so tokens that
// passed through padding-normalizing proxies still verify.
func decodeB64(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	return base64.RawURLEncoding.DecodeString(s)
}
