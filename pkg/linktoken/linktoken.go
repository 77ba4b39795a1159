package linktoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Purposes bind a token to a single flow so a consent link can never be
// replayed against the password-reset endpoint or vice versa.
const (
	PurposeConsent       = "consent"
	PurposePasswordReset = "password-reset"
)

// Signer creates and validates the signed uid/token pairs embedded in
// emailed links (parental consent approval, password reset).
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a signer with the provided secret and TTL.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Generate returns the encoded uid and a signed token for the user.
func (s *Signer) Generate(userID int64, purpose string) (uid, token string, err error) {
	if userID <= 0 {
		return "", "", fmt.Errorf("user id required")
	}
	if len(s.secret) == 0 {
		return "", "", fmt.Errorf("signing secret missing")
	}

	uid = base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(userID, 10)))
	expiresAt := time.Now().Add(s.ttl).Unix()
	signature := s.sign(uid, purpose, expiresAt)
	token = fmt.Sprintf("%d.%s", expiresAt, signature)
	return uid, token, nil
}

// Parse validates the uid/token pair and returns the embedded user ID.
func (s *Signer) Parse(uid, token, purpose string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, fmt.Errorf("decode uid: %w", err)
	}
	userID, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid uid")
	}

	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid token format")
	}
	expiresAt, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token timestamp")
	}

	expected := s.sign(uid, purpose, expiresAt)
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return 0, fmt.Errorf("invalid token signature")
	}
	if time.Now().After(time.Unix(expiresAt, 0)) {
		return 0, fmt.Errorf("token expired")
	}

	return userID, nil
}

func (s *Signer) sign(uid, purpose string, expiresAt int64) string {
	payload := fmt.Sprintf("%s|%s|%d", uid, purpose, expiresAt)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
