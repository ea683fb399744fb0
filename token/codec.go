package token

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Codec reads access-token claims without verifying the signature. Trust
// in the token comes from the issuing server and the transport; the client
// only needs identity and expiry.
type Codec struct {
	parser  *jwtlib.Parser
	nowFunc func() time.Time
}

type CodecOption func(*Codec)

// WithNowFunc sets the clock used for expiry checks (primarily for testing)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func NewCodec(options ...CodecOption) *Codec {
	c := &Codec{
		parser:  jwtlib.NewParser(jwtlib.WithPaddingAllowed()),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Decode extracts the claims of raw. Any structural or parse failure
// yields ErrMalformedToken.
func (c *Codec) Decode(raw string) (*Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, apperrors.ErrMalformedToken
	}

	payload, err := c.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, apperrors.ErrMalformedToken
	}

	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || payload[0] != '{' {
		return nil, apperrors.ErrMalformedToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, apperrors.ErrMalformedToken
	}

	if claims.ExpiresAt != 0 && claims.IssuedAt != 0 && claims.ExpiresAt <= claims.IssuedAt {
		return nil, apperrors.ErrMalformedToken
	}
	return &claims, nil
}

// IsExpired fails closed: an undecodable token, or one without exp, is expired
func (c *Codec) IsExpired(raw string) bool {
	claims, err := c.Decode(raw)
	if err != nil || claims.ExpiresAt == 0 {
		return true
	}
	return claims.ExpiresAt < c.nowFunc().Unix()
}

// Remaining is the time left before raw expires, zero when already
// expired or undecodable
func (c *Codec) Remaining(raw string) time.Duration {
	claims, err := c.Decode(raw)
	if err != nil || claims.ExpiresAt == 0 {
		return 0
	}
	left := claims.ExpiresAt - c.nowFunc().Unix()
	if left <= 0 {
		return 0
	}
	return time.Duration(left) * time.Second
}

// ExpiresWithin reports whether raw expires within window
func (c *Codec) ExpiresWithin(raw string, window time.Duration) bool {
	return c.Remaining(raw) <= window
}

// Now returns the codec's current time
func (c *Codec) Now() time.Time {
	return c.nowFunc()
}
