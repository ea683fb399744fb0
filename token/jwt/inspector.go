package jwt

import (
	"errors"
	"strings"
	"time"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/token"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Inspector verifies access tokens presented to the server
type Inspector struct {
	signer         Signer
	revokedChecker RevokedChecker
}

// NewInspector creates a new JWT inspector
func NewInspector(signer Signer, revokedChecker RevokedChecker) *Inspector {
	return &Inspector{
		signer:         signer,
		revokedChecker: revokedChecker,
	}
}

// Verify checks the signature, expiry and revocation of rawToken and
// returns its claims. Failures map to ErrMalformedToken, ErrTokenExpired
// or ErrTokenRevoked.
func (i *Inspector) Verify(rawToken string) (*token.Claims, error) {
	claims, err := i.parse(rawToken)
	if err != nil {
		return nil, err
	}
	if claims.ID != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(claims.ID) {
		return nil, apperrors.ErrTokenRevoked
	}
	return claims, nil
}

// ExtractJTI returns the token ID and expiry of a verified token, so the
// token can be revoked until it would have expired anyway.
func (i *Inspector) ExtractJTI(rawToken string) (jti string, exp time.Time, err error) {
	claims, err := i.parse(rawToken)
	if err != nil {
		return "", time.Time{}, err
	}
	if claims.ID == "" {
		return "", time.Time{}, apperrors.Wrapf(apperrors.ErrMalformedToken, "token missing jti claim")
	}
	return claims.ID, claims.Expiry(), nil
}

func (i *Inspector) parse(rawToken string) (*token.Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.ErrMalformedToken
	}

	claims := &token.Claims{}
	parsed, err := jwtlib.ParseWithClaims(rawToken, claims, i.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	switch {
	case err == nil && parsed.Valid:
		return claims, nil
	case err != nil && errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, apperrors.ErrTokenExpired
	default:
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "%v", err)
	}
}
