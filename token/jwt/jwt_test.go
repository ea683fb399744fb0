package jwt_test

import (
	"testing"
	"time"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/token"
	"github.com/elousi1010/quanlyveso-sub000/token/jwt"
	"github.com/elousi1010/quanlyveso-sub000/users"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)

type testFixture struct {
	signer    *jwt.HMACSigner
	creator   *jwt.Creator
	revoked   *jwt.RevocationList
	inspector *jwt.Inspector
	user      *users.User
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	now := testNow
	jwt.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { jwt.NowTimeFunc = time.Now })

	signer, err := jwt.NewHMACSigner("test-secret")
	require.NoError(t, err)
	revoked := jwt.NewRevocationList()

	return &testFixture{
		signer:    signer,
		creator:   jwt.NewCreator(signer, time.Hour),
		revoked:   revoked,
		inspector: jwt.NewInspector(signer, revoked),
		user: &users.User{
			ID:             "u1",
			Name:           "Alice",
			PhoneNumber:    "0901234567",
			Role:           token.RoleAgent,
			OrganizationID: "org1",
		},
	}
}

func setNow(t time.Time) {
	jwt.NowTimeFunc = func() time.Time { return t }
}

func TestNewHMACSigner_RejectsEmptySecret(t *testing.T) {
	_, err := jwt.NewHMACSigner("")
	require.Error(t, err)
}

func TestCreateAccessToken_DecodesOnTheClient(t *testing.T) {
	f := setupTestFixture(t)

	raw, claims, err := f.creator.CreateAccessToken(f.user)
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)
	require.Equal(t, testNow.Unix(), claims.IssuedAt)
	require.Equal(t, testNow.Add(time.Hour).Unix(), claims.ExpiresAt)

	decoded, err := token.NewCodec().Decode(raw)
	require.NoError(t, err)
	require.Equal(t, claims, decoded)
	require.Equal(t, "agent", decoded.Permission.Code)
	require.True(t, decoded.Permission.Can(users.ResourceTickets, token.ActionCreate))
}

func TestVerify(t *testing.T) {
	f := setupTestFixture(t)
	raw, _, err := f.creator.CreateAccessToken(f.user)
	require.NoError(t, err)

	claims, err := f.inspector.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "Alice", claims.Name)
}

func TestVerify_Failures(t *testing.T) {
	f := setupTestFixture(t)
	raw, _, err := f.creator.CreateAccessToken(f.user)
	require.NoError(t, err)

	otherSigner, err := jwt.NewHMACSigner("other-secret")
	require.NoError(t, err)
	forged, _, err := jwt.NewCreator(otherSigner, time.Hour).CreateAccessToken(f.user)
	require.NoError(t, err)

	noExp, err := f.signer.Sign(&token.Claims{Subject: "u1", ID: "j"})
	require.NoError(t, err)

	none, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, &token.Claims{Subject: "u1", ExpiresAt: testNow.Add(time.Hour).Unix()}).
		SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"empty":       "",
		"garbage":     "not.a.jwt",
		"wrong key":   forged,
		"missing exp": noExp,
		"alg none":    none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.inspector.Verify(tok)
			require.ErrorIs(t, err, apperrors.ErrMalformedToken)
		})
	}

	setNow(testNow.Add(2 * time.Hour))
	_, err = f.inspector.Verify(raw)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestRevocation(t *testing.T) {
	f := setupTestFixture(t)
	raw, claims, err := f.creator.CreateAccessToken(f.user)
	require.NoError(t, err)

	jti, exp, err := f.inspector.ExtractJTI(raw)
	require.NoError(t, err)
	require.Equal(t, claims.ID, jti)
	require.Equal(t, claims.Expiry(), exp)

	f.revoked.Add(jti, exp)
	_, err = f.inspector.Verify(raw)
	require.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	require.Zero(t, f.revoked.Cleanup())
	setNow(testNow.Add(2 * time.Hour))
	require.Equal(t, 1, f.revoked.Cleanup())
	require.Zero(t, f.revoked.Len())
}
