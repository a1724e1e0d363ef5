package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"go-shop-api/pkg/apierror"
)

func newTestCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()

	codec, err := NewCodec("test-secret", 15*time.Minute, 7*24*time.Hour, opts...)
	require.NoError(t, err)
	return codec
}

func requireKind(t *testing.T, err error, kind apierror.Kind) {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, kind, apiErr.Kind)
}

func TestNewCodecRejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := NewCodec("", time.Minute, time.Hour)
	require.Error(t, err)

	_, err = NewCodec("s", 0, time.Hour)
	require.Error(t, err)

	_, err = NewCodec("s", time.Minute, -time.Hour)
	require.Error(t, err)
}

func TestIssueParseRoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	for _, purpose := range []Purpose{PurposeAccess, PurposeRefresh} {
		tok, err := codec.Issue("user-1", purpose)
		require.NoError(t, err)

		claims, err := codec.Parse(tok, purpose)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.UserID())
		require.Equal(t, purpose, claims.Purpose)
		require.NotEmpty(t, claims.ID)
	}
}

func TestIssueUsesPurposeSpecificTTL(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, WithClock(func() time.Time { return fixed }))

	access, err := codec.Issue("u", PurposeAccess)
	require.NoError(t, err)
	refresh, err := codec.Issue("u", PurposeRefresh)
	require.NoError(t, err)

	accessClaims, err := codec.Parse(access, PurposeAccess)
	require.NoError(t, err)
	refreshClaims, err := codec.Parse(refresh, PurposeRefresh)
	require.NoError(t, err)

	require.True(t, fixed.Add(15*time.Minute).Equal(accessClaims.ExpiresAt.Time))
	require.True(t, fixed.Add(7*24*time.Hour).Equal(refreshClaims.ExpiresAt.Time))
}

func TestIssueProducesDistinctTokens(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	first, err := codec.Issue("u", PurposeRefresh)
	require.NoError(t, err)
	second, err := codec.Issue("u", PurposeRefresh)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestParseRejectsWrongPurpose(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	refresh, err := codec.Issue("u", PurposeRefresh)
	require.NoError(t, err)
	_, err = codec.Parse(refresh, PurposeAccess)
	requireKind(t, err, apierror.KindForbidden)

	access, err := codec.Issue("u", PurposeAccess)
	require.NoError(t, err)
	_, err = codec.Parse(access, PurposeRefresh)
	requireKind(t, err, apierror.KindForbidden)
}

func TestParseRejectsExpired(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-2 * time.Hour)
	issuer := newTestCodec(t, WithClock(func() time.Time { return past }))
	verifier := newTestCodec(t)

	tok, err := issuer.Issue("u", PurposeAccess)
	require.NoError(t, err)

	_, err = verifier.Parse(tok, PurposeAccess)
	requireKind(t, err, apierror.KindUnauthorized)
	require.Contains(t, err.Error(), "expired")

	// An expired token of the wrong purpose is still rejected as expired.
	_, err = verifier.Parse(tok, PurposeRefresh)
	requireKind(t, err, apierror.KindUnauthorized)
}

func TestParseRejectsBadSignature(t *testing.T) {
	t.Parallel()

	other, err := NewCodec("other-secret", time.Minute, time.Hour)
	require.NoError(t, err)
	codec := newTestCodec(t)

	tok, err := other.Issue("u", PurposeAccess)
	require.NoError(t, err)

	_, err = codec.Parse(tok, PurposeAccess)
	requireKind(t, err, apierror.KindUnauthorized)
}

func TestParseRejectsMalformed(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c", strings.Repeat("x", 300)} {
		_, err := codec.Parse(raw, PurposeAccess)
		requireKind(t, err, apierror.KindUnauthorized)
	}
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	claims := Claims{
		Purpose: PurposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = codec.Parse(tok, PurposeAccess)
	requireKind(t, err, apierror.KindUnauthorized)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Parse(unsigned, PurposeAccess)
	requireKind(t, err, apierror.KindUnauthorized)
}

func TestParseRequiresExpiryAndSubject(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Purpose:          PurposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = codec.Parse(noExp, PurposeAccess)
	requireKind(t, err, apierror.KindUnauthorized)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Purpose: PurposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = codec.Parse(noSub, PurposeAccess)
	requireKind(t, err, apierror.KindUnauthorized)
}

func TestParseRejectsMissingOrUnknownPurpose(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	for _, purpose := range []Purpose{"", "admin"} {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			Purpose: purpose,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = codec.Parse(tok, PurposeAccess)
		requireKind(t, err, apierror.KindUnauthorized)
		_, err = codec.Parse(tok, PurposeRefresh)
		requireKind(t, err, apierror.KindUnauthorized)
	}
}
