package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-seat-reservation/internal/utils"
)

const secret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 42, "student", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	claims, err := utils.ParseAccessToken(secret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "student", claims.Role)
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 42, "student", 15)
	require.NoError(t, err)

	_, err = utils.ParseAccessToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, utils.ErrTokenInvalid)
}

func TestAccessTokenRejectsGarbage(t *testing.T) {
	_, err := utils.ParseAccessToken(secret, "not.a.jwt")
	assert.ErrorIs(t, err, utils.ErrTokenInvalid)
}

func TestSeatTokenBindsToSeat(t *testing.T) {
	tok, err := utils.NewSeatToken(secret, 7)
	require.NoError(t, err)

	assert.NoError(t, utils.VerifySeatToken(secret, tok, 7))
	assert.ErrorIs(t, utils.VerifySeatToken(secret, tok, 8), utils.ErrTokenInvalid)
	assert.ErrorIs(t, utils.VerifySeatToken("other", tok, 7), utils.ErrTokenInvalid)
}
