package devserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/carbuyer/internal/common"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("s")
	tok, id, err := GenerateToken("user-1", secret, time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, id, claims.ID)
}

func TestParseToken_Rejects(t *testing.T) {
	secret := []byte("s")

	tok, _, err := GenerateToken("user-1", secret, time.Hour, time.Now())
	require.NoError(t, err)
	_, err = ParseToken(tok, []byte("other"))
	require.ErrorIs(t, err, common.ErrInvalidToken)

	expired, _, err := GenerateToken("user-1", secret, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = ParseToken(expired, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = ParseToken("garbage", secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
