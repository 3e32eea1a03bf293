package tokenizer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/sigil/core"
)

const testAddress = "0xab5801a7d398351b8be11c439e05c5b3259aec9b"

var testSecret = []byte("test-secret")

func TestIssuePairRoundTrip(t *testing.T) {
	tk := NewJWTTokenizer(testSecret)
	userID := uuid.New()

	pair, err := tk.IssuePair(userID, testAddress, true)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := tk.Validate(pair.AccessToken, core.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, access.UserID)
	assert.Equal(t, testAddress, access.Address)
	assert.True(t, access.IsAdmin)
	assert.Equal(t, core.TokenTypeAccess, access.Type)
	assert.NotEmpty(t, access.TokenID)

	refresh, err := tk.Validate(pair.RefreshToken, core.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, userID, refresh.UserID)
	assert.Equal(t, core.TokenTypeRefresh, refresh.Type)

	// Distinct JTIs per token, distinct lifetimes.
	assert.NotEqual(t, access.TokenID, refresh.TokenID)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt))
	assert.WithinDuration(t, time.Now().Add(DefaultAccessTTL), access.ExpiresAt, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(DefaultRefreshTTL), refresh.ExpiresAt, 5*time.Second)
}

func TestValidateWrongTokenType(t *testing.T) {
	tk := NewJWTTokenizer(testSecret)

	pair, err := tk.IssuePair(uuid.New(), testAddress, false)
	require.NoError(t, err)

	_, err = tk.Validate(pair.AccessToken, core.TokenTypeRefresh)
	assert.ErrorIs(t, err, core.ErrWrongTokenType)

	_, err = tk.Validate(pair.RefreshToken, core.TokenTypeAccess)
	assert.ErrorIs(t, err, core.ErrWrongTokenType)
}

func TestValidateExpired(t *testing.T) {
	tk := &JWTTokenizer{secret: testSecret, accessTTL: -time.Minute, refreshTTL: -time.Minute}

	pair, err := tk.IssuePair(uuid.New(), testAddress, false)
	require.NoError(t, err)

	_, err = tk.Validate(pair.AccessToken, core.TokenTypeAccess)
	assert.ErrorIs(t, err, core.ErrTokenExpired)

	// Peek still yields the claims so the token can be revoked.
	claims, err := tk.Peek(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, core.TokenTypeRefresh, claims.Type)
	assert.NotEmpty(t, claims.TokenID)
}

func TestValidateWrongSecret(t *testing.T) {
	tk := NewJWTTokenizer(testSecret)
	other := NewJWTTokenizer([]byte("different-secret"))

	pair, err := tk.IssuePair(uuid.New(), testAddress, false)
	require.NoError(t, err)

	_, err = other.Validate(pair.AccessToken, core.TokenTypeAccess)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestValidateGarbage(t *testing.T) {
	tk := NewJWTTokenizer(testSecret)

	_, err := tk.Validate("not.a.jwt", core.TokenTypeAccess)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}
