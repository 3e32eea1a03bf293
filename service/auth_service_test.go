package service

import (
	"context"
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/layer-3/sigil/adapters/store/memory"
	"github.com/layer-3/sigil/adapters/tokenizer"
	"github.com/layer-3/sigil/core"
	"github.com/layer-3/sigil/internal/eth"
)

type nopPublisher struct{}

func (nopPublisher) PublishLogin(context.Context, string, string) error  { return nil }
func (nopPublisher) PublishLogout(context.Context, string, string) error { return nil }

var testClient = ClientInfo{IP: "203.0.113.7", UserAgent: "go-test"}

func newTestService(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	log := zap.NewNop().Sugar()

	svc := NewAuthService(
		Stores{Challenges: store, Users: store, Events: store, Revocations: store},
		tokenizer.NewJWTTokenizer([]byte("test-secret")),
		NewRateLimiter(store, log),
		nopPublisher{},
		"example.com",
		log,
	)
	return svc, store
}

func newWallet(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, eth.AddressFromPubkey(&key.PublicKey)
}

func signMessage(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	t.Helper()
	sig, err := crypto.Sign(eth.PersonalSignHash(message), key)
	require.NoError(t, err)
	return hexutil.Encode(sig)
}

func eventTypes(store *memory.Store) []core.EventType {
	events := store.Events()
	out := make([]core.EventType, 0, len(events))
	for _, event := range events {
		out = append(out, event.Type)
	}
	return out
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	key, address := newWallet(t)

	challenge, err := svc.CreateChallenge(ctx, address, testClient)
	require.NoError(t, err)
	assert.Contains(t, challenge.Message, address)
	assert.Contains(t, challenge.Message, "example.com")
	assert.Contains(t, challenge.Message, challenge.Nonce)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), challenge.ExpiresAt, 5*time.Second)

	result, err := svc.Login(ctx, LoginInput{
		ChallengeID: challenge.ID,
		Address:     address,
		Signature:   signMessage(t, key, challenge.Message),
		Client:      testClient,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, int64(900), result.ExpiresIn)

	require.NotNil(t, result.User)
	assert.Equal(t, address, result.User.Address)
	assert.True(t, result.User.IsActive)
	assert.False(t, result.User.IsAdmin)

	assert.Equal(t, []core.EventType{
		core.EventChallengeCreated,
		core.EventChallengeUsed,
		core.EventLogin,
	}, eventTypes(store))

	// The login event is attributed to the freshly created user.
	events := store.Events()
	last := events[len(events)-1]
	require.NotNil(t, last.UserID)
	assert.Equal(t, result.User.ID, *last.UserID)
	assert.Equal(t, testClient.IP, last.ClientIP)
	assert.Equal(t, testClient.UserAgent, last.UserAgent)
}

func TestLoginReusesExistingUser(t *testing.T) {
	svc, _ := newTestService(t)
	key, address := newWallet(t)

	first := mustLogin(t, svc, key, address, ClientInfo{IP: "203.0.113.1", UserAgent: "go-test"})
	second := mustLogin(t, svc, key, address, ClientInfo{IP: "203.0.113.2", UserAgent: "go-test"})

	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestChallengeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	key, address := newWallet(t)

	challenge, err := svc.CreateChallenge(ctx, address, testClient)
	require.NoError(t, err)
	signature := signMessage(t, key, challenge.Message)

	input := LoginInput{ChallengeID: challenge.ID, Address: address, Signature: signature, Client: testClient}

	_, err = svc.Login(ctx, input)
	require.NoError(t, err)

	// Replaying the same signature against the consumed challenge fails.
	_, err = svc.Login(ctx, input)
	assert.ErrorIs(t, err, core.ErrNoActiveChallenge)
}

func TestLoginRejectedSignatureKeepsChallengeActive(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	key, address := newWallet(t)
	intruder, _ := newWallet(t)

	challenge, err := svc.CreateChallenge(ctx, address, testClient)
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{
		ChallengeID: challenge.ID,
		Address:     address,
		Signature:   signMessage(t, intruder, challenge.Message),
		Client:      testClient,
	})
	assert.ErrorIs(t, err, core.ErrInvalidSignature)
	assert.Contains(t, eventTypes(store), core.EventFailedLogin)

	// A rejected attempt does not consume the challenge, so the real
	// owner can still log in.
	_, err = svc.Login(ctx, LoginInput{
		ChallengeID: challenge.ID,
		Address:     address,
		Signature:   signMessage(t, key, challenge.Message),
		Client:      testClient,
	})
	require.NoError(t, err)
}

func TestLoginUnknownChallenge(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, address := newWallet(t)

	_, err := svc.Login(ctx, LoginInput{
		ChallengeID: uuid.New(),
		Address:     address,
		Signature:   "0x00",
		Client:      testClient,
	})
	assert.ErrorIs(t, err, core.ErrNoActiveChallenge)
}

func TestLoginExpiredChallenge(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.challengeTTL = -time.Minute

	key, address := newWallet(t)

	challenge, err := svc.CreateChallenge(ctx, address, testClient)
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{
		ChallengeID: challenge.ID,
		Address:     address,
		Signature:   signMessage(t, key, challenge.Message),
		Client:      testClient,
	})
	assert.ErrorIs(t, err, core.ErrNoActiveChallenge)
}

func TestLoginRejectsInvalidAddress(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateChallenge(ctx, "not-an-address", testClient)
	assert.ErrorIs(t, err, core.ErrInvalidAddress)

	_, err = svc.Login(ctx, LoginInput{ChallengeID: uuid.New(), Address: "not-an-address", Client: testClient})
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestLoginRateLimited(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, address := newWallet(t)

	for i := 0; i < DefaultMaxAttempts; i++ {
		_, err := svc.Login(ctx, LoginInput{
			ChallengeID: uuid.New(),
			Address:     address,
			Signature:   "0x00",
			Client:      testClient,
		})
		assert.ErrorIs(t, err, core.ErrNoActiveChallenge)
	}

	_, err := svc.Login(ctx, LoginInput{
		ChallengeID: uuid.New(),
		Address:     address,
		Signature:   "0x00",
		Client:      testClient,
	})
	assert.ErrorIs(t, err, core.ErrRateLimited)
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	key, address := newWallet(t)

	login := mustLogin(t, svc, key, address, testClient)

	rotated, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, login.User.ID, rotated.User.ID)

	// The rotated-out token is revoked.
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	// The replacement still works.
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	key, address := newWallet(t)

	login := mustLogin(t, svc, key, address, testClient)

	_, err := svc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, core.ErrWrongTokenType)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	key, address := newWallet(t)

	login := mustLogin(t, svc, key, address, testClient)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken, testClient))

	_, err := svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	assert.Contains(t, eventTypes(store), core.EventWalletDisconnected)
}

func TestValidateAccessToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	key, address := newWallet(t)

	login := mustLogin(t, svc, key, address, testClient)

	claims, err := svc.ValidateAccessToken(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, claims.UserID)
	assert.Equal(t, address, claims.Address)
	assert.Equal(t, core.TokenTypeAccess, claims.Type)

	// A refresh token is not accepted where an access token is expected.
	_, err = svc.ValidateAccessToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, core.ErrWrongTokenType)
}

func mustLogin(t *testing.T, svc *AuthService, key *ecdsa.PrivateKey, address string, client ClientInfo) *LoginResult {
	t.Helper()
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, address, client)
	require.NoError(t, err)

	result, err := svc.Login(ctx, LoginInput{
		ChallengeID: challenge.ID,
		Address:     address,
		Signature:   signMessage(t, key, challenge.Message),
		Client:      client,
	})
	require.NoError(t, err)
	return result
}
