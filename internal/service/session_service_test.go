package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/gisoinvest/auth-service/internal/repository/postgres"
	"github.com/gisoinvest/auth-service/internal/service"
	"github.com/gisoinvest/auth-service/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_IssueAndValidate(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	services := service.NewServices(repos, cfg)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	token, err := services.Sessions.Issue(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Validate immediately after issuance returns the owning user
	userID, err := services.Sessions.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// Two issued tokens are distinct
	second, err := services.Sessions.Issue(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, token, second)

	// The raw token never reaches the sessions table
	var count int64
	err = testDB.DB.Table("sessions").Where("token_hash = ?", token).Count(&count).Error
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSessionService_ValidateRejectsBadTokens(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	services := service.NewServices(repos, cfg)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	token, err := services.Sessions.Issue(ctx, user.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "unknown token", token: "bm90LWEtcmVhbC10b2tlbg"},
		{name: "truncated token", token: token[:len(token)-4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.Sessions.Validate(ctx, tt.token)
			assert.ErrorIs(t, err, service.ErrSessionInvalid)
		})
	}
}

func TestSessionService_Revoke(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	services := service.NewServices(repos, cfg)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	token, err := services.Sessions.Issue(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, services.Sessions.Revoke(ctx, token))

	// Validation always fails after revocation
	_, err = services.Sessions.Validate(ctx, token)
	assert.ErrorIs(t, err, service.ErrSessionInvalid)

	// Revoking again still succeeds
	require.NoError(t, services.Sessions.Revoke(ctx, token))

	// Revoking an unknown token is an error at the service level; the
	// logout handler absorbs it.
	err = services.Sessions.Revoke(ctx, "dW5rbm93bi10b2tlbg")
	assert.ErrorIs(t, err, service.ErrSessionInvalid)
}

func TestSessionService_Expiry(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	services := service.NewServices(repos, cfg)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	token, err := services.Sessions.Issue(ctx, user.ID)
	require.NoError(t, err)

	// Age the session past its TTL directly in the store
	err = testDB.DB.Exec(
		"UPDATE sessions SET expires_at = ? WHERE user_id = ?",
		time.Now().Add(-time.Minute), user.ID,
	).Error
	require.NoError(t, err)

	_, err = services.Sessions.Validate(ctx, token)
	assert.ErrorIs(t, err, service.ErrSessionInvalid)

	// Expired sessions cannot be refreshed either
	_, err = services.Sessions.Refresh(ctx, token)
	assert.ErrorIs(t, err, service.ErrSessionInvalid)
}

func TestSessionService_Refresh(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	services := service.NewServices(repos, cfg)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	token, err := services.Sessions.Issue(ctx, user.ID)
	require.NoError(t, err)

	newToken, err := services.Sessions.Refresh(ctx, token)
	require.NoError(t, err)
	assert.NotEqual(t, token, newToken)

	// Old token is dead, new one resolves to the same user
	_, err = services.Sessions.Validate(ctx, token)
	assert.ErrorIs(t, err, service.ErrSessionInvalid)

	userID, err := services.Sessions.Validate(ctx, newToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestSessionService_RevokeAllForUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	services := service.NewServices(repos, cfg)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	first, err := services.Sessions.Issue(ctx, user.ID)
	require.NoError(t, err)
	second, err := services.Sessions.Issue(ctx, user.ID)
	require.NoError(t, err)
	otherToken, err := services.Sessions.Issue(ctx, other.ID)
	require.NoError(t, err)

	require.NoError(t, services.Sessions.RevokeAllForUser(ctx, user.ID))

	_, err = services.Sessions.Validate(ctx, first)
	assert.ErrorIs(t, err, service.ErrSessionInvalid)
	_, err = services.Sessions.Validate(ctx, second)
	assert.ErrorIs(t, err, service.ErrSessionInvalid)

	// Another user's sessions are untouched
	userID, err := services.Sessions.Validate(ctx, otherToken)
	require.NoError(t, err)
	assert.Equal(t, other.ID, userID)
}

func TestSessionService_PurgeExpired(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	services := service.NewServices(repos, cfg)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	testutil.NewSessionBuilder(user.ID).
		WithTokenHash(uuid.New().String()).
		WithExpiresAt(time.Now().Add(-24 * time.Hour)).
		Build(t, testDB.DB)
	live := testutil.NewSessionBuilder(user.ID).
		WithTokenHash(uuid.New().String()).
		WithExpiresAt(time.Now().Add(time.Hour)).
		Build(t, testDB.DB)

	require.NoError(t, services.Sessions.PurgeExpired(ctx))

	var count int64
	require.NoError(t, testDB.DB.Table("sessions").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var remaining struct{ ID uuid.UUID }
	require.NoError(t, testDB.DB.Table("sessions").Select("id").Scan(&remaining).Error)
	assert.Equal(t, live.ID, remaining.ID)
}
