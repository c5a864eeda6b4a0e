package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/gisoinvest/auth-service/internal/domain"
	"github.com/gisoinvest/auth-service/internal/repository/postgres"
	"github.com/gisoinvest/auth-service/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSessionRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	session := &domain.Session{
		ID:        uuid.New(),
		TokenHash: "digest-one",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, session))

	// Token hashes are unique
	dup := &domain.Session{
		ID:        uuid.New(),
		TokenHash: "digest-one",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	assert.ErrorIs(t, repo.Create(ctx, dup), gorm.ErrDuplicatedKey)

	got, err := repo.GetByTokenHash(ctx, "digest-one")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, user.ID, got.UserID)
	assert.False(t, got.Revoked)

	_, err = repo.GetByTokenHash(ctx, "no-such-digest")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSessionRepository_Revoke(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	session := testutil.NewSessionBuilder(user.ID).
		WithTokenHash("revoke-digest").
		Build(t, testDB.DB)

	require.NoError(t, repo.Revoke(ctx, session.ID))

	got, err := repo.GetByTokenHash(ctx, "revoke-digest")
	require.NoError(t, err)
	assert.True(t, got.Revoked)

	// Revoking again is a no-op, not an error
	require.NoError(t, repo.Revoke(ctx, session.ID))
}

func TestSessionRepository_RevokeByUserID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	testutil.NewSessionBuilder(user.ID).WithTokenHash("u1-a").Build(t, testDB.DB)
	testutil.NewSessionBuilder(user.ID).WithTokenHash("u1-b").Build(t, testDB.DB)
	testutil.NewSessionBuilder(other.ID).WithTokenHash("u2-a").Build(t, testDB.DB)

	require.NoError(t, repo.RevokeByUserID(ctx, user.ID))

	for _, hash := range []string{"u1-a", "u1-b"} {
		got, err := repo.GetByTokenHash(ctx, hash)
		require.NoError(t, err)
		assert.True(t, got.Revoked, "session %s should be revoked", hash)
	}

	got, err := repo.GetByTokenHash(ctx, "u2-a")
	require.NoError(t, err)
	assert.False(t, got.Revoked, "other user's session must stay active")
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	testutil.NewSessionBuilder(user.ID).
		WithTokenHash("stale").
		WithExpiresAt(time.Now().Add(-48 * time.Hour)).
		Build(t, testDB.DB)
	testutil.NewSessionBuilder(user.ID).
		WithTokenHash("fresh").
		WithExpiresAt(time.Now().Add(time.Hour)).
		Build(t, testDB.DB)

	require.NoError(t, repo.DeleteExpired(ctx, time.Now()))

	_, err := repo.GetByTokenHash(ctx, "stale")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByTokenHash(ctx, "fresh")
	assert.NoError(t, err)
}
