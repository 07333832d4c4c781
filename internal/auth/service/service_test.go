package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seb-lewis/startupcrm/internal/auth/domain"
	"github.com/seb-lewis/startupcrm/internal/auth/repository"
	"github.com/seb-lewis/startupcrm/internal/clock"
	"github.com/seb-lewis/startupcrm/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupAuthTest(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo, sessionRepo := repository.New(conn)

	return New(zap.NewNop(), repo, sessionRepo, node, clk), clk
}

func signup(t *testing.T, svc domain.Service, email string) *domain.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return user
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _ := setupAuthTest(t)
	user := signup(t, svc, "alice@example.com")

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "Alice@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RawToken)

	session, got, err := svc.Authenticate(context.Background(), result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.ID, session.UserID)
	assert.Nil(t, session.ActiveOrgID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := setupAuthTest(t)
	signup(t, svc, "alice@example.com")

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-horse",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := setupAuthTest(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := setupAuthTest(t)
	signup(t, svc, "alice@example.com")

	_, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "ALICE@example.com",
		Password: "another-pass",
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	svc, clk := setupAuthTest(t)
	signup(t, svc, "alice@example.com")

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	clk.Advance(8 * 24 * time.Hour)

	_, _, err = svc.Authenticate(context.Background(), result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestAuthenticateAfterLogout(t *testing.T) {
	svc, _ := setupAuthTest(t)
	signup(t, svc, "alice@example.com")

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), result.RawToken))

	_, _, err = svc.Authenticate(context.Background(), result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestSetActiveOrgPersistsHint(t *testing.T) {
	svc, _ := setupAuthTest(t)
	signup(t, svc, "alice@example.com")

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	orgID := int64(42)
	require.NoError(t, svc.SetActiveOrg(context.Background(), result.SessionID, &orgID))

	session, _, err := svc.Authenticate(context.Background(), result.RawToken)
	require.NoError(t, err)
	require.NotNil(t, session.ActiveOrgID)
	assert.Equal(t, orgID, *session.ActiveOrgID)

	require.NoError(t, svc.SetActiveOrg(context.Background(), result.SessionID, nil))
	session, _, err = svc.Authenticate(context.Background(), result.RawToken)
	require.NoError(t, err)
	assert.Nil(t, session.ActiveOrgID)
}
