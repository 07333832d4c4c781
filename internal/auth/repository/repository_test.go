package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seb-lewis/startupcrm/internal/auth/domain"
	"github.com/seb-lewis/startupcrm/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountActiveSessions(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	_, sessions := New(conn)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := node.Generate()

	newSession := func(expiresAt time.Time) *domain.Session {
		return &domain.Session{
			ID:               node.Generate(),
			UserID:           userID,
			SessionTokenHash: node.Generate().String(),
			ExpiresAt:        expiresAt,
			CreatedAt:        now,
			LastSeenAt:       now,
		}
	}

	live := newSession(now.Add(time.Hour))
	expired := newSession(now.Add(-time.Hour))
	revoked := newSession(now.Add(time.Hour))
	for _, s := range []*domain.Session{live, expired, revoked} {
		require.NoError(t, sessions.CreateSession(context.Background(), s))
	}
	require.NoError(t, sessions.RevokeSession(context.Background(), revoked.ID, now))

	count, err := sessions.CountActiveSessions(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, sessions.RevokeSession(context.Background(), live.ID, now))

	count, err = sessions.CountActiveSessions(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
