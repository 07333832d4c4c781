package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/seb-lewis/startupcrm/internal/auth/domain"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/clock"
	"github.com/seb-lewis/startupcrm/internal/config"
	"github.com/seb-lewis/startupcrm/internal/opportunity/domain"
	"github.com/seb-lewis/startupcrm/internal/opportunity/repository"
	"github.com/seb-lewis/startupcrm/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupOpportunityTest(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Opportunity{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:     repository.Provide(),
		Pipeline: config.NewStaticPipelineConfigHolder(config.DefaultPipelineConfig()),
	})

	return svc, node
}

func opportunityOrgContext(orgID snowflake.ID) context.Context {
	identity := authctx.Authenticated(
		&authdomain.User{ID: snowflake.ID(200), Email: "alice@example.com", IsActive: true},
		&authdomain.Session{ID: snowflake.ID(300), UserID: snowflake.ID(200)},
	).WithOrg(&authctx.OrgRef{ID: orgID, Name: "Acme", Slug: "acme"})
	return authctx.WithIdentity(context.Background(), identity)
}

func TestCreateDefaultsToOpeningStage(t *testing.T) {
	svc, node := setupOpportunityTest(t)
	ctx := opportunityOrgContext(node.Generate())

	resp, err := svc.Create(ctx, domain.CreateRequest{
		Name:        "Expansion deal",
		AmountCents: 100000,
	})
	require.NoError(t, err)
	assert.Equal(t, "PROSPECTING", resp.Stage)
	assert.Equal(t, 10, resp.Probability)
	assert.Equal(t, "USD", resp.Currency)
	assert.False(t, resp.Won)
	assert.False(t, resp.Lost)
}

func TestCreateRejectsUnknownStage(t *testing.T) {
	svc, node := setupOpportunityTest(t)
	ctx := opportunityOrgContext(node.Generate())

	_, err := svc.Create(ctx, domain.CreateRequest{
		Name:  "Expansion deal",
		Stage: "DAYDREAMING",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
}

func TestMoveStageStampsProbability(t *testing.T) {
	svc, node := setupOpportunityTest(t)
	ctx := opportunityOrgContext(node.Generate())

	resp, err := svc.Create(ctx, domain.CreateRequest{Name: "Expansion deal"})
	require.NoError(t, err)

	moved, err := svc.MoveStage(ctx, resp.ID, "NEGOTIATION")
	require.NoError(t, err)
	assert.Equal(t, "NEGOTIATION", moved.Stage)
	assert.Equal(t, 75, moved.Probability)
}

func TestMoveStageFromClosedIsRejected(t *testing.T) {
	svc, node := setupOpportunityTest(t)
	ctx := opportunityOrgContext(node.Generate())

	resp, err := svc.Create(ctx, domain.CreateRequest{Name: "Expansion deal"})
	require.NoError(t, err)

	won, err := svc.MoveStage(ctx, resp.ID, "CLOSED_WON")
	require.NoError(t, err)
	assert.True(t, won.Won)
	assert.Equal(t, 100, won.Probability)

	_, err = svc.MoveStage(ctx, resp.ID, "PROSPECTING")
	assert.ErrorIs(t, err, domain.ErrClosedStage)
}
