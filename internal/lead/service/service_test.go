package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/seb-lewis/startupcrm/internal/account/domain"
	accountrepo "github.com/seb-lewis/startupcrm/internal/account/repository"
	authdomain "github.com/seb-lewis/startupcrm/internal/auth/domain"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/clock"
	"github.com/seb-lewis/startupcrm/internal/config"
	contactdomain "github.com/seb-lewis/startupcrm/internal/contact/domain"
	contactrepo "github.com/seb-lewis/startupcrm/internal/contact/repository"
	"github.com/seb-lewis/startupcrm/internal/lead/domain"
	"github.com/seb-lewis/startupcrm/internal/lead/repository"
	opportunitydomain "github.com/seb-lewis/startupcrm/internal/opportunity/domain"
	opportunityrepo "github.com/seb-lewis/startupcrm/internal/opportunity/repository"
	"github.com/seb-lewis/startupcrm/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupLeadTest(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Lead{},
		&accountdomain.Account{},
		&contactdomain.Contact{},
		&opportunitydomain.Opportunity{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:              conn,
		Log:             zap.NewNop(),
		GenID:           node,
		Clock:           clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:            repository.Provide(),
		AccountRepo:     accountrepo.Provide(),
		ContactRepo:     contactrepo.Provide(),
		OpportunityRepo: opportunityrepo.Provide(),
		Pipeline:        config.NewStaticPipelineConfigHolder(config.DefaultPipelineConfig()),
	})

	return svc, conn, node
}

func orgContext(orgID snowflake.ID) context.Context {
	identity := authctx.Authenticated(
		&authdomain.User{ID: snowflake.ID(200), Email: "alice@example.com", IsActive: true},
		&authdomain.Session{ID: snowflake.ID(300), UserID: snowflake.ID(200)},
	).WithOrg(&authctx.OrgRef{ID: orgID, Name: "Acme", Slug: "acme"})
	return authctx.WithIdentity(context.Background(), identity)
}

func strPtr(s string) *string { return &s }

func TestConvertCreatesAccountContactAndOpportunity(t *testing.T) {
	svc, conn, node := setupLeadTest(t)
	ctx := orgContext(node.Generate())

	lead, err := svc.Create(ctx, domain.CreateRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Company:   strPtr("Doe Industries"),
		Email:     strPtr("jane@doe.example"),
	})
	require.NoError(t, err)

	result, err := svc.Convert(ctx, domain.ConvertRequest{
		ID:          lead.ID,
		AmountCents: 250000,
		Currency:    "eur",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.AccountID)
	assert.NotEmpty(t, result.ContactID)
	assert.NotEmpty(t, result.OpportunityID)
	require.NotNil(t, result.Lead.ConvertedAt)

	var account accountdomain.Account
	require.NoError(t, conn.First(&account).Error)
	assert.Equal(t, "Doe Industries", account.Name)

	var contact contactdomain.Contact
	require.NoError(t, conn.First(&contact).Error)
	require.NotNil(t, contact.AccountID)
	assert.Equal(t, account.ID, *contact.AccountID)
	assert.Equal(t, "Jane", contact.FirstName)

	var opportunity opportunitydomain.Opportunity
	require.NoError(t, conn.First(&opportunity).Error)
	assert.Equal(t, "PROSPECTING", opportunity.Stage)
	assert.Equal(t, 10, opportunity.Probability)
	assert.Equal(t, int64(250000), opportunity.AmountCents)
	assert.Equal(t, "EUR", opportunity.Currency)
}

func TestConvertTwiceIsRejected(t *testing.T) {
	svc, _, node := setupLeadTest(t)
	ctx := orgContext(node.Generate())

	lead, err := svc.Create(ctx, domain.CreateRequest{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)

	_, err = svc.Convert(ctx, domain.ConvertRequest{ID: lead.ID})
	require.NoError(t, err)

	_, err = svc.Convert(ctx, domain.ConvertRequest{ID: lead.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyConverted)

	_, err = svc.Update(ctx, domain.UpdateRequest{ID: lead.ID, FirstName: strPtr("Janet")})
	assert.ErrorIs(t, err, domain.ErrAlreadyConverted)
}

func TestConvertFallsBackToContactNameForAccount(t *testing.T) {
	svc, conn, node := setupLeadTest(t)
	ctx := orgContext(node.Generate())

	lead, err := svc.Create(ctx, domain.CreateRequest{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)

	_, err = svc.Convert(ctx, domain.ConvertRequest{ID: lead.ID})
	require.NoError(t, err)

	var account accountdomain.Account
	require.NoError(t, conn.First(&account).Error)
	assert.Equal(t, "Jane Doe", account.Name)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc, _, node := setupLeadTest(t)
	ctx := orgContext(node.Generate())

	_, err := svc.Create(ctx, domain.CreateRequest{FirstName: "Jane", Status: "FROZEN"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestLeadsRequireOrganizationContext(t *testing.T) {
	svc, _, _ := setupLeadTest(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{FirstName: "Jane"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestLeadsAreScopedToOrganization(t *testing.T) {
	svc, _, node := setupLeadTest(t)

	lead, err := svc.Create(orgContext(node.Generate()), domain.CreateRequest{FirstName: "Jane"})
	require.NoError(t, err)

	_, err = svc.Get(orgContext(node.Generate()), lead.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
