package businessflow

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/config"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/utils"
)

type generatorFixture struct {
	userID       uuid.UUID
	campaign     *models.Campaign
	campaignRepo *fakeCampaignRepo
	contactRepo  *fakeContactRepo
	outboxRepo   *fakeOutboxRepo
	scrape       *stubScrapeFlow
	flow         GeneratorFlow
}

func newGeneratorFixture(t *testing.T, senders []string) *generatorFixture {
	t.Helper()

	userID := uuid.New()
	body := &models.Template{ID: 1, UUID: uuid.New(), UserID: userID, Name: "Offer", Format: "html", Content: "<p>Hello {{name}}, I buy homes in {{city}}.</p>"}

	emails := make([]models.CampaignEmail, 0, len(senders))
	for _, addr := range senders {
		emails = append(emails, models.CampaignEmail{EmailAddress: addr, Provider: "smtp", UserID: userID})
	}

	campaignRepo := newFakeCampaignRepo()
	campaign := campaignRepo.add(&models.Campaign{
		UserID:       userID,
		Name:         "Austin Buyers",
		City:         "Austin",
		IsActive:     true,
		SubjectLines: pq.StringArray{"Quick question, {{name}}"},
		SenderName:   "Jordan",
		Emails:       emails,
		Templates: []models.CampaignTemplate{
			{TemplateID: body.ID, UserID: userID, TemplateType: models.TemplateTypeBody, Template: body},
		},
	})

	contactRepo := newFakeContactRepo()
	outboxRepo := newFakeOutboxRepo()
	scrape := &stubScrapeFlow{resp: &dto.ScrapeAgentsResponse{Success: true}}

	flow := NewGeneratorFlow(campaignRepo, contactRepo, outboxRepo, scrape, nil, config.PipelineConfig{GenerationBatchSize: 100})

	return &generatorFixture{
		userID:       userID,
		campaign:     campaign,
		campaignRepo: campaignRepo,
		contactRepo:  contactRepo,
		outboxRepo:   outboxRepo,
		scrape:       scrape,
		flow:         flow,
	}
}

func (f *generatorFixture) addContact(screenName, email string) *models.Contact {
	return f.contactRepo.add(&models.Contact{
		UserID:     f.userID,
		CampaignID: f.campaign.ID,
		ScreenName: screenName,
		Name:       "Agent " + screenName,
		Email:      email,
		Status:     models.ContactStatusPending,
	})
}

func (f *generatorFixture) process(t *testing.T) (*dto.ProcessCampaignResponse, error) {
	t.Helper()
	return f.flow.ProcessCampaign(context.Background(), &dto.ProcessCampaignRequest{
		CampaignID: f.campaign.UUID.String(),
		UserID:     f.userID,
	}, NewClientMetadata("127.0.0.1", "test"))
}

func TestProcessCampaignRoundRobinSenders(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test", "b@realty.test"})
	f.addContact("agent1", "one@example.com")
	f.addContact("agent2", "two@example.com")
	f.addContact("agent3", "three@example.com")

	resp, err := f.process(t)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Processed)
	assert.Equal(t, 3, resp.EmailsCreated)

	rows, err := f.outboxRepo.ListPending(context.Background(), f.userID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "a@realty.test", rows[0].FromEmail)
	assert.Equal(t, "b@realty.test", rows[1].FromEmail)
	assert.Equal(t, "a@realty.test", rows[2].FromEmail)
}

func TestProcessCampaignRendersMergeFields(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})
	f.addContact("agent1", "one@example.com")

	_, err := f.process(t)
	require.NoError(t, err)

	rows, err := f.outboxRepo.ListPending(context.Background(), f.userID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "one@example.com", row.ToEmail)
	assert.Equal(t, "Quick question, Agent agent1", row.Subject)
	assert.Equal(t, "<p>Hello Agent agent1, I buy homes in Austin.</p>", row.Body)
	assert.Equal(t, "smtp", row.Provider)
	assert.Equal(t, f.campaign.ID, row.CampaignID)
}

func TestProcessCampaignDefaultSubject(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})
	f.campaign.SubjectLines = nil
	f.addContact("agent1", "one@example.com")

	_, err := f.process(t)
	require.NoError(t, err)

	rows, _ := f.outboxRepo.ListPending(context.Background(), f.userID, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, utils.DefaultSubject, rows[0].Subject)
}

func TestProcessCampaignRendersAttachments(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})
	attachment := &models.Template{ID: 2, UUID: uuid.New(), UserID: f.userID, Name: "Disclosure", Format: "text", Content: "Prepared for {{name}} by {{sender_name}}"}
	f.campaign.Templates = append(f.campaign.Templates, models.CampaignTemplate{
		TemplateID: attachment.ID, UserID: f.userID, TemplateType: models.TemplateTypeAttachment, Template: attachment,
	})
	f.addContact("agent1", "one@example.com")

	_, err := f.process(t)
	require.NoError(t, err)

	rows, _ := f.outboxRepo.ListPending(context.Background(), f.userID, 0)
	require.Len(t, rows, 1)

	attachments, err := rows[0].DecodeAttachments()
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "Disclosure.txt", attachments[0].Filename)
	assert.Equal(t, "text/plain", attachments[0].ContentType)

	decoded, err := base64.StdEncoding.DecodeString(attachments[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "Prepared for Agent agent1 by Jordan", string(decoded))
}

func TestProcessCampaignContactWithoutEmailMarkedFailed(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})
	good := f.addContact("agent1", "one@example.com")
	bad := f.addContact("agent2", "")

	resp, err := f.process(t)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Processed)
	assert.Equal(t, 1, resp.EmailsCreated)

	goodRow, _ := f.contactRepo.ByID(context.Background(), good.ID)
	badRow, _ := f.contactRepo.ByID(context.Background(), bad.ID)
	assert.Equal(t, models.ContactStatusProcessed, goodRow.Status)
	assert.Equal(t, models.ContactStatusFailed, badRow.Status)
}

func TestProcessCampaignSecondRunIsNoOp(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})
	f.addContact("agent1", "one@example.com")

	first, err := f.process(t)
	require.NoError(t, err)
	require.Equal(t, 1, first.Processed)

	second, err := f.process(t)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 0, second.EmailsCreated)

	rows, _ := f.outboxRepo.ListPending(context.Background(), f.userID, 0)
	assert.Len(t, rows, 1)
}

func TestProcessCampaignInactiveCampaign(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})
	f.campaign.IsActive = false

	_, err := f.process(t)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCampaignNotActive))
}

func TestProcessCampaignRequiresSenderEmails(t *testing.T) {
	f := newGeneratorFixture(t, nil)

	_, err := f.process(t)
	require.Error(t, err)
	assert.True(t, IsNoSenderEmails(err))
}

func TestProcessCampaignRequiresBodyTemplate(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})
	f.campaign.Templates = nil

	_, err := f.process(t)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrCampaignBodyTemplateRequired))
}

func TestProcessCampaignBootstrapScrape(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})

	resp, err := f.process(t)
	require.NoError(t, err)
	assert.Equal(t, 1, f.scrape.calls)
	assert.Equal(t, 0, resp.Processed)
}

func TestProcessCampaignBootstrapSkippedWhenContactsExist(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})
	f.addContact("agent1", "one@example.com")

	_, err := f.process(t)
	require.NoError(t, err)
	assert.Equal(t, 0, f.scrape.calls)
}

func TestProcessCampaignBootstrapToleratesRateLimit(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})
	f.scrape.err = NewBusinessError("SCRAPE_RATE_LIMITED", "Upstream rate limit reached", ErrRateLimited)

	_, err := f.process(t)
	require.NoError(t, err)
	assert.Equal(t, 1, f.scrape.calls)
}

func TestProcessCampaignBootstrapHardFailureAborts(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})
	f.scrape.err = errors.New("provider down")

	_, err := f.process(t)
	require.Error(t, err)

	var bizErr *BusinessError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, "SCRAPE_BOOTSTRAP_FAILED", bizErr.Code)
}

func TestProcessCampaignUnknownCampaign(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})

	_, err := f.flow.ProcessCampaign(context.Background(), &dto.ProcessCampaignRequest{
		CampaignID: uuid.NewString(),
		UserID:     f.userID,
	}, NewClientMetadata("127.0.0.1", "test"))
	require.Error(t, err)
	assert.True(t, IsCampaignNotFound(err))
}

func TestProcessCampaignAccessDenied(t *testing.T) {
	f := newGeneratorFixture(t, []string{"a@realty.test"})

	_, err := f.flow.ProcessCampaign(context.Background(), &dto.ProcessCampaignRequest{
		CampaignID: f.campaign.UUID.String(),
		UserID:     uuid.New(),
	}, NewClientMetadata("127.0.0.1", "test"))
	require.Error(t, err)
	assert.True(t, IsCampaignAccessDenied(err))
}
