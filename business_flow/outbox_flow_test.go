package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/app/services"
	"github.com/realtyreach/realtyreach/config"
	"github.com/realtyreach/realtyreach/models"
)

type outboxFixture struct {
	userID     uuid.UUID
	outboxRepo *fakeOutboxRepo
	sentRepo   *fakeSentRepo
	mock       *services.MockEmailSender
	flow       OutboxFlow
}

func newOutboxFixture(t *testing.T) *outboxFixture {
	t.Helper()

	mock := services.NewMockEmailSender()
	registry := services.NewEmailSenderRegistry()
	registry.Register("mock", mock)

	outboxRepo := newFakeOutboxRepo()
	sentRepo := newFakeSentRepo()

	flow := NewOutboxFlow(outboxRepo, sentRepo, registry, nil, nil,
		config.EmailConfig{DefaultProvider: "mock"},
		config.PipelineConfig{DispatchBatchSize: 50})

	return &outboxFixture{
		userID:     uuid.New(),
		outboxRepo: outboxRepo,
		sentRepo:   sentRepo,
		mock:       mock,
		flow:       flow,
	}
}

func (f *outboxFixture) queue(to string) *models.OutboxEmail {
	return f.outboxRepo.add(&models.OutboxEmail{
		UserID:     f.userID,
		CampaignID: 1,
		ContactID:  1,
		FromEmail:  "a@realty.test",
		ToEmail:    to,
		Subject:    "Quick question",
		Body:       "<p>Hello</p>",
		Provider:   "mock",
		Status:     models.OutboxStatusPending,
	})
}

func (f *outboxFixture) process(t *testing.T, limit int) (*dto.ProcessOutboxResponse, error) {
	t.Helper()
	return f.flow.ProcessOutbox(context.Background(), &dto.ProcessOutboxRequest{
		UserID: f.userID,
		Limit:  limit,
	}, NewClientMetadata("127.0.0.1", "test"))
}

func TestProcessOutboxMovesRowsToSentArchive(t *testing.T) {
	f := newOutboxFixture(t)
	f.queue("one@example.com")
	f.queue("two@example.com")

	resp, err := f.process(t, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Processed)
	assert.Equal(t, 2, resp.Successful)
	assert.Equal(t, 0, resp.Failed)

	// A dispatched email lives in exactly one of the two tables.
	pending, _ := f.outboxRepo.ListPending(context.Background(), f.userID, 0)
	assert.Empty(t, pending)

	sent, err := f.sentRepo.ListByCampaign(context.Background(), 1, 0, 0)
	require.NoError(t, err)
	require.Len(t, sent, 2)
	assert.NotEmpty(t, sent[0].MessageID)
	assert.Equal(t, "mock", sent[0].Provider)
	assert.False(t, sent[0].SentAt.IsZero())

	require.Len(t, f.mock.SentMessages, 2)
	assert.Equal(t, "one@example.com", f.mock.SentMessages[0].Message.To)
}

func TestProcessOutboxFailureKeepsRow(t *testing.T) {
	f := newOutboxFixture(t)
	row := f.queue("one@example.com")
	f.mock.FailWith = errors.New("smtp 550")

	resp, err := f.process(t, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Processed)
	assert.Equal(t, 0, resp.Successful)
	assert.Equal(t, 1, resp.Failed)

	stored, _ := f.outboxRepo.ByID(context.Background(), row.ID)
	require.NotNil(t, stored)
	assert.Equal(t, models.OutboxStatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "smtp 550")

	sent, _ := f.sentRepo.CountByCampaign(context.Background(), 1)
	assert.Zero(t, sent)
}

func TestProcessOutboxFailedRowsNotRetried(t *testing.T) {
	f := newOutboxFixture(t)
	f.queue("one@example.com")
	f.mock.FailWith = errors.New("smtp 550")

	_, err := f.process(t, 0)
	require.NoError(t, err)

	f.mock.FailWith = nil
	resp, err := f.process(t, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Processed)
	assert.Empty(t, f.mock.SentMessages)
}

func TestProcessOutboxSkipsClaimedRows(t *testing.T) {
	f := newOutboxFixture(t)
	claimed := f.queue("one@example.com")
	claimed.Status = models.OutboxStatusSending
	f.queue("two@example.com")

	resp, err := f.process(t, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Processed)
	assert.Equal(t, 1, resp.Successful)
}

func TestProcessOutboxHonorsLimit(t *testing.T) {
	f := newOutboxFixture(t)
	f.queue("one@example.com")
	f.queue("two@example.com")
	f.queue("three@example.com")

	resp, err := f.process(t, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Processed)

	pending, _ := f.outboxRepo.ListPending(context.Background(), f.userID, 0)
	assert.Len(t, pending, 1)
}

func TestProcessOutboxScopedToUser(t *testing.T) {
	f := newOutboxFixture(t)
	f.queue("one@example.com")
	f.outboxRepo.add(&models.OutboxEmail{
		UserID:    uuid.New(),
		ToEmail:   "other@example.com",
		FromEmail: "a@realty.test",
		Subject:   "s",
		Body:      "b",
		Provider:  "mock",
		Status:    models.OutboxStatusPending,
	})

	resp, err := f.process(t, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Processed)
	require.Len(t, f.mock.SentMessages, 1)
	assert.Equal(t, "one@example.com", f.mock.SentMessages[0].Message.To)
}

func TestProcessOutboxUnknownProviderFailsRow(t *testing.T) {
	f := newOutboxFixture(t)
	row := f.queue("one@example.com")
	row.Provider = "ses"

	resp, err := f.process(t, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Failed)

	stored, _ := f.outboxRepo.ByID(context.Background(), row.ID)
	assert.Equal(t, models.OutboxStatusFailed, stored.Status)
}

func TestProcessOutboxDeliversAttachments(t *testing.T) {
	f := newOutboxFixture(t)
	row := f.queue("one@example.com")
	raw, err := json.Marshal([]models.EmailAttachment{
		{Filename: "offer.txt", ContentType: "text/plain", Content: "aGVsbG8="},
	})
	require.NoError(t, err)
	row.Attachments = raw

	_, err = f.process(t, 0)
	require.NoError(t, err)

	require.Len(t, f.mock.SentMessages, 1)
	attachments := f.mock.SentMessages[0].Message.Attachments
	require.Len(t, attachments, 1)
	assert.Equal(t, "offer.txt", attachments[0].Filename)
}

func TestSendEmailDirect(t *testing.T) {
	f := newOutboxFixture(t)

	resp, err := f.flow.SendEmail(context.Background(), &dto.SendEmailRequest{
		UserID:  f.userID,
		From:    "a@realty.test",
		To:      "one@example.com",
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
	}, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.MessageID)
	require.Len(t, f.mock.SentMessages, 1)
	assert.Equal(t, "Hello", f.mock.SentMessages[0].Message.Subject)
}

func TestSendEmailUnknownProvider(t *testing.T) {
	f := newOutboxFixture(t)
	provider := "ses"

	_, err := f.flow.SendEmail(context.Background(), &dto.SendEmailRequest{
		UserID:   f.userID,
		From:     "a@realty.test",
		To:       "one@example.com",
		Subject:  "Hello",
		HTML:     "<p>Hi</p>",
		Provider: &provider,
	}, NewClientMetadata("127.0.0.1", "test"))
	require.Error(t, err)

	var bizErr *BusinessError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, "EMAIL_PROVIDER_UNKNOWN", bizErr.Code)
}
