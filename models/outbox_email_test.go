package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxStatusTransitions(t *testing.T) {
	assert.True(t, OutboxStatusPending.CanTransitionTo(OutboxStatusSending))
	assert.False(t, OutboxStatusPending.CanTransitionTo(OutboxStatusFailed))

	assert.True(t, OutboxStatusSending.CanTransitionTo(OutboxStatusFailed))
	assert.True(t, OutboxStatusSending.CanTransitionTo(OutboxStatusPending), "stale reconciler requeues sending rows")

	assert.False(t, OutboxStatusFailed.CanTransitionTo(OutboxStatusPending))
	assert.False(t, OutboxStatusFailed.CanTransitionTo(OutboxStatusSending))
}

func TestOutboxEmailBeforeCreateDefaults(t *testing.T) {
	e := &OutboxEmail{}
	require.NoError(t, e.BeforeCreate())
	assert.Equal(t, OutboxStatusPending, e.Status)
	assert.Equal(t, "smtp", e.Provider)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestDecodeAttachments(t *testing.T) {
	raw, err := json.Marshal([]EmailAttachment{
		{Filename: "offer.txt", ContentType: "text/plain", Content: "aGVsbG8="},
	})
	require.NoError(t, err)

	e := &OutboxEmail{Attachments: raw}
	attachments, err := e.DecodeAttachments()
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "offer.txt", attachments[0].Filename)

	empty := &OutboxEmail{}
	attachments, err = empty.DecodeAttachments()
	require.NoError(t, err)
	assert.Nil(t, attachments)

	bad := &OutboxEmail{Attachments: json.RawMessage(`{oops`)}
	_, err = bad.DecodeAttachments()
	assert.Error(t, err)
}

func TestJobStatusTransitions(t *testing.T) {
	assert.True(t, JobStatusPending.CanTransitionTo(JobStatusProcessing))
	assert.True(t, JobStatusProcessing.CanTransitionTo(JobStatusCompleted))
	assert.True(t, JobStatusProcessing.CanTransitionTo(JobStatusFailed))
	assert.True(t, JobStatusProcessing.CanTransitionTo(JobStatusPending), "stale reconciler requeues processing jobs")

	assert.False(t, JobStatusCompleted.CanTransitionTo(JobStatusPending))
	assert.False(t, JobStatusFailed.CanTransitionTo(JobStatusProcessing))
}

func TestJobTypeValid(t *testing.T) {
	assert.True(t, JobTypeScrapeAgents.Valid())
	assert.True(t, JobTypeProcessCampaign.Valid())
	assert.True(t, JobTypeProcessOutbox.Valid())
	assert.False(t, JobType("resize_images").Valid())
}
