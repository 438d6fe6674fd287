package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtyreach/realtyreach/models"
)

func TestEmailSenderRegistry(t *testing.T) {
	registry := NewEmailSenderRegistry()
	mock := NewMockEmailSender()
	registry.Register("mock", mock)

	sender, err := registry.Resolve("mock")
	require.NoError(t, err)
	assert.Same(t, EmailSender(mock), sender)

	_, err = registry.Resolve("carrier-pigeon")
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestMockEmailSenderFailFor(t *testing.T) {
	mock := NewMockEmailSender()
	mock.FailFor["bounce@example.com"] = errors.New("mailbox full")

	ctx := context.Background()

	id, err := mock.Send(ctx, EmailMessage{From: "me@example.com", To: "ok@example.com", Subject: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "mock-1", id)

	_, err = mock.Send(ctx, EmailMessage{From: "me@example.com", To: "bounce@example.com", Subject: "Hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailbox full")

	require.Len(t, mock.SentMessages, 1)
	assert.Equal(t, "ok@example.com", mock.SentMessages[0].Message.To)
	assert.False(t, mock.SentMessages[0].SentAt.IsZero())
}

func TestBuildMIMEMessage(t *testing.T) {
	raw, err := buildMIMEMessage(EmailMessage{
		From:      "jordan@example.com",
		To:        "agent@example.com",
		Subject:   "Quick question",
		HTMLBody:  "<p>Hello</p>",
		ReplyToID: "<abc@example.com>",
		Attachments: []models.EmailAttachment{
			{Filename: "offer.txt", ContentType: "text/plain", Content: "aGVsbG8="},
		},
	})
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, "From: jordan@example.com\r\n")
	assert.Contains(t, body, "To: agent@example.com\r\n")
	assert.Contains(t, body, "Subject: Quick question\r\n")
	assert.Contains(t, body, "In-Reply-To: <abc@example.com>\r\n")
	assert.Contains(t, body, "Content-Type: multipart/mixed")
	assert.Contains(t, body, "<p>Hello</p>")
	assert.Contains(t, body, `Content-Disposition: attachment; filename="offer.txt"`)
	assert.Contains(t, body, "aGVsbG8=")
}

func TestBuildMIMEMessageEncodesPlainAttachmentContent(t *testing.T) {
	raw, err := buildMIMEMessage(EmailMessage{
		From:     "jordan@example.com",
		To:       "agent@example.com",
		Subject:  "Docs",
		HTMLBody: "<p>Attached</p>",
		Attachments: []models.EmailAttachment{
			{Filename: "note.txt", Content: "not base64 !!"},
		},
	})
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, "Content-Type: application/octet-stream")
	assert.NotContains(t, body, "not base64 !!")
}
