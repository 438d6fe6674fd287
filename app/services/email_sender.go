package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/realtyreach/realtyreach/config"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/utils"
)

// Email sending error constants
var (
	ErrUnknownProvider = errors.New("unknown email provider")
)

// EmailMessage is a fully rendered email ready for a provider
type EmailMessage struct {
	From        string
	To          string
	Subject     string
	HTMLBody    string
	ReplyToID   string
	Attachments []models.EmailAttachment
}

// EmailSender delivers one email and returns the provider message ID
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (messageID string, err error)
}

// EmailSenderRegistry maps provider tags to senders
type EmailSenderRegistry struct {
	senders map[string]EmailSender
}

// NewEmailSenderRegistry creates an empty registry
func NewEmailSenderRegistry() *EmailSenderRegistry {
	return &EmailSenderRegistry{
		senders: make(map[string]EmailSender),
	}
}

// Register binds a sender to a provider tag
func (r *EmailSenderRegistry) Register(provider string, sender EmailSender) {
	r.senders[provider] = sender
}

// Resolve returns the sender for a provider tag
func (r *EmailSenderRegistry) Resolve(provider string) (EmailSender, error) {
	sender, ok := r.senders[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return sender, nil
}

// SESEmailSender delivers email through AWS SES
type SESEmailSender struct {
	client *ses.Client
}

// NewSESEmailSender creates an SES-backed sender
func NewSESEmailSender(ctx context.Context, region string) (*SESEmailSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESEmailSender{client: ses.NewFromConfig(awsCfg)}, nil
}

// Send delivers the message via the SES SendEmail API. Attachments require
// SendRawEmail; messages carrying them fall back to the raw MIME path.
func (s *SESEmailSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	if len(msg.Attachments) > 0 {
		return s.sendRaw(ctx, msg)
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.HTMLBody)},
			},
		},
		Source: aws.String(msg.From),
	})
	if err != nil {
		return "", fmt.Errorf("SES send failed: %w", err)
	}

	return aws.ToString(out.MessageId), nil
}

func (s *SESEmailSender) sendRaw(ctx context.Context, msg EmailMessage) (string, error) {
	raw, err := buildMIMEMessage(msg)
	if err != nil {
		return "", err
	}

	out, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: raw},
		Source:       aws.String(msg.From),
		Destinations: []string{msg.To},
	})
	if err != nil {
		return "", fmt.Errorf("SES raw send failed: %w", err)
	}

	return aws.ToString(out.MessageId), nil
}

// SMTPEmailSender delivers email through a plain SMTP relay
type SMTPEmailSender struct {
	cfg *config.SMTPConfig
}

// NewSMTPEmailSender creates an SMTP-backed sender
func NewSMTPEmailSender(cfg *config.SMTPConfig) *SMTPEmailSender {
	return &SMTPEmailSender{cfg: cfg}
}

// Send delivers the message over SMTP with a multipart MIME body
func (s *SMTPEmailSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	raw, err := buildMIMEMessage(msg)
	if err != nil {
		return "", err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	// net/smtp has no context support; honor cancellation before dialing
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if err := smtp.SendMail(addr, auth, msg.From, []string{msg.To}, raw); err != nil {
		return "", fmt.Errorf("SMTP send failed: %w", err)
	}

	return fmt.Sprintf("smtp-%d", utils.UTCNowUnixNano()), nil
}

// buildMIMEMessage renders a multipart MIME message with an HTML part and
// base64 attachment parts
func buildMIMEMessage(msg EmailMessage) ([]byte, error) {
	boundary := fmt.Sprintf("part-%d", utils.UTCNowUnixNano())

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	if msg.ReplyToID != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\r\n", msg.ReplyToID)
		fmt.Fprintf(&b, "References: %s\r\n", msg.ReplyToID)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")

	for _, att := range msg.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		// Attachment content arrives base64 from the outbox row; keep it as-is
		content := att.Content
		if _, err := base64.StdEncoding.DecodeString(content); err != nil {
			content = base64.StdEncoding.EncodeToString([]byte(att.Content))
		}

		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s; name=%q\r\n", contentType, att.Filename)
		fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n", att.Filename)
		b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
		b.WriteString(content)
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String()), nil
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	SentMessages []MockEmailRecord
	FailWith     error
	// FailFor makes sends to these recipients fail while others succeed
	FailFor map[string]error
}

// MockEmailRecord captures one mock delivery
type MockEmailRecord struct {
	Message EmailMessage
	SentAt  time.Time
}

// NewMockEmailSender creates a new mock email sender
func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{
		SentMessages: make([]MockEmailRecord, 0),
		FailFor:      make(map[string]error),
	}
}

// Send records the message instead of delivering it
func (m *MockEmailSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	if m.FailWith != nil {
		return "", m.FailWith
	}
	if err, ok := m.FailFor[msg.To]; ok {
		return "", err
	}
	m.SentMessages = append(m.SentMessages, MockEmailRecord{
		Message: msg,
		SentAt:  utils.UTCNow(),
	})
	return fmt.Sprintf("mock-%d", len(m.SentMessages)), nil
}
