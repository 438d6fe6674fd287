// Package businessflow contains the core business logic and use cases for outreach workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Campaign-related errors
	ErrCampaignNotFound           = errors.New("campaign not found")
	ErrCampaignAccessDenied       = errors.New("campaign access denied")
	ErrCampaignNotEditable        = errors.New("campaign cannot be modified while active")
	ErrCampaignNotActive          = errors.New("campaign is not active")
	ErrCampaignNameRequired       = errors.New("campaign name is required")
	ErrCampaignLocationRequired   = errors.New("campaign location is required")
	ErrCampaignSendersRequired    = errors.New("at least one sender email is required")
	ErrCampaignUUIDRequired       = errors.New("campaign UUID is required")
	ErrCampaignUpdateRequired     = errors.New("at least one field must be provided for update")

	// Template-related errors
	ErrTemplateNotFound     = errors.New("template not found")
	ErrTemplateAccessDenied = errors.New("template access denied")
	ErrTemplateInUse        = errors.New("template is attached to a campaign")

	// Contact-related errors
	ErrContactNotFound   = errors.New("contact not found")
	ErrNoPendingContacts = errors.New("no pending contacts for campaign")

	// Scraper-related errors
	ErrSettingsNotFound = errors.New("upstream API settings not found")
	ErrRateLimited      = errors.New("upstream API rate limit reached")
	ErrNoAgentsFound    = errors.New("no agents found for location")

	// Dispatch-related errors
	ErrNoSenderEmails     = errors.New("campaign has no sender emails")
	ErrUnknownJobType     = errors.New("unknown job type")
	ErrJobNotFound        = errors.New("job not found")
	ErrOutboxEmailClaimed = errors.New("outbox email already claimed")
	ErrLockBusy           = errors.New("another worker holds the lock")
	ErrCacheNotAvailable  = errors.New("cache not available")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied)
}

func IsCampaignNotEditable(err error) bool {
	return errors.Is(err, ErrCampaignNotEditable)
}

func IsCampaignUUIDRequired(err error) bool {
	return errors.Is(err, ErrCampaignUUIDRequired)
}

func IsCampaignUpdateRequired(err error) bool {
	return errors.Is(err, ErrCampaignUpdateRequired)
}

func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

func IsTemplateAccessDenied(err error) bool {
	return errors.Is(err, ErrTemplateAccessDenied)
}

func IsTemplateInUse(err error) bool {
	return errors.Is(err, ErrTemplateInUse)
}

func IsContactNotFound(err error) bool {
	return errors.Is(err, ErrContactNotFound)
}

func IsNoPendingContacts(err error) bool {
	return errors.Is(err, ErrNoPendingContacts)
}

func IsSettingsNotFound(err error) bool {
	return errors.Is(err, ErrSettingsNotFound)
}

func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

func IsNoSenderEmails(err error) bool {
	return errors.Is(err, ErrNoSenderEmails)
}

func IsUnknownJobType(err error) bool {
	return errors.Is(err, ErrUnknownJobType)
}

func IsLockBusy(err error) bool {
	return errors.Is(err, ErrLockBusy)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}
