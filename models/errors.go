package models

import "errors"

// Campaign activation preconditions
var (
	ErrCampaignCityRequired         = errors.New("campaign target location is required")
	ErrCampaignSubjectLinesRequired = errors.New("campaign must have at least one subject line")
	ErrCampaignSenderEmailRequired  = errors.New("campaign must have at least one sender email")
	ErrCampaignBodyTemplateRequired = errors.New("campaign must have exactly one body template")
)
