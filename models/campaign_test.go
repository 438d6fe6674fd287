package models

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCampaign() *Campaign {
	return &Campaign{
		Name:         "Austin Buyers",
		City:         "Austin",
		SubjectLines: pq.StringArray{"Quick question"},
		Emails:       []CampaignEmail{{EmailAddress: "a@realty.test"}},
		Templates: []CampaignTemplate{
			{TemplateType: TemplateTypeBody},
		},
	}
}

func TestCampaignValidate(t *testing.T) {
	require.NoError(t, validCampaign().Validate())
}

func TestCampaignValidateRequiresCity(t *testing.T) {
	c := validCampaign()
	c.City = ""
	assert.ErrorIs(t, c.Validate(), ErrCampaignCityRequired)
}

func TestCampaignValidateRequiresSubjectLines(t *testing.T) {
	c := validCampaign()
	c.SubjectLines = nil
	assert.ErrorIs(t, c.Validate(), ErrCampaignSubjectLinesRequired)
}

func TestCampaignValidateRequiresSenderEmail(t *testing.T) {
	c := validCampaign()
	c.Emails = nil
	assert.ErrorIs(t, c.Validate(), ErrCampaignSenderEmailRequired)
}

func TestCampaignValidateRequiresExactlyOneBodyTemplate(t *testing.T) {
	c := validCampaign()
	c.Templates = nil
	assert.ErrorIs(t, c.Validate(), ErrCampaignBodyTemplateRequired)

	c = validCampaign()
	c.Templates = append(c.Templates, CampaignTemplate{TemplateType: TemplateTypeBody})
	assert.ErrorIs(t, c.Validate(), ErrCampaignBodyTemplateRequired)

	// Attachment templates do not count against the body rule.
	c = validCampaign()
	c.Templates = append(c.Templates, CampaignTemplate{TemplateType: TemplateTypeAttachment})
	assert.NoError(t, c.Validate())
}

func TestCampaignIsEditable(t *testing.T) {
	c := validCampaign()
	assert.True(t, c.IsEditable())
	c.IsActive = true
	assert.False(t, c.IsEditable())
}

func TestCampaignMergeFields(t *testing.T) {
	c := &Campaign{
		City:          "Austin",
		SenderName:    "Jordan",
		DaysTillClose: "30",
		EMD:           "1000",
	}
	fields := c.MergeFields()
	assert.Equal(t, "Austin", fields["city"])
	assert.Equal(t, "Jordan", fields["sender_name"])
	assert.Equal(t, "30", fields["days_till_close"])
	assert.Equal(t, "1000", fields["emd"])
}

func TestCampaignBeforeCreate(t *testing.T) {
	c := &Campaign{Name: "N", City: "Austin"}
	require.NoError(t, c.BeforeCreate())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", c.UUID.String())
	assert.False(t, c.CreatedAt.IsZero())
}
