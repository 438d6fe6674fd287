// Package businessflow contains the core business logic and use cases for contact workflows
package businessflow

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/repository"
)

// ContactFlow exposes read and export operations over scraped contacts
type ContactFlow interface {
	ListCampaignContacts(ctx context.Context, req *dto.ListCampaignContactsRequest) (*dto.ListCampaignContactsResponse, error)
	ExportContacts(ctx context.Context, req *dto.ExportContactsRequest) (*bytes.Buffer, string, error)
}

// ContactFlowImpl implements the contact business flow
type ContactFlowImpl struct {
	campaignRepo repository.CampaignRepository
	contactRepo  repository.ContactRepository
}

// NewContactFlow creates a new contact flow instance
func NewContactFlow(campaignRepo repository.CampaignRepository, contactRepo repository.ContactRepository) ContactFlow {
	return &ContactFlowImpl{campaignRepo: campaignRepo, contactRepo: contactRepo}
}

// ListCampaignContacts returns one page of a campaign's scraped contacts
func (s *ContactFlowImpl) ListCampaignContacts(ctx context.Context, req *dto.ListCampaignContactsRequest) (*dto.ListCampaignContactsResponse, error) {
	campaign, err := getCampaign(ctx, s.campaignRepo, req.UUID, req.UserID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}

	contacts, err := s.contactRepo.ListByCampaign(ctx, campaign.ID, limit, req.Offset)
	if err != nil {
		return nil, NewBusinessError("CONTACT_LIST_FAILED", "Failed to list contacts", err)
	}

	total, err := s.contactRepo.CountByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CONTACT_LIST_FAILED", "Failed to count contacts", err)
	}

	items := make([]dto.CampaignContactItem, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, dto.CampaignContactItem{
			UUID:         c.UUID.String(),
			ScreenName:   c.ScreenName,
			Name:         c.Name,
			Email:        nilIfEmpty(c.Email),
			Phone:        nilIfEmpty(c.Phone),
			BusinessName: nilIfEmpty(c.BusinessName),
			Status:       c.Status.String(),
			IsTeamLead:   c.IsTeamLead,
			ListingCount: len(c.Listings),
		})
	}

	return &dto.ListCampaignContactsResponse{Items: items, Total: int(total)}, nil
}

// ExportContacts renders every contact of a campaign into an xlsx workbook
func (s *ContactFlowImpl) ExportContacts(ctx context.Context, req *dto.ExportContactsRequest) (*bytes.Buffer, string, error) {
	campaign, err := getCampaign(ctx, s.campaignRepo, req.CampaignID, req.UserID)
	if err != nil {
		return nil, "", NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	contacts, err := s.contactRepo.ListByCampaign(ctx, campaign.ID, 0, 0)
	if err != nil {
		return nil, "", NewBusinessError("CONTACT_LIST_FAILED", "Failed to list contacts", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Contacts"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Screen Name", "Name", "Email", "Phone", "Cell", "Brokerage Phone", "Business Phone", "Business Name", "Profile URL", "Team Lead", "Status", "Listings", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", NewBusinessError("CONTACT_EXPORT_FAILED", "Failed to build export", err)
		}
	}

	for row, c := range contacts {
		values := []any{
			c.ScreenName, c.Name, c.Email, c.Phone, c.PhoneCell, c.PhoneBrokerage,
			c.PhoneBusiness, c.BusinessName, c.ProfileURL, c.IsTeamLead,
			c.Status.String(), len(c.Listings), c.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", NewBusinessError("CONTACT_EXPORT_FAILED", "Failed to build export", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", NewBusinessError("CONTACT_EXPORT_FAILED", "Failed to serialize export", err)
	}

	filename := fmt.Sprintf("contacts-%s.xlsx", campaign.UUID.String())
	return buf, filename, nil
}
