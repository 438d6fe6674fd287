// Package businessflow contains the core business logic and use cases for agent scraping workflows
package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/app/services"
	"github.com/realtyreach/realtyreach/config"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/repository"
	"github.com/realtyreach/realtyreach/utils"
)

// ScrapeFlow handles the agent scraping business logic
type ScrapeFlow interface {
	ScrapeAgents(ctx context.Context, req *dto.ScrapeAgentsRequest, metadata *ClientMetadata) (*dto.ScrapeAgentsResponse, error)
	FetchAgentDetails(ctx context.Context, req *dto.FetchAgentDetailsRequest) (*dto.FetchAgentDetailsResponse, error)
}

// ScrapeFlowImpl implements the agent scraping business flow
type ScrapeFlowImpl struct {
	campaignRepo repository.CampaignRepository
	contactRepo  repository.ContactRepository
	listingRepo  repository.ListingRepository
	settingsRepo repository.RapidAPISettingsRepository
	client       services.AgentSearchClient
	rc           *redis.Client
	scraperCfg   config.ScraperConfig
}

// NewScrapeFlow creates a new scrape flow instance
func NewScrapeFlow(
	campaignRepo repository.CampaignRepository,
	contactRepo repository.ContactRepository,
	listingRepo repository.ListingRepository,
	settingsRepo repository.RapidAPISettingsRepository,
	client services.AgentSearchClient,
	rc *redis.Client,
	scraperCfg config.ScraperConfig,
) ScrapeFlow {
	return &ScrapeFlowImpl{
		campaignRepo: campaignRepo,
		contactRepo:  contactRepo,
		listingRepo:  listingRepo,
		settingsRepo: settingsRepo,
		client:       client,
		rc:           rc,
		scraperCfg:   scraperCfg,
	}
}

// scrapeCounters accumulates progress across pages so a rate-limited run can
// still report what it stored.
type scrapeCounters struct {
	totalAgents   int
	contactsSaved int
	listingsSaved int
}

func (c scrapeCounters) toResponse(success bool) *dto.ScrapeAgentsResponse {
	return &dto.ScrapeAgentsResponse{
		Success:       success,
		TotalAgents:   c.totalAgents,
		ContactsSaved: c.contactsSaved,
		ListingsSaved: c.listingsSaved,
	}
}

// ScrapeAgents walks the agent search result pages for the campaign's
// location, fetching each agent's profile and active listings. The run stops
// at the first empty page, the configured page ceiling, the contact cap, or
// an upstream 429. A 429 is reported alongside the counts accumulated so far.
func (s *ScrapeFlowImpl) ScrapeAgents(ctx context.Context, req *dto.ScrapeAgentsRequest, metadata *ClientMetadata) (*dto.ScrapeAgentsResponse, error) {
	campaign, err := getCampaign(ctx, s.campaignRepo, req.CampaignID, req.UserID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	creds, err := loadCredentials(ctx, s.settingsRepo, s.rc, req.UserID)
	if err != nil {
		return nil, NewBusinessError("SETTINGS_LOOKUP_FAILED", "Failed to load scraper credentials", err)
	}

	release, err := acquireLock(ctx, s.rc, utils.ScrapeLockKeyPrefix+campaign.UUID.String(), utils.ScrapeLockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	maxPages := s.scraperCfg.MaxPages
	if creds.MaxPages > 0 {
		maxPages = creds.MaxPages
	}
	maxContacts := s.scraperCfg.MaxContacts
	if maxContacts <= 0 {
		maxContacts = utils.MaxContactsPerScrape
	}

	apiCreds := services.AgentCredentials{APIKey: creds.APIKey, APIHost: creds.APIHost}

	var counters scrapeCounters
	for page := 1; page <= maxPages; page++ {
		if page > 1 {
			if err := sleepCtx(ctx, s.scraperCfg.PageDelay); err != nil {
				return counters.toResponse(false), err
			}
		}

		result, err := s.client.SearchAgents(ctx, apiCreds, campaign.City, page)
		if err != nil {
			if errors.Is(err, services.ErrRateLimited) {
				return counters.toResponse(false), NewBusinessError("SCRAPE_RATE_LIMITED", "Upstream rate limit reached", ErrRateLimited)
			}
			return counters.toResponse(false), NewBusinessError("SCRAPE_SEARCH_FAILED", "Agent search failed", err)
		}

		if len(result.Agents) == 0 {
			break
		}
		counters.totalAgents += len(result.Agents)

		for _, agent := range result.Agents {
			if counters.contactsSaved >= maxContacts {
				return counters.toResponse(true), nil
			}

			if err := s.processAgent(ctx, campaign, apiCreds, agent.Username, true, &counters); err != nil {
				if errors.Is(err, services.ErrRateLimited) {
					return counters.toResponse(false), NewBusinessError("SCRAPE_RATE_LIMITED", "Upstream rate limit reached", ErrRateLimited)
				}
				return counters.toResponse(false), err
			}
		}
	}

	return counters.toResponse(true), nil
}

// processAgent fetches one agent's profile, stores the contact and its
// listings, and recurses once into the agent's team members. A failed fetch
// or a profile without a displayUser block skips the agent; only rate limits
// and cancellation stop the run.
func (s *ScrapeFlowImpl) processAgent(ctx context.Context, campaign *models.Campaign, creds services.AgentCredentials, screenName string, isLead bool, counters *scrapeCounters) error {
	if screenName == "" {
		return nil
	}

	if err := sleepCtx(ctx, s.scraperCfg.DetailDelay); err != nil {
		return err
	}

	details, err := s.client.FetchAgentDetails(ctx, creds, screenName)
	if err != nil {
		if errors.Is(err, services.ErrRateLimited) || ctx.Err() != nil {
			return err
		}
		// One flaky profile must not discard the rest of the run.
		log.Printf("scrape: skipping agent %s: %v", screenName, err)
		return nil
	}
	if details.DisplayUser == nil {
		return nil
	}

	contact := contactFromDetails(campaign, screenName, details, isLead)

	inserted, err := s.contactRepo.UpsertByScreenName(ctx, contact)
	if err != nil {
		return NewBusinessErrorf("CONTACT_UPSERT_FAILED", "Failed to store contact %s", err, screenName)
	}
	if inserted {
		counters.contactsSaved++
	}

	if contact.ID == 0 {
		stored, err := s.contactRepo.ByFilter(ctx, models.ContactFilter{
			UserID:     &campaign.UserID,
			CampaignID: &campaign.ID,
			ScreenName: &screenName,
		}, "", 1, 0)
		if err != nil || len(stored) == 0 {
			return NewBusinessErrorf("CONTACT_UPSERT_FAILED", "Failed to reload contact %s", err, screenName)
		}
		contact.ID = stored[0].ID
	}

	for i := range details.ForSaleListings {
		listing := listingFromPayload(campaign.UserID, contact.ID, &details.ForSaleListings[i])
		if listing == nil {
			continue
		}
		inserted, err := s.listingRepo.UpsertByZpid(ctx, listing)
		if err != nil {
			return NewBusinessErrorf("LISTING_UPSERT_FAILED", "Failed to store listing %s", err, listing.Zpid)
		}
		if inserted {
			counters.listingsSaved++
		}
	}

	// One level of team recursion; members never carry their own teams.
	if isLead {
		for _, member := range details.TeamMembers {
			memberName := member.ScreenNameOf()
			if memberName == "" || memberName == screenName {
				continue
			}
			if err := s.processAgent(ctx, campaign, creds, memberName, false, counters); err != nil {
				return err
			}
		}
	}

	return nil
}

// FetchAgentDetails fetches a single agent profile on demand. When the
// request names a stored contact, its profile columns are refreshed.
func (s *ScrapeFlowImpl) FetchAgentDetails(ctx context.Context, req *dto.FetchAgentDetailsRequest) (*dto.FetchAgentDetailsResponse, error) {
	creds, err := loadCredentials(ctx, s.settingsRepo, s.rc, req.UserID)
	if err != nil {
		return nil, NewBusinessError("SETTINGS_LOOKUP_FAILED", "Failed to load scraper credentials", err)
	}

	apiCreds := services.AgentCredentials{APIKey: creds.APIKey, APIHost: creds.APIHost}

	details, err := s.client.FetchAgentDetails(ctx, apiCreds, req.ScreenName)
	if err != nil {
		if errors.Is(err, services.ErrRateLimited) {
			return nil, NewBusinessError("SCRAPE_RATE_LIMITED", "Upstream rate limit reached", ErrRateLimited)
		}
		return nil, NewBusinessError("SCRAPE_DETAILS_FAILED", "Failed to fetch agent details", err)
	}
	if details.DisplayUser == nil {
		return nil, NewBusinessError("AGENT_PROFILE_MALFORMED", "Agent profile is missing its display user", ErrContactNotFound)
	}

	if req.ContactID != nil {
		contact, err := s.contactRepo.ByUUID(ctx, *req.ContactID)
		if err != nil {
			return nil, NewBusinessError("CONTACT_LOOKUP_FAILED", "Failed to lookup contact", err)
		}
		if contact == nil || contact.UserID != req.UserID {
			return nil, NewBusinessError("CONTACT_LOOKUP_FAILED", "Failed to lookup contact", ErrContactNotFound)
		}

		applyDetails(contact, details)
		if err := s.contactRepo.UpdateDetails(ctx, *contact); err != nil {
			return nil, NewBusinessError("CONTACT_UPDATE_FAILED", "Failed to refresh contact", err)
		}
	}

	du := details.DisplayUser
	return &dto.FetchAgentDetailsResponse{
		Success:      true,
		Name:         du.Name,
		Email:        nilIfEmpty(du.Email),
		Phone:        nilIfEmpty(bestPhone(du)),
		BusinessName: nilIfEmpty(du.BusinessName),
		ListingCount: len(details.ForSaleListings),
	}, nil
}

// contactFromDetails maps an agent profile to a contact row
func contactFromDetails(campaign *models.Campaign, screenName string, details *services.AgentDetailsResponse, isLead bool) *models.Contact {
	contact := &models.Contact{
		UserID:     campaign.UserID,
		CampaignID: campaign.ID,
		ScreenName: screenName,
		IsTeamLead: isLead && len(details.TeamMembers) > 0,
		Status:     models.ContactStatusPending,
		AgentData:  details.Raw,
	}
	applyDetails(contact, details)
	return contact
}

// applyDetails copies the normalized profile columns onto a contact
func applyDetails(contact *models.Contact, details *services.AgentDetailsResponse) {
	du := details.DisplayUser

	contact.Name = du.Name
	contact.Email = du.Email
	contact.Phone = bestPhone(du)
	contact.PhoneCell = du.PhoneNumbers.Cell
	contact.PhoneBrokerage = du.PhoneNumbers.Brokerage
	contact.PhoneBusiness = du.PhoneNumbers.Business
	contact.BusinessName = du.BusinessName
	if len(details.Raw) > 0 {
		contact.AgentData = details.Raw
	}
}

// bestPhone picks the most direct phone number available on a profile
func bestPhone(du *services.AgentDisplayUser) string {
	switch {
	case du.PhoneNumber != "":
		return du.PhoneNumber
	case du.PhoneNumbers.Cell != "":
		return du.PhoneNumbers.Cell
	case du.PhoneNumbers.Business != "":
		return du.PhoneNumbers.Business
	default:
		return du.PhoneNumbers.Brokerage
	}
}

// listingFromPayload maps a for-sale listing payload to a listing row.
// Listings without a zpid cannot be deduplicated and are dropped.
func listingFromPayload(userID uuid.UUID, contactID uint, l *services.ForSaleListing) *models.Listing {
	zpid := l.Zpid.String()
	if zpid == "" {
		return nil
	}

	raw, _ := json.Marshal(l)

	return &models.Listing{
		UserID:          userID,
		ContactID:       contactID,
		Zpid:            zpid,
		HomeType:        l.HomeType,
		AddressLine1:    l.Address.Line1,
		AddressLine2:    l.Address.Line2,
		City:            l.Address.City,
		State:           l.Address.StateOrProvince,
		PostalCode:      l.Address.PostalCode,
		Bedrooms:        l.Bedrooms,
		Bathrooms:       l.Bathrooms,
		Price:           l.Price.Value,
		PriceCurrency:   l.Price.Currency,
		Status:          l.Status,
		BrokerageName:   l.BrokerageName,
		ListingURL:      l.ListingURL,
		PrimaryPhotoURL: l.PrimaryPhoto,
		LivingAreaValue: l.LivingArea.Value,
		LivingAreaUnits: l.LivingArea.Units,
		ListingData:     raw,
	}
}

// sleepCtx pauses for d unless the context is cancelled first
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
