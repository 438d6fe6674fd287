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

type scrapeFixture struct {
	userID       uuid.UUID
	campaign     *models.Campaign
	campaignRepo *fakeCampaignRepo
	contactRepo  *fakeContactRepo
	listingRepo  *fakeListingRepo
	client       *services.MockAgentSearchClient
	flow         ScrapeFlow
}

func newScrapeFixture(t *testing.T, cfg config.ScraperConfig) *scrapeFixture {
	t.Helper()

	userID := uuid.New()

	campaignRepo := newFakeCampaignRepo()
	campaign := campaignRepo.add(&models.Campaign{
		UserID: userID,
		Name:   "Austin Buyers",
		City:   "Austin",
	})

	settingsRepo := newFakeSettingsRepo()
	require.NoError(t, settingsRepo.Upsert(context.Background(), &models.RapidAPISettings{
		UserID:  userID,
		APIKey:  "key",
		APIHost: "provider.example",
	}))

	contactRepo := newFakeContactRepo()
	listingRepo := newFakeListingRepo()
	client := services.NewMockAgentSearchClient()

	flow := NewScrapeFlow(campaignRepo, contactRepo, listingRepo, settingsRepo, client, nil, cfg)

	return &scrapeFixture{
		userID:       userID,
		campaign:     campaign,
		campaignRepo: campaignRepo,
		contactRepo:  contactRepo,
		listingRepo:  listingRepo,
		client:       client,
		flow:         flow,
	}
}

func (f *scrapeFixture) scrape(t *testing.T) (*dto.ScrapeAgentsResponse, error) {
	t.Helper()
	return f.flow.ScrapeAgents(context.Background(), &dto.ScrapeAgentsRequest{
		CampaignID: f.campaign.UUID.String(),
		UserID:     f.userID,
	}, NewClientMetadata("127.0.0.1", "test"))
}

func agentProfile(name, email string) *services.AgentDetailsResponse {
	return &services.AgentDetailsResponse{
		DisplayUser: &services.AgentDisplayUser{
			Name:         name,
			Email:        email,
			PhoneNumbers: services.AgentPhoneNumbers{Cell: "512-555-0100"},
			BusinessName: name + " Realty",
		},
		Raw: json.RawMessage(`{"displayUser":{}}`),
	}
}

func TestScrapeAgentsStoresContactsAndListings(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{MaxPages: 3})

	f.client.SearchPages[1] = &services.AgentSearchResponse{Agents: []services.AgentSummary{
		{Name: "Agent One", Username: "agent1"},
		{Name: "Agent Two", Username: "agent2"},
	}}

	profile := agentProfile("Agent One", "one@example.com")
	profile.ForSaleListings = []services.ForSaleListing{{
		Zpid:     json.Number("12345"),
		HomeType: "SINGLE_FAMILY",
		Address:  services.ListingAddress{Line1: "1 Main St", City: "Austin", StateOrProvince: "TX"},
		Price:    services.ListingPrice{Value: 450000, Currency: "USD"},
	}}
	f.client.Details["agent1"] = profile
	f.client.Details["agent2"] = agentProfile("Agent Two", "two@example.com")

	resp, err := f.scrape(t)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.TotalAgents)
	assert.Equal(t, 2, resp.ContactsSaved)
	assert.Equal(t, 1, resp.ListingsSaved)

	screenName := "agent1"
	stored, err := f.contactRepo.ByFilter(context.Background(), models.ContactFilter{ScreenName: &screenName}, "", 1, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Agent One", stored[0].Name)
	assert.Equal(t, "one@example.com", stored[0].Email)
	assert.Equal(t, "512-555-0100", stored[0].Phone)
	assert.Equal(t, models.ContactStatusPending, stored[0].Status)

	listings, err := f.listingRepo.ListByContact(context.Background(), stored[0].ID)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "12345", listings[0].Zpid)
	assert.Equal(t, int64(450000), listings[0].Price)
	assert.Equal(t, "Austin", listings[0].City)
}

func TestScrapeAgentsRescrapeIsIdempotent(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{MaxPages: 2})
	f.client.SearchPages[1] = &services.AgentSearchResponse{Agents: []services.AgentSummary{
		{Name: "Agent One", Username: "agent1"},
	}}
	f.client.Details["agent1"] = agentProfile("Agent One", "one@example.com")

	first, err := f.scrape(t)
	require.NoError(t, err)
	require.Equal(t, 1, first.ContactsSaved)

	second, err := f.scrape(t)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ContactsSaved)

	total, _ := f.contactRepo.CountByCampaign(context.Background(), f.campaign.ID)
	assert.Equal(t, int64(1), total)
}

func TestScrapeAgentsRateLimitReturnsPartialCounts(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{MaxPages: 5})
	f.client.SearchPages[1] = &services.AgentSearchResponse{Agents: []services.AgentSummary{
		{Name: "Agent One", Username: "agent1"},
	}}
	f.client.Details["agent1"] = agentProfile("Agent One", "one@example.com")
	f.client.RateLimitAfter = 1

	resp, err := f.scrape(t)
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.ContactsSaved)
}

func TestScrapeAgentsStopsAtContactCap(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{MaxPages: 5, MaxContacts: 1})
	f.client.SearchPages[1] = &services.AgentSearchResponse{Agents: []services.AgentSummary{
		{Name: "Agent One", Username: "agent1"},
		{Name: "Agent Two", Username: "agent2"},
	}}
	f.client.Details["agent1"] = agentProfile("Agent One", "one@example.com")
	f.client.Details["agent2"] = agentProfile("Agent Two", "two@example.com")

	resp, err := f.scrape(t)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.ContactsSaved)
}

func TestScrapeAgentsTeamRecursion(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{MaxPages: 2})
	f.client.SearchPages[1] = &services.AgentSearchResponse{Agents: []services.AgentSummary{
		{Name: "Lead", Username: "lead1"},
	}}

	lead := agentProfile("Lead", "lead@example.com")
	lead.TeamMembers = []services.TeamMember{{ScreenName: "member1", Name: "Member"}}
	f.client.Details["lead1"] = lead

	member := agentProfile("Member", "member@example.com")
	// A member's own team must not be walked; only leads recurse.
	member.TeamMembers = []services.TeamMember{{ScreenName: "member2"}}
	f.client.Details["member1"] = member

	resp, err := f.scrape(t)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.ContactsSaved)

	leadName := "lead1"
	stored, _ := f.contactRepo.ByFilter(context.Background(), models.ContactFilter{ScreenName: &leadName}, "", 1, 0)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsTeamLead)

	memberName := "member1"
	stored, _ = f.contactRepo.ByFilter(context.Background(), models.ContactFilter{ScreenName: &memberName}, "", 1, 0)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].IsTeamLead)

	ghost := "member2"
	missing, _ := f.contactRepo.ByFilter(context.Background(), models.ContactFilter{ScreenName: &ghost}, "", 1, 0)
	assert.Empty(t, missing)
}

func TestScrapeAgentsSkipsFailedDetailFetch(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{MaxPages: 2})
	f.client.SearchPages[1] = &services.AgentSearchResponse{Agents: []services.AgentSummary{
		{Name: "Flaky", Username: "flaky"},
		{Name: "Agent One", Username: "agent1"},
	}}
	f.client.DetailsErrFor["flaky"] = errors.New("upstream 500")
	f.client.Details["agent1"] = agentProfile("Agent One", "one@example.com")

	resp, err := f.scrape(t)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.TotalAgents)
	assert.Equal(t, 1, resp.ContactsSaved)
	assert.Equal(t, 2, f.client.DetailsCalls, "the failed agent must not stop the loop")

	flaky := "flaky"
	missing, _ := f.contactRepo.ByFilter(context.Background(), models.ContactFilter{ScreenName: &flaky}, "", 1, 0)
	assert.Empty(t, missing)
}

func TestScrapeAgentsSkipsFailedTeamMemberFetch(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{MaxPages: 2})
	f.client.SearchPages[1] = &services.AgentSearchResponse{Agents: []services.AgentSummary{
		{Name: "Lead", Username: "lead1"},
	}}

	lead := agentProfile("Lead", "lead@example.com")
	lead.TeamMembers = []services.TeamMember{
		{ScreenName: "member1", Name: "Member"},
		{ScreenName: "member2", Name: "Other Member"},
	}
	f.client.Details["lead1"] = lead
	f.client.DetailsErrFor["member1"] = errors.New("upstream 500")
	f.client.Details["member2"] = agentProfile("Other Member", "other@example.com")

	resp, err := f.scrape(t)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.ContactsSaved, "lead and the healthy member survive the flaky one")
}

func TestScrapeAgentsAllDetailFetchesFail(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{MaxPages: 2})
	f.client.SearchPages[1] = &services.AgentSearchResponse{Agents: []services.AgentSummary{
		{Name: "Agent One", Username: "agent1"},
		{Name: "Agent Two", Username: "agent2"},
	}}
	f.client.DetailsErr = errors.New("upstream 500")

	resp, err := f.scrape(t)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.TotalAgents)
	assert.Equal(t, 0, resp.ContactsSaved)
}

func TestScrapeAgentsDetailRateLimitStopsRun(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{MaxPages: 2})
	f.client.SearchPages[1] = &services.AgentSearchResponse{Agents: []services.AgentSummary{
		{Name: "Agent One", Username: "agent1"},
		{Name: "Agent Two", Username: "agent2"},
	}}
	f.client.Details["agent1"] = agentProfile("Agent One", "one@example.com")
	f.client.DetailsErrFor["agent2"] = services.ErrRateLimited

	resp, err := f.scrape(t)
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.ContactsSaved)
}

func TestScrapeAgentsSkipsMalformedProfiles(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{MaxPages: 2})
	f.client.SearchPages[1] = &services.AgentSearchResponse{Agents: []services.AgentSummary{
		{Name: "Ghost", Username: "ghost"},
		{Name: "Agent One", Username: "agent1"},
	}}
	// "ghost" resolves to the mock default: a profile without a displayUser.
	f.client.Details["agent1"] = agentProfile("Agent One", "one@example.com")

	resp, err := f.scrape(t)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalAgents)
	assert.Equal(t, 1, resp.ContactsSaved)
}

func TestScrapeAgentsAccessDenied(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{MaxPages: 2})

	_, err := f.flow.ScrapeAgents(context.Background(), &dto.ScrapeAgentsRequest{
		CampaignID: f.campaign.UUID.String(),
		UserID:     uuid.New(),
	}, NewClientMetadata("127.0.0.1", "test"))
	require.Error(t, err)
	assert.True(t, IsCampaignAccessDenied(err))
}

func TestScrapeAgentsMissingCredentials(t *testing.T) {
	userID := uuid.New()
	campaignRepo := newFakeCampaignRepo()
	campaign := campaignRepo.add(&models.Campaign{UserID: userID, Name: "N", City: "Austin"})

	flow := NewScrapeFlow(campaignRepo, newFakeContactRepo(), newFakeListingRepo(),
		newFakeSettingsRepo(), services.NewMockAgentSearchClient(), nil, config.ScraperConfig{MaxPages: 1})

	_, err := flow.ScrapeAgents(context.Background(), &dto.ScrapeAgentsRequest{
		CampaignID: campaign.UUID.String(),
		UserID:     userID,
	}, NewClientMetadata("127.0.0.1", "test"))
	require.Error(t, err)
	assert.True(t, IsSettingsNotFound(err))
}

func TestFetchAgentDetails(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{})
	profile := agentProfile("Agent One", "one@example.com")
	profile.ForSaleListings = []services.ForSaleListing{{Zpid: json.Number("1")}, {Zpid: json.Number("2")}}
	f.client.Details["agent1"] = profile

	resp, err := f.flow.FetchAgentDetails(context.Background(), &dto.FetchAgentDetailsRequest{
		ScreenName: "agent1",
		UserID:     f.userID,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Agent One", resp.Name)
	require.NotNil(t, resp.Email)
	assert.Equal(t, "one@example.com", *resp.Email)
	assert.Equal(t, 2, resp.ListingCount)
}

func TestFetchAgentDetailsRefreshesContact(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{})
	contact := f.contactRepo.add(&models.Contact{
		UserID:     f.userID,
		CampaignID: f.campaign.ID,
		ScreenName: "agent1",
		Name:       "Stale Name",
	})
	f.client.Details["agent1"] = agentProfile("Fresh Name", "fresh@example.com")

	contactUUID := contact.UUID.String()
	_, err := f.flow.FetchAgentDetails(context.Background(), &dto.FetchAgentDetailsRequest{
		ScreenName: "agent1",
		UserID:     f.userID,
		ContactID:  &contactUUID,
	})
	require.NoError(t, err)

	stored, _ := f.contactRepo.ByID(context.Background(), contact.ID)
	assert.Equal(t, "Fresh Name", stored.Name)
	assert.Equal(t, "fresh@example.com", stored.Email)
}

func TestFetchAgentDetailsMalformedProfile(t *testing.T) {
	f := newScrapeFixture(t, config.ScraperConfig{})

	_, err := f.flow.FetchAgentDetails(context.Background(), &dto.FetchAgentDetailsRequest{
		ScreenName: "nobody",
		UserID:     f.userID,
	})
	require.Error(t, err)
	assert.True(t, IsContactNotFound(err))
}
