package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Agent API error constants
var (
	// ErrRateLimited signals an HTTP 429 from the provider; callers stop
	// paginating and report partial progress.
	ErrRateLimited = errors.New("agent search provider rate limit exceeded")
)

// AgentCredentials carries a user's provider credentials per request
type AgentCredentials struct {
	APIKey  string
	APIHost string
}

// AgentSummary is one row of a search result page
type AgentSummary struct {
	Name        string `json:"name"`
	Link        string `json:"link"`
	Username    string `json:"username"`
	EncodedZuid string `json:"encodedZuid"`
	ImageURL    string `json:"imageUrl"`
	IsTopAgent  bool   `json:"isTopAgent"`
}

// AgentSearchResponse is the payload of the agent search endpoint
type AgentSearchResponse struct {
	Agents []AgentSummary `json:"agents"`
}

// AgentPhoneNumbers groups the phone variants of an agent profile
type AgentPhoneNumbers struct {
	Cell      string `json:"cell"`
	Brokerage string `json:"brokerage"`
	Business  string `json:"business"`
}

// AgentDisplayUser is the profile block of the agent details endpoint
type AgentDisplayUser struct {
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	PhoneNumber  string            `json:"phoneNumber"`
	PhoneNumbers AgentPhoneNumbers `json:"phoneNumbers"`
	BusinessName string            `json:"businessName"`
}

// ListingAddress is the address block of a for-sale listing
type ListingAddress struct {
	Line1           string `json:"line1"`
	Line2           string `json:"line2"`
	City            string `json:"city"`
	StateOrProvince string `json:"stateOrProvince"`
	PostalCode      string `json:"postalCode"`
}

// ListingPrice is the price block of a for-sale listing
type ListingPrice struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

// ListingLivingArea is the living area block of a for-sale listing
type ListingLivingArea struct {
	Value float64 `json:"value"`
	Units string  `json:"units"`
}

// ForSaleListing is one active listing of an agent profile
type ForSaleListing struct {
	Zpid          json.Number       `json:"zpid"`
	HomeType      string            `json:"homeType"`
	Address       ListingAddress    `json:"address"`
	Bedrooms      int               `json:"bedrooms"`
	Bathrooms     float64           `json:"bathrooms"`
	Price         ListingPrice      `json:"price"`
	ListingURL    string            `json:"listingUrl"`
	PrimaryPhoto  string            `json:"primaryPhoto"`
	LivingArea    ListingLivingArea `json:"livingArea"`
	BrokerageName string            `json:"brokerageName"`
	Status        string            `json:"status"`
}

// TeamMember is one member of an agent's team
type TeamMember struct {
	ScreenName string `json:"screenName"`
	Username   string `json:"username"`
	Name       string `json:"name"`
}

// AgentDetailsResponse is the payload of the agent details endpoint
type AgentDetailsResponse struct {
	DisplayUser     *AgentDisplayUser `json:"displayUser"`
	ForSaleListings []ForSaleListing  `json:"forSaleListings"`
	TeamMembers     []TeamMember      `json:"teamMembers"`
	Raw             json.RawMessage   `json:"-"`
}

// ScreenNameOf resolves the member's identifier; some payloads use screenName,
// others username.
func (m TeamMember) ScreenNameOf() string {
	if m.ScreenName != "" {
		return m.ScreenName
	}
	return m.Username
}

// AgentSearchClient talks to the agent search provider
type AgentSearchClient interface {
	SearchAgents(ctx context.Context, creds AgentCredentials, location string, page int) (*AgentSearchResponse, error)
	FetchAgentDetails(ctx context.Context, creds AgentCredentials, screenName string) (*AgentDetailsResponse, error)
}

// AgentSearchClientImpl implements AgentSearchClient over the RapidAPI gateway
type AgentSearchClientImpl struct {
	client *http.Client
}

// NewAgentSearchClient creates a new agent search client
func NewAgentSearchClient(timeout time.Duration) AgentSearchClient {
	return &AgentSearchClientImpl{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// SearchAgents fetches one page of agents for a location
func (c *AgentSearchClientImpl) SearchAgents(ctx context.Context, creds AgentCredentials, location string, page int) (*AgentSearchResponse, error) {
	endpoint := fmt.Sprintf("https://%s/agent/search?location=%s&page=%d",
		creds.APIHost, url.QueryEscape(location), page)

	body, err := c.get(ctx, creds, endpoint)
	if err != nil {
		return nil, err
	}

	var result AgentSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode agent search response: %w", err)
	}

	return &result, nil
}

// FetchAgentDetails fetches the full profile of an agent by screen name
func (c *AgentSearchClientImpl) FetchAgentDetails(ctx context.Context, creds AgentCredentials, screenName string) (*AgentDetailsResponse, error) {
	endpoint := fmt.Sprintf("https://%s/agentDetails?username=%s",
		creds.APIHost, url.QueryEscape(screenName))

	body, err := c.get(ctx, creds, endpoint)
	if err != nil {
		return nil, err
	}

	var result AgentDetailsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode agent details response: %w", err)
	}
	result.Raw = body

	return &result, nil
}

func (c *AgentSearchClientImpl) get(ctx context.Context, creds AgentCredentials, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", creds.APIKey)
	req.Header.Set("x-rapidapi-host", creds.APIHost)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call agent search provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent search provider returned status %d", resp.StatusCode)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent search response: %w", err)
	}

	return buf, nil
}

// MockAgentSearchClient implements AgentSearchClient for testing
type MockAgentSearchClient struct {
	SearchPages map[int]*AgentSearchResponse
	Details     map[string]*AgentDetailsResponse
	SearchErr   error
	DetailsErr  error
	// DetailsErrFor fails profile fetches for these screen names only
	DetailsErrFor map[string]error
	// RateLimitAfter triggers ErrRateLimited once this many search calls
	// have succeeded; zero disables it.
	RateLimitAfter int

	SearchCalls  int
	DetailsCalls int
}

// NewMockAgentSearchClient creates a new mock agent search client
func NewMockAgentSearchClient() *MockAgentSearchClient {
	return &MockAgentSearchClient{
		SearchPages:   make(map[int]*AgentSearchResponse),
		Details:       make(map[string]*AgentDetailsResponse),
		DetailsErrFor: make(map[string]error),
	}
}

// SearchAgents returns the canned page for the requested page number
func (m *MockAgentSearchClient) SearchAgents(ctx context.Context, creds AgentCredentials, location string, page int) (*AgentSearchResponse, error) {
	if m.RateLimitAfter > 0 && m.SearchCalls >= m.RateLimitAfter {
		return nil, ErrRateLimited
	}
	m.SearchCalls++
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if resp, ok := m.SearchPages[page]; ok {
		return resp, nil
	}
	return &AgentSearchResponse{}, nil
}

// FetchAgentDetails returns the canned profile for the requested screen name
func (m *MockAgentSearchClient) FetchAgentDetails(ctx context.Context, creds AgentCredentials, screenName string) (*AgentDetailsResponse, error) {
	m.DetailsCalls++
	if m.DetailsErr != nil {
		return nil, m.DetailsErr
	}
	if err, ok := m.DetailsErrFor[screenName]; ok {
		return nil, err
	}
	if resp, ok := m.Details[screenName]; ok {
		return resp, nil
	}
	return &AgentDetailsResponse{}, nil
}
