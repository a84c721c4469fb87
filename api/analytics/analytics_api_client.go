package analytics

import (
	"fmt"

	"congestion-server/api"
	"congestion-server/models"
)

const PATTERNS_SNAPSHOT_ENDPOINT = "/patterns/snapshot"

// AnalyticsApiClient talks to the analytic service over HTTP.
type AnalyticsApiClient struct {
	httpClient *api.HTTPClient
	apiKey     string
}

// NewAnalyticsApiClient creates a client on top of the generic HTTPClient.
func NewAnalyticsApiClient(httpClient *api.HTTPClient) *AnalyticsApiClient {
	return &AnalyticsApiClient{httpClient: httpClient}
}

// SetCredentials sets the API key sent with every request.
func (c *AnalyticsApiClient) SetCredentials(apiKey string) {
	c.apiKey = apiKey
}

// GetPatternsSnapshot fetches the latest pattern per venue.
func (c *AnalyticsApiClient) GetPatternsSnapshot() (*models.PatternsSnapshotResponse, error) {
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["X-Api-Key"] = c.apiKey
	}

	var response models.PatternsSnapshotResponse
	if err := c.httpClient.Request("GET", PATTERNS_SNAPSHOT_ENDPOINT, headers, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch patterns snapshot: %w", err)
	}
	return &response, nil
}
