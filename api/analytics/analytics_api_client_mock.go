package analytics

import (
	"log"

	"congestion-server/config"
	"congestion-server/models"
	"congestion-server/util"
)

// AnalyticsApiClientMock serves the patterns snapshot from a local JSON
// fixture, for environments without the analytic service.
type AnalyticsApiClientMock struct{}

// NewAnalyticsApiClientMock creates a fixture-backed AnalyticsAPI.
func NewAnalyticsApiClientMock() *AnalyticsApiClientMock {
	return &AnalyticsApiClientMock{}
}

// SetCredentials is a no-op on the mock.
func (c *AnalyticsApiClientMock) SetCredentials(apiKey string) {}

// GetPatternsSnapshot reads the snapshot fixture from resources.
func (c *AnalyticsApiClientMock) GetPatternsSnapshot() (*models.PatternsSnapshotResponse, error) {
	path := config.GetResourcePath(config.PATTERNS_SNAPSHOT_RESOURCE)
	log.Printf("[AnalyticsApiClientMock] Reading patterns snapshot from %s", path)
	return util.ReadPatternsSnapshotFromJSON(path)
}
