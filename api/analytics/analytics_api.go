package analytics

import (
	"congestion-server/models"
)

// AnalyticsAPI defines the interface for the upstream analytic service that
// produces the congestion patterns. The patterns are computed elsewhere;
// this client only pulls the latest materialized snapshot.
type AnalyticsAPI interface {
	GetPatternsSnapshot() (*models.PatternsSnapshotResponse, error)
	SetCredentials(apiKey string)
}
