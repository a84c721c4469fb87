package models

// PatternsSnapshotResponse is the payload served by the upstream analytic
// service: the latest materialized congestion pattern per venue.
type PatternsSnapshotResponse struct {
	Status      string              `json:"status"`
	GeneratedAt string              `json:"generated_at"`
	Patterns    []CongestionPattern `json:"patterns"`
}
