package util

import (
	"encoding/json"
	"fmt"
	"os"

	"congestion-server/models"
)

// ReadPatternsSnapshotFromJSON reads a PatternsSnapshotResponse fixture from
// the given path.
func ReadPatternsSnapshotFromJSON(path string) (*models.PatternsSnapshotResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patterns snapshot file %s: %w", path, err)
	}

	var snapshot models.PatternsSnapshotResponse
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal patterns snapshot: %w", err)
	}
	return &snapshot, nil
}

// ReadVenuesFromJSON reads a venue seed list from the given path.
func ReadVenuesFromJSON(path string) ([]models.Venue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read venues file %s: %w", path, err)
	}

	var venues []models.Venue
	if err := json.Unmarshal(data, &venues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal venues: %w", err)
	}
	return venues, nil
}
