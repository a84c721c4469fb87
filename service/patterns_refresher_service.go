package service

import (
	"context"
	"log"
	"time"

	"congestion-server/api/analytics"
	"congestion-server/dao"
)

// PatternsRefresherService periodically pulls the latest congestion
// patterns from the analytic service and materializes them in the pattern
// store. The engine itself never writes patterns.
type PatternsRefresherService struct {
	patternStore dao.PatternStore
	analyticsAPI analytics.AnalyticsAPI
}

// NewPatternsRefresherService constructs a refresher with its dependencies.
func NewPatternsRefresherService(
	patternStore dao.PatternStore,
	analyticsAPI analytics.AnalyticsAPI,
) *PatternsRefresherService {
	return &PatternsRefresherService{
		patternStore: patternStore,
		analyticsAPI: analyticsAPI,
	}
}

// StartPeriodicJob launches the background refresh loop at the given interval.
func (pr *PatternsRefresherService) StartPeriodicJob(interval time.Duration) {
	go pr.startPeriodicJob(interval)
}

func (pr *PatternsRefresherService) startPeriodicJob(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		log.Println("[PatternsRefresherService] Running periodic patterns refresh job.")
		if err := pr.RefreshPatterns(context.Background()); err != nil {
			log.Printf("[PatternsRefresherService] RefreshPatterns returned error: %v", err)
		} else {
			log.Println("[PatternsRefresherService] RefreshPatterns completed successfully.")
		}
	}
}

// RefreshPatterns fetches the snapshot and upserts each pattern. Individual
// upsert failures are logged and skipped so one bad row does not starve the
// rest of the batch.
func (pr *PatternsRefresherService) RefreshPatterns(ctx context.Context) error {
	snapshot, err := pr.analyticsAPI.GetPatternsSnapshot()
	if err != nil {
		return err
	}
	if snapshot.Status != "OK" {
		log.Printf("[PatternsRefresherService] Snapshot status=%q, skipping refresh", snapshot.Status)
		return nil
	}

	log.Printf("[PatternsRefresherService] Upserting %d patterns", len(snapshot.Patterns))
	for i := range snapshot.Patterns {
		p := snapshot.Patterns[i]
		if err := pr.patternStore.UpsertPattern(ctx, &p); err != nil {
			log.Printf("[PatternsRefresherService] Upsert failed for %s: %v", p.PlaceID, err)
		}
	}
	return nil
}
