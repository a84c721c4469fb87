package dao

import (
	"context"
	"time"

	"congestion-server/models"
)

// VenueStore defines read/write access to the venue catalog. Lookups return
// (nil, nil) when the venue does not exist.
type VenueStore interface {
	FindByID(ctx context.Context, id int64) (*models.Venue, error)
	FindByPlaceID(ctx context.Context, placeID string) (*models.Venue, error)
	FindAll(ctx context.Context) ([]models.Venue, error)
	Save(ctx context.Context, venue *models.Venue) error
}

// PatternStore defines access to the materialized congestion patterns. The
// engine only reads; the patterns refresher upserts on behalf of the
// upstream analytic process.
type PatternStore interface {
	FindPattern(ctx context.Context, placeID string) (*models.CongestionPattern, error)
	UpsertPattern(ctx context.Context, pattern *models.CongestionPattern) error
}

// VisitStore defines access to visit intentions and actual visits.
//
// SaveActualVisit must be atomic with respect to the one-open-visit-per
// (user, venue) invariant: when an open visit already exists it reports
// created=false and writes nothing, even under concurrent callers.
type VisitStore interface {
	SaveIntention(ctx context.Context, intention *models.VisitIntention) error
	FindActiveIntentions(ctx context.Context, venueID int64, center time.Time, windowMinutes int) ([]models.VisitIntention, error)

	SaveActualVisit(ctx context.Context, visit *models.ActualVisit) (created bool, err error)
	FindOpenVisit(ctx context.Context, userID string, venueID int64) (*models.ActualVisit, error)
	FindOpenVisitsForVenue(ctx context.Context, venueID int64) ([]models.ActualVisit, error)
	UpdateExit(ctx context.Context, visitID int64, exitTime time.Time) (*models.ActualVisit, error)
	MarkVisitInvalid(ctx context.Context, visitID int64) error
}
