package service

import (
	"context"
	"log"
	"time"

	"congestion-server/config"
	"congestion-server/dao"
	"congestion-server/models"
)

// VisitTrackingService is the visit event recorder: it accepts intention
// registrations and geofence entry/exit events, enforces the validation and
// de-duplication invariants, and invalidates the congestion cache for the
// affected venue before returning.
type VisitTrackingService struct {
	visitStore        dao.VisitStore
	congestionService *CongestionService
	clock             Clock
}

// NewVisitTrackingService constructs a VisitTrackingService.
func NewVisitTrackingService(
	visitStore dao.VisitStore,
	congestionService *CongestionService,
	clock Clock,
) *VisitTrackingService {
	return &VisitTrackingService{
		visitStore:        visitStore,
		congestionService: congestionService,
		clock:             clock,
	}
}

// RegisterIntention records a declared future visit. The party size must be
// at least 1 and the intended time strictly in the future.
func (vs *VisitTrackingService) RegisterIntention(ctx context.Context, userID string, venueID int64, intendedTime time.Time, intendedPeople int) (*models.IntentionReceipt, error) {
	if intendedPeople < 1 {
		return nil, ErrInvalidPartySize
	}
	if !intendedTime.After(vs.clock.Now()) {
		return nil, ErrPastIntendedTime
	}

	intention := &models.VisitIntention{
		UserID:         userID,
		VenueID:        venueID,
		IntendedTime:   intendedTime.UTC(),
		IntendedPeople: intendedPeople,
		IsActive:       true,
	}
	if err := vs.visitStore.SaveIntention(ctx, intention); err != nil {
		return nil, unavailable(err)
	}

	vs.congestionService.InvalidateVenue(ctx, venueID)

	log.Printf("[VisitTrackingService] Intention registered: user=%s venue=%d time=%s people=%d",
		userID, venueID, intention.IntendedTime.Format(time.RFC3339), intendedPeople)

	return &models.IntentionReceipt{
		IntentionID:     intention.ID,
		TrackingStarted: true,
	}, nil
}

// RecordEntry records a geofence entry. If an open visit already exists for
// the (user, venue) pair the existing record id is returned with the
// duplicate flag set and nothing is written.
func (vs *VisitTrackingService) RecordEntry(ctx context.Context, userID string, venueID int64, entryTime time.Time, intendedPeople int) (*models.EntryReceipt, error) {
	existing, err := vs.visitStore.FindOpenVisit(ctx, userID, venueID)
	if err != nil {
		return nil, unavailable(err)
	}
	if existing != nil {
		log.Printf("[VisitTrackingService] Open visit already exists: user=%s venue=%d", userID, venueID)
		return &models.EntryReceipt{VisitID: existing.ID, IsDuplicate: true}, nil
	}

	visit := &models.ActualVisit{
		UserID:         userID,
		VenueID:        venueID,
		EntryTime:      entryTime.UTC(),
		IntendedPeople: &intendedPeople,
		IsValidVisit:   true,
	}
	created, err := vs.visitStore.SaveActualVisit(ctx, visit)
	if err != nil {
		return nil, unavailable(err)
	}
	if !created {
		// Lost the race against a concurrent entry; the store kept the
		// winning row open.
		winner, err := vs.visitStore.FindOpenVisit(ctx, userID, venueID)
		if err != nil {
			return nil, unavailable(err)
		}
		if winner != nil {
			return &models.EntryReceipt{VisitID: winner.ID, IsDuplicate: true}, nil
		}
		return nil, unavailable(err)
	}

	vs.congestionService.InvalidateVenue(ctx, venueID)

	log.Printf("[VisitTrackingService] Entry recorded: user=%s venue=%d visit=%d", userID, venueID, visit.ID)

	return &models.EntryReceipt{VisitID: visit.ID, IsDuplicate: false}, nil
}

// RecordExit closes the open visit for the (user, venue) pair. A missing
// open visit is a business outcome reported through the receipt, not an
// error. Stays shorter than the configured minimum are marked invalid so
// geofence bounce-throughs do not count toward occupancy.
func (vs *VisitTrackingService) RecordExit(ctx context.Context, userID string, venueID int64, exitTime time.Time) (*models.ExitReceipt, error) {
	visit, err := vs.visitStore.FindOpenVisit(ctx, userID, venueID)
	if err != nil {
		return nil, unavailable(err)
	}
	if visit == nil {
		log.Printf("[VisitTrackingService] No open visit to close: user=%s venue=%d", userID, venueID)
		return &models.ExitReceipt{Success: false}, nil
	}

	updated, err := vs.visitStore.UpdateExit(ctx, visit.ID, exitTime.UTC())
	if err != nil {
		return nil, unavailable(err)
	}
	if updated == nil {
		return &models.ExitReceipt{Success: false}, nil
	}

	stay := updated.StayTimeMinutes()
	valid := updated.IsValidVisit
	if stay != nil && *stay < config.MIN_STAY_TIME_MINUTES {
		if err := vs.visitStore.MarkVisitInvalid(ctx, updated.ID); err != nil {
			return nil, unavailable(err)
		}
		valid = false
		log.Printf("[VisitTrackingService] Visit %d below minimum stay (%d < %d min), marked invalid",
			updated.ID, *stay, config.MIN_STAY_TIME_MINUTES)
	}

	vs.congestionService.InvalidateVenue(ctx, venueID)

	log.Printf("[VisitTrackingService] Exit recorded: user=%s venue=%d visit=%d valid=%v",
		userID, venueID, updated.ID, valid)

	return &models.ExitReceipt{
		Success:         true,
		VisitID:         updated.ID,
		StayTimeMinutes: stay,
		IsValidVisit:    valid,
	}, nil
}
