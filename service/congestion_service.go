package service

import (
	"context"
	"log"
	"time"

	"congestion-server/config"
	"congestion-server/dao"
	redisdao "congestion-server/dao/redis"
	"congestion-server/models"
)

// CongestionService is the congestion engine: it blends the cached
// historical base score with live visit demand into a point-in-time
// congestion estimate, and owns the cache invalidation for a venue.
type CongestionService struct {
	venueStore   dao.VenueStore
	patternStore dao.PatternStore
	visitStore   dao.VisitStore
	cacheDao     *redisdao.RedisCongestionCacheDAO
	clock        Clock
}

// NewCongestionService constructs a CongestionService with its store and
// cache dependencies.
func NewCongestionService(
	venueStore dao.VenueStore,
	patternStore dao.PatternStore,
	visitStore dao.VisitStore,
	cacheDao *redisdao.RedisCongestionCacheDAO,
	clock Clock,
) *CongestionService {
	return &CongestionService{
		venueStore:   venueStore,
		patternStore: patternStore,
		visitStore:   visitStore,
		cacheDao:     cacheDao,
		clock:        clock,
	}
}

// bucketRule maps a (weekday, hour) bucket onto a pattern field. Rules are
// evaluated in priority order; a nil field falls back to AvgPopAll.
type bucketRule struct {
	applies func(weekday, hour int) bool
	value   func(p *models.CongestionPattern) *float64
}

var baseScoreRules = []bucketRule{
	{ // lunch window
		applies: func(_, hour int) bool { return hour >= 11 && hour <= 14 },
		value:   func(p *models.CongestionPattern) *float64 { return p.AvgLunch },
	},
	{ // dinner window
		applies: func(_, hour int) bool { return hour >= 18 && hour <= 21 },
		value:   func(p *models.CongestionPattern) *float64 { return p.AvgDinner },
	},
	{ // weekend (Sat=5, Sun=6)
		applies: func(weekday, _ int) bool { return weekday >= 5 },
		value:   func(p *models.CongestionPattern) *float64 { return p.AvgWeekend },
	},
	{ // weekday default
		applies: func(_, _ int) bool { return true },
		value:   func(p *models.CongestionPattern) *float64 { return p.AvgWeekday },
	},
}

// selectBucketScore picks the base score for a bucket from the pattern.
func selectBucketScore(p *models.CongestionPattern, weekday, hour int) int {
	for _, rule := range baseScoreRules {
		if !rule.applies(weekday, hour) {
			continue
		}
		v := rule.value(p)
		if v == nil {
			v = p.AvgPopAll
		}
		if v == nil {
			return config.CONGESTION_DEFAULT_BASE_SCORE
		}
		return int(*v)
	}
	return config.CONGESTION_DEFAULT_BASE_SCORE
}

// mondayWeekday converts Go's Sunday-based weekday to the 0=Monday..6=Sunday
// convention the patterns were produced under.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ComputeCongestion estimates the congestion for a venue at targetTime
// (nil means now). The base score is looked up cache-first; expected and
// current visitor counts are always computed fresh.
func (cs *CongestionService) ComputeCongestion(ctx context.Context, venueID int64, targetTime *time.Time) (*models.CongestionReport, error) {
	t := cs.clock.Now()
	if targetTime != nil {
		t = targetTime.UTC()
	}

	venue, err := cs.venueStore.FindByID(ctx, venueID)
	if err != nil {
		return nil, unavailable(err)
	}
	if venue == nil {
		return nil, ErrVenueNotFound
	}

	weekday := mondayWeekday(t)
	hour := t.Hour()

	base, err := cs.baseScore(ctx, venue.PlaceID, weekday, hour)
	if err != nil {
		return nil, err
	}

	expected, err := cs.expectedVisitors(ctx, venueID, t)
	if err != nil {
		return nil, unavailable(err)
	}

	current, err := cs.currentVisitors(ctx, venueID)
	if err != nil {
		return nil, unavailable(err)
	}

	final := clampScore(base + (expected+current)*config.CONGESTION_PER_PERSON_WEIGHT)

	return &models.CongestionReport{
		VenueID:             venueID,
		VenueName:           venue.Name,
		PredictedCongestion: base,
		RealtimeCongestion:  final,
		CurrentVisitors:     current,
		ExpectedVisitors:    expected,
		Timestamp:           t,
		CongestionLevel:     congestionLevel(final),
	}, nil
}

// baseScore resolves the historical base score for a bucket, cache-first.
// A cache read failure counts as a miss; a missing pattern yields the
// default score and stores nothing, so the next query re-evaluates.
func (cs *CongestionService) baseScore(ctx context.Context, placeID string, weekday, hour int) (int, error) {
	cached, hit, err := cs.cacheDao.GetBaseScore(placeID, weekday, hour)
	if err != nil {
		log.Printf("[CongestionService] Cache read failed for %s, recomputing: %v", placeID, err)
	} else if hit {
		return cached, nil
	}

	pattern, err := cs.patternStore.FindPattern(ctx, placeID)
	if err != nil {
		return 0, unavailable(err)
	}
	if pattern == nil {
		log.Printf("[CongestionService] No pattern for place_id=%s, using default base", placeID)
		return config.CONGESTION_DEFAULT_BASE_SCORE, nil
	}

	base := selectBucketScore(pattern, weekday, hour)

	ttl := time.Duration(config.CACHE_TTL_CONGESTION_SECONDS) * time.Second
	if err := cs.cacheDao.SetBaseScore(placeID, weekday, hour, base, ttl); err != nil {
		log.Printf("[CongestionService] Cache write failed for %s: %v", placeID, err)
	}

	return base, nil
}

// expectedVisitors sums declared party sizes over the active intentions
// within the configured window around t.
func (cs *CongestionService) expectedVisitors(ctx context.Context, venueID int64, t time.Time) (int, error) {
	intentions, err := cs.visitStore.FindActiveIntentions(ctx, venueID, t, config.VISIT_INTENTION_WINDOW_MINUTES)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, in := range intentions {
		total += in.IntendedPeople
	}
	return total, nil
}

// currentVisitors sums party sizes over the open, valid visits of a venue.
func (cs *CongestionService) currentVisitors(ctx context.Context, venueID int64) (int, error) {
	visits, err := cs.visitStore.FindOpenVisitsForVenue(ctx, venueID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, v := range visits {
		total += v.PartySize()
	}
	return total, nil
}

// ComputeDailyBaseCurve returns the 24 hourly base scores for a venue on
// the day containing t, using the same cache-first lookup as queries.
func (cs *CongestionService) ComputeDailyBaseCurve(ctx context.Context, venueID int64, t time.Time) ([]int, *models.Venue, error) {
	venue, err := cs.venueStore.FindByID(ctx, venueID)
	if err != nil {
		return nil, nil, unavailable(err)
	}
	if venue == nil {
		return nil, nil, ErrVenueNotFound
	}

	weekday := mondayWeekday(t)
	curve := make([]int, 24)
	for hour := 0; hour < 24; hour++ {
		base, err := cs.baseScore(ctx, venue.PlaceID, weekday, hour)
		if err != nil {
			return nil, nil, err
		}
		curve[hour] = base
	}
	return curve, venue, nil
}

// InvalidateVenue drops every cached base-score bucket for the venue.
// Unknown venues are a silent no-op; cache failures are logged and
// swallowed since the TTL bounds staleness anyway.
func (cs *CongestionService) InvalidateVenue(ctx context.Context, venueID int64) {
	venue, err := cs.venueStore.FindByID(ctx, venueID)
	if err != nil {
		log.Printf("[CongestionService] Venue lookup failed during invalidation of %d: %v", venueID, err)
		return
	}
	if venue == nil {
		return
	}

	deleted, err := cs.cacheDao.InvalidateVenue(venue.PlaceID)
	if err != nil {
		log.Printf("[CongestionService] Cache invalidation failed for venue %d: %v", venueID, err)
		return
	}
	if deleted > 0 {
		log.Printf("[CongestionService] Invalidated %d cached buckets for venue %d", deleted, venueID)
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// congestionLevel maps a final score onto its label.
func congestionLevel(score int) string {
	switch {
	case score < config.CONGESTION_LEVEL_LOW_MAX:
		return models.CongestionLevelLow
	case score < config.CONGESTION_LEVEL_MODERATE_MAX:
		return models.CongestionLevelModerate
	case score < config.CONGESTION_LEVEL_HIGH_MAX:
		return models.CongestionLevelHigh
	default:
		return models.CongestionLevelVeryHigh
	}
}
