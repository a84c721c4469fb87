package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"congestion-server/config"
	"congestion-server/dao"
	redisdao "congestion-server/dao/redis"
	"congestion-server/db"
	"congestion-server/models"
)

// fixedClock pins Now for deterministic windowing.
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

func f64(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

// 2024-01-01 was a Monday; anchor test dates in that week.
var (
	monday   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tuesday  = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
)

type engineFixture struct {
	venueStore   *dao.MockVenueStore
	patternStore *dao.MockPatternStore
	visitStore   *dao.MockVisitStore
	redisClient  *db.MockRedisClient
	cacheDao     *redisdao.RedisCongestionCacheDAO
	engine       *CongestionService
}

func newEngineFixture(t *testing.T, now time.Time) *engineFixture {
	t.Helper()

	f := &engineFixture{
		venueStore:   dao.NewMockVenueStore(),
		patternStore: dao.NewMockPatternStore(),
		visitStore:   dao.NewMockVisitStore(),
		redisClient:  db.NewMockRedisClient(context.Background()),
	}
	f.cacheDao = redisdao.NewRedisCongestionCacheDAO(f.redisClient)
	f.engine = NewCongestionService(f.venueStore, f.patternStore, f.visitStore, f.cacheDao, fixedClock{t: now})

	venue := &models.Venue{ID: 1, PlaceID: "place-1", Name: "Test Venue"}
	if err := f.venueStore.Save(context.Background(), venue); err != nil {
		t.Fatalf("failed to seed venue: %v", err)
	}
	return f
}

func (f *engineFixture) seedPattern(p models.CongestionPattern) {
	p.PlaceID = "place-1"
	_ = f.patternStore.UpsertPattern(context.Background(), &p)
}

func fullPattern() models.CongestionPattern {
	return models.CongestionPattern{
		AvgLunch:   f64(70),
		AvgDinner:  f64(40),
		AvgWeekday: f64(30),
		AvgWeekend: f64(20),
		AvgPopAll:  f64(50),
	}
}

func TestComputeCongestion_BucketSelection(t *testing.T) {
	tests := []struct {
		name         string
		targetTime   time.Time
		expectedBase int
	}{
		{"lunch window on a weekday", tuesday.Add(12 * time.Hour), 70},
		{"dinner window", tuesday.Add(19 * time.Hour), 40},
		{"weekend morning", saturday.Add(9 * time.Hour), 20},
		{"weekday morning", tuesday.Add(9 * time.Hour), 30},
		{"lunch window on a weekend", saturday.Add(12 * time.Hour), 70},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newEngineFixture(t, monday)
			f.seedPattern(fullPattern())

			report, err := f.engine.ComputeCongestion(context.Background(), 1, &test.targetTime)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			assert.Equal(t, test.expectedBase, report.PredictedCongestion)
			// No live demand, so the final score equals the base.
			assert.Equal(t, test.expectedBase, report.RealtimeCongestion)
		})
	}
}

func TestComputeCongestion_BucketFallbackToOverallAverage(t *testing.T) {
	f := newEngineFixture(t, monday)
	f.seedPattern(models.CongestionPattern{
		AvgDinner:  f64(40),
		AvgWeekday: f64(30),
		AvgWeekend: f64(20),
		AvgPopAll:  f64(50),
		// AvgLunch missing
	})

	target := tuesday.Add(12 * time.Hour)
	report, err := f.engine.ComputeCongestion(context.Background(), 1, &target)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.Equal(t, 50, report.PredictedCongestion)
}

func TestComputeCongestion_MissingPatternUsesDefaultWithoutCaching(t *testing.T) {
	f := newEngineFixture(t, monday)

	target := tuesday.Add(12 * time.Hour)
	report, err := f.engine.ComputeCongestion(context.Background(), 1, &target)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.Equal(t, config.CONGESTION_DEFAULT_BASE_SCORE, report.PredictedCongestion)

	// Nothing must have been cached for the missing pattern.
	keys, err := f.redisClient.Keys("congestion_base_v1:place-1:*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	assert.Empty(t, keys)

	// A pattern materializing later is picked up on the next query, not
	// after a TTL.
	f.seedPattern(fullPattern())
	report, err = f.engine.ComputeCongestion(context.Background(), 1, &target)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.Equal(t, 70, report.PredictedCongestion)
}

func TestComputeCongestion_SecondCallServedFromCache(t *testing.T) {
	f := newEngineFixture(t, monday)
	f.seedPattern(fullPattern())

	target := tuesday.Add(12 * time.Hour)
	first, err := f.engine.ComputeCongestion(context.Background(), 1, &target)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Break the pattern store: a cached base score must still be served.
	f.patternStore.FindErr = errors.New("pattern store down")

	second, err := f.engine.ComputeCongestion(context.Background(), 1, &target)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.Equal(t, first.PredictedCongestion, second.PredictedCongestion)
	assert.Equal(t, first.RealtimeCongestion, second.RealtimeCongestion)
}

func TestComputeCongestion_CacheReadFailureDegradesToRecompute(t *testing.T) {
	f := newEngineFixture(t, monday)
	f.seedPattern(fullPattern())
	f.redisClient.GetErr = errors.New("redis down")
	f.redisClient.SetErr = errors.New("redis down")

	target := tuesday.Add(12 * time.Hour)
	report, err := f.engine.ComputeCongestion(context.Background(), 1, &target)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.Equal(t, 70, report.PredictedCongestion)
}

func TestComputeCongestion_PatternStoreFailureIsFatal(t *testing.T) {
	f := newEngineFixture(t, monday)
	f.patternStore.FindErr = errors.New("pattern store down")

	target := tuesday.Add(12 * time.Hour)
	_, err := f.engine.ComputeCongestion(context.Background(), 1, &target)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestComputeCongestion_UnknownVenue(t *testing.T) {
	f := newEngineFixture(t, monday)

	_, err := f.engine.ComputeCongestion(context.Background(), 999, nil)
	if !errors.Is(err, ErrVenueNotFound) {
		t.Errorf("Expected ErrVenueNotFound, got %v", err)
	}
}

func TestComputeCongestion_RealtimeAggregation(t *testing.T) {
	f := newEngineFixture(t, monday)
	f.seedPattern(fullPattern())
	ctx := context.Background()
	target := tuesday.Add(9 * time.Hour) // weekday bucket, base 30

	// Expected: two intentions inside the ±30min window, one outside, one
	// for another venue.
	_ = f.visitStore.SaveIntention(ctx, &models.VisitIntention{
		UserID: "u1", VenueID: 1, IntendedTime: target.Add(10 * time.Minute), IntendedPeople: 3, IsActive: true,
	})
	_ = f.visitStore.SaveIntention(ctx, &models.VisitIntention{
		UserID: "u2", VenueID: 1, IntendedTime: target.Add(-20 * time.Minute), IntendedPeople: 2, IsActive: true,
	})
	_ = f.visitStore.SaveIntention(ctx, &models.VisitIntention{
		UserID: "u3", VenueID: 1, IntendedTime: target.Add(2 * time.Hour), IntendedPeople: 5, IsActive: true,
	})
	_ = f.visitStore.SaveIntention(ctx, &models.VisitIntention{
		UserID: "u4", VenueID: 2, IntendedTime: target, IntendedPeople: 4, IsActive: true,
	})

	// Current: one open visit with party 2, one with unknown party
	// (counts as 1), one closed, one invalid.
	exit := target.Add(-1 * time.Hour)
	_, _ = f.visitStore.SaveActualVisit(ctx, &models.ActualVisit{
		UserID: "u5", VenueID: 1, EntryTime: target.Add(-30 * time.Minute), IntendedPeople: intPtr(2), IsValidVisit: true,
	})
	_, _ = f.visitStore.SaveActualVisit(ctx, &models.ActualVisit{
		UserID: "u6", VenueID: 1, EntryTime: target.Add(-15 * time.Minute), IsValidVisit: true,
	})
	_, _ = f.visitStore.SaveActualVisit(ctx, &models.ActualVisit{
		UserID: "u7", VenueID: 1, EntryTime: target.Add(-2 * time.Hour), ExitTime: &exit, IntendedPeople: intPtr(6), IsValidVisit: true,
	})
	_, _ = f.visitStore.SaveActualVisit(ctx, &models.ActualVisit{
		UserID: "u8", VenueID: 1, EntryTime: target.Add(-10 * time.Minute), IntendedPeople: intPtr(9), IsValidVisit: false,
	})

	report, err := f.engine.ComputeCongestion(ctx, 1, &target)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	assert.Equal(t, 5, report.ExpectedVisitors)
	assert.Equal(t, 3, report.CurrentVisitors)
	// 30 + (5+3)*2 = 46
	assert.Equal(t, 46, report.RealtimeCongestion)
	assert.Equal(t, models.CongestionLevelModerate, report.CongestionLevel)
}

func TestComputeCongestion_ClampsAtHundred(t *testing.T) {
	f := newEngineFixture(t, monday)
	f.seedPattern(models.CongestionPattern{AvgWeekday: f64(95), AvgPopAll: f64(95)})
	ctx := context.Background()
	target := tuesday.Add(9 * time.Hour)

	_ = f.visitStore.SaveIntention(ctx, &models.VisitIntention{
		UserID: "u1", VenueID: 1, IntendedTime: target, IntendedPeople: 10, IsActive: true,
	})
	_, _ = f.visitStore.SaveActualVisit(ctx, &models.ActualVisit{
		UserID: "u2", VenueID: 1, EntryTime: target.Add(-5 * time.Minute), IntendedPeople: intPtr(10), IsValidVisit: true,
	})

	report, err := f.engine.ComputeCongestion(ctx, 1, &target)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// 95 + (10+10)*2 = 135, clamped.
	assert.Equal(t, 100, report.RealtimeCongestion)
	assert.Equal(t, models.CongestionLevelVeryHigh, report.CongestionLevel)
}

func TestCongestionLevelThresholds(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{0, models.CongestionLevelLow},
		{29, models.CongestionLevelLow},
		{30, models.CongestionLevelModerate},
		{59, models.CongestionLevelModerate},
		{60, models.CongestionLevelHigh},
		{79, models.CongestionLevelHigh},
		{80, models.CongestionLevelVeryHigh},
		{100, models.CongestionLevelVeryHigh},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("score %d", test.score), func(t *testing.T) {
			assert.Equal(t, test.expected, congestionLevel(test.score))
		})
	}
}

func TestInvalidateVenue_RemovesOnlyThatVenue(t *testing.T) {
	f := newEngineFixture(t, monday)
	ctx := context.Background()

	other := &models.Venue{ID: 2, PlaceID: "place-2", Name: "Other Venue"}
	_ = f.venueStore.Save(ctx, other)

	_ = f.cacheDao.SetBaseScore("place-1", 0, 9, 33, time.Hour)
	_ = f.cacheDao.SetBaseScore("place-1", 3, 12, 70, time.Hour)
	_ = f.cacheDao.SetBaseScore("place-2", 0, 9, 55, time.Hour)

	f.engine.InvalidateVenue(ctx, 1)

	_, hit, err := f.cacheDao.GetBaseScore("place-1", 0, 9)
	if err != nil {
		t.Fatalf("GetBaseScore failed: %v", err)
	}
	assert.False(t, hit)
	_, hit, _ = f.cacheDao.GetBaseScore("place-1", 3, 12)
	assert.False(t, hit)

	score, hit, _ := f.cacheDao.GetBaseScore("place-2", 0, 9)
	assert.True(t, hit)
	assert.Equal(t, 55, score)

	// Unknown venue and empty cache are silent no-ops.
	f.engine.InvalidateVenue(ctx, 999)
	f.engine.InvalidateVenue(ctx, 1)
}

func TestComputeDailyBaseCurve(t *testing.T) {
	f := newEngineFixture(t, monday)
	f.seedPattern(fullPattern())

	curve, venue, err := f.engine.ComputeDailyBaseCurve(context.Background(), 1, tuesday)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.Equal(t, "Test Venue", venue.Name)
	assert.Len(t, curve, 24)
	assert.Equal(t, 30, curve[9])  // weekday
	assert.Equal(t, 70, curve[12]) // lunch
	assert.Equal(t, 40, curve[19]) // dinner
}
