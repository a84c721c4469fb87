package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"congestion-server/models"
)

type recorderFixture struct {
	*engineFixture
	recorder *VisitTrackingService
	now      time.Time
}

func newRecorderFixture(t *testing.T) *recorderFixture {
	t.Helper()
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	ef := newEngineFixture(t, now)
	return &recorderFixture{
		engineFixture: ef,
		recorder:      NewVisitTrackingService(ef.visitStore, ef.engine, fixedClock{t: now}),
		now:           now,
	}
}

func (f *recorderFixture) cacheHasEntries(t *testing.T) bool {
	t.Helper()
	keys, err := f.redisClient.Keys("congestion_base_v1:place-1:*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	return len(keys) > 0
}

func TestRegisterIntention_Validation(t *testing.T) {
	f := newRecorderFixture(t)
	ctx := context.Background()
	future := f.now.Add(time.Hour)

	_, err := f.recorder.RegisterIntention(ctx, "u1", 1, future, 0)
	if !errors.Is(err, ErrInvalidPartySize) {
		t.Errorf("Expected ErrInvalidPartySize, got %v", err)
	}

	_, err = f.recorder.RegisterIntention(ctx, "u1", 1, f.now.Add(-time.Minute), 2)
	if !errors.Is(err, ErrPastIntendedTime) {
		t.Errorf("Expected ErrPastIntendedTime, got %v", err)
	}

	// Exactly now is not strictly in the future either.
	_, err = f.recorder.RegisterIntention(ctx, "u1", 1, f.now, 2)
	if !errors.Is(err, ErrPastIntendedTime) {
		t.Errorf("Expected ErrPastIntendedTime, got %v", err)
	}
}

func TestRegisterIntention_Success(t *testing.T) {
	f := newRecorderFixture(t)
	ctx := context.Background()

	receipt, err := f.recorder.RegisterIntention(ctx, "u1", 1, f.now.Add(time.Hour), 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.True(t, receipt.TrackingStarted)
	assert.NotZero(t, receipt.IntentionID)

	intentions, err := f.visitStore.FindActiveIntentions(ctx, 1, f.now.Add(time.Hour), 30)
	if err != nil {
		t.Fatalf("FindActiveIntentions failed: %v", err)
	}
	assert.Len(t, intentions, 1)
	assert.Equal(t, 3, intentions[0].IntendedPeople)
	assert.True(t, intentions[0].IsActive)
}

func TestRegisterIntention_InvalidatesCache(t *testing.T) {
	f := newRecorderFixture(t)
	ctx := context.Background()

	_ = f.cacheDao.SetBaseScore("place-1", 1, 10, 42, time.Hour)
	assert.True(t, f.cacheHasEntries(t))

	_, err := f.recorder.RegisterIntention(ctx, "u1", 1, f.now.Add(time.Hour), 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.False(t, f.cacheHasEntries(t))
}

func TestRecordEntry_CreatesOpenVisit(t *testing.T) {
	f := newRecorderFixture(t)
	ctx := context.Background()
	_ = f.cacheDao.SetBaseScore("place-1", 1, 10, 42, time.Hour)

	receipt, err := f.recorder.RecordEntry(ctx, "u1", 1, f.now, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.False(t, receipt.IsDuplicate)
	assert.NotZero(t, receipt.VisitID)
	assert.False(t, f.cacheHasEntries(t))

	open, err := f.visitStore.FindOpenVisit(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("FindOpenVisit failed: %v", err)
	}
	if open == nil {
		t.Fatal("Expected an open visit")
	}
	assert.True(t, open.IsValidVisit)
	assert.Equal(t, 2, open.PartySize())
}

func TestRecordEntry_DuplicateIsIdempotent(t *testing.T) {
	f := newRecorderFixture(t)
	ctx := context.Background()

	first, err := f.recorder.RecordEntry(ctx, "u1", 1, f.now, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	second, err := f.recorder.RecordEntry(ctx, "u1", 1, f.now.Add(time.Minute), 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.True(t, second.IsDuplicate)
	assert.Equal(t, first.VisitID, second.VisitID)

	open, err := f.visitStore.FindOpenVisitsForVenue(ctx, 1)
	if err != nil {
		t.Fatalf("FindOpenVisitsForVenue failed: %v", err)
	}
	assert.Len(t, open, 1)
}

func TestRecordEntry_ConcurrentEntriesKeepOneOpenVisit(t *testing.T) {
	f := newRecorderFixture(t)
	ctx := context.Background()

	receipts := make([]*models.EntryReceipt, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			receipt, err := f.recorder.RecordEntry(ctx, "u1", 1, f.now, 2)
			if err != nil {
				t.Errorf("RecordEntry failed: %v", err)
				return
			}
			receipts[i] = receipt
		}(i)
	}
	wg.Wait()

	open, err := f.visitStore.FindOpenVisitsForVenue(ctx, 1)
	if err != nil {
		t.Fatalf("FindOpenVisitsForVenue failed: %v", err)
	}
	assert.Len(t, open, 1)

	duplicates := 0
	for _, r := range receipts {
		if r == nil {
			t.Fatal("missing receipt")
		}
		assert.Equal(t, open[0].ID, r.VisitID)
		if r.IsDuplicate {
			duplicates++
		}
	}
	assert.Equal(t, 1, duplicates)
}

func TestRecordExit_NoOpenVisit(t *testing.T) {
	f := newRecorderFixture(t)

	receipt, err := f.recorder.RecordExit(context.Background(), "u1", 1, f.now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.False(t, receipt.Success)
}

func TestRecordExit_ShortStayMarkedInvalid(t *testing.T) {
	f := newRecorderFixture(t)
	ctx := context.Background()

	entry, err := f.recorder.RecordEntry(ctx, "u1", 1, f.now, 2)
	if err != nil {
		t.Fatalf("RecordEntry failed: %v", err)
	}

	receipt, err := f.recorder.RecordExit(ctx, "u1", 1, f.now.Add(4*time.Minute))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.True(t, receipt.Success)
	assert.Equal(t, entry.VisitID, receipt.VisitID)
	if assert.NotNil(t, receipt.StayTimeMinutes) {
		assert.Equal(t, 4, *receipt.StayTimeMinutes)
	}
	assert.False(t, receipt.IsValidVisit)

	// The closed visit no longer counts toward occupancy.
	open, _ := f.visitStore.FindOpenVisitsForVenue(ctx, 1)
	assert.Empty(t, open)
}

func TestRecordExit_NormalStayStaysValid(t *testing.T) {
	f := newRecorderFixture(t)
	ctx := context.Background()
	_ = f.cacheDao.SetBaseScore("place-1", 1, 10, 42, time.Hour)

	_, err := f.recorder.RecordEntry(ctx, "u1", 1, f.now, 2)
	if err != nil {
		t.Fatalf("RecordEntry failed: %v", err)
	}
	_ = f.cacheDao.SetBaseScore("place-1", 1, 10, 42, time.Hour)

	receipt, err := f.recorder.RecordExit(ctx, "u1", 1, f.now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assert.True(t, receipt.Success)
	if assert.NotNil(t, receipt.StayTimeMinutes) {
		assert.Equal(t, 10, *receipt.StayTimeMinutes)
	}
	assert.True(t, receipt.IsValidVisit)
	assert.False(t, f.cacheHasEntries(t))

	// The pair may start a fresh visit after closing the previous one.
	again, err := f.recorder.RecordEntry(ctx, "u1", 1, f.now.Add(time.Hour), 2)
	if err != nil {
		t.Fatalf("Re-entry failed: %v", err)
	}
	assert.False(t, again.IsDuplicate)
	assert.NotEqual(t, receipt.VisitID, again.VisitID)
}
