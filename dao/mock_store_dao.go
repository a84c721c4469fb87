package dao

import (
	"context"
	"sync"
	"time"

	"congestion-server/models"
)

// MockVenueStore is an in-memory VenueStore for testing purposes.
type MockVenueStore struct {
	mu     sync.RWMutex
	venues map[int64]models.Venue
}

// NewMockVenueStore initializes an empty MockVenueStore.
func NewMockVenueStore() *MockVenueStore {
	return &MockVenueStore{venues: make(map[int64]models.Venue)}
}

func (m *MockVenueStore) FindByID(ctx context.Context, id int64) (*models.Venue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.venues[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *MockVenueStore) FindByPlaceID(ctx context.Context, placeID string) (*models.Venue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.venues {
		if v.PlaceID == placeID {
			venue := v
			return &venue, nil
		}
	}
	return nil, nil
}

func (m *MockVenueStore) FindAll(ctx context.Context) ([]models.Venue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	venues := make([]models.Venue, 0, len(m.venues))
	for _, v := range m.venues {
		venues = append(venues, v)
	}
	return venues, nil
}

func (m *MockVenueStore) Save(ctx context.Context, venue *models.Venue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if venue.ID == 0 {
		venue.ID = int64(len(m.venues) + 1)
	}
	m.venues[venue.ID] = *venue
	return nil
}

// MockPatternStore is an in-memory PatternStore for testing purposes.
type MockPatternStore struct {
	mu       sync.RWMutex
	patterns map[string]models.CongestionPattern

	// FindErr simulates an unavailable pattern store.
	FindErr error
}

// NewMockPatternStore initializes an empty MockPatternStore.
func NewMockPatternStore() *MockPatternStore {
	return &MockPatternStore{patterns: make(map[string]models.CongestionPattern)}
}

func (m *MockPatternStore) FindPattern(ctx context.Context, placeID string) (*models.CongestionPattern, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.patterns[placeID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MockPatternStore) UpsertPattern(ctx context.Context, pattern *models.CongestionPattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns[pattern.PlaceID] = *pattern
	return nil
}

// MockVisitStore is an in-memory VisitStore for testing purposes. The
// one-open-visit invariant is enforced under its mutex, mirroring the
// partial unique index the Postgres store relies on.
type MockVisitStore struct {
	mu         sync.Mutex
	intentions []models.VisitIntention
	visits     []models.ActualVisit
	nextID     int64
}

// NewMockVisitStore initializes an empty MockVisitStore.
func NewMockVisitStore() *MockVisitStore {
	return &MockVisitStore{nextID: 1}
}

func (m *MockVisitStore) SaveIntention(ctx context.Context, intention *models.VisitIntention) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	intention.ID = m.nextID
	m.nextID++
	m.intentions = append(m.intentions, *intention)
	return nil
}

func (m *MockVisitStore) FindActiveIntentions(ctx context.Context, venueID int64, center time.Time, windowMinutes int) ([]models.VisitIntention, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	window := time.Duration(windowMinutes) * time.Minute
	start := center.Add(-window)
	end := center.Add(window)

	var matched []models.VisitIntention
	for _, in := range m.intentions {
		if in.VenueID != venueID || !in.IsActive {
			continue
		}
		if in.IntendedTime.Before(start) || in.IntendedTime.After(end) {
			continue
		}
		matched = append(matched, in)
	}
	return matched, nil
}

func (m *MockVisitStore) SaveActualVisit(ctx context.Context, visit *models.ActualVisit) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.visits {
		if v.UserID == visit.UserID && v.VenueID == visit.VenueID && v.ExitTime == nil {
			return false, nil
		}
	}
	visit.ID = m.nextID
	m.nextID++
	m.visits = append(m.visits, *visit)
	return true, nil
}

func (m *MockVisitStore) FindOpenVisit(ctx context.Context, userID string, venueID int64) (*models.ActualVisit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.visits {
		if v.UserID == userID && v.VenueID == venueID && v.ExitTime == nil {
			visit := v
			return &visit, nil
		}
	}
	return nil, nil
}

func (m *MockVisitStore) FindOpenVisitsForVenue(ctx context.Context, venueID int64) ([]models.ActualVisit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var open []models.ActualVisit
	for _, v := range m.visits {
		if v.VenueID == venueID && v.ExitTime == nil && v.IsValidVisit {
			open = append(open, v)
		}
	}
	return open, nil
}

func (m *MockVisitStore) UpdateExit(ctx context.Context, visitID int64, exitTime time.Time) (*models.ActualVisit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.visits {
		if m.visits[i].ID == visitID {
			t := exitTime
			m.visits[i].ExitTime = &t
			visit := m.visits[i]
			return &visit, nil
		}
	}
	return nil, nil
}

func (m *MockVisitStore) MarkVisitInvalid(ctx context.Context, visitID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.visits {
		if m.visits[i].ID == visitID {
			m.visits[i].IsValidVisit = false
			return nil
		}
	}
	return nil
}
