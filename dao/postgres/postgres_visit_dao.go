package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"congestion-server/models"
)

// PostgresVisitDAO implements dao.VisitStore over the shared pgx pool.
type PostgresVisitDAO struct {
	store *PostgresStore
}

// NewPostgresVisitDAO initializes a PostgresVisitDAO.
func NewPostgresVisitDAO(store *PostgresStore) *PostgresVisitDAO {
	return &PostgresVisitDAO{store: store}
}

// SaveIntention persists a new visit intention.
func (d *PostgresVisitDAO) SaveIntention(ctx context.Context, intention *models.VisitIntention) error {
	sql := `INSERT INTO visit_intentions (user_id, venue_id, intended_time, intended_people, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, intention_timestamp`
	return d.store.Pool.QueryRow(ctx, sql,
		intention.UserID, intention.VenueID, intention.IntendedTime,
		intention.IntendedPeople, intention.IsActive,
	).Scan(&intention.ID, &intention.CreatedAt)
}

// FindActiveIntentions returns the active intentions for a venue whose
// intended time falls within ±windowMinutes of center.
func (d *PostgresVisitDAO) FindActiveIntentions(ctx context.Context, venueID int64, center time.Time, windowMinutes int) ([]models.VisitIntention, error) {
	window := time.Duration(windowMinutes) * time.Minute
	sql := `SELECT id, user_id, venue_id, intended_time, intended_people, intention_timestamp, is_active
		FROM visit_intentions
		WHERE venue_id = $1 AND is_active = TRUE AND intended_time BETWEEN $2 AND $3`
	rows, err := d.store.Pool.Query(ctx, sql, venueID, center.Add(-window), center.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intentions []models.VisitIntention
	for rows.Next() {
		var in models.VisitIntention
		if err := rows.Scan(&in.ID, &in.UserID, &in.VenueID, &in.IntendedTime,
			&in.IntendedPeople, &in.CreatedAt, &in.IsActive); err != nil {
			return nil, err
		}
		intentions = append(intentions, in)
	}
	return intentions, rows.Err()
}

// SaveActualVisit inserts a new open visit. The partial unique index on
// (user_id, venue_id) for open rows makes the insert the atomic dedup
// point: under a concurrent entry for the same pair exactly one insert
// lands, the other reports created=false.
func (d *PostgresVisitDAO) SaveActualVisit(ctx context.Context, visit *models.ActualVisit) (bool, error) {
	sql := `INSERT INTO actual_visits (user_id, venue_id, actual_entry_time, intended_people, is_valid_visit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, venue_id) WHERE actual_exit_time IS NULL DO NOTHING
		RETURNING id, created_at`
	err := d.store.Pool.QueryRow(ctx, sql,
		visit.UserID, visit.VenueID, visit.EntryTime, visit.IntendedPeople, visit.IsValidVisit,
	).Scan(&visit.ID, &visit.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert actual visit: %w", err)
	}
	return true, nil
}

const visitColumns = `id, user_id, venue_id, actual_entry_time, actual_exit_time,
	intended_people, is_valid_visit, created_at`

// FindOpenVisit returns the open visit for a (user, venue) pair, if any.
func (d *PostgresVisitDAO) FindOpenVisit(ctx context.Context, userID string, venueID int64) (*models.ActualVisit, error) {
	sql := fmt.Sprintf(`SELECT %s FROM actual_visits
		WHERE user_id = $1 AND venue_id = $2 AND actual_exit_time IS NULL`, visitColumns)
	var v models.ActualVisit
	err := d.store.Pool.QueryRow(ctx, sql, userID, venueID).Scan(
		&v.ID, &v.UserID, &v.VenueID, &v.EntryTime, &v.ExitTime,
		&v.IntendedPeople, &v.IsValidVisit, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindOpenVisitsForVenue returns the open, valid visits for a venue.
func (d *PostgresVisitDAO) FindOpenVisitsForVenue(ctx context.Context, venueID int64) ([]models.ActualVisit, error) {
	sql := fmt.Sprintf(`SELECT %s FROM actual_visits
		WHERE venue_id = $1 AND actual_exit_time IS NULL AND is_valid_visit = TRUE`, visitColumns)
	rows, err := d.store.Pool.Query(ctx, sql, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []models.ActualVisit
	for rows.Next() {
		var v models.ActualVisit
		if err := rows.Scan(&v.ID, &v.UserID, &v.VenueID, &v.EntryTime, &v.ExitTime,
			&v.IntendedPeople, &v.IsValidVisit, &v.CreatedAt); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// UpdateExit records the exit time on a visit and returns the updated row,
// or nil if the visit does not exist.
func (d *PostgresVisitDAO) UpdateExit(ctx context.Context, visitID int64, exitTime time.Time) (*models.ActualVisit, error) {
	sql := fmt.Sprintf(`UPDATE actual_visits SET actual_exit_time = $2
		WHERE id = $1 RETURNING %s`, visitColumns)
	var v models.ActualVisit
	err := d.store.Pool.QueryRow(ctx, sql, visitID, exitTime).Scan(
		&v.ID, &v.UserID, &v.VenueID, &v.EntryTime, &v.ExitTime,
		&v.IntendedPeople, &v.IsValidVisit, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MarkVisitInvalid clears the validity flag on a visit.
func (d *PostgresVisitDAO) MarkVisitInvalid(ctx context.Context, visitID int64) error {
	sql := `UPDATE actual_visits SET is_valid_visit = FALSE WHERE id = $1`
	_, err := d.store.Pool.Exec(ctx, sql, visitID)
	return err
}
