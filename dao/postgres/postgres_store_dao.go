package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"congestion-server/models"
)

// PostgresVenueDAO implements dao.VenueStore and dao.PatternStore over the
// shared pgx pool.
type PostgresVenueDAO struct {
	store *PostgresStore
}

// NewPostgresVenueDAO initializes a PostgresVenueDAO.
func NewPostgresVenueDAO(store *PostgresStore) *PostgresVenueDAO {
	return &PostgresVenueDAO{store: store}
}

const venueColumns = `id, place_id, name, COALESCE(address, ''), latitude, longitude,
	COALESCE(category, ''), COALESCE(phone, ''), created_at, updated_at`

func (d *PostgresVenueDAO) scanVenue(row pgx.Row) (*models.Venue, error) {
	var v models.Venue
	err := row.Scan(&v.ID, &v.PlaceID, &v.Name, &v.Address, &v.Latitude, &v.Longitude,
		&v.Category, &v.Phone, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByID looks up a venue by internal id.
func (d *PostgresVenueDAO) FindByID(ctx context.Context, id int64) (*models.Venue, error) {
	sql := fmt.Sprintf(`SELECT %s FROM venues WHERE id = $1`, venueColumns)
	return d.scanVenue(d.store.Pool.QueryRow(ctx, sql, id))
}

// FindByPlaceID looks up a venue by its external place identifier.
func (d *PostgresVenueDAO) FindByPlaceID(ctx context.Context, placeID string) (*models.Venue, error) {
	sql := fmt.Sprintf(`SELECT %s FROM venues WHERE place_id = $1`, venueColumns)
	return d.scanVenue(d.store.Pool.QueryRow(ctx, sql, placeID))
}

// FindAll lists the whole venue catalog.
func (d *PostgresVenueDAO) FindAll(ctx context.Context) ([]models.Venue, error) {
	sql := fmt.Sprintf(`SELECT %s FROM venues ORDER BY id`, venueColumns)
	rows, err := d.store.Pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []models.Venue
	for rows.Next() {
		var v models.Venue
		if err := rows.Scan(&v.ID, &v.PlaceID, &v.Name, &v.Address, &v.Latitude, &v.Longitude,
			&v.Category, &v.Phone, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

// Save upserts a venue by place id.
func (d *PostgresVenueDAO) Save(ctx context.Context, venue *models.Venue) error {
	sql := `INSERT INTO venues (place_id, name, address, latitude, longitude, category, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (place_id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			category = EXCLUDED.category,
			phone = EXCLUDED.phone,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return d.store.Pool.QueryRow(ctx, sql,
		venue.PlaceID, venue.Name, venue.Address, venue.Latitude, venue.Longitude,
		venue.Category, venue.Phone,
	).Scan(&venue.ID, &venue.CreatedAt, &venue.UpdatedAt)
}

// FindPattern retrieves the materialized congestion pattern for a place id.
func (d *PostgresVenueDAO) FindPattern(ctx context.Context, placeID string) (*models.CongestionPattern, error) {
	sql := `SELECT place_id, COALESCE(venue_name, ''), cluster, avg_pop_all, max_pop,
			avg_lunch, avg_dinner, avg_weekday, avg_weekend, updated_at
		FROM congestion_patterns WHERE place_id = $1`
	var p models.CongestionPattern
	err := d.store.Pool.QueryRow(ctx, sql, placeID).Scan(
		&p.PlaceID, &p.VenueName, &p.Cluster, &p.AvgPopAll, &p.MaxPop,
		&p.AvgLunch, &p.AvgDinner, &p.AvgWeekday, &p.AvgWeekend, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertPattern writes the latest analytic output for a place id.
func (d *PostgresVenueDAO) UpsertPattern(ctx context.Context, pattern *models.CongestionPattern) error {
	sql := `INSERT INTO congestion_patterns
			(place_id, venue_name, cluster, avg_pop_all, max_pop, avg_lunch, avg_dinner, avg_weekday, avg_weekend)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (place_id) DO UPDATE SET
			venue_name = EXCLUDED.venue_name,
			cluster = EXCLUDED.cluster,
			avg_pop_all = EXCLUDED.avg_pop_all,
			max_pop = EXCLUDED.max_pop,
			avg_lunch = EXCLUDED.avg_lunch,
			avg_dinner = EXCLUDED.avg_dinner,
			avg_weekday = EXCLUDED.avg_weekday,
			avg_weekend = EXCLUDED.avg_weekend,
			updated_at = NOW()`
	_, err := d.store.Pool.Exec(ctx, sql,
		pattern.PlaceID, pattern.VenueName, pattern.Cluster, pattern.AvgPopAll, pattern.MaxPop,
		pattern.AvgLunch, pattern.AvgDinner, pattern.AvgWeekday, pattern.AvgWeekend)
	return err
}
