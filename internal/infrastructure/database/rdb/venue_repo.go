package rdb

import (
	"context"
	"log/slog"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

// VenueRepository implements entity.VenueRepository for PostgreSQL.
type VenueRepository struct {
	db *Database
}

// NewVenueRepository creates a new venue repository instance.
func NewVenueRepository(db *Database) *VenueRepository {
	return &VenueRepository{db: db}
}

var _ entity.VenueRepository = (*VenueRepository)(nil)

const (
	insertVenueQuery = `
		INSERT INTO venues (id, name, slug, city_id, latitude, longitude, create_time, update_time)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	getVenueQuery = `
		SELECT id, name, slug, city_id, latitude, longitude, create_time, update_time
		FROM venues WHERE id = $1
	`
	getVenueByNameQuery = `
		SELECT id, name, slug, city_id, latitude, longitude, create_time, update_time
		FROM venues WHERE name = $1
	`
)

func scanVenue(row interface{ Scan(...any) error }) (*entity.Venue, error) {
	var v entity.Venue
	if err := row.Scan(&v.ID, &v.Name, &v.Slug, &v.CityID, &v.Latitude, &v.Longitude, &v.CreateTime, &v.UpdateTime); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VenueRepository) Create(ctx context.Context, venue *entity.Venue) error {
	_, err := r.db.Pool.Exec(ctx, insertVenueQuery, venue.ID, venue.Name, venue.Slug, venue.CityID, venue.Latitude, venue.Longitude)
	if err != nil {
		return toAppErr(err, "failed to insert venue", slog.String("venue_id", venue.ID))
	}
	return nil
}

func (r *VenueRepository) Get(ctx context.Context, id string) (*entity.Venue, error) {
	v, err := scanVenue(r.db.Pool.QueryRow(ctx, getVenueQuery, id))
	if err != nil {
		return nil, toAppErr(err, "failed to get venue", slog.String("venue_id", id))
	}
	return v, nil
}

func (r *VenueRepository) GetByName(ctx context.Context, name string) (*entity.Venue, error) {
	v, err := scanVenue(r.db.Pool.QueryRow(ctx, getVenueByNameQuery, name))
	if err != nil {
		return nil, toAppErr(err, "failed to get venue by name", slog.String("name", name))
	}
	return v, nil
}

// OrganizerRepository implements entity.OrganizerRepository for PostgreSQL.
type OrganizerRepository struct {
	db *Database
}

// NewOrganizerRepository creates a new organizer repository instance.
func NewOrganizerRepository(db *Database) *OrganizerRepository {
	return &OrganizerRepository{db: db}
}

var _ entity.OrganizerRepository = (*OrganizerRepository)(nil)

const (
	insertOrganizerQuery = `
		INSERT INTO organizers (id, name, slug, create_time)
		VALUES ($1, $2, $3, NOW())
	`
	getOrganizerByNameQuery = `
		SELECT id, name, slug, create_time FROM organizers WHERE name = $1
	`
	getOrganizerQuery = `
		SELECT id, name, slug, create_time FROM organizers WHERE id = $1
	`
)

func (r *OrganizerRepository) Create(ctx context.Context, organizer *entity.Organizer) error {
	_, err := r.db.Pool.Exec(ctx, insertOrganizerQuery, organizer.ID, organizer.Name, organizer.Slug)
	if err != nil {
		return toAppErr(err, "failed to insert organizer", slog.String("organizer_id", organizer.ID))
	}
	return nil
}

func (r *OrganizerRepository) Get(ctx context.Context, id string) (*entity.Organizer, error) {
	var o entity.Organizer
	err := r.db.Pool.QueryRow(ctx, getOrganizerQuery, id).Scan(&o.ID, &o.Name, &o.Slug, &o.CreateTime)
	if err != nil {
		return nil, toAppErr(err, "failed to get organizer", slog.String("organizer_id", id))
	}
	return &o, nil
}

func (r *OrganizerRepository) GetByName(ctx context.Context, name string) (*entity.Organizer, error) {
	var o entity.Organizer
	err := r.db.Pool.QueryRow(ctx, getOrganizerByNameQuery, name).Scan(&o.ID, &o.Name, &o.Slug, &o.CreateTime)
	if err != nil {
		return nil, toAppErr(err, "failed to get organizer by name", slog.String("name", name))
	}
	return &o, nil
}
