package rdb

import (
	"context"
	"log/slog"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
)

// CityRepository implements entity.CityRepository for PostgreSQL.
type CityRepository struct {
	db *Database
}

// NewCityRepository creates a new city repository instance.
func NewCityRepository(db *Database) *CityRepository {
	return &CityRepository{db: db}
}

var _ entity.CityRepository = (*CityRepository)(nil)

const (
	getCityQuery = `
		SELECT id, name, slug, region_id, normalized_name, latitude, longitude, create_time
		FROM cities WHERE id = $1
	`
	findCityByNormalizedNameQuery = `
		SELECT c.id, c.name, c.slug, c.region_id, c.normalized_name, c.latitude, c.longitude, c.create_time
		FROM cities c
		WHERE c.normalized_name = $1
		UNION
		SELECT c.id, c.name, c.slug, c.region_id, c.normalized_name, c.latitude, c.longitude, c.create_time
		FROM cities c
		JOIN city_variants v ON v.city_id = c.id
		WHERE v.normalized_name = $1
		LIMIT 1
	`
	listCitiesQuery = `
		SELECT id, name, slug, region_id, normalized_name, latitude, longitude, create_time
		FROM cities
	`
	insertCityVariantQuery = `
		INSERT INTO city_variants (city_id, normalized_name)
		VALUES ($1, $2)
		ON CONFLICT (normalized_name) DO NOTHING
	`
)

func scanCity(row interface{ Scan(...any) error }) (*entity.City, error) {
	var c entity.City
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.RegionID, &c.NormalizedName, &c.Latitude, &c.Longitude, &c.CreateTime); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CityRepository) Get(ctx context.Context, id string) (*entity.City, error) {
	c, err := scanCity(r.db.Pool.QueryRow(ctx, getCityQuery, id))
	if err != nil {
		return nil, toAppErr(err, "failed to get city", slog.String("city_id", id))
	}
	return c, nil
}

func (r *CityRepository) FindByNormalizedName(ctx context.Context, normalized string) (*entity.City, error) {
	c, err := scanCity(r.db.Pool.QueryRow(ctx, findCityByNormalizedNameQuery, normalized))
	if err != nil {
		return nil, toAppErr(err, "failed to find city by normalized name", slog.String("normalized_name", normalized))
	}
	return c, nil
}

func (r *CityRepository) ListAll(ctx context.Context) ([]*entity.City, error) {
	rows, err := r.db.Pool.Query(ctx, listCitiesQuery)
	if err != nil {
		return nil, toAppErr(err, "failed to list cities")
	}
	defer rows.Close()

	var cities []*entity.City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan city")
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (r *CityRepository) AddVariant(ctx context.Context, variant entity.CityVariant) error {
	tag, err := r.db.Pool.Exec(ctx, insertCityVariantQuery, variant.CityID, variant.NormalizedName)
	if err != nil {
		return toAppErr(err, "failed to add city variant", slog.String("city_id", variant.CityID))
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(codes.AlreadyExists, "city variant already registered", slog.String("normalized_name", variant.NormalizedName))
	}
	return nil
}

// RegionRepository implements entity.RegionRepository for PostgreSQL.
type RegionRepository struct {
	db *Database
}

// NewRegionRepository creates a new region repository instance.
func NewRegionRepository(db *Database) *RegionRepository {
	return &RegionRepository{db: db}
}

var _ entity.RegionRepository = (*RegionRepository)(nil)

const (
	getRegionQuery     = `SELECT id, name, slug, create_time FROM regions WHERE id = $1`
	listRegionsQuery   = `SELECT id, name, slug, create_time FROM regions`
)

func (r *RegionRepository) Get(ctx context.Context, id string) (*entity.Region, error) {
	var rg entity.Region
	if err := r.db.Pool.QueryRow(ctx, getRegionQuery, id).Scan(&rg.ID, &rg.Name, &rg.Slug, &rg.CreateTime); err != nil {
		return nil, toAppErr(err, "failed to get region", slog.String("region_id", id))
	}
	return &rg, nil
}

func (r *RegionRepository) ListAll(ctx context.Context) ([]*entity.Region, error) {
	rows, err := r.db.Pool.Query(ctx, listRegionsQuery)
	if err != nil {
		return nil, toAppErr(err, "failed to list regions")
	}
	defer rows.Close()

	var regions []*entity.Region
	for rows.Next() {
		var rg entity.Region
		if err := rows.Scan(&rg.ID, &rg.Name, &rg.Slug, &rg.CreateTime); err != nil {
			return nil, toAppErr(err, "failed to scan region")
		}
		regions = append(regions, &rg)
	}
	return regions, rows.Err()
}
