package rdb

import (
	"context"
	"log/slog"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

// ArtistRepository implements entity.ArtistRepository for PostgreSQL.
type ArtistRepository struct {
	db *Database
}

// NewArtistRepository creates a new artist repository instance.
func NewArtistRepository(db *Database) *ArtistRepository {
	return &ArtistRepository{db: db}
}

var _ entity.ArtistRepository = (*ArtistRepository)(nil)

const (
	insertArtistQuery = `
		INSERT INTO artists (id, name, slug, create_time)
		VALUES ($1, $2, $3, NOW())
	`
	getArtistByNameQuery = `
		SELECT id, name, slug, create_time FROM artists WHERE name = $1
	`
	listArtistsByEventQuery = `
		SELECT a.id, a.name, a.slug, a.create_time
		FROM artists a
		JOIN event_artists ea ON ea.artist_id = a.id
		WHERE ea.event_id = $1
	`
	linkArtistToEventQuery = `
		INSERT INTO event_artists (event_id, artist_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, artist_id) DO NOTHING
	`
	relinkArtistEventQuery = `
		INSERT INTO event_artists (event_id, artist_id)
		SELECT $2, artist_id FROM event_artists WHERE event_id = $1
		ON CONFLICT (event_id, artist_id) DO NOTHING
	`
	deleteArtistLinksQuery = `DELETE FROM event_artists WHERE event_id = $1`
)

func (r *ArtistRepository) Create(ctx context.Context, artist *entity.Artist) error {
	_, err := r.db.Pool.Exec(ctx, insertArtistQuery, artist.ID, artist.Name, artist.Slug)
	if err != nil {
		return toAppErr(err, "failed to insert artist", slog.String("artist_id", artist.ID))
	}
	return nil
}

func (r *ArtistRepository) GetByName(ctx context.Context, name string) (*entity.Artist, error) {
	var a entity.Artist
	err := r.db.Pool.QueryRow(ctx, getArtistByNameQuery, name).Scan(&a.ID, &a.Name, &a.Slug, &a.CreateTime)
	if err != nil {
		return nil, toAppErr(err, "failed to get artist by name", slog.String("name", name))
	}
	return &a, nil
}

func (r *ArtistRepository) ListByEvent(ctx context.Context, eventID string) ([]*entity.Artist, error) {
	rows, err := r.db.Pool.Query(ctx, listArtistsByEventQuery, eventID)
	if err != nil {
		return nil, toAppErr(err, "failed to list artists by event", slog.String("event_id", eventID))
	}
	defer rows.Close()

	var artists []*entity.Artist
	for rows.Next() {
		var a entity.Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.Slug, &a.CreateTime); err != nil {
			return nil, toAppErr(err, "failed to scan artist")
		}
		artists = append(artists, &a)
	}
	return artists, rows.Err()
}

func (r *ArtistRepository) LinkToEvent(ctx context.Context, eventID, artistID string) error {
	_, err := r.db.Pool.Exec(ctx, linkArtistToEventQuery, eventID, artistID)
	if err != nil {
		return toAppErr(err, "failed to link artist to event", slog.String("event_id", eventID), slog.String("artist_id", artistID))
	}
	return nil
}

func (r *ArtistRepository) RelinkEvent(ctx context.Context, fromEventID, toEventID string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return toAppErr(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, relinkArtistEventQuery, fromEventID, toEventID); err != nil {
		return toAppErr(err, "failed to copy artist links", slog.String("from_event_id", fromEventID), slog.String("to_event_id", toEventID))
	}
	if _, err := tx.Exec(ctx, deleteArtistLinksQuery, fromEventID); err != nil {
		return toAppErr(err, "failed to delete old artist links", slog.String("from_event_id", fromEventID))
	}
	if err := tx.Commit(ctx); err != nil {
		return toAppErr(err, "failed to commit transaction")
	}
	return nil
}

// GenreRepository implements entity.GenreRepository for PostgreSQL.
type GenreRepository struct {
	db *Database
}

// NewGenreRepository creates a new genre repository instance.
func NewGenreRepository(db *Database) *GenreRepository {
	return &GenreRepository{db: db}
}

var _ entity.GenreRepository = (*GenreRepository)(nil)

const (
	findGenreByNormalizedNameQuery = `
		SELECT id, name, slug FROM genres WHERE normalized_name = $1
	`
	listGenresByEventQuery = `
		SELECT g.id, g.name, g.slug
		FROM genres g
		JOIN event_genres eg ON eg.genre_id = g.id
		WHERE eg.event_id = $1
	`
	linkGenreToEventQuery = `
		INSERT INTO event_genres (event_id, genre_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, genre_id) DO NOTHING
	`
)

func (r *GenreRepository) FindByNormalizedName(ctx context.Context, normalized string) (*entity.Genre, error) {
	var g entity.Genre
	err := r.db.Pool.QueryRow(ctx, findGenreByNormalizedNameQuery, normalized).Scan(&g.ID, &g.Name, &g.Slug)
	if err != nil {
		return nil, toAppErr(err, "failed to find genre by normalized name", slog.String("normalized_name", normalized))
	}
	return &g, nil
}

func (r *GenreRepository) ListByEvent(ctx context.Context, eventID string) ([]*entity.Genre, error) {
	rows, err := r.db.Pool.Query(ctx, listGenresByEventQuery, eventID)
	if err != nil {
		return nil, toAppErr(err, "failed to list genres by event", slog.String("event_id", eventID))
	}
	defer rows.Close()

	var genres []*entity.Genre
	for rows.Next() {
		var g entity.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
			return nil, toAppErr(err, "failed to scan genre")
		}
		genres = append(genres, &g)
	}
	return genres, rows.Err()
}

func (r *GenreRepository) LinkToEvent(ctx context.Context, eventID, genreID string) error {
	_, err := r.db.Pool.Exec(ctx, linkGenreToEventQuery, eventID, genreID)
	if err != nil {
		return toAppErr(err, "failed to link genre to event", slog.String("event_id", eventID), slog.String("genre_id", genreID))
	}
	return nil
}
