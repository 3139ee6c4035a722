package rdb

import (
	"context"
	"log/slog"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

// EditorialActionRepository implements entity.EditorialActionRepository for PostgreSQL.
type EditorialActionRepository struct {
	db *Database
}

// NewEditorialActionRepository creates a new editorial action repository instance.
func NewEditorialActionRepository(db *Database) *EditorialActionRepository {
	return &EditorialActionRepository{db: db}
}

var _ entity.EditorialActionRepository = (*EditorialActionRepository)(nil)

const (
	insertEditorialActionQuery = `
		INSERT INTO editorial_actions (id, type, event_id, actor, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	listEditorialActionsByEventQuery = `
		SELECT id, type, event_id, actor, payload, created_at
		FROM editorial_actions WHERE event_id = $1
		ORDER BY created_at DESC
	`
)

func (r *EditorialActionRepository) Create(ctx context.Context, action *entity.EditorialAction) error {
	if action.EventID == "" || action.Actor == "" {
		return apperr.New(codes.InvalidArgument, "editorial action requires an event id and an actor")
	}
	_, err := r.db.Pool.Exec(ctx, insertEditorialActionQuery,
		action.ID, string(action.Type), action.EventID, action.Actor, action.Payload,
	)
	if err != nil {
		return toAppErr(err, "failed to insert editorial action", slog.String("event_id", action.EventID))
	}
	return nil
}

func (r *EditorialActionRepository) ListByEvent(ctx context.Context, eventID string) ([]*entity.EditorialAction, error) {
	rows, err := r.db.Pool.Query(ctx, listEditorialActionsByEventQuery, eventID)
	if err != nil {
		return nil, toAppErr(err, "failed to list editorial actions", slog.String("event_id", eventID))
	}
	defer rows.Close()

	var actions []*entity.EditorialAction
	for rows.Next() {
		var a entity.EditorialAction
		var typ string
		if err := rows.Scan(&a.ID, &typ, &a.EventID, &a.Actor, &a.Payload, &a.CreatedAt); err != nil {
			return nil, toAppErr(err, "failed to scan editorial action")
		}
		a.Type = entity.EditorialActionType(typ)
		actions = append(actions, &a)
	}
	return actions, rows.Err()
}
