package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Murmur/internal/core/interactions"
	"Murmur/internal/core/storage"
)

type postgresInteractionRepo struct {
	db *sql.DB
}

// NewInteractionRepository creates a new PostgreSQL interaction repository.
// Each flag is backed by its own relation table; no per-pair record exists.
func NewInteractionRepository(db *sql.DB) interactions.Repository {
	return &postgresInteractionRepo{db: db}
}

// EnsureInteraction derives the state from the relation tables.
// The absence of rows already is the default state, so nothing is written.
func (r *postgresInteractionRepo) EnsureInteraction(ctx context.Context, statusID, accountID string) (*interactions.State, error) {
	state := interactions.NewState(statusID, accountID)

	sid, ok := parseID(statusID)
	if !ok {
		return state, nil
	}
	aid, ok := parseID(accountID)
	if !ok {
		return state, nil
	}

	query := `
		SELECT
			EXISTS(SELECT 1 FROM favourites WHERE status_id = $1 AND account_id = $2),
			EXISTS(SELECT 1 FROM bookmarks WHERE status_id = $1 AND account_id = $2),
			EXISTS(SELECT 1 FROM status_pins WHERE status_id = $1 AND account_id = $2),
			EXISTS(SELECT 1 FROM status_mutes WHERE status_id = $1 AND account_id = $2)
	`

	err := r.db.QueryRowContext(ctx, query, sid, aid).Scan(
		&state.Favourite, &state.Bookmark, &state.Pin, &state.Mute,
	)
	if err != nil {
		return nil, storage.Unavailable("get interaction state", err)
	}

	return state, nil
}

// PatchInteraction inserts or deletes one relation row per supplied flag
// inside a single transaction
func (r *postgresInteractionRepo) PatchInteraction(ctx context.Context, statusID, accountID string, patch interactions.FlagPatch) (*interactions.State, error) {
	sid, ok := parseID(statusID)
	if !ok {
		return nil, interactions.ErrStatusNotFound
	}
	aid, ok := parseID(accountID)
	if !ok {
		return nil, fmt.Errorf("invalid account id: %s", accountID)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storage.Unavailable("begin interaction patch", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	fields := patch.Fields()
	for _, kind := range interactions.Kinds {
		value, supplied := fields[kind]
		if !supplied {
			continue
		}
		table, err := relationTable(kind)
		if err != nil {
			return nil, err
		}

		if value {
			_, err = tx.ExecContext(ctx, fmt.Sprintf(`
				INSERT INTO %s (account_id, status_id, created_at, updated_at)
				VALUES ($1, $2, $3, $3)
				ON CONFLICT (account_id, status_id) DO NOTHING
			`, table), aid, sid, now)
		} else {
			_, err = tx.ExecContext(ctx, fmt.Sprintf(
				`DELETE FROM %s WHERE account_id = $1 AND status_id = $2`, table), aid, sid)
		}
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, interactions.ErrStatusNotFound
			}
			return nil, storage.Unavailable("patch "+string(kind), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storage.Unavailable("commit interaction patch", err)
	}

	return r.EnsureInteraction(ctx, statusID, accountID)
}

// UpsertRelation inserts the relation row, or touches updated_at if it exists.
// xmax is zero only for freshly inserted tuples.
func (r *postgresInteractionRepo) UpsertRelation(ctx context.Context, kind interactions.Kind, statusID, accountID string, now time.Time) (*interactions.Relation, error) {
	table, err := relationTable(kind)
	if err != nil {
		return nil, err
	}

	sid, ok := parseID(statusID)
	if !ok {
		return nil, interactions.ErrStatusNotFound
	}
	aid, ok := parseID(accountID)
	if !ok {
		return nil, fmt.Errorf("invalid account id: %s", accountID)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (account_id, status_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (account_id, status_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`, table)

	rel := &interactions.Relation{
		Kind:      kind,
		StatusID:  statusID,
		AccountID: accountID,
	}
	var id int64

	err = r.db.QueryRowContext(ctx, query, aid, sid, now).Scan(
		&id, &rel.CreatedAt, &rel.UpdatedAt, &rel.Created,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, interactions.ErrStatusNotFound
		}
		return nil, storage.Unavailable("upsert "+string(kind), err)
	}

	rel.ID = formatID(id)
	return rel, nil
}

// DeleteRelation removes the relation row
func (r *postgresInteractionRepo) DeleteRelation(ctx context.Context, kind interactions.Kind, statusID, accountID string) (bool, error) {
	table, err := relationTable(kind)
	if err != nil {
		return false, err
	}

	sid, ok := parseID(statusID)
	if !ok {
		return false, nil
	}
	aid, ok := parseID(accountID)
	if !ok {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE account_id = $1 AND status_id = $2`, table),
		aid, sid,
	)
	if err != nil {
		return false, storage.Unavailable("delete "+string(kind), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}

	return rowsAffected > 0, nil
}

// StatusOwner returns the author of a live status
func (r *postgresInteractionRepo) StatusOwner(ctx context.Context, statusID string) (string, error) {
	sid, ok := parseID(statusID)
	if !ok {
		return "", interactions.ErrStatusNotFound
	}

	var owner int64
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id FROM statuses WHERE id = $1 AND deleted_at IS NULL`, sid,
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return "", interactions.ErrStatusNotFound
	}
	if err != nil {
		return "", storage.Unavailable("get status owner", err)
	}

	return formatID(owner), nil
}
