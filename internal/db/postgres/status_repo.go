package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/samber/lo"

	"Murmur/internal/core/interactions"
	"Murmur/internal/core/statuses"
	"Murmur/internal/core/storage"
)

type postgresStatusRepo struct {
	db *sql.DB
}

// NewStatusStore creates a new PostgreSQL status store
func NewStatusStore(db *sql.DB) statuses.Store {
	return &postgresStatusRepo{db: db}
}

// GetStatus retrieves a live status with its poll
// Returns ErrStatusNotFound for soft-deleted statuses
func (r *postgresStatusRepo) GetStatus(ctx context.Context, id string) (*statuses.Status, error) {
	statusID, ok := parseID(id)
	if !ok {
		return nil, statuses.ErrStatusNotFound
	}

	query := `
		SELECT
			s.id, s.account_id, s.text, s.content, s.spoiler_text,
			s.sensitive, s.visibility, s.language,
			s.in_reply_to_id, s.in_reply_to_account_id, s.reblog_of_id,
			s.uri, s.url, s.ordered_media_attachment_ids,
			s.created_at, s.edited_at,
			p.id, p.expires_at, p.multiple, p.options
		FROM statuses s
		LEFT JOIN polls p ON p.status_id = s.id
		WHERE s.id = $1 AND s.deleted_at IS NULL
	`

	var (
		status                                      statuses.Status
		rowID, accountID                            int64
		language, uri, url                          sql.NullString
		inReplyToID, inReplyToAccountID, reblogOfID sql.NullInt64
		mediaIDs                                    pq.Int64Array
		editedAt                                    sql.NullTime
		pollID                                      sql.NullInt64
		pollExpiresAt                               sql.NullTime
		pollMultiple                                sql.NullBool
		pollOptions                                 pq.StringArray
		visibility                                  string
	)

	err := r.db.QueryRowContext(ctx, query, statusID).Scan(
		&rowID, &accountID, &status.Text, &status.Content, &status.SpoilerText,
		&status.Sensitive, &visibility, &language,
		&inReplyToID, &inReplyToAccountID, &reblogOfID,
		&uri, &url, &mediaIDs,
		&status.CreatedAt, &editedAt,
		&pollID, &pollExpiresAt, &pollMultiple, &pollOptions,
	)
	if err == sql.ErrNoRows {
		return nil, statuses.ErrStatusNotFound
	}
	if err != nil {
		return nil, storage.Unavailable("get status", err)
	}

	status.ID = formatID(rowID)
	status.AccountID = formatID(accountID)
	status.Visibility = statuses.Visibility(visibility)
	status.Language = nullableString(language)
	status.InReplyToID = nullableID(inReplyToID)
	status.InReplyToAccountID = nullableID(inReplyToAccountID)
	status.ReblogOfID = nullableID(reblogOfID)
	status.URI = nullableString(uri)
	status.URL = nullableString(url)
	status.EditedAt = nullableTime(editedAt)
	status.MediaIDs = lo.Map(mediaIDs, func(id int64, _ int) string { return formatID(id) })

	if pollID.Valid {
		status.Poll = &statuses.Poll{
			ID:        formatID(pollID.Int64),
			ExpiresAt: nullableTime(pollExpiresAt),
			Multiple:  pollMultiple.Bool,
			Options:   []string(pollOptions),
		}
	}

	return &status, nil
}

// GetAccount retrieves an account by id
func (r *postgresStatusRepo) GetAccount(ctx context.Context, id string) (*statuses.Account, error) {
	accountID, ok := parseID(id)
	if !ok {
		return nil, statuses.ErrAccountNotFound
	}

	query := `
		SELECT id, username, acct, display_name, note, url, fields, created_at
		FROM accounts
		WHERE id = $1
	`

	var (
		account statuses.Account
		rowID   int64
		fields  []byte
	)

	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&rowID, &account.Username, &account.Acct, &account.DisplayName,
		&account.Note, &account.URL, &fields, &account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, statuses.ErrAccountNotFound
	}
	if err != nil {
		return nil, storage.Unavailable("get account", err)
	}

	account.ID = formatID(rowID)
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &account.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode account fields: %w", err)
		}
	}

	return &account, nil
}

// GetMedia retrieves a media attachment by id
func (r *postgresStatusRepo) GetMedia(ctx context.Context, id string) (*statuses.Media, error) {
	mediaID, ok := parseID(id)
	if !ok {
		return nil, statuses.ErrMediaNotFound
	}

	query := `
		SELECT id, type, remote_url, description, blurhash
		FROM media_attachments
		WHERE id = $1
	`

	var (
		media                 statuses.Media
		rowID                 int64
		mediaType             string
		description, blurhash sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, mediaID).Scan(
		&rowID, &mediaType, &media.RemoteURL, &description, &blurhash,
	)
	if err == sql.ErrNoRows {
		return nil, statuses.ErrMediaNotFound
	}
	if err != nil {
		return nil, storage.Unavailable("get media", err)
	}

	media.ID = formatID(rowID)
	media.Type = statuses.MediaType(mediaType)
	media.Description = nullableString(description)
	media.Blurhash = nullableString(blurhash)

	return &media, nil
}

// CountStatuses counts live statuses matching the filter
func (r *postgresStatusRepo) CountStatuses(ctx context.Context, filter statuses.StatusFilter) (int64, error) {
	conditions := []string{"deleted_at IS NULL"}
	var args []interface{}

	for column, value := range map[string]string{
		"in_reply_to_id": filter.InReplyToID,
		"reblog_of_id":   filter.ReblogOfID,
		"account_id":     filter.AccountID,
	} {
		if value == "" {
			continue
		}
		id, ok := parseID(value)
		if !ok {
			return 0, nil
		}
		args = append(args, id)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	query := "SELECT COUNT(*) FROM statuses WHERE " + strings.Join(conditions, " AND ")

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, storage.Unavailable("count statuses", err)
	}
	return count, nil
}

// CountInteractions counts active relation rows of one kind.
// Relations are hard-deleted, so every row is active.
func (r *postgresStatusRepo) CountInteractions(ctx context.Context, filter statuses.InteractionFilter) (int64, error) {
	table, err := relationTable(filter.Kind)
	if err != nil {
		return 0, err
	}

	statusID, ok := parseID(filter.StatusID)
	if !ok {
		return 0, nil
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status_id = $1", table)
	args := []interface{}{statusID}

	if filter.AccountID != "" {
		accountID, ok := parseID(filter.AccountID)
		if !ok {
			return 0, nil
		}
		query += " AND account_id = $2"
		args = append(args, accountID)
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, storage.Unavailable("count "+string(filter.Kind), err)
	}
	return count, nil
}

// CountVotes groups a poll's votes by choice
func (r *postgresStatusRepo) CountVotes(ctx context.Context, pollID string) ([]statuses.VoteCount, error) {
	id, ok := parseID(pollID)
	if !ok {
		return nil, nil
	}

	query := `
		SELECT choice, COUNT(*)
		FROM poll_votes
		WHERE poll_id = $1
		GROUP BY choice
		ORDER BY choice
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, storage.Unavailable("count poll votes", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []statuses.VoteCount
	for rows.Next() {
		var vc statuses.VoteCount
		if err := rows.Scan(&vc.Choice, &vc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts = append(counts, vc)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable("count poll votes", err)
	}

	return counts, nil
}

// CountVoters counts distinct voting accounts
func (r *postgresStatusRepo) CountVoters(ctx context.Context, pollID string) (int64, error) {
	id, ok := parseID(pollID)
	if !ok {
		return 0, nil
	}

	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT account_id) FROM poll_votes WHERE poll_id = $1`, id,
	).Scan(&count)
	if err != nil {
		return 0, storage.Unavailable("count poll voters", err)
	}
	return count, nil
}

// ListAccountVotes lists one account's choices in a poll
func (r *postgresStatusRepo) ListAccountVotes(ctx context.Context, pollID, accountID string) ([]int, error) {
	pid, ok := parseID(pollID)
	if !ok {
		return nil, nil
	}
	aid, ok := parseID(accountID)
	if !ok {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT choice FROM poll_votes WHERE poll_id = $1 AND account_id = $2 ORDER BY choice`,
		pid, aid,
	)
	if err != nil {
		return nil, storage.Unavailable("list account votes", err)
	}
	defer func() { _ = rows.Close() }()

	var choices []int
	for rows.Next() {
		var choice int
		if err := rows.Scan(&choice); err != nil {
			return nil, fmt.Errorf("failed to scan vote choice: %w", err)
		}
		choices = append(choices, choice)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable("list account votes", err)
	}

	return choices, nil
}

// relationTables maps interaction kinds to their relation table.
// Table names are interpolated into SQL, so only these are allowed.
var relationTables = map[interactions.Kind]string{
	interactions.KindFavourite: "favourites",
	interactions.KindBookmark:  "bookmarks",
	interactions.KindPin:       "status_pins",
	interactions.KindMute:      "status_mutes",
}

func relationTable(kind interactions.Kind) (string, error) {
	table, ok := relationTables[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", interactions.ErrInvalidKind, kind)
	}
	return table, nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
