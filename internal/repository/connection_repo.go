package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

type ConnectionRepo struct {
	pool *pgxpool.Pool
}

func NewConnectionRepo(pool *pgxpool.Pool) *ConnectionRepo {
	return &ConnectionRepo{pool: pool}
}

// ListByUser returns all connections of a user, oldest first.
func (r *ConnectionRepo) ListByUser(ctx context.Context, userID string) ([]model.Connection, error) {
	query := `
		SELECT id, user_id, channel_id, channel_name, access_token,
		       COALESCE(refresh_token, ''), expires_at, connected_at
		FROM connections
		WHERE user_id = $1
		ORDER BY connected_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []model.Connection
	for rows.Next() {
		var c model.Connection
		err := rows.Scan(&c.ID, &c.UserID, &c.ChannelID, &c.ChannelName,
			&c.AccessToken, &c.RefreshToken, &c.ExpiresAt, &c.ConnectedAt)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

// CountByUser returns the number of connections a user has.
func (r *ConnectionRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM connections WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// Upsert inserts a connection or, if the user already linked that channel,
// replaces its tokens and display name (re-auth flow).
func (r *ConnectionRepo) Upsert(ctx context.Context, c *model.Connection) error {
	query := `
		INSERT INTO connections (user_id, channel_id, channel_name, access_token,
		                         refresh_token, expires_at, connected_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NOW())
		ON CONFLICT (user_id, channel_id) DO UPDATE
		SET channel_name = EXCLUDED.channel_name,
		    access_token = EXCLUDED.access_token,
		    refresh_token = COALESCE(EXCLUDED.refresh_token, connections.refresh_token),
		    expires_at = EXCLUDED.expires_at
		RETURNING id, connected_at`

	return r.pool.QueryRow(ctx, query, c.UserID, c.ChannelID, c.ChannelName,
		c.AccessToken, c.RefreshToken, c.ExpiresAt).Scan(&c.ID, &c.ConnectedAt)
}

// UpdateTokens persists a refreshed access token and its new expiry.
func (r *ConnectionRepo) UpdateTokens(ctx context.Context, id int64, accessToken string, expiresAt int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE connections SET access_token = $1, expires_at = $2 WHERE id = $3`,
		accessToken, expiresAt, id)
	return err
}

// DeleteByUser removes connections for a user. With channelNames empty, all of
// them go; otherwise only the named channels. Returns the number removed.
func (r *ConnectionRepo) DeleteByUser(ctx context.Context, userID string, channelNames []string) (int64, error) {
	if len(channelNames) == 0 {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM connections WHERE user_id = $1`, userID)
		if err != nil {
			return 0, err
		}
		return tag.RowsAffected(), nil
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM connections WHERE user_id = $1 AND channel_name = ANY($2)`,
		userID, channelNames)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UserIDsWithConnections returns every user that has at least one linked
// channel. Used by the hourly auto-refresh sweep.
func (r *ConnectionRepo) UserIDsWithConnections(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM connections`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
