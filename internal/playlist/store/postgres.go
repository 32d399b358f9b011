package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rhymcaffer/internal/platform/database"
	"rhymcaffer/internal/playlist/models"
	"rhymcaffer/pkg/platform/sentinel"
)

// PostgresStore persists playlists in PostgreSQL.
type PostgresStore struct {
	db database.DBTX
}

func NewPostgres(db database.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const playlistColumns = `p.id, p.name, p.description, p.image_url, p.is_public, p.collaborative, p.owner_id,
	p.created_at, p.updated_at,
	COALESCE((SELECT json_agg(pt.track_id ORDER BY pt.track_id)
	          FROM playlist_tracks pt WHERE pt.playlist_id = p.id), '[]'),
	COALESCE((SELECT json_agg(pf.user_id ORDER BY pf.user_id)
	          FROM playlist_followers pf WHERE pf.playlist_id = p.id), '[]')`

func scanPlaylist(row interface{ Scan(...any) error }) (*models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.IsPublic, &p.Collaborative, &p.OwnerID,
		&p.CreatedAt, &p.UpdatedAt, database.IDs(&p.TrackIDs), database.IDs(&p.FollowerIDs))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) Create(ctx context.Context, playlist *models.Playlist) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists (name, description, image_url, is_public, collaborative, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		playlist.Name, playlist.Description, playlist.ImageURL, playlist.IsPublic, playlist.Collaborative, playlist.OwnerID,
	).Scan(&playlist.ID, &playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("playlist owner: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("insert playlist: %w", err)
	}
	if len(playlist.TrackIDs) > 0 {
		if err := s.AddTracks(ctx, playlist.ID, playlist.TrackIDs); err != nil {
			return err
		}
	}
	return s.reload(ctx, playlist)
}

func (s *PostgresStore) Update(ctx context.Context, playlist *models.Playlist) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE playlists SET name = $2, description = $3, image_url = $4, is_public = $5,
			collaborative = $6, updated_at = now()
		WHERE id = $1
		RETURNING owner_id, created_at, updated_at`,
		playlist.ID, playlist.Name, playlist.Description, playlist.ImageURL, playlist.IsPublic, playlist.Collaborative,
	).Scan(&playlist.OwnerID, &playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("playlist not found: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("update playlist: %w", err)
	}
	return s.reload(ctx, playlist)
}

// reload refreshes the membership sets of playlist after a write.
func (s *PostgresStore) reload(ctx context.Context, playlist *models.Playlist) error {
	fresh, err := s.Find(ctx, playlist.ID)
	if err != nil {
		return err
	}
	playlist.TrackIDs = fresh.TrackIDs
	playlist.FollowerIDs = fresh.FollowerIDs
	return nil
}

// Delete relies on ON DELETE CASCADE for track and follower rows.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("playlist not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id int64) (*models.Playlist, error) {
	p, err := scanPlaylist(s.db.QueryRowContext(ctx, `SELECT `+playlistColumns+` FROM playlists p WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("playlist not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find playlist: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Playlist, error) {
	return s.query(ctx, `SELECT `+playlistColumns+` FROM playlists p ORDER BY p.id`)
}

func (s *PostgresStore) ByOwner(ctx context.Context, ownerID int64) ([]*models.Playlist, error) {
	return s.query(ctx, `SELECT `+playlistColumns+` FROM playlists p WHERE p.owner_id = $1 ORDER BY p.id`, ownerID)
}

func (s *PostgresStore) FollowedBy(ctx context.Context, userID int64) ([]*models.Playlist, error) {
	return s.query(ctx, `SELECT `+playlistColumns+` FROM playlists p
		JOIN playlist_followers f ON f.playlist_id = p.id
		WHERE f.user_id = $1 ORDER BY p.id`, userID)
}

func (s *PostgresStore) Public(ctx context.Context) ([]*models.Playlist, error) {
	return s.query(ctx, `SELECT `+playlistColumns+` FROM playlists p WHERE p.is_public ORDER BY p.id`)
}

func (s *PostgresStore) Search(ctx context.Context, name string) ([]*models.Playlist, error) {
	return s.query(ctx, `SELECT `+playlistColumns+` FROM playlists p
		WHERE strpos(lower(p.name), lower($1)) > 0 ORDER BY p.id`, name)
}

func (s *PostgresStore) IDsByOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	return database.QueryIDs(ctx, s.db, `SELECT id FROM playlists WHERE owner_id = $1 ORDER BY id`, ownerID)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Playlist, 0)
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AddTracks(ctx context.Context, id int64, trackIDs []int64) error {
	return s.exec(ctx, "add playlist tracks", `
		INSERT INTO playlist_tracks (playlist_id, track_id)
		SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, id, trackIDs)
}

func (s *PostgresStore) RemoveTracks(ctx context.Context, id int64, trackIDs []int64) error {
	return s.exec(ctx, "remove playlist tracks",
		`DELETE FROM playlist_tracks WHERE playlist_id = $1 AND track_id = ANY($2)`, id, trackIDs)
}

func (s *PostgresStore) Follow(ctx context.Context, id, userID int64) error {
	return s.exec(ctx, "follow playlist",
		`INSERT INTO playlist_followers (playlist_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, userID)
}

func (s *PostgresStore) Unfollow(ctx context.Context, id, userID int64) error {
	return s.exec(ctx, "unfollow playlist",
		`DELETE FROM playlist_followers WHERE playlist_id = $1 AND user_id = $2`, id, userID)
}

func (s *PostgresStore) DeleteByOwner(ctx context.Context, ownerID int64) error {
	return s.exec(ctx, "delete owned playlists", `DELETE FROM playlists WHERE owner_id = $1`, ownerID)
}

func (s *PostgresStore) ForgetUser(ctx context.Context, userID int64) error {
	return s.exec(ctx, "forget playlist follower", `DELETE FROM playlist_followers WHERE user_id = $1`, userID)
}

func (s *PostgresStore) RemoveTrack(ctx context.Context, trackID int64) error {
	return s.exec(ctx, "remove track from playlists", `DELETE FROM playlist_tracks WHERE track_id = $1`, trackID)
}

func (s *PostgresStore) exec(ctx context.Context, op, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
