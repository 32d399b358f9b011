package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rhymcaffer/internal/catalog/models"
	"rhymcaffer/internal/platform/database"
	"rhymcaffer/pkg/platform/sentinel"
)

// PostgresStore persists the catalog in PostgreSQL.
type PostgresStore struct {
	db database.DBTX
}

func NewPostgres(db database.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

type scanner interface{ Scan(...any) error }

// --- artists ---

const artistColumns = `a.id, a.name, a.image_url, a.description, a.popularity, a.created_at, a.updated_at`

func scanArtist(row scanner) (*models.Artist, error) {
	var a models.Artist
	if err := row.Scan(&a.ID, &a.Name, &a.ImageURL, &a.Description, &a.Popularity, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) CreateArtist(ctx context.Context, artist *models.Artist) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO artists (name, image_url, description, popularity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		artist.Name, artist.ImageURL, artist.Description, artist.Popularity,
	).Scan(&artist.ID, &artist.CreatedAt, &artist.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert artist: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateArtist(ctx context.Context, artist *models.Artist) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE artists SET name = $2, image_url = $3, description = $4, popularity = $5, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		artist.ID, artist.Name, artist.ImageURL, artist.Description, artist.Popularity,
	).Scan(&artist.CreatedAt, &artist.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("artist not found: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("update artist: %w", err)
	}
	return nil
}

// DeleteArtist relies on ON DELETE CASCADE for link and follower rows.
func (s *PostgresStore) DeleteArtist(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "artists", "artist", id)
}

func (s *PostgresStore) FindArtist(ctx context.Context, id int64) (*models.Artist, error) {
	a, err := scanArtist(s.db.QueryRowContext(ctx, `SELECT `+artistColumns+` FROM artists a WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("artist not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find artist: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) FindArtists(ctx context.Context, ids []int64) ([]*models.Artist, error) {
	if len(ids) == 0 {
		return []*models.Artist{}, nil
	}
	return s.queryArtists(ctx, `SELECT `+artistColumns+` FROM artists a WHERE a.id = ANY($1) ORDER BY a.id`, ids)
}

func (s *PostgresStore) ListArtists(ctx context.Context) ([]*models.Artist, error) {
	return s.queryArtists(ctx, `SELECT `+artistColumns+` FROM artists a ORDER BY a.id`)
}

func (s *PostgresStore) SearchArtists(ctx context.Context, name string) ([]*models.Artist, error) {
	return s.queryArtists(ctx, `SELECT `+artistColumns+` FROM artists a
		WHERE strpos(lower(a.name), lower($1)) > 0 ORDER BY a.id`, name)
}

func (s *PostgresStore) PopularArtists(ctx context.Context, min int) ([]*models.Artist, error) {
	return s.queryArtists(ctx, `SELECT `+artistColumns+` FROM artists a
		WHERE a.popularity >= $1 ORDER BY a.popularity DESC, a.id`, min)
}

func (s *PostgresStore) ArtistGraph(ctx context.Context, id int64, withAlbums, withTracks bool) (*models.ArtistGraph, error) {
	artist, err := s.FindArtist(ctx, id)
	if err != nil {
		return nil, err
	}
	g := &models.ArtistGraph{Artist: artist}
	if g.FollowerIDs, err = database.QueryIDs(ctx, s.db,
		`SELECT user_id FROM artist_followers WHERE artist_id = $1 ORDER BY user_id`, id); err != nil {
		return nil, err
	}
	if withAlbums {
		if g.Albums, err = s.AlbumsByArtist(ctx, id); err != nil {
			return nil, err
		}
	}
	if withTracks {
		if g.Tracks, err = s.TracksByArtist(ctx, id); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (s *PostgresStore) queryArtists(ctx context.Context, query string, args ...any) ([]*models.Artist, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query artists: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Artist, 0)
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// --- albums ---

const albumColumns = `al.id, al.name, al.image_url, al.description, al.popularity, al.release_date,
	al.album_type, al.created_at, al.updated_at,
	COALESCE((SELECT json_agg(aa.artist_id ORDER BY aa.artist_id)
	          FROM album_artists aa WHERE aa.album_id = al.id), '[]')`

func scanAlbum(row scanner) (*models.Album, error) {
	var a models.Album
	err := row.Scan(&a.ID, &a.Name, &a.ImageURL, &a.Description, &a.Popularity, &a.ReleaseDate,
		&a.AlbumType, &a.CreatedAt, &a.UpdatedAt, database.IDs(&a.ArtistIDs))
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) CreateAlbum(ctx context.Context, album *models.Album) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO albums (name, image_url, description, popularity, release_date, album_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		album.Name, album.ImageURL, album.Description, album.Popularity, album.ReleaseDate, album.AlbumType,
	).Scan(&album.ID, &album.CreatedAt, &album.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert album: %w", err)
	}
	return s.replaceAlbumArtists(ctx, album)
}

func (s *PostgresStore) UpdateAlbum(ctx context.Context, album *models.Album) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE albums SET name = $2, image_url = $3, description = $4, popularity = $5,
			release_date = $6, album_type = $7, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		album.ID, album.Name, album.ImageURL, album.Description, album.Popularity, album.ReleaseDate, album.AlbumType,
	).Scan(&album.CreatedAt, &album.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("album not found: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("update album: %w", err)
	}
	return s.replaceAlbumArtists(ctx, album)
}

func (s *PostgresStore) replaceAlbumArtists(ctx context.Context, album *models.Album) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM album_artists WHERE album_id = $1`, album.ID); err != nil {
		return fmt.Errorf("clear album artists: %w", err)
	}
	if len(album.ArtistIDs) > 0 {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO album_artists (album_id, artist_id)
			SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, album.ID, album.ArtistIDs); err != nil {
			return translateLinkErr("link album artists", err)
		}
	}
	ids, err := database.QueryIDs(ctx, s.db,
		`SELECT artist_id FROM album_artists WHERE album_id = $1 ORDER BY artist_id`, album.ID)
	if err != nil {
		return err
	}
	album.ArtistIDs = ids
	return nil
}

// DeleteAlbum relies on ON DELETE SET NULL for tracks and CASCADE for link rows.
func (s *PostgresStore) DeleteAlbum(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "albums", "album", id)
}

func (s *PostgresStore) FindAlbum(ctx context.Context, id int64) (*models.Album, error) {
	a, err := scanAlbum(s.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums al WHERE al.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("album not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find album: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) FindAlbums(ctx context.Context, ids []int64) ([]*models.Album, error) {
	if len(ids) == 0 {
		return []*models.Album{}, nil
	}
	return s.queryAlbums(ctx, `SELECT `+albumColumns+` FROM albums al WHERE al.id = ANY($1) ORDER BY al.id`, ids)
}

func (s *PostgresStore) ListAlbums(ctx context.Context) ([]*models.Album, error) {
	return s.queryAlbums(ctx, `SELECT `+albumColumns+` FROM albums al ORDER BY al.id`)
}

func (s *PostgresStore) SearchAlbums(ctx context.Context, name string) ([]*models.Album, error) {
	return s.queryAlbums(ctx, `SELECT `+albumColumns+` FROM albums al
		WHERE strpos(lower(al.name), lower($1)) > 0 ORDER BY al.id`, name)
}

func (s *PostgresStore) AlbumsByArtist(ctx context.Context, artistID int64) ([]*models.Album, error) {
	return s.queryAlbums(ctx, `SELECT `+albumColumns+` FROM albums al
		JOIN album_artists x ON x.album_id = al.id
		WHERE x.artist_id = $1 ORDER BY al.id`, artistID)
}

func (s *PostgresStore) AlbumsReleasedAfter(ctx context.Context, date string) ([]*models.Album, error) {
	return s.queryAlbums(ctx, `SELECT `+albumColumns+` FROM albums al
		WHERE al.release_date > $1 ORDER BY al.release_date DESC, al.id DESC`, date)
}

func (s *PostgresStore) AlbumGraph(ctx context.Context, id int64) (*models.AlbumGraph, error) {
	album, err := s.FindAlbum(ctx, id)
	if err != nil {
		return nil, err
	}
	g := &models.AlbumGraph{Album: album}
	if g.Artists, err = s.FindArtists(ctx, album.ArtistIDs); err != nil {
		return nil, err
	}
	if g.Tracks, err = s.TracksByAlbum(ctx, id); err != nil {
		return nil, err
	}
	if g.FollowerIDs, err = database.QueryIDs(ctx, s.db,
		`SELECT user_id FROM album_followers WHERE album_id = $1 ORDER BY user_id`, id); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *PostgresStore) queryAlbums(ctx context.Context, query string, args ...any) ([]*models.Album, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Album, 0)
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// --- tracks ---

const trackColumns = `t.id, t.name, t.image_url, t.duration_ms, t.popularity, t.track_url, t.track_number,
	t.explicit, t.isrc, t.album_id, t.created_at, t.updated_at,
	COALESCE((SELECT json_agg(ta.artist_id ORDER BY ta.artist_id)
	          FROM track_artists ta WHERE ta.track_id = t.id), '[]')`

func scanTrack(row scanner) (*models.Track, error) {
	var t models.Track
	err := row.Scan(&t.ID, &t.Name, &t.ImageURL, &t.DurationMs, &t.Popularity, &t.TrackURL, &t.TrackNumber,
		&t.Explicit, &t.ISRC, database.NullableID{Dst: &t.AlbumID}, &t.CreatedAt, &t.UpdatedAt,
		database.IDs(&t.ArtistIDs))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) CreateTrack(ctx context.Context, track *models.Track) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tracks (name, image_url, duration_ms, popularity, track_url, track_number, explicit, isrc, album_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		track.Name, track.ImageURL, track.DurationMs, track.Popularity, track.TrackURL, track.TrackNumber,
		track.Explicit, track.ISRC, track.AlbumID,
	).Scan(&track.ID, &track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		return translateLinkErr("insert track", err)
	}
	return s.replaceTrackArtists(ctx, track)
}

func (s *PostgresStore) UpdateTrack(ctx context.Context, track *models.Track) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE tracks SET name = $2, image_url = $3, duration_ms = $4, popularity = $5, track_url = $6,
			track_number = $7, explicit = $8, isrc = $9, album_id = $10, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		track.ID, track.Name, track.ImageURL, track.DurationMs, track.Popularity, track.TrackURL,
		track.TrackNumber, track.Explicit, track.ISRC, track.AlbumID,
	).Scan(&track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("track not found: %w", sentinel.ErrNotFound)
		}
		return translateLinkErr("update track", err)
	}
	return s.replaceTrackArtists(ctx, track)
}

func (s *PostgresStore) replaceTrackArtists(ctx context.Context, track *models.Track) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM track_artists WHERE track_id = $1`, track.ID); err != nil {
		return fmt.Errorf("clear track artists: %w", err)
	}
	if len(track.ArtistIDs) > 0 {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO track_artists (track_id, artist_id)
			SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, track.ID, track.ArtistIDs); err != nil {
			return translateLinkErr("link track artists", err)
		}
	}
	ids, err := database.QueryIDs(ctx, s.db,
		`SELECT artist_id FROM track_artists WHERE track_id = $1 ORDER BY artist_id`, track.ID)
	if err != nil {
		return err
	}
	track.ArtistIDs = ids
	return nil
}

func (s *PostgresStore) DeleteTrack(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "tracks", "track", id)
}

func (s *PostgresStore) FindTrack(ctx context.Context, id int64) (*models.Track, error) {
	t, err := scanTrack(s.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks t WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("track not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find track: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) FindTracks(ctx context.Context, ids []int64) ([]*models.Track, error) {
	if len(ids) == 0 {
		return []*models.Track{}, nil
	}
	return s.queryTracks(ctx, `SELECT `+trackColumns+` FROM tracks t WHERE t.id = ANY($1) ORDER BY t.id`, ids)
}

func (s *PostgresStore) ListTracks(ctx context.Context) ([]*models.Track, error) {
	return s.queryTracks(ctx, `SELECT `+trackColumns+` FROM tracks t ORDER BY t.id`)
}

func (s *PostgresStore) SearchTracks(ctx context.Context, name string) ([]*models.Track, error) {
	return s.queryTracks(ctx, `SELECT `+trackColumns+` FROM tracks t
		WHERE strpos(lower(t.name), lower($1)) > 0 ORDER BY t.id`, name)
}

func (s *PostgresStore) TracksByArtist(ctx context.Context, artistID int64) ([]*models.Track, error) {
	return s.queryTracks(ctx, `SELECT `+trackColumns+` FROM tracks t
		JOIN track_artists x ON x.track_id = t.id
		WHERE x.artist_id = $1 ORDER BY t.id`, artistID)
}

func (s *PostgresStore) TracksByAlbum(ctx context.Context, albumID int64) ([]*models.Track, error) {
	return s.queryTracks(ctx, `SELECT `+trackColumns+` FROM tracks t WHERE t.album_id = $1 ORDER BY t.id`, albumID)
}

func (s *PostgresStore) PopularTracks(ctx context.Context, min int) ([]*models.Track, error) {
	return s.queryTracks(ctx, `SELECT `+trackColumns+` FROM tracks t
		WHERE t.popularity >= $1 ORDER BY t.popularity DESC, t.id`, min)
}

func (s *PostgresStore) queryTracks(ctx context.Context, query string, args ...any) ([]*models.Track, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Track, 0)
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- existence ---

func (s *PostgresStore) MissingArtists(ctx context.Context, ids []int64) ([]int64, error) {
	return s.missing(ctx, `artists`, ids)
}

func (s *PostgresStore) MissingAlbums(ctx context.Context, ids []int64) ([]int64, error) {
	return s.missing(ctx, `albums`, ids)
}

func (s *PostgresStore) MissingTracks(ctx context.Context, ids []int64) ([]int64, error) {
	return s.missing(ctx, `tracks`, ids)
}

// missing returns the sorted distinct ids absent from table. table is a constant.
func (s *PostgresStore) missing(ctx context.Context, table string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	return database.QueryIDs(ctx, s.db, `
		SELECT DISTINCT x FROM unnest($1::bigint[]) AS x
		WHERE NOT EXISTS (SELECT 1 FROM `+table+` e WHERE e.id = x)
		ORDER BY x`, ids)
}

// --- links ---

func (s *PostgresStore) LinkArtistTracks(ctx context.Context, artistID int64, trackIDs []int64) error {
	return s.exec(ctx, "link artist tracks", `
		INSERT INTO track_artists (track_id, artist_id)
		SELECT unnest($2::bigint[]), $1 ON CONFLICT DO NOTHING`, artistID, trackIDs)
}

func (s *PostgresStore) UnlinkArtistTracks(ctx context.Context, artistID int64, trackIDs []int64) error {
	return s.exec(ctx, "unlink artist tracks",
		`DELETE FROM track_artists WHERE artist_id = $1 AND track_id = ANY($2)`, artistID, trackIDs)
}

func (s *PostgresStore) LinkArtistAlbums(ctx context.Context, artistID int64, albumIDs []int64) error {
	return s.exec(ctx, "link artist albums", `
		INSERT INTO album_artists (album_id, artist_id)
		SELECT unnest($2::bigint[]), $1 ON CONFLICT DO NOTHING`, artistID, albumIDs)
}

func (s *PostgresStore) UnlinkArtistAlbums(ctx context.Context, artistID int64, albumIDs []int64) error {
	return s.exec(ctx, "unlink artist albums",
		`DELETE FROM album_artists WHERE artist_id = $1 AND album_id = ANY($2)`, artistID, albumIDs)
}

func (s *PostgresStore) AttachTracks(ctx context.Context, albumID int64, trackIDs []int64) error {
	return s.exec(ctx, "attach tracks",
		`UPDATE tracks SET album_id = $1, updated_at = now() WHERE id = ANY($2)`, albumID, trackIDs)
}

func (s *PostgresStore) DetachTracks(ctx context.Context, albumID int64, trackIDs []int64) error {
	return s.exec(ctx, "detach tracks",
		`UPDATE tracks SET album_id = NULL, updated_at = now() WHERE album_id = $1 AND id = ANY($2)`, albumID, trackIDs)
}

// --- follow and save sets ---

func (s *PostgresStore) FollowArtist(ctx context.Context, userID, artistID int64) error {
	return s.exec(ctx, "follow artist",
		`INSERT INTO artist_followers (artist_id, user_id) VALUES ($2, $1) ON CONFLICT DO NOTHING`, userID, artistID)
}

func (s *PostgresStore) UnfollowArtist(ctx context.Context, userID, artistID int64) error {
	return s.exec(ctx, "unfollow artist",
		`DELETE FROM artist_followers WHERE user_id = $1 AND artist_id = $2`, userID, artistID)
}

func (s *PostgresStore) FollowedArtistIDs(ctx context.Context, userID int64) ([]int64, error) {
	return database.QueryIDs(ctx, s.db,
		`SELECT artist_id FROM user_followed_artists WHERE user_id = $1 ORDER BY artist_id`, userID)
}

func (s *PostgresStore) SaveAlbum(ctx context.Context, userID, albumID int64) error {
	return s.exec(ctx, "save album",
		`INSERT INTO album_followers (album_id, user_id) VALUES ($2, $1) ON CONFLICT DO NOTHING`, userID, albumID)
}

func (s *PostgresStore) UnsaveAlbum(ctx context.Context, userID, albumID int64) error {
	return s.exec(ctx, "unsave album",
		`DELETE FROM album_followers WHERE user_id = $1 AND album_id = $2`, userID, albumID)
}

func (s *PostgresStore) SavedAlbumIDs(ctx context.Context, userID int64) ([]int64, error) {
	return database.QueryIDs(ctx, s.db,
		`SELECT album_id FROM user_saved_albums WHERE user_id = $1 ORDER BY album_id`, userID)
}

func (s *PostgresStore) SaveTrack(ctx context.Context, userID, trackID int64) error {
	return s.exec(ctx, "save track",
		`INSERT INTO user_saved_tracks (user_id, track_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, trackID)
}

func (s *PostgresStore) UnsaveTrack(ctx context.Context, userID, trackID int64) error {
	return s.exec(ctx, "unsave track",
		`DELETE FROM user_saved_tracks WHERE user_id = $1 AND track_id = $2`, userID, trackID)
}

func (s *PostgresStore) SavedTrackIDs(ctx context.Context, userID int64) ([]int64, error) {
	return database.QueryIDs(ctx, s.db,
		`SELECT track_id FROM user_saved_tracks WHERE user_id = $1 ORDER BY track_id`, userID)
}

func (s *PostgresStore) SavedTracks(ctx context.Context, userID int64) ([]*models.Track, error) {
	return s.queryTracks(ctx, `SELECT `+trackColumns+` FROM tracks t
		JOIN user_saved_tracks x ON x.track_id = t.id
		WHERE x.user_id = $1 ORDER BY t.id`, userID)
}

func (s *PostgresStore) ForgetUser(ctx context.Context, userID int64) error {
	for _, q := range []string{
		`DELETE FROM artist_followers WHERE user_id = $1`,
		`DELETE FROM album_followers WHERE user_id = $1`,
		`DELETE FROM user_saved_tracks WHERE user_id = $1`,
	} {
		if err := s.exec(ctx, "forget user", q, userID); err != nil {
			return err
		}
	}
	return nil
}

// --- helpers ---

func (s *PostgresStore) exec(ctx context.Context, op, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return translateLinkErr(op, err)
	}
	return nil
}

func (s *PostgresStore) deleteByID(ctx context.Context, table, entity string, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s not found: %w", entity, sentinel.ErrNotFound)
	}
	return nil
}

func translateLinkErr(op string, err error) error {
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ Store = (*PostgresStore)(nil)
