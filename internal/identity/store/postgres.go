package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rhymcaffer/internal/identity/models"
	"rhymcaffer/internal/platform/database"
	"rhymcaffer/pkg/platform/sentinel"
)

const constraintEmail = "users_email_key"

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db database.DBTX
}

// NewPostgres constructs a PostgreSQL-backed user store over a pool or transaction.
func NewPostgres(db database.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `u.id, u.username, u.email, u.password_hash, u.display_name, u.country,
	u.image_url, u.bio, u.created_at, u.updated_at,
	COALESCE((SELECT json_agg(r.name ORDER BY r.name)
	          FROM user_roles ur JOIN roles r ON r.id = ur.role_id
	          WHERE ur.user_id = u.id), '[]')`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Country,
		&u.ImageURL, &u.Bio, &u.CreatedAt, &u.UpdatedAt, database.Strings(&u.Roles))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, display_name, country, image_url, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		user.Username, user.Email, user.PasswordHash, user.DisplayName, user.Country, user.ImageURL, user.Bio,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return collision(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return s.replaceRoles(ctx, user.ID, user.Roles)
}

func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE users SET username = $2, email = $3, password_hash = $4, display_name = $5,
			country = $6, image_url = $7, bio = $8, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.DisplayName, user.Country, user.ImageURL, user.Bio,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		if database.IsUniqueViolation(err) {
			return collision(err)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return s.replaceRoles(ctx, user.ID, user.Roles)
}

// replaceRoles makes roles the exact role set of the user, creating role rows when missing.
func (s *PostgresStore) replaceRoles(ctx context.Context, userID int64, roles []string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear user roles: %w", err)
	}
	for _, role := range roles {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, role); err != nil {
			return fmt.Errorf("ensure role %s: %w", role, err)
		}
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, id FROM roles WHERE name = $2
			ON CONFLICT DO NOTHING`, userID, role); err != nil {
			return fmt.Errorf("grant role %s: %w", role, err)
		}
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for roles, follow edges and owned rows.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.username = $1`, username)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	return s.query(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = ANY($1) ORDER BY u.id`, ids)
}

func (s *PostgresStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (s *PostgresStore) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return ok, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.User, error) {
	return s.query(ctx, `SELECT `+userColumns+` FROM users u ORDER BY u.id`)
}

func (s *PostgresStore) Search(ctx context.Context, query string) ([]*models.User, error) {
	return s.query(ctx, `
		SELECT `+userColumns+` FROM users u
		WHERE strpos(lower(u.username), lower($1)) > 0 OR strpos(lower(u.display_name), lower($1)) > 0
		ORDER BY u.id`, query)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user_followers (follower_id, followee_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, followerID, followeeID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return false, fmt.Errorf("follow user: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *PostgresStore) Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_followers WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("unfollow user: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *PostgresStore) FollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	return database.QueryIDs(ctx, s.db,
		`SELECT follower_id FROM user_followers WHERE followee_id = $1 ORDER BY follower_id`, userID)
}

func (s *PostgresStore) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	return database.QueryIDs(ctx, s.db,
		`SELECT followee_id FROM user_followers WHERE follower_id = $1 ORDER BY followee_id`, userID)
}

var _ Store = (*PostgresStore)(nil)

// collision maps a unique violation on users onto the column that clashed.
func collision(err error) error {
	if database.ConstraintName(err) == constraintEmail {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}
