package store

import (
	"context"
	"fmt"

	"rhymcaffer/internal/identity/models"
	"rhymcaffer/pkg/platform/sentinel"
)

// Collision errors name the column that clashed. Both match sentinel.ErrAlreadyUsed.
var (
	ErrUsernameTaken = fmt.Errorf("username %w", sentinel.ErrAlreadyUsed)
	ErrEmailTaken    = fmt.Errorf("email %w", sentinel.ErrAlreadyUsed)
)

// Store persists users, their roles and the user follow graph.
//
// Error contract: lookups by id or username return sentinel.ErrNotFound when
// the user does not exist; Create and Update return ErrUsernameTaken or
// ErrEmailTaken on a collision, username checked first.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// Delete removes the user, their roles and every follow edge touching them.
	Delete(ctx context.Context, id int64) error

	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	// Search matches query case-insensitively against username and display name.
	Search(ctx context.Context, query string) ([]*models.User, error)

	// Follow records that followerID follows followeeID and reports whether the edge is new.
	Follow(ctx context.Context, followerID, followeeID int64) (bool, error)
	// Unfollow removes the edge and reports whether it existed.
	Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error)
	FollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	FollowingIDs(ctx context.Context, userID int64) ([]int64, error)
}
