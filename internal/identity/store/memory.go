package store

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"rhymcaffer/internal/identity/models"
	"rhymcaffer/pkg/platform/linkset"
	"rhymcaffer/pkg/platform/middleware/requesttime"
	"rhymcaffer/pkg/platform/sentinel"
	str "rhymcaffer/pkg/string"
)

// InMemory is a map-backed Store. It is not synchronized; storage.Memory
// serializes access and swaps clones in on commit.
type InMemory struct {
	nextID  int64
	users   map[int64]*models.User
	follows *linkset.Links // follower -> followee
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[int64]*models.User),
		follows: linkset.New(),
	}
}

// Clone returns a deep copy used as the working set of a transaction.
func (s *InMemory) Clone() *InMemory {
	users := make(map[int64]*models.User, len(s.users))
	for id, u := range s.users {
		users[id] = u.Clone()
	}
	return &InMemory{nextID: s.nextID, users: users, follows: s.follows.Clone()}
}

func (s *InMemory) Create(ctx context.Context, user *models.User) error {
	if err := s.taken(user); err != nil {
		return err
	}
	s.nextID++
	now := requesttime.Now(ctx)
	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Roles = str.Dedupe(user.Roles)
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *InMemory) Update(ctx context.Context, user *models.User) error {
	existing, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if err := s.taken(user); err != nil {
		return err
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = requesttime.Now(ctx)
	user.Roles = str.Dedupe(user.Roles)
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *InMemory) taken(user *models.User) error {
	emailTaken := false
	for id, u := range s.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
		if u.Email == user.Email {
			emailTaken = true
		}
	}
	if emailTaken {
		return ErrEmailTaken
	}
	return nil
}

func (s *InMemory) Delete(_ context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.users, id)
	s.follows.DropLeft(id)
	s.follows.DropRight(id)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *InMemory) FindByIDs(_ context.Context, ids []int64) ([]*models.User, error) {
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u.Clone())
		}
	}
	slices.SortFunc(out, byID)
	return out, nil
}

func (s *InMemory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.User, error) {
	return s.filter(func(*models.User) bool { return true }), nil
}

func (s *InMemory) Search(_ context.Context, query string) ([]*models.User, error) {
	return s.filter(func(u *models.User) bool {
		return str.ContainsFold(u.Username, query) || str.ContainsFold(u.DisplayName, query)
	}), nil
}

func (s *InMemory) filter(keep func(*models.User) bool) []*models.User {
	out := make([]*models.User, 0)
	for _, id := range slices.Sorted(maps.Keys(s.users)) {
		if u := s.users[id]; keep(u) {
			out = append(out, u.Clone())
		}
	}
	return out
}

func (s *InMemory) Follow(_ context.Context, followerID, followeeID int64) (bool, error) {
	if err := s.requireUsers(followerID, followeeID); err != nil {
		return false, err
	}
	return s.follows.Add(followerID, followeeID), nil
}

func (s *InMemory) Unfollow(_ context.Context, followerID, followeeID int64) (bool, error) {
	if err := s.requireUsers(followerID, followeeID); err != nil {
		return false, err
	}
	return s.follows.Remove(followerID, followeeID), nil
}

func (s *InMemory) requireUsers(ids ...int64) error {
	for _, id := range ids {
		if _, ok := s.users[id]; !ok {
			return sentinel.ErrNotFound
		}
	}
	return nil
}

func (s *InMemory) FollowerIDs(_ context.Context, userID int64) ([]int64, error) {
	return s.follows.Left(userID), nil
}

func (s *InMemory) FollowingIDs(_ context.Context, userID int64) ([]int64, error) {
	return s.follows.Right(userID), nil
}

func byID(a, b *models.User) int {
	return cmp.Compare(a.ID, b.ID)
}

var _ Store = (*InMemory)(nil)
