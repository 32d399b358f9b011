package service

import (
	"context"

	"rhymcaffer/internal/identity/models"
	"rhymcaffer/internal/platform/tracer"
	"rhymcaffer/internal/storage"
	dErrors "rhymcaffer/pkg/domain-errors"
)

// Follow makes callerID a follower of targetID. Both sides of the relation
// change in the same transaction.
func (s *Service) Follow(ctx context.Context, callerID, targetID int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "identity.Follow",
		tracer.Int64(tracer.AttrCallerID, callerID),
		tracer.Int64(tracer.AttrUserID, targetID),
	)
	defer func() { span.End(err) }()

	if callerID == targetID {
		return dErrors.New(dErrors.CodeInvalidArgument, "You cannot follow yourself")
	}
	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if err := requireUsers(ctx, st, callerID, targetID); err != nil {
			return err
		}
		added, err := st.Users.Follow(ctx, callerID, targetID)
		if err != nil {
			return translate(err, "failed to follow user")
		}
		if !added {
			return dErrors.New(dErrors.CodeAlreadyExists, "You are already following this user")
		}
		return nil
	})
	if err == nil {
		s.metrics.IncMutation("user", "follow")
	}
	return err
}

// Unfollow removes callerID from the followers of targetID.
func (s *Service) Unfollow(ctx context.Context, callerID, targetID int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "identity.Unfollow",
		tracer.Int64(tracer.AttrCallerID, callerID),
		tracer.Int64(tracer.AttrUserID, targetID),
	)
	defer func() { span.End(err) }()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if err := requireUsers(ctx, st, callerID, targetID); err != nil {
			return err
		}
		removed, err := st.Users.Unfollow(ctx, callerID, targetID)
		if err != nil {
			return translate(err, "failed to unfollow user")
		}
		if !removed {
			return dErrors.New(dErrors.CodeNotFound, "You are not following this user")
		}
		return nil
	})
	if err == nil {
		s.metrics.IncMutation("user", "unfollow")
	}
	return err
}

func (s *Service) Followers(ctx context.Context, id int64) ([]*models.UserSummary, error) {
	return s.related(ctx, id, func(ctx context.Context, st storage.Stores) ([]int64, error) {
		return st.Users.FollowerIDs(ctx, id)
	})
}

func (s *Service) Following(ctx context.Context, id int64) ([]*models.UserSummary, error) {
	return s.related(ctx, id, func(ctx context.Context, st storage.Stores) ([]int64, error) {
		return st.Users.FollowingIDs(ctx, id)
	})
}

func (s *Service) related(ctx context.Context, id int64, ids func(context.Context, storage.Stores) ([]int64, error)) ([]*models.UserSummary, error) {
	var users []*models.User
	err := s.uow.View(ctx, func(ctx context.Context, st storage.Stores) error {
		if _, err := st.Users.FindByID(ctx, id); err != nil {
			return translate(err, "failed to load user")
		}
		related, err := ids(ctx, st)
		if err != nil {
			return translate(err, "failed to load follow graph")
		}
		users, err = st.Users.FindByIDs(ctx, related)
		return translate(err, "failed to load users")
	})
	if err != nil {
		return nil, err
	}
	return models.NewUserSummaries(users), nil
}

func requireUsers(ctx context.Context, st storage.Stores, ids ...int64) error {
	for _, id := range ids {
		if _, err := st.Users.FindByID(ctx, id); err != nil {
			return translate(err, "failed to load user")
		}
	}
	return nil
}
