package service

import (
	"context"
	"errors"
	"slices"

	identity "rhymcaffer/internal/identity/models"
	"rhymcaffer/internal/storage"
	dErrors "rhymcaffer/pkg/domain-errors"
	"rhymcaffer/pkg/platform/sentinel"
)

// AdminAccount describes the administrator ensured at startup.
type AdminAccount struct {
	Username string
	Email    string
	Password string
}

// EnsureAdmin creates the configured administrator, or grants ROLE_ADMIN and
// ROLE_USER to an existing user with that username. The password of an
// existing user is left unchanged.
func (s *Service) EnsureAdmin(ctx context.Context, account AdminAccount) (*identity.User, error) {
	if account.Username == "" || account.Password == "" || account.Email == "" {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "admin username, email and password are required")
	}

	hash, err := s.hasher.Hash(account.Password)
	if err != nil {
		return nil, internal(err, "failed to hash password")
	}

	var admin *identity.User
	created := false
	err = s.uow.RunInTx(ctx, func(ctx context.Context, st storage.Stores) error {
		existing, err := st.Users.FindByUsername(ctx, account.Username)
		switch {
		case err == nil:
			missing := false
			for _, role := range []string{identity.RoleUser, identity.RoleAdmin} {
				if !slices.Contains(existing.Roles, role) {
					existing.Roles = append(existing.Roles, role)
					missing = true
				}
			}
			if missing {
				if err := st.Users.Update(ctx, existing); err != nil {
					return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant admin role")
				}
			}
			admin = existing
			return nil
		case errors.Is(err, sentinel.ErrNotFound):
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load admin")
		}

		admin = &identity.User{
			Username:     account.Username,
			Email:        account.Email,
			PasswordHash: hash,
			DisplayName:  account.Username,
			Roles:        []string{identity.RoleUser, identity.RoleAdmin},
		}
		if err := st.Users.Create(ctx, admin); err != nil {
			if conflict := userConflict(err); conflict != nil {
				return conflict
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create admin")
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, eventAdminBootstrap, "user_id", admin.ID, "username", admin.Username, "created", created)
	return admin, nil
}
