package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/brokerdesk/internal/client/client"
	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
	"github.com/dmitrijs2005/brokerdesk/internal/logging"
)

// SubAdminBackend is the REST surface for account management.
type SubAdminBackend interface {
	ListSubAdmins(ctx context.Context) ([]models.SubAdmin, error)
	CreateSubAdmin(ctx context.Context, sa models.SubAdmin) (models.SubAdmin, error)
	UpdatePermissions(ctx context.Context, id string, perms models.PermissionSet) (models.SubAdmin, error)
	DeleteUser(ctx context.Context, id string) error
}

// SubAdminService manages sub-admin accounts. Listing, creating and
// changing permissions is reserved to the owner; deleting an account needs
// the deleteUser permission. There is no offline fallback: the backend is
// the only authority on accounts.
type SubAdminService struct {
	backend  SubAdminBackend
	auth     Authorizer
	notifier Notifier
	log      logging.Logger
}

func NewSubAdminService(backend SubAdminBackend, auth Authorizer, n Notifier, log logging.Logger) *SubAdminService {
	return &SubAdminService{backend: backend, auth: auth, notifier: orNop(n), log: log.With("service", "subadmins")}
}

func (s *SubAdminService) requireOwner() error {
	if !s.auth.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if !s.auth.IsOwner() {
		return fmt.Errorf("%w: owner only", ErrPermissionDenied)
	}
	return nil
}

func (s *SubAdminService) failed(ctx context.Context, op string, err error) error {
	s.auth.HandleUnauthorized(ctx, err)
	s.log.Warn(ctx, op+" failed", "error", err)
	return err
}

func (s *SubAdminService) List(ctx context.Context) ([]models.SubAdmin, error) {
	if err := s.requireOwner(); err != nil {
		return nil, err
	}
	out, err := s.backend.ListSubAdmins(ctx)
	if err != nil {
		return nil, s.failed(ctx, "list sub-admins", err)
	}
	return out, nil
}

// Create adds a sub-admin account with the given grants.
func (s *SubAdminService) Create(ctx context.Context, sa models.SubAdmin) (models.SubAdmin, error) {
	if err := s.requireOwner(); err != nil {
		return models.SubAdmin{}, err
	}
	sa.Email = strings.TrimSpace(sa.Email)
	sa.Role = models.RoleSubAdmin
	if err := validateStruct(sa); err != nil {
		return models.SubAdmin{}, err
	}
	if sa.Password == "" {
		return models.SubAdmin{}, fmt.Errorf("%w: password is required", client.ErrValidation)
	}
	if sa.Permissions == nil {
		sa.Permissions = models.PermissionSet{}
	}

	out, err := s.backend.CreateSubAdmin(ctx, sa)
	if err != nil {
		return models.SubAdmin{}, s.failed(ctx, "create sub-admin", err)
	}
	s.notifier.Notify(Notice{Kind: NoticeSuccess, Message: "Sub-admin " + out.Name + " created"})
	return out, nil
}

// SetPermissions replaces the grants of a sub-admin.
func (s *SubAdminService) SetPermissions(ctx context.Context, id string, perms models.PermissionSet) (models.SubAdmin, error) {
	if err := s.requireOwner(); err != nil {
		return models.SubAdmin{}, err
	}
	clean := make(models.PermissionSet, len(perms))
	for p, granted := range perms {
		if p.Valid() {
			clean[p] = granted
		}
	}
	out, err := s.backend.UpdatePermissions(ctx, id, clean)
	if err != nil {
		return models.SubAdmin{}, s.failed(ctx, "update permissions", err)
	}
	s.notifier.Notify(Notice{Kind: NoticeSuccess, Message: "Permissions updated"})
	return out, nil
}

func (s *SubAdminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.auth.Guard(models.PermDeleteUser); err != nil {
		return err
	}
	if err := s.backend.DeleteUser(ctx, id); err != nil {
		return s.failed(ctx, "delete user", err)
	}
	s.notifier.Notify(Notice{Kind: NoticeSuccess, Message: "User deleted"})
	return nil
}
