package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
	"github.com/dmitrijs2005/brokerdesk/internal/common"
)

// SubAdmins lists sub-admin accounts (owner only).
func (a *App) SubAdmins(ctx context.Context) error {
	list, err := a.admins.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No sub-admins\n")
		return nil
	}
	for _, sa := range list {
		a.printf("  %-26s %-24s %-30s %s\n", sa.ID, truncate(sa.Name, 24), truncate(sa.Email, 30), grantedList(sa.Permissions))
	}
	return nil
}

// AddSubAdmin prompts for a new sub-admin account (owner only).
func (a *App) AddSubAdmin(ctx context.Context) error {
	p := newPrompter(a.reader, a.out)
	sa := models.SubAdmin{
		Name:  p.text("Name", ""),
		Email: p.text("Email", ""),
	}
	keys := p.list("Permissions", nil)
	if p.err != nil {
		return p.err
	}
	perms, err := permissionsFromKeys(keys)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sa.Permissions = perms
	sa.Password = string(password)
	out, err := a.admins.Create(ctx, sa)
	if err != nil {
		return err
	}
	a.printf("Created %s\n", out.ID)
	return nil
}

// Grant changes individual permissions of a sub-admin:
//
//	grant <id> writeBlog=true deleteBlog=false
//
// Grants not named keep their current value.
func (a *App) Grant(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: grant <id> permission=true|false ...", errUsage)
	}
	id := args[0]
	pairs, rest := parsePairs(args[1:])
	if len(rest) > 0 {
		return fmt.Errorf("%w: expected permission=true|false, got %q", errUsage, rest[0])
	}

	list, err := a.admins.List(ctx)
	if err != nil {
		return err
	}
	perms := models.PermissionSet{}
	found := false
	for _, sa := range list {
		if sa.ID == id {
			for p, g := range sa.Permissions {
				perms[p] = g
			}
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("sub-admin %s not found", id)
	}

	for key, val := range pairs {
		p, ok := models.ParsePermission(key)
		if !ok {
			return fmt.Errorf("%w: unknown permission %q", errUsage, key)
		}
		granted, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", errUsage, key)
		}
		perms[p] = granted
	}

	out, err := a.admins.SetPermissions(ctx, id, perms)
	if err != nil {
		return err
	}
	a.printf("%s: %s\n", out.Name, grantedList(out.Permissions))
	return nil
}

// DeleteUser removes an account; it needs the deleteUser permission.
func (a *App) DeleteUser(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: deleteuser <id>", errUsage)
	}
	return a.admins.DeleteUser(ctx, args[0])
}

func permissionsFromKeys(keys []string) (models.PermissionSet, error) {
	perms := models.PermissionSet{}
	for _, k := range keys {
		p, ok := models.ParsePermission(k)
		if !ok {
			return nil, fmt.Errorf("%w: unknown permission %q", errUsage, k)
		}
		perms[p] = true
	}
	return perms, nil
}
