package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
)

const (
	subAdminsPath = "/admin/sub-admins"
	usersPath     = "/admin/users"
)

func (c *Client) subAdmins() *Resource[models.SubAdmin] {
	return NewResource[models.SubAdmin](c, subAdminsPath, "subAdmins", "subAdmin")
}

// ListSubAdmins returns every sub-admin account.
func (c *Client) ListSubAdmins(ctx context.Context) ([]models.SubAdmin, error) {
	page, err := c.subAdmins().List(ctx, models.ListParams{Limit: models.MaxLimit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *Client) CreateSubAdmin(ctx context.Context, sa models.SubAdmin) (models.SubAdmin, error) {
	return c.subAdmins().Create(ctx, sa)
}

// UpdatePermissions replaces the permission grants of a sub-admin.
func (c *Client) UpdatePermissions(ctx context.Context, id string, perms models.PermissionSet) (models.SubAdmin, error) {
	body := map[string]any{"permissions": perms}
	data, err := c.do(ctx, http.MethodPut, subAdminsPath+"/"+url.PathEscape(id)+"/permissions", nil, body)
	if err != nil {
		return models.SubAdmin{}, err
	}
	var out models.SubAdmin
	if err := member(data, "subAdmin", &out); err != nil {
		return models.SubAdmin{}, err
	}
	return out, nil
}

// DeleteUser removes any account by id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, usersPath+"/"+url.PathEscape(id), nil, nil)
	return err
}
