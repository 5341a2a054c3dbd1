package api

import (
	"context"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// UsersClient drives the user collaborator.
type UsersClient struct {
	*Client
}

// NewUsersClient wraps the base client.
func NewUsersClient(c *Client) *UsersClient {
	return &UsersClient{Client: c}
}

// List returns the tenant's users.
func (c *UsersClient) List(ctx context.Context) ([]models.UserRow, error) {
	var rows []models.UserRow
	if err := c.get(ctx, "/users", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Create adds a user directly (already-active accounts).
func (c *UsersClient) Create(ctx context.Context, row models.UserRow) (*models.UserRow, error) {
	var created models.UserRow
	if err := c.post(ctx, "/users", row, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Invite sends an invitation and returns the pending row.
func (c *UsersClient) Invite(ctx context.Context, row models.UserRow) (*models.UserRow, error) {
	var invited models.UserRow
	if err := c.post(ctx, "/users/invite", row, &invited); err != nil {
		return nil, err
	}
	return &invited, nil
}

// Update patches a user in place.
func (c *UsersClient) Update(ctx context.Context, id string, row models.UserRow) (*models.UserRow, error) {
	var updated models.UserRow
	if err := c.patch(ctx, "/users/"+id, row, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Suspend blocks a user's access.
func (c *UsersClient) Suspend(ctx context.Context, id string) error {
	return c.post(ctx, "/users/"+id+"/suspend", nil, nil)
}

// Activate restores a suspended user.
func (c *UsersClient) Activate(ctx context.Context, id string) error {
	return c.post(ctx, "/users/"+id+"/activate", nil, nil)
}
