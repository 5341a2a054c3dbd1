package api

import (
	"context"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// SchoolsClient drives the school collaborator.
type SchoolsClient struct {
	*Client
}

// NewSchoolsClient wraps the base client.
func NewSchoolsClient(c *Client) *SchoolsClient {
	return &SchoolsClient{Client: c}
}

// CreateSchoolRequest is the create payload. Only name is required; the
// collaborator defaults the rest.
type CreateSchoolRequest struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Create registers a school and returns the collaborator's view of the row,
// including the assigned id.
func (c *SchoolsClient) Create(ctx context.Context, req CreateSchoolRequest) (*models.SchoolRow, error) {
	var row models.SchoolRow
	if err := c.post(ctx, "/schools", req, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns every school in the tenant.
func (c *SchoolsClient) List(ctx context.Context) ([]models.SchoolRow, error) {
	var rows []models.SchoolRow
	if err := c.get(ctx, "/schools", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
