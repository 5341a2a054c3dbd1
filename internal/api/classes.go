package api

import (
	"context"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// ClassesClient drives the class/section collaborator. Payloads and
// responses mirror the ClassRow/SectionRow shapes; the collaborator may omit
// fields the caller then defaults.
type ClassesClient struct {
	*Client
}

// NewClassesClient wraps the base client.
func NewClassesClient(c *Client) *ClassesClient {
	return &ClassesClient{Client: c}
}

// CreateClass creates a class and returns the collaborator's row, including
// the assigned id.
func (c *ClassesClient) CreateClass(ctx context.Context, row models.ClassRow) (*models.ClassRow, error) {
	var created models.ClassRow
	if err := c.post(ctx, "/classes", row, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateClass patches a class in place.
func (c *ClassesClient) UpdateClass(ctx context.Context, id string, row models.ClassRow) (*models.ClassRow, error) {
	var updated models.ClassRow
	if err := c.patch(ctx, "/classes/"+id, row, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteClass removes a class. The collaborator cascades its sections
// server-side; the caller mirrors that cascade locally.
func (c *ClassesClient) DeleteClass(ctx context.Context, id string) error {
	return c.delete(ctx, "/classes/"+id)
}

// ListSections returns the sections of one class.
func (c *ClassesClient) ListSections(ctx context.Context, classID string) ([]models.SectionRow, error) {
	var rows []models.SectionRow
	if err := c.get(ctx, "/classes/"+classID+"/sections", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateSection creates a section and returns the collaborator's row.
func (c *ClassesClient) CreateSection(ctx context.Context, row models.SectionRow) (*models.SectionRow, error) {
	var created models.SectionRow
	if err := c.post(ctx, "/sections", row, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateSection patches a section in place.
func (c *ClassesClient) UpdateSection(ctx context.Context, id string, row models.SectionRow) (*models.SectionRow, error) {
	var updated models.SectionRow
	if err := c.patch(ctx, "/sections/"+id, row, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSection removes a section.
func (c *ClassesClient) DeleteSection(ctx context.Context, id string) error {
	return c.delete(ctx, "/sections/"+id)
}
