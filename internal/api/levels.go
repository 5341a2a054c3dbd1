package api

import (
	"context"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// LevelsClient drives the academic-level collaborator.
type LevelsClient struct {
	*Client
}

// NewLevelsClient wraps the base client.
func NewLevelsClient(c *Client) *LevelsClient {
	return &LevelsClient{Client: c}
}

// List returns the tenant's level ladder in sort order.
func (c *LevelsClient) List(ctx context.Context) ([]models.AcademicLevel, error) {
	var rows []models.AcademicLevel
	if err := c.get(ctx, "/academic-levels", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Create adds a level and returns the collaborator's row.
func (c *LevelsClient) Create(ctx context.Context, row models.AcademicLevel) (*models.AcademicLevel, error) {
	var created models.AcademicLevel
	if err := c.post(ctx, "/academic-levels", row, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateLevelRequest carries the inline-editable fields. Nil fields are left
// untouched by the collaborator.
type UpdateLevelRequest struct {
	Name  *string `json:"name,omitempty"`
	Code  *string `json:"code,omitempty"`
	Group *string `json:"group,omitempty"`
}

// Update patches one level.
func (c *LevelsClient) Update(ctx context.Context, id string, req UpdateLevelRequest) (*models.AcademicLevel, error) {
	var updated models.AcademicLevel
	if err := c.patch(ctx, "/academic-levels/"+id, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ReorderItem is one row of a batch reorder.
type ReorderItem struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sortOrder"`
}

// Reorder persists a full-ladder reorder as one batch call.
func (c *LevelsClient) Reorder(ctx context.Context, items []ReorderItem) error {
	body := struct {
		Items []ReorderItem `json:"items"`
	}{Items: items}
	return c.patch(ctx, "/academic-levels/reorder", body, nil)
}

// ApplyTemplate replaces the ladder with a named template and returns the
// resulting rows.
func (c *LevelsClient) ApplyTemplate(ctx context.Context, templateKey string) ([]models.AcademicLevel, error) {
	body := struct {
		TemplateKey string `json:"templateKey"`
	}{TemplateKey: templateKey}
	var rows []models.AcademicLevel
	if err := c.post(ctx, "/academic-levels/templates/apply", body, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Archive marks a level archived.
func (c *LevelsClient) Archive(ctx context.Context, id string) error {
	return c.post(ctx, "/academic-levels/"+id+"/archive", nil, nil)
}

// Restore returns an archived level to active.
func (c *LevelsClient) Restore(ctx context.Context, id string) error {
	return c.post(ctx, "/academic-levels/"+id+"/restore", nil, nil)
}

// Impact reports what depends on a level.
func (c *LevelsClient) Impact(ctx context.Context, id string) (*models.LevelImpact, error) {
	var impact models.LevelImpact
	if err := c.get(ctx, "/academic-levels/"+id+"/impact", &impact); err != nil {
		return nil, err
	}
	return &impact, nil
}

// Delete removes a level.
func (c *LevelsClient) Delete(ctx context.Context, id string) error {
	return c.delete(ctx, "/academic-levels/"+id)
}
