package api

import (
	"context"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// TenantSettings is the tenant record returned by the settings collaborator.
// Only the extras the setup engine owns are modeled; the rest of the record
// passes through untouched on the server side.
type TenantSettings struct {
	TenantID string       `json:"tenantId,omitempty"`
	Name     string       `json:"name,omitempty"`
	Extras   TenantExtras `json:"extras"`
}

// TenantExtras is the free-form extras bag on the tenant record. The setup
// wizard owns exactly one key in it.
type TenantExtras struct {
	SetupProgram *models.WizardSnapshot `json:"setupProgram,omitempty"`
}

// TenantsClient drives the tenant-settings collaborator.
type TenantsClient struct {
	*Client
}

// NewTenantsClient wraps the base client.
func NewTenantsClient(c *Client) *TenantsClient {
	return &TenantsClient{Client: c}
}

// GetSettings fetches the tenant record, including any stored wizard
// snapshot.
func (c *TenantsClient) GetSettings(ctx context.Context) (*TenantSettings, error) {
	var settings TenantSettings
	if err := c.get(ctx, "/tenants/settings", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetSetupProgram fetches only the stored wizard snapshot. Returns nil when
// the tenant has never saved one.
func (c *TenantsClient) GetSetupProgram(ctx context.Context) (*models.WizardSnapshot, error) {
	settings, err := c.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return settings.Extras.SetupProgram, nil
}

// PutSetupProgram persists the wizard snapshot into the tenant's extras.
func (c *TenantsClient) PutSetupProgram(ctx context.Context, snapshot *models.WizardSnapshot) error {
	body := TenantSettings{Extras: TenantExtras{SetupProgram: snapshot}}
	return c.put(ctx, "/tenants/settings", body, nil)
}
