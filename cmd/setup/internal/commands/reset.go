package commands

import (
	"context"
	"fmt"
)

// ResetCmd clears the tenant's saved wizard progress, local and remote.
type ResetCmd struct {
	Yes bool `help:"Skip the confirmation prompt" default:"false"`
}

func (r *ResetCmd) Run(ctx context.Context, globals *Globals) error {
	wizard, tenantID, err := buildWizard(globals)
	if err != nil {
		return err
	}
	defer wizard.Close()

	if err := wizard.Init(ctx); err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	if !r.Yes {
		fmt.Printf("This clears all saved setup progress for tenant %s.\n", tenantID)
		fmt.Print("Type the tenant id to confirm: ")
		var typed string
		if _, err := fmt.Scanln(&typed); err != nil || typed != tenantID {
			return fmt.Errorf("confirmation did not match, aborting")
		}
	}

	if err := wizard.Reset(ctx); err != nil {
		return err
	}
	fmt.Println("Setup progress cleared.")
	return nil
}
