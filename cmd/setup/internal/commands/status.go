package commands

import (
	"context"
	"fmt"
)

// StatusCmd prints the tenant's wizard progress and entity counts.
type StatusCmd struct{}

func (s *StatusCmd) Run(ctx context.Context, globals *Globals) error {
	wizard, tenantID, err := buildWizard(globals)
	if err != nil {
		return err
	}
	defer wizard.Close()

	if err := wizard.Init(ctx); err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	fmt.Printf("Tenant:  %s\n", tenantID)
	fmt.Printf("Status:  %s\n", wizard.Status())
	fmt.Printf("Step:    %d (%s)\n", wizard.Step(), wizard.Step())
	fmt.Println()
	fmt.Printf("%-16s %d\n", "Schools:", len(wizard.Schools.Schools()))
	fmt.Printf("%-16s %d\n", "Org units:", len(wizard.OrgUnits.Units()))
	fmt.Printf("%-16s %d\n", "Levels:", len(wizard.Levels.Levels()))
	fmt.Printf("%-16s %d\n", "Classes:", len(wizard.Classes.Classes()))
	fmt.Printf("%-16s %d\n", "Sections:", len(wizard.Classes.Sections()))
	fmt.Printf("%-16s %d\n", "Grading scales:", len(wizard.GradeScales.Scales()))
	fmt.Printf("%-16s %d\n", "Users:", len(wizard.Users.Users()))
	return nil
}
