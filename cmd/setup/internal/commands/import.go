package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/setup"
)

// ImportCmd bulk-creates users or classes from a CSV file.
type ImportCmd struct {
	Entity string `arg:"" enum:"users,classes" help:"What to import (users or classes)"`
	File   string `arg:"" type:"existingfile" help:"CSV file to import"`
}

func (i *ImportCmd) Run(ctx context.Context, globals *Globals) error {
	wizard, _, err := buildWizard(globals)
	if err != nil {
		return err
	}
	defer wizard.Close()

	if err := wizard.Init(ctx); err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	data, err := os.ReadFile(i.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", i.File, err)
	}

	var report setup.ImportReport
	switch i.Entity {
	case "users":
		report, err = wizard.Users.ImportUsersCSV(ctx, string(data))
	case "classes":
		report, err = wizard.Classes.ImportClassesCSV(ctx, string(data), wizard.Schools.Schools())
	}
	if err != nil {
		return err
	}

	fmt.Printf("Created %d rows\n", report.Created)
	for _, rowErr := range report.Errors {
		fmt.Printf("  skipped %v\n", rowErr)
	}
	return nil
}
