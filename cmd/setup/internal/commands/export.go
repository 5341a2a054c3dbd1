package commands

import (
	"context"
	"fmt"
	"os"
)

// ExportCmd writes the current user or class list as CSV.
type ExportCmd struct {
	Entity string `arg:"" enum:"users,classes" help:"What to export (users or classes)"`
	Output string `short:"o" help:"Output file (default: stdout)"`
}

func (e *ExportCmd) Run(ctx context.Context, globals *Globals) error {
	wizard, _, err := buildWizard(globals)
	if err != nil {
		return err
	}
	defer wizard.Close()

	if err := wizard.Init(ctx); err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	var doc string
	switch e.Entity {
	case "users":
		doc = wizard.Users.ExportUsersCSV()
	case "classes":
		doc = wizard.Classes.ExportClassesCSV()
	}

	if e.Output == "" {
		fmt.Print(doc)
		return nil
	}
	if err := os.WriteFile(e.Output, []byte(doc), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", e.Output, err)
	}
	fmt.Printf("Wrote %s\n", e.Output)
	return nil
}
