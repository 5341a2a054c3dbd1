package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/Osmandiyaka/mindbloom-sub000/cmd/setup/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Status commands.StatusCmd `cmd:"" help:"Show setup wizard progress"`
		Export commands.ExportCmd `cmd:"" help:"Export users or classes as CSV"`
		Import commands.ImportCmd `cmd:"" help:"Import users or classes from CSV"`
		Reset  commands.ResetCmd  `cmd:"" help:"Clear saved setup progress"`
		Config string             `help:"Path to config file" default:"setup.yaml"`
		Debug  bool               `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, ConfigPath: cli.Config})
	cmd.FatalIfErrorf(err)
}
