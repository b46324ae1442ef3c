package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phobologic/funcseg/internal/config"
)

// newInitCmd implements `funcseg init`, which writes the default
// configuration to a funcseg.yaml file.
func newInitCmd(a *app) *cobra.Command {
	var (
		dryRun bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default " + config.FileName,
		Long: `Write the default funcseg configuration as YAML. path defaults to
./` + config.FileName + `. An existing file is left alone unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := config.DefaultConfig().Marshal()
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}

			if dryRun {
				_, _ = a.stdout.Write(data)
				return nil
			}

			path := config.FileName
			if len(args) > 0 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			_, _ = fmt.Fprintf(a.stderr, "wrote default config to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the config without writing a file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
