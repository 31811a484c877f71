package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

type definitionFile struct {
	Fields []fielddef.FieldDefinition `yaml:"fields"`
}

func newApplyCmd() *cobra.Command {
	var file string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update field definitions from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var df definitionFile
			if err := yaml.Unmarshal(data, &df); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			if len(df.Fields) == 0 {
				return fmt.Errorf("%s defines no fields", file)
			}
			cli := apiClient(cmd)
			for _, fd := range df.Fields {
				if dryRun {
					fmt.Fprintf(cmd.OutOrStdout(), "would apply %s/%s\n", fd.EntityType, fd.Name)
					continue
				}
				if fd.ID != "" {
					out, err := cli.Update(cmd.Context(), fd.ID, fd)
					if err != nil {
						return fmt.Errorf("update %s/%s: %w", fd.EntityType, fd.Name, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "updated %s/%s (%s)\n", out.EntityType, out.Name, out.ID)
					continue
				}
				out, err := cli.Create(cmd.Context(), fd)
				if err != nil {
					return fmt.Errorf("create %s/%s: %w", fd.EntityType, fd.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s/%s (%s)\n", out.EntityType, out.Name, out.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML definition file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print actions without applying")
	return cmd
}
