package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

func newValidateCmd() *cobra.Command {
	var entity string
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a YAML values file against an entity type's fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			if entity == "" || file == "" {
				return fmt.Errorf("--entity and --file are required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var values fielddef.Values
			if err := yaml.Unmarshal(data, &values); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			cli := apiClient(cmd)
			errs, err := cli.Validate(cmd.Context(), fielddef.EntityType(entity), values)
			if err != nil {
				return err
			}
			if len(errs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			}
			if outputFormat(cmd) == "json" {
				b, err := json.MarshalIndent(errs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			} else {
				names := make([]string, 0, len(errs))
				for n := range errs {
					names = append(names, n)
				}
				sort.Strings(names)
				for _, n := range names {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n, errs[n])
				}
			}
			return fmt.Errorf("%d invalid value(s)", len(errs))
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "entity type the values belong to")
	cmd.Flags().StringVar(&file, "file", "", "YAML values file")
	return cmd
}
