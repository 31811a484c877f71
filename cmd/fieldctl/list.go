package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

func newListCmd() *cobra.Command {
	var entity string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List custom field definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := apiClient(cmd)
			defs, err := cli.List(cmd.Context(), fielddef.EntityType(entity))
			if err != nil {
				return err
			}
			if outputFormat(cmd) == "json" {
				b, err := json.MarshalIndent(defs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetHeader([]string{"ID", "Entity", "Name", "Type", "Required", "Category", "Options"})
			for _, d := range defs {
				tw.Append([]string{
					d.ID,
					string(d.EntityType),
					d.Name,
					string(d.FieldType),
					fmt.Sprint(d.Required),
					d.Bucket(),
					strings.Join(d.Options, ","),
				})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "filter by entity type")
	return cmd
}
