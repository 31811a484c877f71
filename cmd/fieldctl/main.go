package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{Use: "fieldctl"}

func init() {
	rootCmd.PersistentFlags().String("api-url", "http://localhost:8080", "Fieldset API base URL")
	rootCmd.PersistentFlags().String("token", "", "Bearer token for the API")
	rootCmd.PersistentFlags().String("output", "table", "Output format (table|json)")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newDBCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
