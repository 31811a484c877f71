package main

import (
	"github.com/spf13/cobra"

	"github.com/inventia-dev/fieldset/sdk/client"
)

// apiClient builds an SDK client from the root flags. A --token flag seeds
// the shared session store so subsequent requests carry it.
func apiClient(cmd *cobra.Command) client.Client {
	url, _ := cmd.Root().Flags().GetString("api-url")
	tok, _ := cmd.Root().Flags().GetString("token")
	opts := []client.Option{}
	if tok != "" {
		opts = append(opts, client.WithToken(tok))
	}
	return client.New(url, opts...)
}

func outputFormat(cmd *cobra.Command) string {
	out, _ := cmd.Root().Flags().GetString("output")
	return out
}
