package cli

import "github.com/spf13/cobra"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}
