package cmd

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a proxy endpoint (not supported)",
	RunE:  runUpdate,
}

var (
	updateAPIID string
	updateURL   string
)

func init() {
	updateCmd.Flags().StringVar(&updateAPIID, "api_id", "", "Proxy identifier to update")
	updateCmd.Flags().StringVar(&updateURL, "url", "", "New URL end-point")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	reg, closeRegistry, err := newRegistry()
	if err != nil {
		return err
	}
	defer closeRegistry()

	logInfo("Updating %s => %s...", updateAPIID, updateURL)

	// Proxy records are immutable; this always fails with a non-zero exit.
	return reg.Update(cmd.Context(), updateAPIID, updateURL)
}
