package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudsim-labs/fireprox-ctl/internal/logging"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Stop a proxy endpoint and remove its host entry",
	RunE:  runDelete,
}

var deleteAPIID string

func init() {
	deleteCmd.Flags().StringVar(&deleteAPIID, "api_id", "", "Proxy identifier to delete (required)")
	deleteCmd.MarkFlagRequired("api_id")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := requireRoot(); err != nil {
		return err
	}

	reg, closeRegistry, err := newRegistry()
	if err != nil {
		return err
	}
	defer closeRegistry()

	logging.Debug("deleting proxy", "api_id", deleteAPIID)

	ok, err := reg.Delete(cmd.Context(), deleteAPIID)
	if err != nil {
		return err
	}

	// A missing proxy is a normal negative result reported on stdout, not
	// a distinct exit code.
	outcome := "Failed!"
	if ok {
		outcome = "Success!"
	} else {
		logWarning("No running proxy matched %s; nothing was removed", deleteAPIID)
	}
	fmt.Printf("Deleting %s => %s\n", deleteAPIID, outcome)

	return nil
}
