package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudsim-labs/fireprox-ctl/internal/logging"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new proxy endpoint",
	RunE:  runCreate,
}

var createURL string

func init() {
	createCmd.Flags().StringVar(&createURL, "url", "", "URL end-point the proxy forwards to (required)")
	createCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	if err := requireRoot(); err != nil {
		return err
	}

	reg, closeRegistry, err := newRegistry()
	if err != nil {
		return err
	}
	defer closeRegistry()

	logInfo("Creating => %s...", createURL)
	logging.Debug("creating proxy", "url", createURL)

	record, err := reg.Create(cmd.Context(), createURL)
	if err != nil {
		return err
	}

	fmt.Println(record.Line())
	logSuccess("Proxy %s is live at %s", record.ID, record.IP)
	return nil
}
