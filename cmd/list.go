package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all proxy endpoints",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	reg, closeRegistry, err := newRegistry()
	if err != nil {
		return err
	}
	defer closeRegistry()

	logInfo("Listing API's...")

	records, err := reg.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(records) == 0 {
		logInfo("No proxies found. Create one with: fireprox-ctl create --url <url>")
		return nil
	}

	// Ordering follows the engine's enumeration order, not creation time.
	for _, record := range records {
		fmt.Println(record.Line())
	}

	return nil
}
