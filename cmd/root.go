package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudsim-labs/fireprox-ctl/internal/config"
	"github.com/cloudsim-labs/fireprox-ctl/internal/creds"
	"github.com/cloudsim-labs/fireprox-ctl/internal/errors"
	"github.com/cloudsim-labs/fireprox-ctl/internal/hosts"
	"github.com/cloudsim-labs/fireprox-ctl/internal/logging"
	"github.com/cloudsim-labs/fireprox-ctl/internal/proxy"
	"github.com/cloudsim-labs/fireprox-ctl/internal/runtime"
)

var rootCmd = &cobra.Command{
	Use:   "fireprox-ctl",
	Short: "Ephemeral API-gateway proxy manager",
	Long: `fireprox-ctl manages ephemeral reverse-proxy endpoints backed by
locally launched containers instead of a managed cloud service.

Each proxy is a container that:
  - Forwards traffic for a synthetic execute-api hostname to a target origin
  - Attaches to the lab virtual network
  - Registers its hostname in the host-resolution table while it lives

The running containers are the only record of live proxies; list, create,
and delete all work by querying the container engine.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(flagVerbose, false, nil)
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

var (
	flagProfileName     string
	flagAccessKey       string
	flagSecretAccessKey string
	flagSessionToken    string
	flagRegion          string
	flagVerbose         bool
)

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logError("%v", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagProfileName, "profile_name", "", "Profile name to store/retrieve credentials")
	pf.StringVar(&flagAccessKey, "access_key", "", "Access key")
	pf.StringVar(&flagSecretAccessKey, "secret_access_key", "", "Secret access key")
	pf.StringVar(&flagSessionToken, "session_token", "", "Session token")
	pf.StringVar(&flagRegion, "region", "", "Region")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// newRegistry resolves credentials and settings and connects to the
// container engine. The returned closer releases the engine client.
// Declared as a variable so command tests can swap in a mock-backed
// registry.
var newRegistry = func() (*proxy.Registry, func(), error) {
	region, err := creds.NewProvider().Resolve(creds.Options{
		ProfileName:     flagProfileName,
		AccessKey:       flagAccessKey,
		SecretAccessKey: flagSecretAccessKey,
		SessionToken:    flagSessionToken,
		Region:          flagRegion,
	})
	if err != nil {
		return nil, nil, errors.ConfigError("unable to load credentials", err)
	}
	logging.Debug("credentials resolved", "region", region)

	settings, err := config.Load()
	if err != nil {
		return nil, nil, errors.ConfigError("failed to load settings", err)
	}

	rt, err := runtime.NewDockerRuntime()
	if err != nil {
		return nil, nil, errors.RuntimeUnavailable(err)
	}

	reg := proxy.NewRegistry(rt, hosts.NewFile(settings.HostsFile), settings, region)
	return reg, func() { _ = rt.Close() }, nil
}

var geteuid = os.Geteuid

// requireRoot rejects mutating commands for non-root users: they rewrite
// the shared host-resolution table and the engine's network setup.
func requireRoot() error {
	if geteuid() != 0 {
		return errors.New(errors.ExitConfigError,
			"this command modifies the host-resolution table and requires root; run with sudo")
	}
	return nil
}

// Helper functions for consistent output

func logInfo(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "ℹ "+format+"\n", args...)
}

func logSuccess(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "✓ "+format+"\n", args...)
}

func logWarning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

func logError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}
