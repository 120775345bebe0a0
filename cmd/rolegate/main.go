package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rolegate/rolegate/internal/interfaces/cli/migrate"
	"github.com/rolegate/rolegate/internal/interfaces/cli/order"
	"github.com/rolegate/rolegate/internal/interfaces/cli/plan"
	"github.com/rolegate/rolegate/internal/interfaces/cli/server"
	"github.com/rolegate/rolegate/internal/interfaces/cli/subscription"
	"github.com/rolegate/rolegate/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "rolegate",
		Short:        "Rolegate - paid, time-limited Discord roles",
		Long:         `Rolegate sells Discord roles through yipay or epusdt, grants them when payment arrives and revokes them when they expire.`,
		Version:      version.String(),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		plan.NewCommand(),
		order.NewCommand(),
		subscription.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
