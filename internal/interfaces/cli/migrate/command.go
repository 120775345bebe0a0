package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rolegate/rolegate/internal/infrastructure/migration"
	"github.com/rolegate/rolegate/internal/interfaces/cli/bootstrap"
)

var (
	opts  bootstrap.Options
	name  string
	steps int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back and inspect the order store schema, or create new migration files.`,
	}

	opts.Bind(cmd)

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create an empty SQL migration in the scripts directory of the configured driver.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runUp(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(&opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Log.Infow("running up migrations", "driver", rt.Config.Database.Driver)
	if err := rt.Migrate(false); err != nil {
		return err
	}
	rt.Log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(&opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Log.Infow("running down migrations", "driver", rt.Config.Database.Driver, "steps", steps)
	strategy := migration.NewGooseStrategy(rt.Config.Database.Driver)
	if err := strategy.MigrateDown(rt.DB, steps); err != nil {
		return fmt.Errorf("down migration failed: %w", err)
	}
	rt.Log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(&opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	strategy := migration.NewGooseStrategy(rt.Config.Database.Driver)
	version, err := strategy.GetVersion(rt.DB)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMigration Status:\n")
	fmt.Fprintf(out, "  Driver:          %s\n", rt.Config.Database.Driver)
	fmt.Fprintf(out, "  Current Version: %d\n", version)

	return strategy.Status(rt.DB)
}

func runCreate(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(&opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	dir, err := filepath.Abs(filepath.Join("internal/infrastructure/migration/scripts", rt.Config.Database.Driver))
	if err != nil {
		return fmt.Errorf("failed to resolve scripts path: %w", err)
	}
	if err := migration.CreateScript(dir, name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migration %q created in %s\n", name, dir)
	return nil
}
