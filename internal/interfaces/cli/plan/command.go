package plan

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rolegate/rolegate/internal/application/plan/usecases"
	domainPlan "github.com/rolegate/rolegate/internal/domain/plan"
	"github.com/rolegate/rolegate/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/rolegate/rolegate/internal/interfaces/http"
)

var (
	opts     bootstrap.Options
	price    string
	currency string
	roleID   string
	months   int
	panel    bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage the plan catalog",
	}

	opts.Bind(cmd)

	cmd.AddCommand(
		newSetCommand(),
		newListCommand(),
		newDeleteCommand(),
		newImportCommand(),
	)

	return cmd
}

func newSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Create a plan or replace the plan with the same name",
		Args:  cobra.ExactArgs(1),
		RunE:  runSet,
	}

	cmd.Flags().StringVar(&price, "price", "", "Price in the plan currency (required)")
	cmd.Flags().StringVar(&currency, "currency", "", "USDT or CNY (default: plan.default_currency)")
	cmd.Flags().StringVar(&roleID, "role", "", "Discord role id granted by the plan (required)")
	cmd.Flags().IntVar(&months, "months", 1, "Duration in months, -1 for forever")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all plans",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.Flags().BoolVar(&panel, "panel", false, "Print the buyer-facing price panel instead of a table")

	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a plan",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Upsert every plan of a YAML catalog file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
}

func withUseCases(fn func(ctx context.Context, ucs *httpRouter.UseCases) error) error {
	rt, err := bootstrap.Init(&opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	c, err := rt.Container()
	if err != nil {
		return err
	}
	return fn(context.Background(), c.UseCases())
}

func runSet(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", price, err)
	}

	return withUseCases(func(ctx context.Context, ucs *httpRouter.UseCases) error {
		result, err := ucs.SetPlan.Execute(ctx, usecases.SetPlanCommand{
			Name:           args[0],
			Price:          amount,
			Currency:       currency,
			RoleID:         roleID,
			DurationMonths: months,
		})
		if err != nil {
			return err
		}

		verb := "updated"
		if result.Created {
			verb = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Plan %s %s: %s%s\n",
			result.Plan.Name(), verb, result.Plan.DisplayPrice(), result.Plan.Duration().Label())
		return nil
	})
}

func runList(cmd *cobra.Command, args []string) error {
	return withUseCases(func(ctx context.Context, ucs *httpRouter.UseCases) error {
		plans, err := ucs.ListPlans.Execute(ctx)
		if err != nil {
			return err
		}
		if panel {
			fmt.Fprintln(cmd.OutOrStdout(), usecases.RenderPanel(plans))
			return nil
		}
		return printPlans(cmd.OutOrStdout(), plans)
	})
}

func printPlans(out io.Writer, plans []*domainPlan.Plan) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tCURRENCY\tROLE\tMONTHS")
	for _, p := range plans {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n",
			p.ID(), p.Name(), p.Price().StringFixed(2), p.Currency(), p.RoleID(), p.Duration().Months())
	}
	return w.Flush()
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withUseCases(func(ctx context.Context, ucs *httpRouter.UseCases) error {
		if err := ucs.DeletePlan.Execute(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Plan %s deleted\n", args[0])
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open plan file: %w", err)
	}
	defer f.Close()

	return withUseCases(func(ctx context.Context, ucs *httpRouter.UseCases) error {
		result, err := ucs.ImportPlans.Execute(ctx, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported plans: %d created, %d updated\n", result.Created, result.Updated)
		return nil
	})
}
