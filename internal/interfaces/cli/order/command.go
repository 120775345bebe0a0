package order

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rolegate/rolegate/internal/application/order/usecases"
	"github.com/rolegate/rolegate/internal/interfaces/cli/bootstrap"
)

var opts bootstrap.Options

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect and repair orders",
	}

	opts.Bind(cmd)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <order_id>",
			Short: "Show an order",
			Args:  cobra.ExactArgs(1),
			RunE:  runShow,
		},
		&cobra.Command{
			Use:   "fulfill <order_id>",
			Short: "Grant the role and mark the order paid, e.g. after a lost notification",
			Args:  cobra.ExactArgs(1),
			RunE:  runFulfill,
		},
		&cobra.Command{
			Use:   "check <order_id>",
			Short: "Ask the payment platform whether the order was paid and fulfill it if so",
			Args:  cobra.ExactArgs(1),
			RunE:  runCheck,
		},
	)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(&opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	c, err := rt.Container()
	if err != nil {
		return err
	}
	o, err := c.UseCases().GetOrder.Execute(context.Background(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Order:    %s\n", o.OrderID())
	fmt.Fprintf(out, "User:     %s\n", o.UserID())
	fmt.Fprintf(out, "Plan ID:  %d\n", o.PlanID())
	fmt.Fprintf(out, "Method:   %s\n", o.PaymentMethod())
	fmt.Fprintf(out, "Amount:   %s %s\n", o.PaymentAmount().StringFixed(2), o.PaymentCurrency())
	fmt.Fprintf(out, "Status:   %s\n", o.Status())
	fmt.Fprintf(out, "Created:  %s\n", o.CreatedAt().Format(time.RFC3339))
	if paid := o.PaidAt(); paid != nil {
		fmt.Fprintf(out, "Paid:     %s\n", paid.Format(time.RFC3339))
	}
	return nil
}

func runFulfill(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(&opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	c, err := rt.Container()
	if err != nil {
		return err
	}
	result, err := c.UseCases().FulfillOrder.Execute(context.Background(), usecases.FulfillOrderCommand{
		OrderID: args[0],
		Source:  usecases.SourceAdmin,
	})
	if err != nil {
		return err
	}
	printFulfillment(cmd.OutOrStdout(), result)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(&opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	c, err := rt.Container()
	if err != nil {
		return err
	}
	result, err := c.UseCases().CheckOrder.Execute(context.Background(), args[0])
	if err != nil {
		return err
	}
	if !result.Paid {
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s is not paid yet\n", result.OrderID)
		return nil
	}
	printFulfillment(cmd.OutOrStdout(), result.Fulfill)
	return nil
}

func printFulfillment(out io.Writer, r *usecases.FulfillOrderResult) {
	if r == nil {
		return
	}
	if r.AlreadyPaid {
		fmt.Fprintf(out, "Order %s was already paid, nothing to do\n", r.OrderID)
		return
	}
	sub := r.Subscription
	expiry := "never"
	if sub != nil && !sub.IsForever() {
		expiry = time.Unix(sub.ExpireDate(), 0).UTC().Format(time.RFC3339)
	}
	fmt.Fprintf(out, "Order %s fulfilled, role expires %s\n", r.OrderID, expiry)
}
