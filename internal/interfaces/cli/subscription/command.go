package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rolegate/rolegate/internal/application/subscription/usecases"
	"github.com/rolegate/rolegate/internal/interfaces/cli/bootstrap"
)

var (
	opts   bootstrap.Options
	userID string
	roleID string
	months int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Grant roles by hand and run the expiry sweep",
	}

	opts.Bind(cmd)

	grant := &cobra.Command{
		Use:   "grant",
		Short: "Grant a role without an order",
		Args:  cobra.NoArgs,
		RunE:  runGrant,
	}
	grant.Flags().StringVar(&userID, "user", "", "Discord user id (required)")
	grant.Flags().StringVar(&roleID, "role", "", "Discord role id (required)")
	grant.Flags().IntVar(&months, "months", 1, "Duration in months, -1 for forever")
	_ = grant.MarkFlagRequired("user")
	_ = grant.MarkFlagRequired("role")

	cmd.AddCommand(
		grant,
		&cobra.Command{
			Use:   "sweep",
			Short: "Revoke every expired subscription now",
			Args:  cobra.NoArgs,
			RunE:  runSweep,
		},
	)

	return cmd
}

func runGrant(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(&opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	c, err := rt.Container()
	if err != nil {
		return err
	}
	sub, err := c.UseCases().GrantSubscription.Execute(context.Background(), usecases.GrantSubscriptionCommand{
		UserID:         userID,
		RoleID:         roleID,
		DurationMonths: months,
	})
	if err != nil {
		return err
	}

	expiry := "never"
	if !sub.IsForever() {
		expiry = time.Unix(sub.ExpireDate(), 0).UTC().Format(time.RFC3339)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Granted role %s to %s, expires %s\n", sub.RoleID(), sub.UserID(), expiry)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(&opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	c, err := rt.Container()
	if err != nil {
		return err
	}
	revoked, err := c.UseCases().ExpireSubscriptions.Execute(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Revoked %d expired subscriptions\n", revoked)
	return nil
}
