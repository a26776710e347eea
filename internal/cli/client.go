package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/eventsplit/internal/client"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/pkg/apiv1"
)

func init() {
	rootCmd.AddCommand(eventCmd, debtsCmd, toggleCmd, watchCmd)
	eventCmd.AddCommand(eventCreateCmd, eventListCmd)

	eventListCmd.Flags().String("order", apiv1.OrderByLastActivity, "Sort by name, creationDate or lastActivity")
	toggleCmd.Flags().Bool("expect", false, "Only toggle if the flag currently has this value")
	watchCmd.Flags().Duration("timeout", 30*time.Second, "Long-poll timeout per request")
}

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Create and list events",
}

var eventCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create an event and print its code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(nil, serverURL)
		resp, err := c.Events.CreateEvent(cmd.Context(), connect.NewRequest(&apiv1.CreateEventRequest{Name: args[0]}))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Msg.Event.Code)
		return nil
	},
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		order, _ := cmd.Flags().GetString("order")
		c := client.New(nil, serverURL)
		resp, err := c.Events.ListEvents(cmd.Context(), connect.NewRequest(&apiv1.ListEventsRequest{OrderBy: order}))
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tNAME\tLAST ACTIVITY")
		for _, e := range resp.Msg.Events {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Code, e.Name, e.LastActivity.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

var debtsCmd = &cobra.Command{
	Use:   "debts CODE",
	Short: "Print the debts of an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(nil, serverURL)
		resp, err := c.Debts.ListDebts(cmd.Context(), connect.NewRequest(&apiv1.ListDebtsRequest{EventCode: args[0]}))
		if err != nil {
			return err
		}
		return printDebts(cmd.OutOrStdout(), resp.Msg.Debts)
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle CODE DEBTOR CREDITOR",
	Short: "Flip the received flag of a debt",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &apiv1.ToggleReceivedRequest{EventCode: args[0], DebtorName: args[1], CreditorName: args[2]}
		if cmd.Flags().Changed("expect") {
			expect, _ := cmd.Flags().GetBool("expect")
			req.Expect = &expect
		}
		c := client.New(nil, serverURL)
		resp, err := c.Debts.ToggleReceived(cmd.Context(), connect.NewRequest(req))
		if err != nil {
			return err
		}
		return printDebts(cmd.OutOrStdout(), []models.Debt{resp.Msg.Debt})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch CODE",
	Short: "Follow the debts of an event",
	Long:  `Print the debts of an event and reprint them every time they change, until interrupted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c := client.New(nil, serverURL)
		w := client.NewDebtWatcher(c.Debts, args[0], client.WithPollTimeout(timeout))
		out := cmd.OutOrStdout()
		err := w.Run(ctx, func(debts []models.Debt) {
			fmt.Fprintf(out, "--- %s\n", time.Now().Format(time.TimeOnly))
			if err := printDebts(out, debts); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func printDebts(w io.Writer, debts []models.Debt) error {
	if len(debts) == 0 {
		fmt.Fprintln(w, "No debts.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEBTOR\tCREDITOR\tAMOUNT\tRECEIVED")
	for _, d := range debts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", d.DebtorName, d.CreditorName, d.Amount, d.Received)
	}
	return tw.Flush()
}
