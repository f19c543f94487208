package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sangkips/ecs-receipts/internal/gateway"
	"github.com/sangkips/ecs-receipts/internal/preview"
)

func (a *app) receiptsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "receipts",
		Aliases: []string{"receipt", "r"},
		Short:   "List and manage saved receipts",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			_, err := a.requireUser()
			return err
		},
	}
	cmd.AddCommand(
		a.receiptsListCommand(),
		a.receiptsGetCommand(),
		a.receiptsDeleteCommand(),
		a.receiptsRestoreCommand(),
		a.receiptsStatusCommand(),
	)
	return cmd
}

func (a *app) receiptsListCommand() *cobra.Command {
	var q gateway.ReceiptQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List receipts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			page, err := a.client.ListReceipts(ctx, q)
			if err != nil {
				return err
			}
			printReceipts(cmd.OutOrStdout(), page.Items)
			if p := page.Pagination; p != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\npage %d of %d, %d receipts\n", p.CurrentPage, p.TotalPages, p.Total)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.From, "from", "", "first receipt date (YYYY-MM-DD)")
	f.StringVar(&q.To, "to", "", "last receipt date (YYYY-MM-DD)")
	f.StringVar(&q.Category, "category", "", "product category")
	f.StringVar(&q.Issuer, "issuer", "", "issuer name contains")
	f.StringVar(&q.EmpCode, "emp", "", "employee code")
	f.StringVar(&q.Status, "status", "", "pending, verified or rejected")
	f.BoolVar(&q.IncludeDeleted, "deleted", false, "include deleted receipts (admins)")
	f.IntVar(&q.Page, "page", 1, "page number")
	f.IntVar(&q.Size, "size", 20, "receipts per page")
	f.StringVar(&q.Sort, "sort", "created_at:desc", "sort as field:dir")
	return cmd
}

func (a *app) receiptsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			r, err := a.client.GetReceipt(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id: %s  status: %s\n", r.ID, r.Status)
			if r.DeletedAt != nil {
				fmt.Fprintf(out, "deleted %s: %s\n", r.DeletedAt.Format("2006-01-02 15:04"), r.DeleteReason)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, preview.Text(preview.Layout(r.Record)))
			return nil
		},
	}
}

func (a *app) receiptsDeleteCommand() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft delete a receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reason == "" {
				return fmt.Errorf("--reason is required")
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			if err := a.client.DeleteReceipt(ctx, args[0], reason); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the receipt is withdrawn")
	return cmd
}

func (a *app) receiptsRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Undo a delete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			if err := a.client.RestoreReceipt(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
			return nil
		},
	}
}

func (a *app) receiptsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "status <id> <pending|verified|rejected>",
		Short:     "Record the review outcome",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"pending", "verified", "rejected"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			if err := a.client.SetReceiptStatus(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], args[1])
			return nil
		},
	}
}

func printReceipts(w io.Writer, rows []gateway.Receipt) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECEIPT NO\tDATE\tEMP\tINVESTOR\tCATEGORY\tAMOUNT\tSTATUS")
	for _, r := range rows {
		status := r.Status
		if r.DeletedAt != nil {
			status += " (deleted)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.ReceiptNo, r.Date, r.EmpCode, r.InvestorName, r.ProductCategory,
			preview.FormatAmount(r.InvestmentAmount), status)
	}
	_ = tw.Flush()
}
